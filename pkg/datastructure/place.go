package datastructure

import (
	"fmt"
	"strings"
)

// Place is a named point returned by the search index or the location source.
// values are immutable once obtained; copy them freely.
type Place struct {
	ID         string     `json:"id" toml:"id"`
	Name       string     `json:"name" toml:"name"`
	Address    string     `json:"address" toml:"address"`
	Coordinate Coordinate `json:"coordinates" toml:"coordinates"`
}

func NewPlace(id, name, address string, lat, lon float64) Place {
	return Place{
		ID:         id,
		Name:       name,
		Address:    address,
		Coordinate: NewCoordinate(lat, lon),
	}
}

func (p Place) GetLat() float64 {
	return p.Coordinate.Lat
}

func (p Place) GetLon() float64 {
	return p.Coordinate.Lon
}

// Matches reports whether the lower-cased query is contained in the name or the address.
func (p Place) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Address), q)
}

func (p Place) String() string {
	return fmt.Sprintf("%s (%s) @ %f,%f", p.Name, p.Address, p.Coordinate.Lat, p.Coordinate.Lon)
}
