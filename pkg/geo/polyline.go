package geo

import (
	"fmt"

	"github.com/twpayne/go-polyline"
)

// google encoded polyline, 5 digits precision.
func PolylineFromCoords(coords []Coordinate) string {
	return string(polyline.EncodeCoords(toLatLonPairs(coords)))
}

// CoordsFromPolyline decodes an encoded polyline. precision is the number of decimal
// digits used by the encoder (5 for google, 6 for valhalla/osrm polyline6).
func CoordsFromPolyline(encoded string, precision int) ([]Coordinate, error) {
	if encoded == "" {
		return []Coordinate{}, nil
	}
	scale := 1e5
	if precision == 6 {
		scale = 1e6
	}
	codec := polyline.Codec{Dim: 2, Scale: scale}
	pairs, rest, err := codec.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("decode polyline: %d trailing bytes", len(rest))
	}

	coords := make([]Coordinate, len(pairs))
	for i, p := range pairs {
		coords[i] = NewCoordinate(p[0], p[1])
	}
	return coords, nil
}

func toLatLonPairs(coords []Coordinate) [][]float64 {
	pairs := make([][]float64, len(coords))
	for i, c := range coords {
		pairs[i] = []float64{c.Lat, c.Lon}
	}
	return pairs
}
