package controllers

import (
	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
	"github.com/lintang-b-s/Navisafe/pkg/navigation"
	"github.com/lintang-b-s/Navisafe/pkg/spatialindex"
)

type placeRequest struct {
	ID      string  `json:"id" validate:"max=128"`
	Name    string  `json:"name" validate:"required,max=256"`
	Address string  `json:"address" validate:"max=512"`
	Lat     float64 `json:"lat" validate:"min=-90,max=90"`
	Lon     float64 `json:"lon" validate:"min=-180,max=180"`
}

func (p placeRequest) ToPlace() datastructure.Place {
	return datastructure.NewPlace(p.ID, p.Name, p.Address, p.Lat, p.Lon)
}

type originRequest struct {
	Lat     float64 `json:"lat" validate:"min=-90,max=90"`
	Lon     float64 `json:"lon" validate:"min=-180,max=180"`
	Name    string  `json:"name" validate:"max=256"`
	Address string  `json:"address" validate:"max=512"`
}

func (o originRequest) ToPlace() datastructure.Place {
	name := o.Name
	if name == "" {
		name = "Your Location"
	}
	return datastructure.NewPlace("origin", name, o.Address, o.Lat, o.Lon)
}

type optionsRequest struct {
	FastestRoute  bool `json:"fastest_route"`
	AvoidTolls    bool `json:"avoid_tolls"`
	AvoidHighways bool `json:"avoid_highways"`
}

func (o optionsRequest) ToOptions() datastructure.RouteOptions {
	return datastructure.RouteOptions{
		FastestRoute:  o.FastestRoute,
		AvoidTolls:    o.AvoidTolls,
		AvoidHighways: o.AvoidHighways,
	}
}

type queryRequest struct {
	Query string `json:"query" validate:"max=256"`
}

type placeSearchRequest struct {
	Query string `validate:"required,max=256"`
}

type nearbyRequest struct {
	Lat    float64 `validate:"min=-90,max=90"`
	Lon    float64 `validate:"min=-180,max=180"`
	Radius float64 `validate:"gt=0,lte=50"`
	Limit  int     `validate:"min=1,max=100"`
}

// wsCommand is one client message on the session websocket.
type wsCommand struct {
	Action  string          `json:"action" validate:"required,oneof=snapshot start stop advance query select clear_search destination clear_destination options origin"`
	Query   string          `json:"query,omitempty" validate:"max=256"`
	Place   *placeRequest   `json:"place,omitempty"`
	Origin  *originRequest  `json:"origin,omitempty"`
	Options *optionsRequest `json:"options,omitempty"`
}

type sessionResponse struct {
	ID       string              `json:"id"`
	Snapshot navigation.Snapshot `json:"snapshot"`
}

func NewSessionResponse(snap navigation.Snapshot) sessionResponse {
	return sessionResponse{ID: snap.ID, Snapshot: snap}
}

type advanceResponse struct {
	Advanced bool                `json:"advanced"`
	Snapshot navigation.Snapshot `json:"snapshot"`
}

type placesResponse struct {
	Places []datastructure.Place `json:"places"`
}

type nearbyResponse struct {
	Places []spatialindex.NearbyPlace `json:"places"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
