package datastructure

import (
	"fmt"
	"time"
)

// RouteOptions are independent flags handed to the route provider as-is.
type RouteOptions struct {
	FastestRoute  bool `json:"fastest_route" toml:"fastest_route"`
	AvoidTolls    bool `json:"avoid_tolls" toml:"avoid_tolls"`
	AvoidHighways bool `json:"avoid_highways" toml:"avoid_highways"`
}

func DefaultRouteOptions() RouteOptions {
	return RouteOptions{FastestRoute: true}
}

func (o RouteOptions) String() string {
	return fmt.Sprintf("fastest=%t avoid_tolls=%t avoid_highways=%t", o.FastestRoute, o.AvoidTolls, o.AvoidHighways)
}

type TripSummary struct {
	TotalDistance Distance      `json:"total_distance"`
	ETA           time.Duration `json:"eta"`
}

func NewTripSummary(dist Distance, eta time.Duration) TripSummary {
	return TripSummary{
		TotalDistance: dist,
		ETA:           eta,
	}
}

// Route is the provider answer for one origin/destination/options request.
// steps are never mutated after NewRoute; accessors hand out copies.
type Route struct {
	steps    []ManeuverStep
	summary  TripSummary
	polyline string
}

// NewRoute copies steps and renumbers them so Index matches the position.
func NewRoute(steps []ManeuverStep, summary TripSummary, polyline string) *Route {
	owned := make([]ManeuverStep, len(steps))
	copy(owned, steps)
	for i := range owned {
		owned[i].Index = i
	}
	return &Route{
		steps:    owned,
		summary:  summary,
		polyline: polyline,
	}
}

func (r *Route) NumberOfSteps() int {
	return len(r.steps)
}

// Step returns the i-th step. i must be in [0, NumberOfSteps()).
func (r *Route) Step(i int) ManeuverStep {
	return r.steps[i]
}

// StepsBetween returns a fresh copy of steps[from:to].
func (r *Route) StepsBetween(from, to int) []ManeuverStep {
	out := make([]ManeuverStep, to-from)
	copy(out, r.steps[from:to])
	return out
}

func (r *Route) Steps() []ManeuverStep {
	return r.StepsBetween(0, len(r.steps))
}

func (r *Route) GetSummary() TripSummary {
	return r.summary
}

// GetPolyline returns the encoded (precision 5) route geometry, empty when unknown.
func (r *Route) GetPolyline() string {
	return r.polyline
}
