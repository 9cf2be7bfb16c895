package navigation

import (
	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
)

type LocationStatus string

const (
	LocationLocating    LocationStatus = "locating"
	LocationAvailable   LocationStatus = "available"
	LocationUnavailable LocationStatus = "unavailable"
)

// Snapshot is a read-only projection of a session. slices and pointers are copies.
type Snapshot struct {
	ID          string                     `json:"id"`
	State       State                      `json:"state"`
	Origin      *datastructure.Place       `json:"origin,omitempty"`
	Location    LocationStatus             `json:"location"`
	Destination *datastructure.Place       `json:"destination,omitempty"`
	Options     datastructure.RouteOptions `json:"options"`

	CurrentStep *datastructure.ManeuverStep  `json:"current_step,omitempty"`
	Upcoming    []datastructure.ManeuverStep `json:"upcoming"`
	StepIndex   int                          `json:"step_index"`
	TotalSteps  int                          `json:"total_steps"`
	Arrived     bool                         `json:"arrived"`
	Summary     *TripSummaryView             `json:"summary,omitempty"`

	OffRouteMeters *float64 `json:"off_route_meters,omitempty"`
	OffRoute       bool     `json:"off_route"`

	Query             string                `json:"query"`
	Candidates        []datastructure.Place `json:"candidates"`
	CandidatesVisible bool                  `json:"candidates_visible"`
	SearchPending     bool                  `json:"search_pending"`
	RoutePending      bool                  `json:"route_pending"`

	LastError string `json:"last_error,omitempty"`
	Err       error  `json:"-"`
}

// TripSummaryView carries the raw summary next to its display strings.
type TripSummaryView struct {
	datastructure.TripSummary
	Distance string `json:"distance"`
	Duration string `json:"duration"`
}

func newTripSummaryView(s datastructure.TripSummary) *TripSummaryView {
	return &TripSummaryView{
		TripSummary: s,
		Distance:    s.TotalDistance.String(),
		Duration:    datastructure.FormatETA(s.ETA),
	}
}

// DisplayProgress returns the 1-based step counter shown to the driver, e.g. "Step 2 of 5".
func (s Snapshot) DisplayProgress() (int, int) {
	if s.TotalSteps == 0 {
		return 0, 0
	}
	return s.StepIndex + 1, s.TotalSteps
}
