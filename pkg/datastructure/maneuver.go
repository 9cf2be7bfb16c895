package datastructure

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Direction is the coarse turn class of a maneuver.
type Direction string

const (
	DirectionStraight Direction = "straight"
	DirectionLeft     Direction = "left"
	DirectionRight    Direction = "right"
	DirectionUTurn    Direction = "u-turn"
)

func (d Direction) IsValid() bool {
	switch d {
	case DirectionStraight, DirectionLeft, DirectionRight, DirectionUTurn:
		return true
	default:
		return false
	}
}

func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if d == "" {
		return DirectionStraight, nil
	}
	if !d.IsValid() {
		return "", fmt.Errorf("invalid direction: %s", s)
	}
	return d, nil
}

// Distance is a length in meter. it is only displayed, never summed by the navigation core.
type Distance float64

func NewDistanceKM(km float64) Distance {
	return Distance(km * 1000)
}

func (d Distance) Meters() float64 {
	return float64(d)
}

func (d Distance) Kilometers() float64 {
	return float64(d) / 1000
}

// String formats the distance the way the panel shows it: "50 m", "0.5 km", "12.3 km".
func (d Distance) String() string {
	if d < 0 {
		d = 0
	}
	if d < 100 {
		return fmt.Sprintf("%.0f m", math.Round(float64(d)))
	}
	return fmt.Sprintf("%.1f km", d.Kilometers())
}

// ParseDistance accepts "50 m", "0.5 km", "800m" or a bare number of meter.
func ParseDistance(s string) (Distance, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	var (
		val  float64
		unit string
	)
	s = strings.ReplaceAll(s, " ", "")
	switch {
	case strings.HasSuffix(s, "km"):
		unit, s = "km", strings.TrimSuffix(s, "km")
	case strings.HasSuffix(s, "m"):
		unit, s = "m", strings.TrimSuffix(s, "m")
	}
	if _, err := fmt.Sscanf(s, "%f", &val); err != nil {
		return 0, fmt.Errorf("invalid distance %q: %w", s, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("invalid distance %q: negative", s)
	}
	if unit == "km" {
		return NewDistanceKM(val), nil
	}
	return Distance(val), nil
}

// FormatETA formats a travel time the way the trip overlay shows it: "8 min", "1 hr 5 min".
func FormatETA(eta time.Duration) string {
	minutes := int(math.Round(eta.Minutes()))
	hours := minutes / 60
	minutes -= hours * 60
	if hours > 0 {
		if minutes > 0 {
			return fmt.Sprintf("%d hr %d min", hours, minutes)
		}
		return fmt.Sprintf("%d hr", hours)
	}
	return fmt.Sprintf("%d min", minutes)
}

// ManeuverStep is one instruction of a route. Index is its 0-based position in the route.
type ManeuverStep struct {
	Index       int       `json:"index"`
	Instruction string    `json:"instruction"`
	Distance    Distance  `json:"distance"`
	Direction   Direction `json:"direction"`
}

func NewManeuverStep(index int, instruction string, distance Distance, direction Direction) ManeuverStep {
	return ManeuverStep{
		Index:       index,
		Instruction: instruction,
		Distance:    distance,
		Direction:   direction,
	}
}
