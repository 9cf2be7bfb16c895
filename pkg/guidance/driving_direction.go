package guidance

import (
	"math"

	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
	"github.com/lintang-b-s/Navisafe/pkg/geo"
)

// Waypoint is a shape point of a route. StreetName names the road that starts at this point.
type Waypoint struct {
	Coordinate datastructure.Coordinate
	StreetName string
}

func NewWaypoint(lat, lon float64, streetName string) Waypoint {
	return Waypoint{
		Coordinate: datastructure.NewCoordinate(lat, lon),
		StreetName: streetName,
	}
}

// DirectionBuilder turns a waypoint path into maneuver steps. a new step starts at the
// first waypoint, on every turn, and on every street change; the final step tells on which
// side the destination is.
type DirectionBuilder struct {
	steps            []datastructure.ManeuverStep
	currentSign      TurnSign
	currentStreet    string
	currentHeading   float64
	currentDistance  float64
	totalDistance    float64
	prevBearing      float64
	hasCurrentMarker bool
}

func NewDirectionBuilder() *DirectionBuilder {
	return &DirectionBuilder{
		steps: make([]datastructure.ManeuverStep, 0),
	}
}

// GetDrivingDirections returns the steps and the total path length (meter) from the first
// waypoint to destination.
func (db *DirectionBuilder) GetDrivingDirections(path []Waypoint,
	destination datastructure.Coordinate) ([]datastructure.ManeuverStep, datastructure.Distance) {

	path = dropDuplicatePoints(path)
	if len(path) < 2 {
		dist := 0.0
		if len(path) == 1 {
			dist = haversineMeter(path[0].Coordinate, destination)
		}
		db.steps = append(db.steps, datastructure.NewManeuverStep(0,
			GetTurnDescription(FINISH, "", 0, ""), datastructure.Distance(dist), datastructure.DirectionStraight))
		return db.steps, datastructure.Distance(dist)
	}

	for i := 0; i < len(path)-1; i++ {
		db.buildInstruction(path[i], path[i+1], i == 0)
	}
	db.buildFinalInstruction(path, destination)

	return db.steps, datastructure.Distance(db.totalDistance)
}

func (db *DirectionBuilder) buildInstruction(from, to Waypoint, first bool) {
	bearing := segmentBearing(from.Coordinate, to.Coordinate)
	length := haversineMeter(from.Coordinate, to.Coordinate)
	defer func() {
		db.prevBearing = bearing
		db.totalDistance += length
	}()

	if first {
		db.startInstruction(START, from.StreetName, bearing, length)
		return
	}

	sign := GetTurnDirection(db.prevBearing, bearing)
	if sign == CONTINUE_ON_STREET && (isEmpty(from.StreetName) || from.StreetName == db.currentStreet) {
		db.currentDistance += length
		return
	}

	db.flush()
	db.startInstruction(sign, from.StreetName, bearing, length)
}

func (db *DirectionBuilder) startInstruction(sign TurnSign, street string, heading, length float64) {
	db.currentSign = sign
	db.currentStreet = street
	db.currentHeading = heading
	db.currentDistance = length
	db.hasCurrentMarker = true
}

func (db *DirectionBuilder) flush() {
	if !db.hasCurrentMarker {
		return
	}
	desc := GetTurnDescription(db.currentSign, db.currentStreet, db.currentHeading, "")
	db.steps = append(db.steps, datastructure.NewManeuverStep(len(db.steps), desc,
		datastructure.Distance(db.currentDistance), db.currentSign.Direction()))
	db.hasCurrentMarker = false
}

func (db *DirectionBuilder) buildFinalInstruction(path []Waypoint, destination datastructure.Coordinate) {
	db.flush()

	last := path[len(path)-1].Coordinate
	beforeLast := path[len(path)-2].Coordinate
	remaining := haversineMeter(last, destination)
	db.totalDistance += remaining

	side := ""
	if remaining > 1 {
		delta := computeDeltaBearing(segmentBearing(beforeLast, last), segmentBearing(last, destination))
		if delta > 0 {
			side = "right"
		} else if delta < 0 {
			side = "left"
		}
	}

	db.steps = append(db.steps, datastructure.NewManeuverStep(len(db.steps),
		GetTurnDescription(FINISH, "", 0, side), datastructure.Distance(remaining), datastructure.DirectionStraight))
}

func dropDuplicatePoints(path []Waypoint) []Waypoint {
	out := make([]Waypoint, 0, len(path))
	for _, wp := range path {
		if len(out) > 0 && haversineMeter(out[len(out)-1].Coordinate, wp.Coordinate) < 0.5 {
			continue
		}
		out = append(out, wp)
	}
	return out
}

func haversineMeter(a, b datastructure.Coordinate) float64 {
	return geo.CalculateHaversineDistance(a.Lat, a.Lon, b.Lat, b.Lon) * 1000
}

// PathPolyline encodes the waypoint shape plus the destination as a precision 5 polyline.
func PathPolyline(path []Waypoint, destination datastructure.Coordinate) string {
	coords := make([]geo.Coordinate, 0, len(path)+1)
	for _, wp := range path {
		coords = append(coords, wp.Coordinate.ToGeoCoordinate())
	}
	if n := len(coords); n == 0 || math.Abs(coords[n-1].Lat-destination.Lat)+math.Abs(coords[n-1].Lon-destination.Lon) > 0 {
		coords = append(coords, destination.ToGeoCoordinate())
	}
	return geo.PolylineFromCoords(coords)
}
