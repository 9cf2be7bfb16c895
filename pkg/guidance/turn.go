package guidance

import (
	"math"

	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
	"github.com/lintang-b-s/Navisafe/pkg/geo"
)

type TurnSign int

const (
	UNKNOWN            TurnSign = -9999
	U_TURN_UNKNOWN     TurnSign = -999
	U_TURN_LEFT        TurnSign = -8
	KEEP_LEFT          TurnSign = -7
	TURN_SHARP_LEFT    TurnSign = -3
	TURN_LEFT          TurnSign = -2
	TURN_SLIGHT_LEFT   TurnSign = -1
	CONTINUE_ON_STREET TurnSign = 0
	TURN_SLIGHT_RIGHT  TurnSign = 1
	TURN_RIGHT         TurnSign = 2
	TURN_SHARP_RIGHT   TurnSign = 3
	FINISH             TurnSign = 4
	KEEP_RIGHT         TurnSign = 7
	U_TURN_RIGHT       TurnSign = 8
	START              TurnSign = 101
)

// Direction collapses a turn sign into the four classes the panel shows.
func (s TurnSign) Direction() datastructure.Direction {
	switch s {
	case U_TURN_UNKNOWN, U_TURN_LEFT, U_TURN_RIGHT:
		return datastructure.DirectionUTurn
	case KEEP_LEFT, TURN_SHARP_LEFT, TURN_LEFT, TURN_SLIGHT_LEFT:
		return datastructure.DirectionLeft
	case KEEP_RIGHT, TURN_SHARP_RIGHT, TURN_RIGHT, TURN_SLIGHT_RIGHT:
		return datastructure.DirectionRight
	default:
		return datastructure.DirectionStraight
	}
}

/*
alignBearing. handle the wrap around 0°/360°: with prevBearing 20° and bearing 350° the raw
delta is +330° (right) but the vehicle actually turned 30° left. shift one side by 360°.
*/
func alignBearing(prevBearing, bearing float64) (float64, float64) {
	dif := bearing - prevBearing
	if dif > 180 {
		prevBearing += 360
	} else if dif < -180 {
		bearing += 360
	}
	return prevBearing, bearing
}

// computeDeltaBearing. signed turn angle in degree, negative = left.
func computeDeltaBearing(prevBearing, bearing float64) float64 {
	prevBearing, bearing = alignBearing(prevBearing, bearing)
	return bearing - prevBearing
}

// GetTurnDirection classifies the turn between two consecutive segment bearings (degree).
func GetTurnDirection(prevBearing, bearing float64) TurnSign {
	delta := computeDeltaBearing(prevBearing, bearing)
	deltaDegree := math.Abs(delta)
	if deltaDegree < 12 {
		return CONTINUE_ON_STREET
	} else if deltaDegree < 40 {
		if delta < 0 {
			return TURN_SLIGHT_LEFT
		}
		return TURN_SLIGHT_RIGHT
	} else if deltaDegree < 105 {
		if delta < 0 {
			return TURN_LEFT
		}
		return TURN_RIGHT
	} else if deltaDegree < 165 {
		if delta < 0 {
			return TURN_SHARP_LEFT
		}
		return TURN_SHARP_RIGHT
	} else if delta < 0 {
		return U_TURN_LEFT
	}
	return U_TURN_RIGHT
}

// ClassifyTurn is GetTurnDirection reduced to the panel direction class.
func ClassifyTurn(prevBearing, bearing float64) datastructure.Direction {
	return GetTurnDirection(prevBearing, bearing).Direction()
}

func segmentBearing(a, b datastructure.Coordinate) float64 {
	return geo.BearingTo(a.Lat, a.Lon, b.Lat, b.Lon)
}
