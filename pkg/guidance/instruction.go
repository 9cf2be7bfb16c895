package guidance

import (
	"fmt"
	"strings"

	"github.com/lintang-b-s/Navisafe/pkg/geo"
)

func getDirectionDescription(sign TurnSign) string {
	switch sign {
	case U_TURN_UNKNOWN:
		return "Make U-turn"
	case U_TURN_RIGHT:
		return "Make U-turn right"
	case U_TURN_LEFT:
		return "Make U-turn left"
	case KEEP_LEFT:
		return "Keep left"
	case TURN_SHARP_LEFT:
		return "Turn sharp left"
	case TURN_LEFT:
		return "Turn left"
	case TURN_SLIGHT_LEFT:
		return "Turn slight left"
	case TURN_SLIGHT_RIGHT:
		return "Turn slight right"
	case TURN_RIGHT:
		return "Turn right"
	case TURN_SHARP_RIGHT:
		return "Turn sharp right"
	case KEEP_RIGHT:
		return "Keep right"
	default:
		return ""
	}
}

// GetTurnDescription builds the instruction text of a maneuver.
// heading (degree) is only used by START, side ("left", "right", "") only by FINISH.
func GetTurnDescription(sign TurnSign, streetName string, heading float64, side string) string {
	switch sign {
	case CONTINUE_ON_STREET:
		if isEmpty(streetName) {
			return "Continue"
		}
		return fmt.Sprintf("Continue onto %s", streetName)
	case START:
		compassDir := geo.BearingToCompass(heading)
		if isEmpty(streetName) {
			return fmt.Sprintf("Head %s", compassDir)
		}
		return fmt.Sprintf("Head %s on %s", compassDir, streetName)
	case FINISH:
		if side == "" {
			return "You have arrived at your destination"
		}
		return fmt.Sprintf("Destination will be on your %s", side)
	}

	dir := getDirectionDescription(sign)
	if dir == "" {
		return fmt.Sprintf("unknown %d", sign)
	}
	if isEmpty(streetName) {
		return dir
	}
	switch sign {
	case KEEP_LEFT, KEEP_RIGHT:
		return fmt.Sprintf("%s to continue on %s", dir, streetName)
	default:
		return fmt.Sprintf("%s onto %s", dir, streetName)
	}
}

func isEmpty(str string) bool {
	return strings.TrimSpace(str) == ""
}
