package navigation

import (
	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
	"github.com/lintang-b-s/Navisafe/pkg/util"
)

// StepCursor walks the maneuver list of a single route. index stays in [0, total).
type StepCursor struct {
	route *datastructure.Route
	index int
}

// NewStepCursor returns nil for a route without steps.
func NewStepCursor(route *datastructure.Route) *StepCursor {
	if route == nil || route.NumberOfSteps() == 0 {
		return nil
	}
	return &StepCursor{route: route}
}

func (c *StepCursor) Current() (datastructure.ManeuverStep, bool) {
	if c == nil {
		return datastructure.ManeuverStep{}, false
	}
	return c.route.Step(c.index), true
}

// Upcoming returns at most n steps after the current one.
func (c *StepCursor) Upcoming(n int) []datastructure.ManeuverStep {
	if c == nil {
		return []datastructure.ManeuverStep{}
	}
	remaining := c.route.NumberOfSteps() - c.index - 1
	n = util.Clamp(n, 0, remaining)
	return c.route.StepsBetween(c.index+1, c.index+1+n)
}

// Advance moves to the next step. at the last step it is a no-op and returns false.
func (c *StepCursor) Advance() bool {
	if c == nil || c.index+1 >= c.route.NumberOfSteps() {
		return false
	}
	c.index++
	return true
}

// Progress returns the current index and the number of steps.
func (c *StepCursor) Progress() (int, int) {
	if c == nil {
		return 0, 0
	}
	return c.index, c.route.NumberOfSteps()
}

func (c *StepCursor) AtEnd() bool {
	return c != nil && c.index == c.route.NumberOfSteps()-1
}
