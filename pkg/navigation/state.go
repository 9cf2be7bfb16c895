package navigation

// State is the lifecycle position of a navigation session.
type State string

const (
	Idle                State = "idle"
	DestinationSelected State = "destination_selected"
	Navigating          State = "navigating"
)

var validTransitions = map[State][]State{
	Idle:                {DestinationSelected},
	DestinationSelected: {DestinationSelected, Idle, Navigating},
	Navigating:          {DestinationSelected},
}

func (s State) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s State) String() string {
	return string(s)
}
