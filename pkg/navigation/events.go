package navigation

type EventKind string

const (
	EventDestinationSelected EventKind = "destination_selected"
	EventDestinationCleared  EventKind = "destination_cleared"
	EventRouteRequested      EventKind = "route_requested"
	EventNavigationStarted   EventKind = "navigation_started"
	EventRouteFailed         EventKind = "route_failed"
	EventNavigationStopped   EventKind = "navigation_stopped"
	EventStepAdvanced        EventKind = "step_advanced"
	EventArrived             EventKind = "arrived"
	EventOptionsChanged      EventKind = "options_changed"
	EventOriginUpdated       EventKind = "origin_updated"
	EventLocationUnavailable EventKind = "location_unavailable"
	EventQueryChanged        EventKind = "query_changed"
	EventCandidatesUpdated   EventKind = "candidates_updated"
	EventSearchFailed        EventKind = "search_failed"
	EventSearchCleared       EventKind = "search_cleared"
	EventSessionClosed       EventKind = "session_closed"
)

// Event is pushed to subscribers after every applied change.
type Event struct {
	Kind     EventKind `json:"kind"`
	Snapshot Snapshot  `json:"snapshot"`
	Err      error     `json:"-"`
}

// subscribers never block the session: a full channel drops the event.
type subscribers struct {
	nextID int
	chans  map[int]chan Event
}

func (s *subscribers) add(buf int) (int, chan Event) {
	if s.chans == nil {
		s.chans = make(map[int]chan Event)
	}
	s.nextID++
	ch := make(chan Event, buf)
	s.chans[s.nextID] = ch
	return s.nextID, ch
}

func (s *subscribers) remove(id int) {
	if ch, ok := s.chans[id]; ok {
		delete(s.chans, id)
		close(ch)
	}
}

func (s *subscribers) publish(ev Event) {
	for _, ch := range s.chans {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *subscribers) closeAll() {
	for id := range s.chans {
		s.remove(id)
	}
}
