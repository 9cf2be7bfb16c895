package navigation

import (
	"context"
	"math"
	"sync"

	"github.com/lintang-b-s/Navisafe/pkg/concurrent"
	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
	"github.com/lintang-b-s/Navisafe/pkg/geo"
	"github.com/lintang-b-s/Navisafe/pkg/util"
	"go.uber.org/zap"
)

const (
	DefaultLookahead         = 3
	DefaultOffRouteThreshold = 75.0
	eventBuffer              = 16
)

type Config struct {
	// Lookahead is the number of upcoming steps put in a snapshot.
	Lookahead int
	// OffRouteThreshold in meters.
	OffRouteThreshold float64
}

func DefaultConfig() Config {
	return Config{
		Lookahead:         DefaultLookahead,
		OffRouteThreshold: DefaultOffRouteThreshold,
	}
}

// Session is the navigation state machine for one consumer.
// every command and every async result is applied under mu, so transitions are serialised.
type Session struct {
	id     string
	log    *zap.Logger
	routes RouteProvider
	sched  Scheduler
	cfg    Config

	mu          sync.Mutex
	closed      bool
	state       State
	origin      *datastructure.Place
	location    LocationStatus
	destination *datastructure.Place
	options     datastructure.RouteOptions

	route       *datastructure.Route
	routePath   []geo.Coordinate
	cursor      *StepCursor
	offRoute    float64
	routeSeq    concurrent.Sequencer
	routeCancel context.CancelFunc
	routeBusy   bool

	lastErr error
	search  *SearchCoordinator
	subs    subscribers
}

// NewSession builds a session in Idle. searcher may be nil when the consumer never searches.
// a nil sched runs each provider call on its own goroutine.
func NewSession(id string, routes RouteProvider, searcher PlaceSearcher, sched Scheduler,
	log *zap.Logger, cfg Config) *Session {
	if sched == nil {
		sched = goScheduler{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Lookahead < 0 {
		cfg.Lookahead = 0
	}
	if cfg.OffRouteThreshold <= 0 {
		cfg.OffRouteThreshold = DefaultOffRouteThreshold
	}

	s := &Session{
		id:       id,
		log:      log.With(zap.String("session_id", id)),
		routes:   routes,
		sched:    sched,
		cfg:      cfg,
		state:    Idle,
		location: LocationLocating,
		options:  datastructure.DefaultRouteOptions(),
		offRoute: math.NaN(),
	}
	s.search = newSearchCoordinator(s, searcher)
	return s
}

func (s *Session) ID() string {
	return s.id
}

// Search returns the coordinator that shares this session's lock and destination.
func (s *Session) Search() *SearchCoordinator {
	return s.search
}

// SelectDestination adopts place as the destination from any state.
// active navigation is stopped and any pending route request is superseded.
// the query becomes the place name and the candidate list is closed, so an in-flight lookup is dropped.
func (s *Session) SelectDestination(place datastructure.Place) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectDestinationLocked(place)
}

func (s *Session) selectDestinationLocked(place datastructure.Place) error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.state == Navigating {
		s.stopLocked()
	}
	s.supersedeRouteLocked()
	s.search.adoptLocked(place)

	s.destination = &place
	s.state = DestinationSelected
	s.lastErr = nil
	s.log.Info("destination selected", zap.String("destination", place.Name))
	s.emitLocked(EventDestinationSelected, nil)
	return nil
}

// ClearDestination drops the destination. it is a no-op in Idle and rejected while navigating.
func (s *Session) ClearDestination() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	switch s.state {
	case Idle:
		return nil
	case Navigating:
		return invalidTransition(s.state, Idle)
	}
	s.clearDestinationLocked()
	return nil
}

func (s *Session) clearDestinationLocked() {
	s.supersedeRouteLocked()
	s.destination = nil
	s.state = Idle
	s.lastErr = nil
	s.emitLocked(EventDestinationCleared, nil)
}

// StartNavigation requests a route for the current origin, destination and options.
// precondition failures are returned synchronously and leave the session untouched.
// the returned future resolves once the response is applied or discarded.
func (s *Session) StartNavigation(ctx context.Context) (*concurrent.Future, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.state == Navigating {
		s.mu.Unlock()
		return nil, invalidTransition(s.state, Navigating)
	}
	if s.destination == nil {
		s.mu.Unlock()
		return nil, util.WrapErrorf(nil, ErrNoDestination, "select a destination before starting navigation")
	}
	if s.origin == nil {
		err := util.WrapErrorf(nil, ErrLocationUnavailable, "cannot start navigation: origin is not known yet")
		s.lastErr = err
		s.mu.Unlock()
		return nil, err
	}

	s.supersedeRouteLocked()
	seq := s.routeSeq.Next()
	reqCtx, cancel := context.WithCancel(ctx)
	s.routeCancel = cancel
	s.routeBusy = true
	s.lastErr = nil

	origin, destination, opts := *s.origin, *s.destination, s.options
	fut := concurrent.NewFuture(seq)
	s.log.Info("requesting route",
		zap.Uint64("seq", seq),
		zap.String("destination", destination.Name),
		zap.Stringer("options", opts))
	s.emitLocked(EventRouteRequested, nil)
	s.mu.Unlock()

	err := s.sched.Schedule(func() {
		route, err := s.routes.Route(reqCtx, origin, destination, opts)
		cancel()
		s.applyRoute(fut, route, err)
	})
	if err != nil {
		cancel()
		err = util.WrapErrorf(err, ErrProviderUnreachable, "cannot schedule route request")
		s.applyRoute(fut, nil, err)
		return fut, nil
	}
	return fut, nil
}

func (s *Session) applyRoute(fut *concurrent.Future, route *datastructure.Route, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.routeSeq.IsLatest(fut.Seq()) {
		s.log.Debug("discarding stale route response", zap.Uint64("seq", fut.Seq()))
		fut.Resolve(ErrSuperseded)
		return
	}
	s.routeBusy = false
	s.routeCancel = nil

	if err == nil && (route == nil || route.NumberOfSteps() == 0) {
		err = util.WrapErrorf(nil, ErrNoRouteFound, "route provider returned no maneuvers")
	}
	if err != nil {
		kind := routeErrorKind(err)
		if util.ErrorCode(err) != kind {
			err = util.WrapErrorf(err, kind, "route request failed: %v", err)
		}
		s.lastErr = err
		s.log.Warn("route request failed", zap.Uint64("seq", fut.Seq()), zap.Error(err))
		s.emitLocked(EventRouteFailed, err)
		fut.Resolve(err)
		return
	}

	if !s.state.CanTransitionTo(Navigating) || s.destination == nil {
		fut.Resolve(ErrSuperseded)
		return
	}

	s.route = route
	s.cursor = NewStepCursor(route)
	s.routePath = nil
	if encoded := route.GetPolyline(); encoded != "" {
		path, perr := geo.CoordsFromPolyline(encoded, 5)
		if perr != nil {
			s.log.Warn("route geometry unreadable, off-route tracking disabled", zap.Error(perr))
		} else {
			s.routePath = path
		}
	}
	s.state = Navigating
	s.lastErr = nil
	s.updateOffRouteLocked()

	s.log.Info("navigation started",
		zap.Uint64("seq", fut.Seq()),
		zap.Int("steps", route.NumberOfSteps()),
		zap.Stringer("distance", route.GetSummary().TotalDistance))
	s.emitLocked(EventNavigationStarted, nil)
	fut.Resolve(nil)
}

// StopNavigation drops the route and cursor and returns to DestinationSelected.
func (s *Session) StopNavigation() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.state != Navigating {
		return invalidTransition(s.state, DestinationSelected)
	}
	s.stopLocked()
	s.emitLocked(EventNavigationStopped, nil)
	return nil
}

func (s *Session) stopLocked() {
	s.cursor = nil
	s.route = nil
	s.routePath = nil
	s.offRoute = math.NaN()
	s.state = DestinationSelected
	s.log.Info("navigation stopped")
}

// supersedeRouteLocked invalidates the in-flight route request, if any.
func (s *Session) supersedeRouteLocked() {
	s.routeSeq.Invalidate()
	if s.routeCancel != nil {
		s.routeCancel()
		s.routeCancel = nil
	}
	s.routeBusy = false
}

// Advance moves the cursor one step. it returns false when already at the last step.
func (s *Session) Advance() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrSessionClosed
	}
	if s.state != Navigating {
		return false, util.WrapErrorf(nil, ErrInvalidTransition, "cannot advance while %s", s.state)
	}
	moved := s.cursor.Advance()
	if moved {
		if s.cursor.AtEnd() {
			s.emitLocked(EventArrived, nil)
		} else {
			s.emitLocked(EventStepAdvanced, nil)
		}
	}
	return moved, nil
}

// SetRouteOptions stores opts for the next route request. a fetched route is never touched.
func (s *Session) SetRouteOptions(opts datastructure.RouteOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	s.options = opts
	s.emitLocked(EventOptionsChanged, nil)
	return nil
}

// UpdateOrigin records a new position. it never re-routes and never moves the cursor.
func (s *Session) UpdateOrigin(place datastructure.Place) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	s.origin = &place
	s.location = LocationAvailable
	if s.lastErr != nil && util.ErrorCode(s.lastErr) == ErrLocationUnavailable {
		s.lastErr = nil
	}
	s.updateOffRouteLocked()
	s.emitLocked(EventOriginUpdated, nil)
	return nil
}

// ReportLocationUnavailable records that no position could be obtained.
// a previously known origin is kept.
func (s *Session) ReportLocationUnavailable(cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	err := util.WrapErrorf(cause, ErrLocationUnavailable, "location unavailable")
	if s.origin == nil {
		s.location = LocationUnavailable
	}
	s.lastErr = err
	s.log.Warn("location unavailable", zap.Error(cause))
	s.emitLocked(EventLocationUnavailable, err)
}

func (s *Session) updateOffRouteLocked() {
	s.offRoute = math.NaN()
	if s.state != Navigating || s.origin == nil || len(s.routePath) == 0 {
		return
	}
	s.offRoute = geo.DistanceToPath(s.routePath, s.origin.Coordinate.ToGeoCoordinate())
}

// Subscribe returns a channel of events and a func that stops delivery.
func (s *Session) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ch := s.subs.add(eventBuffer)
	if s.closed {
		s.subs.remove(id)
		return ch, func() {}
	}
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subs.remove(id)
	}
}

// Close tears the session down. results of in-flight requests are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.supersedeRouteLocked()
	s.search.supersedeLocked()
	s.emitLocked(EventSessionClosed, nil)
	s.closed = true
	s.subs.closeAll()
	s.log.Info("session closed")
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:       s.id,
		State:    s.state,
		Location: s.location,
		Options:  s.options,
		Upcoming: []datastructure.ManeuverStep{},
		Err:      s.lastErr,
	}
	if s.origin != nil {
		origin := *s.origin
		snap.Origin = &origin
	}
	if s.destination != nil {
		destination := *s.destination
		snap.Destination = &destination
	}
	if s.cursor != nil {
		step, _ := s.cursor.Current()
		snap.CurrentStep = &step
		snap.Upcoming = s.cursor.Upcoming(s.cfg.Lookahead)
		snap.StepIndex, snap.TotalSteps = s.cursor.Progress()
		snap.Arrived = s.cursor.AtEnd()
	}
	if s.route != nil {
		snap.Summary = newTripSummaryView(s.route.GetSummary())
	}
	if !math.IsNaN(s.offRoute) {
		d := util.RoundFloat(s.offRoute, 1)
		snap.OffRouteMeters = &d
		snap.OffRoute = s.offRoute > s.cfg.OffRouteThreshold
	}
	snap.RoutePending = s.routeBusy
	s.search.fillSnapshotLocked(&snap)
	if snap.Err != nil {
		snap.LastError = snap.Err.Error()
	}
	return snap
}

func (s *Session) emitLocked(kind EventKind, err error) {
	s.subs.publish(Event{
		Kind:     kind,
		Snapshot: s.snapshotLocked(),
		Err:      err,
	})
}
