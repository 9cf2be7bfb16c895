package navigation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lintang-b-s/Navisafe/pkg/concurrent"
	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
	"github.com/lintang-b-s/Navisafe/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, router RouteProvider, searcher PlaceSearcher) *Session {
	t.Helper()
	s := NewSession("test", router, searcher, nil, nil, DefaultConfig())
	t.Cleanup(s.Close)
	return s
}

func waitFuture(t *testing.T, f *concurrent.Future) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := f.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "request never resolved")
	return err
}

func startNavigating(t *testing.T, s *Session) {
	t.Helper()
	fut, err := s.StartNavigation(context.Background())
	require.NoError(t, err)
	require.NoError(t, waitFuture(t, fut))
	require.Equal(t, Navigating, s.Snapshot().State)
}

func TestSelectDestinationLastWins(t *testing.T) {
	places := testPlaces()
	s := newTestSession(t, &fakeRouter{route: testRoute()}, nil)
	require.NoError(t, s.UpdateOrigin(testOrigin()))

	require.NoError(t, s.SelectDestination(places[0]))
	startNavigating(t, s)

	require.NoError(t, s.SelectDestination(places[1]))
	require.NoError(t, s.SelectDestination(places[3]))

	snap := s.Snapshot()
	assert.Equal(t, DestinationSelected, snap.State)
	require.NotNil(t, snap.Destination)
	assert.Equal(t, "Hawa Mahal", snap.Destination.Name)
	assert.Nil(t, snap.CurrentStep)
	assert.Nil(t, snap.Summary)
	assert.Equal(t, 0, snap.TotalSteps)
	assert.Empty(t, snap.Upcoming)
}

func TestStartNavigationRequiresOrigin(t *testing.T) {
	router := &fakeRouter{route: testRoute()}
	s := newTestSession(t, router, nil)
	require.NoError(t, s.SelectDestination(testPlaces()[0]))

	for i := 0; i < 3; i++ {
		fut, err := s.StartNavigation(context.Background())
		assert.Nil(t, fut)
		assert.ErrorIs(t, err, ErrLocationUnavailable)
		assert.Equal(t, DestinationSelected, s.Snapshot().State)
	}
	assert.Equal(t, 0, router.callCount())

	require.NoError(t, s.UpdateOrigin(testOrigin()))
	startNavigating(t, s)
	assert.Empty(t, s.Snapshot().LastError)
}

func TestStartNavigationPreconditions(t *testing.T) {
	s := newTestSession(t, &fakeRouter{route: testRoute()}, nil)
	require.NoError(t, s.UpdateOrigin(testOrigin()))

	_, err := s.StartNavigation(context.Background())
	assert.ErrorIs(t, err, ErrNoDestination)

	require.NoError(t, s.SelectDestination(testPlaces()[0]))
	startNavigating(t, s)

	_, err = s.StartNavigation(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStartNavigationPassesRequest(t *testing.T) {
	router := &fakeRouter{route: testRoute()}
	s := newTestSession(t, router, nil)
	opts := datastructure.RouteOptions{AvoidTolls: true, AvoidHighways: true}

	require.NoError(t, s.UpdateOrigin(testOrigin()))
	require.NoError(t, s.SelectDestination(testPlaces()[0]))
	require.NoError(t, s.SetRouteOptions(opts))
	startNavigating(t, s)

	require.Equal(t, 1, router.callCount())
	call := router.calls[0]
	assert.Equal(t, "Your Location", call.origin.Name)
	assert.Equal(t, "Taj Mahal", call.destination.Name)
	assert.Equal(t, opts, call.opts)

	snap := s.Snapshot()
	require.NotNil(t, snap.CurrentStep)
	assert.Equal(t, 0, snap.StepIndex)
	assert.Equal(t, 5, snap.TotalSteps)
	assert.Len(t, snap.Upcoming, DefaultLookahead)
	require.NotNil(t, snap.Summary)
	assert.Equal(t, "2.5 km", snap.Summary.Distance)
	assert.Equal(t, "8 min", snap.Summary.Duration)
}

func TestAdvanceThroughRoute(t *testing.T) {
	s := newTestSession(t, &fakeRouter{route: testRoute()}, nil)
	require.NoError(t, s.UpdateOrigin(testOrigin()))
	require.NoError(t, s.SelectDestination(testPlaces()[0]))
	startNavigating(t, s)

	for i := 0; i < 4; i++ {
		moved, err := s.Advance()
		require.NoError(t, err)
		assert.True(t, moved)
	}
	snap := s.Snapshot()
	assert.Equal(t, 4, snap.StepIndex)
	assert.Equal(t, 5, snap.TotalSteps)
	assert.True(t, snap.Arrived)
	assert.Empty(t, snap.Upcoming)

	moved, err := s.Advance()
	require.NoError(t, err)
	assert.False(t, moved)
	snap = s.Snapshot()
	assert.Equal(t, 4, snap.StepIndex)
	assert.Equal(t, 5, snap.TotalSteps)
	assert.Equal(t, Navigating, snap.State)
}

func TestStopThenStartResetsCursor(t *testing.T) {
	s := newTestSession(t, &fakeRouter{route: testRoute()}, nil)
	require.NoError(t, s.UpdateOrigin(testOrigin()))
	require.NoError(t, s.SelectDestination(testPlaces()[0]))
	startNavigating(t, s)

	_, err := s.Advance()
	require.NoError(t, err)
	_, err = s.Advance()
	require.NoError(t, err)
	assert.Equal(t, 2, s.Snapshot().StepIndex)

	require.NoError(t, s.StopNavigation())
	snap := s.Snapshot()
	assert.Equal(t, DestinationSelected, snap.State)
	assert.Nil(t, snap.CurrentStep)
	assert.Nil(t, snap.Summary)

	startNavigating(t, s)
	assert.Equal(t, 0, s.Snapshot().StepIndex)
}

func TestInvalidTransitions(t *testing.T) {
	s := newTestSession(t, &fakeRouter{route: testRoute()}, nil)

	assert.ErrorIs(t, s.StopNavigation(), ErrInvalidTransition)
	_, err := s.Advance()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, s.ClearDestination())
	assert.Equal(t, Idle, s.Snapshot().State)

	require.NoError(t, s.UpdateOrigin(testOrigin()))
	require.NoError(t, s.SelectDestination(testPlaces()[0]))
	startNavigating(t, s)
	assert.ErrorIs(t, s.ClearDestination(), ErrInvalidTransition)
	assert.Equal(t, Navigating, s.Snapshot().State)

	require.NoError(t, s.StopNavigation())
	require.NoError(t, s.ClearDestination())
	snap := s.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Nil(t, snap.Destination)
}

func TestRouteFailures(t *testing.T) {
	testCases := []struct {
		name    string
		route   *datastructure.Route
		err     error
		wantErr error
	}{
		{
			name:    "no route",
			err:     ErrNoRouteFound,
			wantErr: ErrNoRouteFound,
		},
		{
			name:    "empty maneuver list",
			route:   datastructure.NewRoute(nil, datastructure.TripSummary{}, ""),
			wantErr: ErrNoRouteFound,
		},
		{
			name:    "transport failure",
			err:     errors.New("dial tcp: connection refused"),
			wantErr: ErrProviderUnreachable,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestSession(t, &fakeRouter{route: tc.route, err: tc.err}, nil)
			require.NoError(t, s.UpdateOrigin(testOrigin()))
			require.NoError(t, s.SelectDestination(testPlaces()[0]))

			fut, err := s.StartNavigation(context.Background())
			require.NoError(t, err)
			assert.ErrorIs(t, waitFuture(t, fut), tc.wantErr)

			snap := s.Snapshot()
			assert.Equal(t, DestinationSelected, snap.State)
			assert.Nil(t, snap.CurrentStep)
			assert.False(t, snap.RoutePending)
			assert.ErrorIs(t, snap.Err, tc.wantErr)
			assert.NotEmpty(t, snap.LastError)
		})
	}
}

func TestProviderUnreachableIsRetryable(t *testing.T) {
	router := &fakeRouter{err: errors.New("timeout")}
	s := newTestSession(t, router, nil)
	require.NoError(t, s.UpdateOrigin(testOrigin()))
	require.NoError(t, s.SelectDestination(testPlaces()[0]))

	fut, err := s.StartNavigation(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, waitFuture(t, fut), ErrProviderUnreachable)

	router.mu.Lock()
	router.err, router.route = nil, testRoute()
	router.mu.Unlock()
	startNavigating(t, s)
	assert.Nil(t, s.Snapshot().Err)
}

func TestSelectDestinationSupersedesPendingRoute(t *testing.T) {
	router := &fakeRouter{route: testRoute(), gate: make(chan struct{})}
	s := newTestSession(t, router, nil)
	require.NoError(t, s.UpdateOrigin(testOrigin()))
	require.NoError(t, s.SelectDestination(testPlaces()[0]))

	fut, err := s.StartNavigation(context.Background())
	require.NoError(t, err)
	assert.True(t, s.Snapshot().RoutePending)

	require.NoError(t, s.SelectDestination(testPlaces()[1]))
	close(router.gate)

	assert.ErrorIs(t, waitFuture(t, fut), ErrSuperseded)
	snap := s.Snapshot()
	assert.Equal(t, DestinationSelected, snap.State)
	assert.Equal(t, "India Gate", snap.Destination.Name)
	assert.False(t, snap.RoutePending)
	assert.Nil(t, snap.CurrentStep)
}

func TestSelectDestinationSettlesSearch(t *testing.T) {
	searcher := newGatedSearcher(testPlaces())
	s := newTestSession(t, &fakeRouter{}, searcher)
	search := s.Search()

	searcher.release("Mahal")
	done, err := search.SetQuery(context.Background(), "Mahal")
	require.NoError(t, err)
	require.NoError(t, waitFuture(t, done))
	require.Len(t, s.Snapshot().Candidates, 2)
	require.True(t, s.Snapshot().CandidatesVisible)

	late, err := search.SetQuery(context.Background(), "India")
	require.NoError(t, err)
	assert.True(t, s.Snapshot().SearchPending)

	require.NoError(t, s.SelectDestination(testPlaces()[0]))
	searcher.release("India")
	assert.ErrorIs(t, waitFuture(t, late), ErrSuperseded)

	snap := s.Snapshot()
	assert.Equal(t, DestinationSelected, snap.State)
	require.NotNil(t, snap.Destination)
	assert.Equal(t, "Taj Mahal", snap.Destination.Name)
	assert.Equal(t, "Taj Mahal", snap.Query)
	assert.Empty(t, snap.Candidates)
	assert.False(t, snap.CandidatesVisible)
	assert.False(t, snap.SearchPending)
	assert.NoError(t, snap.Err)
}

func TestSecondStartSupersedesFirst(t *testing.T) {
	router := &fakeRouter{route: testRoute(), gate: make(chan struct{})}
	s := newTestSession(t, router, nil)
	require.NoError(t, s.UpdateOrigin(testOrigin()))
	require.NoError(t, s.SelectDestination(testPlaces()[0]))

	first, err := s.StartNavigation(context.Background())
	require.NoError(t, err)
	second, err := s.StartNavigation(context.Background())
	require.NoError(t, err)

	close(router.gate)
	assert.ErrorIs(t, waitFuture(t, first), ErrSuperseded)
	assert.NoError(t, waitFuture(t, second))
	assert.Equal(t, Navigating, s.Snapshot().State)
}

func TestCloseIgnoresLateRoute(t *testing.T) {
	router := &fakeRouter{route: testRoute(), gate: make(chan struct{})}
	s := NewSession("closing", router, nil, nil, nil, DefaultConfig())
	require.NoError(t, s.UpdateOrigin(testOrigin()))
	require.NoError(t, s.SelectDestination(testPlaces()[0]))

	events, _ := s.Subscribe()
	fut, err := s.StartNavigation(context.Background())
	require.NoError(t, err)

	s.Close()
	close(router.gate)
	assert.ErrorIs(t, waitFuture(t, fut), ErrSuperseded)
	assert.Equal(t, DestinationSelected, s.Snapshot().State)
	assert.ErrorIs(t, s.SelectDestination(testPlaces()[1]), ErrSessionClosed)

	var last Event
	for ev := range events {
		last = ev
	}
	assert.Equal(t, EventSessionClosed, last.Kind)
}

func TestOptionsDoNotAlterFetchedRoute(t *testing.T) {
	router := &fakeRouter{route: testRoute()}
	s := newTestSession(t, router, nil)
	require.NoError(t, s.UpdateOrigin(testOrigin()))
	require.NoError(t, s.SelectDestination(testPlaces()[0]))
	startNavigating(t, s)
	_, err := s.Advance()
	require.NoError(t, err)

	before := s.Snapshot()
	require.NoError(t, s.SetRouteOptions(datastructure.RouteOptions{AvoidTolls: true}))
	after := s.Snapshot()

	assert.Equal(t, 1, router.callCount())
	assert.Equal(t, before.CurrentStep, after.CurrentStep)
	assert.Equal(t, before.StepIndex, after.StepIndex)
	assert.Equal(t, before.Summary, after.Summary)
	assert.True(t, after.Options.AvoidTolls)
}

func TestUpdateOriginKeepsCursor(t *testing.T) {
	s := newTestSession(t, &fakeRouter{route: testRoute()}, nil)
	require.NoError(t, s.UpdateOrigin(testOrigin()))
	require.NoError(t, s.SelectDestination(testPlaces()[0]))
	startNavigating(t, s)
	_, err := s.Advance()
	require.NoError(t, err)

	require.NoError(t, s.UpdateOrigin(datastructure.NewPlace("origin", "Your Location", "", 28.62, 77.21)))
	snap := s.Snapshot()
	assert.Equal(t, 1, snap.StepIndex)
	assert.Equal(t, 28.62, snap.Origin.GetLat())
}

func TestOffRouteDistance(t *testing.T) {
	path := []geo.Coordinate{
		geo.NewCoordinate(28.6139, 77.2090),
		geo.NewCoordinate(28.6239, 77.2090),
	}
	steps := testRoute().Steps()
	route := datastructure.NewRoute(steps, datastructure.NewTripSummary(1100, 3*time.Minute),
		geo.PolylineFromCoords(path))

	router := &fakeRouter{route: route}
	s := newTestSession(t, router, nil)
	require.NoError(t, s.UpdateOrigin(testOrigin()))
	require.NoError(t, s.SelectDestination(testPlaces()[1]))
	startNavigating(t, s)

	snap := s.Snapshot()
	require.NotNil(t, snap.OffRouteMeters)
	assert.InDelta(t, 0, *snap.OffRouteMeters, 1)
	assert.False(t, snap.OffRoute)

	// ~0.002 deg of longitude east of the path, about 195 m
	require.NoError(t, s.UpdateOrigin(datastructure.NewPlace("origin", "Your Location", "", 28.6189, 77.2110)))
	snap = s.Snapshot()
	require.NotNil(t, snap.OffRouteMeters)
	assert.InDelta(t, 195, *snap.OffRouteMeters, 10)
	assert.True(t, snap.OffRoute)
	assert.Equal(t, Navigating, snap.State)
	assert.Equal(t, 1, router.callCount())

	require.NoError(t, s.StopNavigation())
	assert.Nil(t, s.Snapshot().OffRouteMeters)
}

func TestReportLocationUnavailable(t *testing.T) {
	s := newTestSession(t, &fakeRouter{route: testRoute()}, nil)
	assert.Equal(t, LocationLocating, s.Snapshot().Location)

	s.ReportLocationUnavailable(errors.New("no fix"))
	snap := s.Snapshot()
	assert.Equal(t, LocationUnavailable, snap.Location)
	assert.ErrorIs(t, snap.Err, ErrLocationUnavailable)
	assert.Nil(t, snap.Origin)

	require.NoError(t, s.UpdateOrigin(testOrigin()))
	snap = s.Snapshot()
	assert.Equal(t, LocationAvailable, snap.Location)
	assert.Nil(t, snap.Err)
}

func TestSubscribeReceivesTransitions(t *testing.T) {
	s := newTestSession(t, &fakeRouter{route: testRoute()}, nil)
	events, unsubscribe := s.Subscribe()
	defer unsubscribe()

	require.NoError(t, s.UpdateOrigin(testOrigin()))
	require.NoError(t, s.SelectDestination(testPlaces()[0]))
	startNavigating(t, s)

	want := []EventKind{EventOriginUpdated, EventDestinationSelected, EventRouteRequested, EventNavigationStarted}
	for _, kind := range want {
		select {
		case ev := <-events:
			assert.Equal(t, kind, ev.Kind)
		case <-time.After(time.Second):
			t.Fatalf("missing event %s", kind)
		}
	}
}

func TestWorkerPoolScheduler(t *testing.T) {
	pool := concurrent.NewWorkerPool(2, 4)
	defer pool.Close()

	s := NewSession("pooled", &fakeRouter{route: testRoute()}, nil, pool, nil, DefaultConfig())
	defer s.Close()
	require.NoError(t, s.UpdateOrigin(testOrigin()))
	require.NoError(t, s.SelectDestination(testPlaces()[0]))
	startNavigating(t, s)
}
