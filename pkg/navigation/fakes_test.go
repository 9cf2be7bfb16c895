package navigation

import (
	"context"
	"sync"
	"time"

	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
)

func testPlaces() []datastructure.Place {
	return []datastructure.Place{
		datastructure.NewPlace("1", "Taj Mahal", "Agra, Uttar Pradesh", 27.1751, 78.0421),
		datastructure.NewPlace("2", "India Gate", "New Delhi", 28.6129, 77.2295),
		datastructure.NewPlace("3", "Gateway of India", "Mumbai, Maharashtra", 18.9220, 72.8347),
		datastructure.NewPlace("4", "Hawa Mahal", "Jaipur, Rajasthan", 26.9239, 75.8267),
		datastructure.NewPlace("5", "Mysore Palace", "Mysore, Karnataka", 12.3051, 76.6551),
	}
}

func testOrigin() datastructure.Place {
	return datastructure.NewPlace("origin", "Your Location", "Current GPS Position", 28.6139, 77.2090)
}

func testRoute() *datastructure.Route {
	steps := []datastructure.ManeuverStep{
		datastructure.NewManeuverStep(0, "Head northeast on Main Road toward City Center", 500, datastructure.DirectionStraight),
		datastructure.NewManeuverStep(1, "Turn right at the traffic light onto Heritage Street", 1200, datastructure.DirectionRight),
		datastructure.NewManeuverStep(2, "Continue straight for 800m past the market", 800, datastructure.DirectionStraight),
		datastructure.NewManeuverStep(3, "Turn left onto Tourist Complex Road", 300, datastructure.DirectionLeft),
		datastructure.NewManeuverStep(4, "Destination will be on your right", 50, datastructure.DirectionStraight),
	}
	return datastructure.NewRoute(steps, datastructure.NewTripSummary(2500, 8*time.Minute), "")
}

type routeCall struct {
	origin, destination datastructure.Place
	opts                datastructure.RouteOptions
}

// fakeRouter answers every request with route/err. when gated, each call waits for a release.
type fakeRouter struct {
	mu    sync.Mutex
	route *datastructure.Route
	err   error
	calls []routeCall
	gate  chan struct{}
}

func (f *fakeRouter) Route(ctx context.Context, origin, destination datastructure.Place,
	opts datastructure.RouteOptions) (*datastructure.Route, error) {
	f.mu.Lock()
	f.calls = append(f.calls, routeCall{origin, destination, opts})
	route, err, gate := f.route, f.err, f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return route, err
}

func (f *fakeRouter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// gatedSearcher filters a fixed place list; each query blocks until released.
type gatedSearcher struct {
	places []datastructure.Place

	mu     sync.Mutex
	gates  map[string]chan struct{}
	failOn map[string]error
}

func newGatedSearcher(places []datastructure.Place) *gatedSearcher {
	return &gatedSearcher{
		places: places,
		gates:  make(map[string]chan struct{}),
		failOn: make(map[string]error),
	}
}

func (g *gatedSearcher) gate(query string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[query]
	if !ok {
		ch = make(chan struct{})
		g.gates[query] = ch
	}
	return ch
}

func (g *gatedSearcher) release(query string) {
	close(g.gate(query))
}

func (g *gatedSearcher) Search(ctx context.Context, query string) ([]datastructure.Place, error) {
	<-g.gate(query)

	g.mu.Lock()
	err := g.failOn[query]
	g.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := []datastructure.Place{}
	for _, p := range g.places {
		if p.Matches(query) {
			out = append(out, p)
		}
	}
	return out, nil
}

// instantSearcher answers without blocking.
type instantSearcher struct {
	places []datastructure.Place
}

func (s instantSearcher) Search(ctx context.Context, query string) ([]datastructure.Place, error) {
	out := []datastructure.Place{}
	for _, p := range s.places {
		if p.Matches(query) {
			out = append(out, p)
		}
	}
	return out, nil
}
