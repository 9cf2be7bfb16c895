package static

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
	"github.com/lintang-b-s/Navisafe/pkg/guidance"
	"github.com/lintang-b-s/Navisafe/pkg/navigation"
	"github.com/lintang-b-s/Navisafe/pkg/util"
	"go.uber.org/zap"
)

const (
	anyDestination = "*"
	// km/h, used when a fixture has no eta.
	defaultSpeed = 30.0
)

type routesFile struct {
	Routes []routeRecord `toml:"routes"`
}

type routeRecord struct {
	Name         string           `toml:"name"`
	Destination  string           `toml:"destination"`
	UsesTolls    bool             `toml:"uses_tolls"`
	UsesHighways bool             `toml:"uses_highways"`
	Distance     string           `toml:"distance"`
	ETA          string           `toml:"eta"`
	Polyline     string           `toml:"polyline"`
	Steps        []stepRecord     `toml:"steps"`
	Waypoints    []waypointRecord `toml:"waypoints"`
}

type stepRecord struct {
	Instruction string `toml:"instruction"`
	Distance    string `toml:"distance"`
	Direction   string `toml:"direction"`
}

type waypointRecord struct {
	Lat    float64 `toml:"lat"`
	Lon    float64 `toml:"lon"`
	Street string  `toml:"street"`
}

// fixtureRoute is a decoded route plus the constraints used for option matching.
type fixtureRoute struct {
	name         string
	destination  string
	usesTolls    bool
	usesHighways bool
	route        *datastructure.Route
}

// RouteProvider answers route requests from pre-recorded fixtures.
type RouteProvider struct {
	routes  []fixtureRoute
	latency time.Duration
	log     *zap.Logger
}

// LoadRoutesTOML decodes a [[routes]] fixture file. routes given as waypoints get their
// steps generated by the guidance direction builder.
func LoadRoutesTOML(path string, places []datastructure.Place, log *zap.Logger) (*RouteProvider, error) {
	var f routesFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decode routes file %s: %w", path, err)
	}

	byID := make(map[string]datastructure.Place, len(places))
	for _, p := range places {
		byID[p.ID] = p
	}

	rp := &RouteProvider{
		routes: make([]fixtureRoute, 0, len(f.Routes)),
		log:    log,
	}
	for i, rec := range f.Routes {
		fr, err := rec.build(byID)
		if err != nil {
			return nil, fmt.Errorf("routes file %s: route %d: %w", path, i, err)
		}
		rp.routes = append(rp.routes, fr)
	}
	log.Info("loaded route fixtures", zap.String("file", path), zap.Int("routes", len(rp.routes)))
	return rp, nil
}

// NewRouteProvider returns a provider that answers every destination with route.
func NewRouteProvider(route *datastructure.Route, log *zap.Logger) *RouteProvider {
	return &RouteProvider{
		routes: []fixtureRoute{{name: "default", destination: anyDestination, route: route}},
		log:    log,
	}
}

// WithLatency delays every answer by d, honouring ctx.
func (rp *RouteProvider) WithLatency(d time.Duration) *RouteProvider {
	rp.latency = d
	return rp
}

func (rec routeRecord) build(places map[string]datastructure.Place) (fixtureRoute, error) {
	var (
		steps    []datastructure.ManeuverStep
		total    datastructure.Distance
		polyline = rec.Polyline
	)

	switch {
	case len(rec.Steps) > 0:
		steps = make([]datastructure.ManeuverStep, 0, len(rec.Steps))
		for i, s := range rec.Steps {
			dist, err := datastructure.ParseDistance(s.Distance)
			if err != nil {
				return fixtureRoute{}, fmt.Errorf("step %d: %w", i, err)
			}
			dir, err := datastructure.ParseDirection(s.Direction)
			if err != nil {
				return fixtureRoute{}, fmt.Errorf("step %d: %w", i, err)
			}
			steps = append(steps, datastructure.NewManeuverStep(i, s.Instruction, dist, dir))
			total += dist
		}
	case len(rec.Waypoints) > 0:
		dest, ok := places[rec.Destination]
		if !ok {
			return fixtureRoute{}, fmt.Errorf("waypoint route needs a known destination, got %q", rec.Destination)
		}
		path := make([]guidance.Waypoint, 0, len(rec.Waypoints))
		for _, wp := range rec.Waypoints {
			path = append(path, guidance.NewWaypoint(wp.Lat, wp.Lon, wp.Street))
		}
		steps, total = guidance.NewDirectionBuilder().GetDrivingDirections(path, dest.Coordinate)
		if polyline == "" {
			polyline = guidance.PathPolyline(path, dest.Coordinate)
		}
	}

	if rec.Distance != "" {
		d, err := datastructure.ParseDistance(rec.Distance)
		if err != nil {
			return fixtureRoute{}, err
		}
		total = d
	}

	eta := time.Duration(total.Kilometers() / defaultSpeed * float64(time.Hour))
	if rec.ETA != "" {
		d, err := time.ParseDuration(rec.ETA)
		if err != nil {
			return fixtureRoute{}, fmt.Errorf("invalid eta %q: %w", rec.ETA, err)
		}
		eta = d
	}
	eta = eta.Round(time.Second)

	destination := rec.Destination
	if destination == "" {
		destination = anyDestination
	}
	return fixtureRoute{
		name:         rec.Name,
		destination:  destination,
		usesTolls:    rec.UsesTolls,
		usesHighways: rec.UsesHighways,
		route:        datastructure.NewRoute(steps, datastructure.NewTripSummary(total, eta), polyline),
	}, nil
}

// Route picks the fixture for destination that satisfies opts: avoid flags exclude routes,
// then the fastest (or shortest) remaining one wins. destination specific fixtures beat "*".
func (rp *RouteProvider) Route(ctx context.Context, origin, destination datastructure.Place,
	opts datastructure.RouteOptions) (*datastructure.Route, error) {
	if rp.latency > 0 {
		timer := time.NewTimer(rp.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, util.WrapErrorf(ctx.Err(), navigation.ErrProviderUnreachable, "route request cancelled")
		case <-timer.C:
		}
	}

	best := rp.pick(destination.ID, opts)
	if best == nil {
		best = rp.pick(anyDestination, opts)
	}
	if best == nil {
		return nil, util.WrapErrorf(nil, navigation.ErrNoRouteFound,
			"no fixture route to %s with %s", destination.Name, opts)
	}
	rp.log.Debug("serving fixture route",
		zap.String("fixture", best.name),
		zap.String("destination", destination.Name),
		zap.Int("steps", best.route.NumberOfSteps()))
	return best.route, nil
}

func (rp *RouteProvider) pick(destination string, opts datastructure.RouteOptions) *fixtureRoute {
	var (
		best      *fixtureRoute
		bestScore = math.Inf(1)
	)
	for i := range rp.routes {
		fr := &rp.routes[i]
		if fr.destination != destination {
			continue
		}
		if opts.AvoidTolls && fr.usesTolls {
			continue
		}
		if opts.AvoidHighways && fr.usesHighways {
			continue
		}
		summary := fr.route.GetSummary()
		score := summary.TotalDistance.Meters()
		if opts.FastestRoute {
			score = summary.ETA.Seconds()
		}
		if score < bestScore {
			best, bestScore = fr, score
		}
	}
	return best
}
