package navigation

import (
	"context"

	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
)

// LocationSource streams the device position. the channel is closed when ctx ends.
type LocationSource interface {
	Watch(ctx context.Context) (<-chan datastructure.Place, error)
}

// PlaceSearcher returns ranked candidates for a free-text query.
type PlaceSearcher interface {
	Search(ctx context.Context, query string) ([]datastructure.Place, error)
}

// RouteProvider computes the maneuver list between two places.
// implementations return an error wrapping ErrNoRouteFound when no route satisfies opts.
type RouteProvider interface {
	Route(ctx context.Context, origin, destination datastructure.Place,
		opts datastructure.RouteOptions) (*datastructure.Route, error)
}

// Scheduler runs provider calls off the caller goroutine.
type Scheduler interface {
	Schedule(task func()) error
}

type goScheduler struct{}

func (goScheduler) Schedule(task func()) error {
	go task()
	return nil
}
