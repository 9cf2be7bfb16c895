package navigation

import (
	"errors"

	"github.com/lintang-b-s/Navisafe/pkg/util"
)

var (
	ErrLocationUnavailable = errors.New("current location is unavailable")
	ErrNoRouteFound        = errors.New("no route found for the given options")
	ErrProviderUnreachable = errors.New("route provider unreachable")
	ErrSearchFailed        = errors.New("place search failed")
	ErrInvalidTransition   = errors.New("invalid navigation state transition")
	ErrNoDestination       = errors.New("no destination selected")
	ErrSuperseded          = errors.New("request superseded by a newer one")
	ErrSessionClosed       = errors.New("navigation session closed")
)

// routeErrorKind maps a provider failure onto ErrNoRouteFound or ErrProviderUnreachable.
func routeErrorKind(err error) error {
	if errors.Is(err, ErrNoRouteFound) {
		return ErrNoRouteFound
	}
	return ErrProviderUnreachable
}

func invalidTransition(from, to State) error {
	return util.WrapErrorf(nil, ErrInvalidTransition, "cannot move from %s to %s", from, to)
}
