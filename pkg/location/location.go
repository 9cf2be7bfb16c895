package location

import (
	"context"
	"errors"
	"time"

	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
	"github.com/lintang-b-s/Navisafe/pkg/navigation"
	"go.uber.org/zap"
)

var ErrNoFix = errors.New("no location fix within timeout")

// Fixed reports a configured position after delay, then every interval (once when interval is 0).
type Fixed struct {
	place    datastructure.Place
	delay    time.Duration
	interval time.Duration
}

func NewFixed(place datastructure.Place, delay, interval time.Duration) *Fixed {
	return &Fixed{
		place:    place,
		delay:    delay,
		interval: interval,
	}
}

func (f *Fixed) Watch(ctx context.Context) (<-chan datastructure.Place, error) {
	if !f.place.Coordinate.Valid() {
		return nil, errors.New("fixed location has an invalid coordinate")
	}
	out := make(chan datastructure.Place, 1)
	go func() {
		defer close(out)

		timer := time.NewTimer(f.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if !send(ctx, out, f.place) || f.interval <= 0 {
			<-ctx.Done()
			return
		}

		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !send(ctx, out, f.place) {
					return
				}
			}
		}
	}()
	return out, nil
}

func send(ctx context.Context, out chan<- datastructure.Place, p datastructure.Place) bool {
	select {
	case out <- p:
		return true
	case <-ctx.Done():
		return false
	}
}

// Sink receives positions; navigation.Session implements it.
type Sink interface {
	UpdateOrigin(place datastructure.Place) error
	ReportLocationUnavailable(cause error)
}

var _ Sink = (*navigation.Session)(nil)

// Follow pumps positions from src into sink until ctx ends or the source closes.
// if no first fix arrives within locateTimeout, sink is told the location is unavailable
// and Follow keeps waiting for a late fix.
func Follow(ctx context.Context, src navigation.LocationSource, sink Sink, locateTimeout time.Duration,
	log *zap.Logger) error {
	positions, err := src.Watch(ctx)
	if err != nil {
		sink.ReportLocationUnavailable(err)
		return err
	}

	var timeout <-chan time.Time
	if locateTimeout > 0 {
		timer := time.NewTimer(locateTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	gotFix := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timeout:
			timeout = nil
			if !gotFix {
				log.Warn("no location fix yet", zap.Duration("timeout", locateTimeout))
				sink.ReportLocationUnavailable(ErrNoFix)
			}
		case p, ok := <-positions:
			if !ok {
				if !gotFix {
					sink.ReportLocationUnavailable(ErrNoFix)
				}
				return nil
			}
			gotFix = true
			if err := sink.UpdateOrigin(p); err != nil {
				if errors.Is(err, navigation.ErrSessionClosed) {
					return nil
				}
				return err
			}
		}
	}
}
