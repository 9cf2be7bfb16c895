package location

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
	"github.com/lintang-b-s/Navisafe/pkg/navigation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSink struct {
	mu          sync.Mutex
	origins     []datastructure.Place
	unavailable []error
}

func (r *recordingSink) UpdateOrigin(p datastructure.Place) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.origins = append(r.origins, p)
	return nil
}

func (r *recordingSink) ReportLocationUnavailable(cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unavailable = append(r.unavailable, cause)
}

func (r *recordingSink) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.origins), len(r.unavailable)
}

type chanSource struct {
	ch  chan datastructure.Place
	err error
}

func (c chanSource) Watch(ctx context.Context) (<-chan datastructure.Place, error) {
	return c.ch, c.err
}

var delhi = datastructure.NewPlace("origin", "Your Location", "Current GPS Position", 28.6139, 77.2090)

func TestFixedWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := NewFixed(delhi, 5*time.Millisecond, 5*time.Millisecond).Watch(ctx)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		select {
		case p := <-ch:
			assert.Equal(t, delhi, p)
		case <-time.After(time.Second):
			t.Fatal("no fix")
		}
	}
	cancel()
	for range ch {
	}
}

func TestFixedInvalidCoordinate(t *testing.T) {
	_, err := NewFixed(datastructure.NewPlace("x", "x", "", 100, 0), 0, 0).Watch(context.Background())
	assert.Error(t, err)
}

func TestFollowUpdatesSession(t *testing.T) {
	s := navigation.NewSession("loc", nil, nil, nil, nil, navigation.DefaultConfig())
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, NewFixed(delhi, 0, 0), s, time.Second, zap.NewNop())
	}()

	require.Eventually(t, func() bool {
		return s.Snapshot().Origin != nil
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, navigation.LocationAvailable, s.Snapshot().Location)

	cancel()
	assert.NoError(t, <-done)
}

func TestFollowFirstFixTimeout(t *testing.T) {
	src := chanSource{ch: make(chan datastructure.Place)}
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, src, sink, 10*time.Millisecond, zap.NewNop())
	}()

	require.Eventually(t, func() bool {
		_, unavailable := sink.counts()
		return unavailable == 1
	}, time.Second, 5*time.Millisecond)

	src.ch <- delhi
	require.Eventually(t, func() bool {
		origins, _ := sink.counts()
		return origins == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
	_, unavailable := sink.counts()
	assert.Equal(t, 1, unavailable)
	assert.ErrorIs(t, sink.unavailable[0], ErrNoFix)
}

func TestFollowSourceError(t *testing.T) {
	sink := &recordingSink{}
	watchErr := errors.New("permission denied")

	err := Follow(context.Background(), chanSource{err: watchErr}, sink, time.Second, zap.NewNop())
	assert.ErrorIs(t, err, watchErr)
	_, unavailable := sink.counts()
	assert.Equal(t, 1, unavailable)
}

func TestFollowSourceClosedWithoutFix(t *testing.T) {
	ch := make(chan datastructure.Place)
	close(ch)
	sink := &recordingSink{}

	err := Follow(context.Background(), chanSource{ch: ch}, sink, time.Second, zap.NewNop())
	require.NoError(t, err)
	_, unavailable := sink.counts()
	assert.Equal(t, 1, unavailable)
}
