package concurrent

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequencer(t *testing.T) {
	var s Sequencer
	assert.Equal(t, uint64(0), s.Latest())
	assert.False(t, s.IsLatest(0))

	a := s.Next()
	assert.True(t, s.IsLatest(a))

	b := s.Next()
	assert.False(t, s.IsLatest(a))
	assert.True(t, s.IsLatest(b))

	s.Invalidate()
	assert.False(t, s.IsLatest(b))
	assert.Greater(t, s.Next(), b)
}

func TestFuture(t *testing.T) {
	t.Run("resolve once", func(t *testing.T) {
		f := NewFuture(7)
		assert.NoError(t, f.Err())

		errFirst := errors.New("first")
		f.Resolve(errFirst)
		f.Resolve(errors.New("second"))

		<-f.Done()
		assert.Equal(t, uint64(7), f.Seq())
		assert.ErrorIs(t, f.Err(), errFirst)
		assert.ErrorIs(t, f.Wait(context.Background()), errFirst)
	})

	t.Run("wait honours context", func(t *testing.T) {
		f := NewFuture(1)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, f.Wait(ctx), context.DeadlineExceeded)
	})

	t.Run("resolved", func(t *testing.T) {
		f := Resolved(3, nil)
		select {
		case <-f.Done():
		default:
			t.Fatal("expected resolved future")
		}
		assert.NoError(t, f.Err())
	})
}

func TestWorkerPool(t *testing.T) {
	p := NewWorkerPool(4, 8)
	p.Spawn(2)

	var (
		wg    sync.WaitGroup
		count atomic.Int64
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		require.NoError(t, p.Schedule(func() {
			defer wg.Done()
			count.Add(1)
		}))
	}
	wg.Wait()
	assert.Equal(t, int64(50), count.Load())

	p.Close()
	assert.ErrorIs(t, p.Schedule(func() {}), ErrPoolClosed)
}

func TestWorkerPoolScheduleTimeout(t *testing.T) {
	p := NewWorkerPool(1, 0)
	defer p.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.Schedule(func() {
		close(started)
		<-release
	}))
	<-started

	err := p.ScheduleTimeout(10*time.Millisecond, func() {})
	assert.ErrorIs(t, err, ErrScheduleTimeout)
	close(release)
}
