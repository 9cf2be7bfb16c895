package concurrent

import (
	"context"
	"sync"
)

// Future is the outcome of one asynchronous request.
type Future struct {
	seq  uint64
	done chan struct{}
	once sync.Once
	err  error
}

func NewFuture(seq uint64) *Future {
	return &Future{
		seq:  seq,
		done: make(chan struct{}),
	}
}

// Resolved returns an already completed future.
func Resolved(seq uint64, err error) *Future {
	f := NewFuture(seq)
	f.Resolve(err)
	return f
}

func (f *Future) Seq() uint64 {
	return f.seq
}

// Resolve completes the future. only the first call has an effect.
func (f *Future) Resolve(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Err returns the outcome; only meaningful after Done is closed.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Wait blocks until the future resolves or ctx ends.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
