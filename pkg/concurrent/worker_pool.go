package concurrent

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrScheduleTimeout = errors.New("schedule error: timed out")
	ErrPoolClosed      = errors.New("schedule error: pool closed")
)

// WorkerPool runs scheduled tasks on a bounded number of goroutines.
// workers are spawned lazily up to size; Spawn pre-starts some of them.
type WorkerPool struct {
	sem  chan struct{}
	work chan func()

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewWorkerPool(size, queue int) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if queue < 0 {
		queue = 0
	}
	return &WorkerPool{
		sem:  make(chan struct{}, size),
		work: make(chan func(), queue),
	}
}

// Spawn starts n workers up front (bounded by the pool size).
func (p *WorkerPool) Spawn(n int) {
	for i := 0; i < n; i++ {
		select {
		case p.sem <- struct{}{}:
			p.wg.Add(1)
			go p.worker(func() {})
		default:
			return
		}
	}
}

// Schedule blocks until the task is queued or taken by a worker.
func (p *WorkerPool) Schedule(task func()) error {
	return p.schedule(task, nil)
}

// ScheduleTimeout is Schedule giving up after timeout with ErrScheduleTimeout.
func (p *WorkerPool) ScheduleTimeout(timeout time.Duration, task func()) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	return p.schedule(task, timer.C)
}

func (p *WorkerPool) schedule(task func(), timeout <-chan time.Time) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case <-timeout:
		return ErrScheduleTimeout
	case p.work <- task:
		return nil
	case p.sem <- struct{}{}:
		p.wg.Add(1)
		go p.worker(task)
		return nil
	}
}

func (p *WorkerPool) worker(task func()) {
	defer func() {
		<-p.sem
		p.wg.Done()
	}()

	task()
	for task := range p.work {
		task()
	}
}

// Close stops accepting tasks and waits until the queued ones are done.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.work)
	p.mu.Unlock()

	p.wg.Wait()
}
