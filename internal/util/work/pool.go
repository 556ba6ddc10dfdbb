package work

import (
	"context"
	"errors"
	"sync"
)

var ErrPoolClosed = errors.New("worker pool closed")

// task is one queued unit of blocking work.
type task struct {
	run  func()
	done chan struct{}
}

// Pool is a fixed-size worker pool for blocking stage work. Submissions beyond
// the workers' capacity queue up; they are never rejected. The caller of Submit
// suspends until its task completes, so the pool is the only place where
// blocking calls actually occupy an execution slot.
type Pool struct {
	tasks      chan *task
	stopChan   chan struct{}
	wg         sync.WaitGroup
	mu         sync.RWMutex
	stopped    bool
	numWorkers int
}

// NewPool starts numWorkers worker goroutines. queueDepth bounds how many
// submissions can be buffered before Submit itself blocks on enqueue.
func NewPool(numWorkers, queueDepth int) *Pool {
	if numWorkers <= 0 {
		numWorkers = 4
	}
	if queueDepth < 0 {
		queueDepth = 0
	}

	p := &Pool{
		tasks:      make(chan *task, queueDepth),
		stopChan:   make(chan struct{}),
		numWorkers: numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case t := <-p.tasks:
			t.run()
			close(t.done)
		}
	}
}

// Submit enqueues run and blocks until it has completed, the context is done,
// or the pool stops. When the context is cancelled after enqueue the task may
// still execute later; the caller just stops waiting for it.
func (p *Pool) Submit(ctx context.Context, run func()) error {
	p.mu.RLock()
	if p.stopped {
		p.mu.RUnlock()
		return ErrPoolClosed
	}
	p.mu.RUnlock()

	t := &task{run: run, done: make(chan struct{})}

	select {
	case p.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stopChan:
		return ErrPoolClosed
	}

	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stopChan:
		return ErrPoolClosed
	}
}

// Stop shuts the pool down and waits for the workers to exit. Queued tasks
// that no worker picked up are discarded.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	close(p.stopChan)
	p.wg.Wait()
}

// IsStopped checks if the pool has been shut down.
func (p *Pool) IsStopped() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stopped
}

// Workers reports the fixed pool size.
func (p *Pool) Workers() int {
	return p.numWorkers
}

// Run submits fn to the pool and returns its result once it completed. A
// submission failure (cancelled context, stopped pool) is returned as-is.
func Run[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	var (
		out T
		err error
	)
	if serr := p.Submit(ctx, func() { out, err = fn() }); serr != nil {
		var zero T
		return zero, serr
	}
	return out, err
}
