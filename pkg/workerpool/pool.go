// Package workerpool provides a bounded goroutine pool with backpressure.
//
// When every worker is busy and the queue is full, Submit returns ErrPoolFull
// immediately so the caller can decide to drop or block.
//
//	pool := workerpool.New("mirror", 4)
//	defer pool.Shutdown()
//
//	if err := pool.Submit(task); errors.Is(err, workerpool.ErrPoolFull) {
//	    // drop and count
//	}
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gamevault/storefront/pkg/logger"
	"github.com/gamevault/storefront/pkg/metrics"
)

var (
	ErrPoolFull   = errors.New("workerpool: pool is full")
	ErrPoolClosed = errors.New("workerpool: pool is closed")
)

// Option configures a Pool.
type Option func(*Pool)

// WithQueueSize sets the number of tasks that may wait for a worker.
// The default is twice the worker count.
func WithQueueSize(n int) Option {
	return func(p *Pool) {
		if n >= 0 {
			p.queue = n
		}
	}
}

// WithPanicHandler is called with the recovered value after a task panics.
func WithPanicHandler(fn func(any)) Option {
	return func(p *Pool) { p.onPanic = fn }
}

// Pool is a bounded goroutine pool.
type Pool struct {
	name    string
	queue   int
	onPanic func(any)

	tasks  chan func()
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// New starts size workers. name labels logs and the panic metric.
func New(name string, size int, opts ...Option) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{name: name, queue: size * 2}
	for _, opt := range opts {
		opt(p)
	}
	p.tasks = make(chan func(), p.queue)

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait blocks until the task is queued, ctx is done or the pool
// closes.
func (p *Pool) SubmitWait(ctx context.Context, task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish. It is
// safe to call more than once.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *Pool) run(task func()) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		metrics.WorkerPanics.WithLabelValues(p.name).Inc()
		logger.Error("worker task panicked", "pool", p.name, "panic", fmt.Sprint(rec))
		if p.onPanic != nil {
			p.onPanic(rec)
		}
	}()
	task()
}
