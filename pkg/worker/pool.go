/*
Package worker provides a bounded worker pool for fan-out/fan-in processing
with optional rate limiting and fail-fast cancellation.

Results are returned in submission order regardless of completion order, so
callers can merge them in a single deterministic pass:

	pool, err := worker.NewPool(worker.Config{Workers: 4, FailFast: true})
	if err != nil {
		return err
	}
	if err := pool.Start(ctx); err != nil {
		return err
	}
	defer pool.Stop()

	for i, path := range paths {
		pool.Submit(worker.Task{ID: i, Execute: readFile(path)})
	}

	results, err := pool.Wait()
*/
package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrNotStarted is returned when the pool is used before Start
	ErrNotStarted = errors.New("pool not started")

	// ErrClosed is returned when tasks are submitted after Wait or Stop
	ErrClosed = errors.New("pool closed")
)

// Pool defines the interface for a worker pool
type Pool interface {
	// Start launches the workers
	Start(context.Context) error

	// Submit queues a task, blocking while the queue is full
	Submit(Task) error

	// Wait closes the queue, blocks until every task is done and returns
	// results in submission order, or the first task error
	Wait() ([]Result, error)

	// GetStats returns current statistics about the pool
	GetStats() Stats

	// Status returns the current status of the pool
	Status() Status

	// Stop cancels outstanding work and shuts the pool down
	Stop() error
}

type pool struct {
	config  Config
	tasks   chan taskWithOrder
	limiter *rate.Limiter
	wg      sync.WaitGroup

	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	started bool
	closed  bool
	stopped bool

	resultsMu sync.Mutex
	results   []Result
	firstErr  error

	nextOrder     atomic.Int64
	activeWorkers atomic.Int32
	completed     atomic.Int64
	failed        atomic.Int64
	startTime     time.Time
}

type taskWithOrder struct {
	Task
	order int
}

// NewPool creates a new worker pool with the given configuration
func NewPool(config Config) (Pool, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}

	return &pool{
		config:  config,
		tasks:   make(chan taskWithOrder, config.Workers*2),
		limiter: limiter,
	}, nil
}

func validateConfig(config Config) error {
	if config.Workers <= 0 {
		return fmt.Errorf("number of workers must be positive")
	}
	if config.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative")
	}
	return nil
}

func (p *pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("pool already started")
	}

	p.parent = ctx
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.started = true
	p.startTime = time.Now()

	for i := 0; i < p.config.Workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return nil
}

func (p *pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.started {
		return ErrNotStarted
	}
	if p.closed {
		return ErrClosed
	}

	order := int(p.nextOrder.Add(1) - 1)

	select {
	case <-p.ctx.Done():
		if err := p.failure(); err != nil {
			return fmt.Errorf("pool is shutting down: %w", err)
		}
		return fmt.Errorf("pool is shutting down: %w", p.ctx.Err())
	case p.tasks <- taskWithOrder{Task: task, order: order}:
		return nil
	}
}

func (p *pool) Wait() ([]Result, error) {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return nil, ErrNotStarted
	}
	p.closeQueue()
	p.mu.Unlock()

	p.wg.Wait()

	if err := p.failure(); err != nil {
		return nil, err
	}
	if err := p.parent.Err(); err != nil {
		return nil, err
	}

	p.resultsMu.Lock()
	results := make([]Result, len(p.results))
	copy(results, p.results)
	p.resultsMu.Unlock()

	sort.Slice(results, func(i, j int) bool {
		return results[i].order < results[j].order
	})

	return results, nil
}

func (p *pool) Stop() error {
	p.mu.Lock()
	if p.stopped || !p.started {
		p.stopped = true
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	p.cancel()
	p.closeQueue()
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(500 * time.Millisecond):
		return fmt.Errorf("shutdown timed out")
	}
}

// closeQueue must be called with p.mu held
func (p *pool) closeQueue() {
	if !p.closed {
		close(p.tasks)
		p.closed = true
	}
}

func (p *pool) GetStats() Stats {
	return Stats{
		ActiveWorkers:  int(p.activeWorkers.Load()),
		QueuedTasks:    len(p.tasks),
		CompletedTasks: int(p.completed.Load()),
		FailedTasks:    int(p.failed.Load()),
		Status:         p.Status(),
		Uptime:         p.uptime(),
	}
}

func (p *pool) Status() Status {
	p.mu.RLock()
	started, stopped := p.started, p.stopped
	p.mu.RUnlock()

	switch {
	case !started || stopped:
		return StatusStopped
	case p.failed.Load() > 0:
		return StatusFailed
	case p.activeWorkers.Load() > 0 || len(p.tasks) > 0:
		return StatusProcessing
	default:
		return StatusIdle
	}
}

func (p *pool) uptime() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}

func (p *pool) failure() error {
	p.resultsMu.Lock()
	defer p.resultsMu.Unlock()
	return p.firstErr
}

func (p *pool) fail(err error) {
	p.failed.Add(1)

	p.resultsMu.Lock()
	if p.firstErr == nil {
		p.firstErr = err
	}
	p.resultsMu.Unlock()

	if p.config.FailFast {
		p.cancel()
	}
}

func (p *pool) worker() {
	defer p.wg.Done()

	for t := range p.tasks {
		// keep draining after cancellation so Submit never blocks forever
		if p.ctx.Err() != nil {
			continue
		}

		p.activeWorkers.Add(1)
		p.run(t)
		p.activeWorkers.Add(-1)
	}
}

func (p *pool) run(t taskWithOrder) {
	if p.limiter != nil {
		if err := p.limiter.Wait(p.ctx); err != nil {
			if p.parent.Err() == nil && p.failure() == nil {
				p.fail(fmt.Errorf("rate limiter error: %w", err))
			}
			return
		}
	}

	result, err := t.Execute(p.ctx)
	if err != nil {
		// tasks cut short by a sibling's failure are not failures themselves
		if p.ctx.Err() != nil && p.failure() != nil {
			return
		}
		p.fail(fmt.Errorf("task %d failed: %w", t.ID, err))
		return
	}

	result.order = t.order
	p.completed.Add(1)

	p.resultsMu.Lock()
	p.results = append(p.results, result)
	p.resultsMu.Unlock()
}
