package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// ErrQueueFull is returned when a task cannot be queued in time.
var ErrQueueFull = errors.New("worker pool queue is full")

// ErrPoolStopped is returned when submitting to a stopped pool.
var ErrPoolStopped = errors.New("worker pool stopped")

// Task is a unit of work executed by the pool.
type Task func(ctx context.Context)

// Pool runs tasks on a fixed number of goroutines.
type Pool struct {
	tasks         chan Task
	wg            sync.WaitGroup
	size          int
	submitTimeout time.Duration
	logger        zerolog.Logger

	active atomic.Int64

	mu      sync.RWMutex
	stopped bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewPool creates a pool with size workers and a queue of size*10 tasks.
func NewPool(size int, logger zerolog.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{
		tasks:         make(chan Task, size*10),
		size:          size,
		submitTimeout: time.Second,
		logger:        logger.With().Str("component", "worker_pool").Logger(),
	}
}

// Start launches the workers. Tasks receive a context that is cancelled on Stop.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()

	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.work(i)
	}

	p.logger.Info().Int("workers", p.size).Msg("worker pool started")
}

// Stop waits for queued tasks to finish and shuts the workers down.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	p.logger.Info().Msg("worker pool stopped")
}

// Submit queues a task, waiting briefly when the queue is full.
func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.tasks <- task:
		return nil
	default:
	}

	p.logger.Warn().Msg("worker pool task queue is full")
	select {
	case p.tasks <- task:
		return nil
	case <-time.After(p.submitTimeout):
		return ErrQueueFull
	}
}

// Active returns the number of tasks currently running.
func (p *Pool) Active() int {
	return int(p.active.Load())
}

// QueueLength returns the number of tasks waiting to run.
func (p *Pool) QueueLength() int {
	return len(p.tasks)
}

func (p *Pool) work(id int) {
	defer p.wg.Done()

	p.mu.RLock()
	ctx := p.ctx
	p.mu.RUnlock()

	for task := range p.tasks {
		p.run(ctx, id, task)
	}

	p.logger.Debug().Int("worker_id", id).Msg("worker stopped")
}

func (p *Pool) run(ctx context.Context, id int, task Task) {
	p.active.Add(1)
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Int("worker_id", id).Interface("panic", r).Msg("worker recovered from panic")
		}
		p.active.Add(-1)
	}()

	task(ctx)
}
