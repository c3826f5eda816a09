package workpool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"vidpress/internal/logging"
	"vidpress/internal/services"
)

// Runner executes one job to completion.
type Runner interface {
	Execute(ctx context.Context, jobID string) error
}

// Pool fans submitted job IDs out to a fixed set of workers. Submissions
// beyond the worker count wait in a bounded FIFO buffer; Submit never blocks.
type Pool struct {
	runner Runner
	logger *slog.Logger

	jobs   chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

// New constructs a pool with the given worker count and queue buffer.
// A worker count below one falls back to a single worker.
func New(workers, buffer int, runner Runner, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	pool := &Pool{
		runner: runner,
		logger: logging.NewComponentLogger(logger, "workpool"),
		jobs:   make(chan string, workers+buffer),
		ctx:    ctx,
		cancel: cancel,
	}
	pool.start(workers)
	return pool
}

func (p *Pool) start(workers int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit enqueues a job for rendering. It returns an error instead of
// blocking when the queue is full or the pool has stopped.
func (p *Pool) Submit(jobID string) error {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		return services.Wrap(services.ErrTransient, "workpool", "submit", "pool stopped", nil)
	}

	select {
	case p.jobs <- jobID:
		return nil
	default:
		return services.Wrap(services.ErrTransient, "workpool", "submit", "render queue full", nil)
	}
}

// Stop cancels in-flight jobs and waits for the workers to exit.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		p.wg.Wait()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.cancel()
	close(p.jobs)
	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	log := p.logger.With(logging.Int("worker", id))
	for {
		select {
		case <-p.ctx.Done():
			return
		case jobID, ok := <-p.jobs:
			if !ok {
				return
			}
			p.run(log, jobID)
		}
	}
}

// run isolates one job so a panic in the runner takes down neither the
// worker nor its siblings.
func (p *Pool) run(log *slog.Logger, jobID string) {
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Error("job panicked",
				logging.String(logging.FieldJobID, jobID),
				logging.Error(fmt.Errorf("panic: %v", recovered)))
		}
	}()

	if err := p.runner.Execute(p.ctx, jobID); err != nil {
		log.Error("job failed",
			logging.String(logging.FieldJobID, jobID),
			logging.Error(err))
	}
}
