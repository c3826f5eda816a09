package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"vidpress/internal/api"
	"vidpress/internal/config"
	"vidpress/internal/logging"
	"vidpress/internal/queue"
	"vidpress/internal/workpool"
)

const shutdownGrace = 10 * time.Second

// Daemon coordinates the HTTP API and the render worker pool, and enforces
// single-instance execution through a lock file.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *queue.Store
	pool   *workpool.Pool
	server *api.Server

	lockPath string
	lock     *flock.Flock

	running  atomic.Bool
	serveErr <-chan error
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, pool *workpool.Pool, server *api.Server, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || pool == nil || server == nil {
		return nil, errors.New("daemon requires config, store, pool, and server")
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, "vidpressd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		pool:     pool,
		server:   server,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, recovers interrupted jobs, requeues
// pending ones, and begins serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another vidpress daemon instance is already running")
	}

	if err := d.recoverJobs(ctx); err != nil {
		_ = d.lock.Unlock()
		return err
	}

	serveErr, err := d.server.Start()
	if err != nil {
		_ = d.lock.Unlock()
		return err
	}
	d.serveErr = serveErr

	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// recoverJobs fails jobs stuck in processing from a previous run and
// resubmits jobs that never reached a worker.
func (d *Daemon) recoverJobs(ctx context.Context) error {
	failed, err := d.store.FailInterrupted(ctx, "")
	if err != nil {
		return fmt.Errorf("recover interrupted jobs: %w", err)
	}
	if failed > 0 {
		d.logger.Warn("failed interrupted jobs from previous run", logging.Int("count", int(failed)))
	}

	pending, err := d.store.ListJobsByStatus(ctx, queue.StatusPending)
	if err != nil {
		return fmt.Errorf("list pending jobs: %w", err)
	}
	// Oldest first so recovered work keeps its original order.
	for i := len(pending) - 1; i >= 0; i-- {
		job := pending[i]
		if err := d.pool.Submit(job.ID); err != nil {
			d.logger.Warn("requeue pending job",
				logging.String(logging.FieldJobID, job.ID),
				logging.Error(err))
		}
	}
	return nil
}

// ServeErr exposes the API serve error channel; it yields at most one error
// and closes when the server exits.
func (d *Daemon) ServeErr() <-chan error {
	return d.serveErr
}

// Stop shuts the API down, stops the workers, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := d.server.Stop(shutdownCtx); err != nil {
		d.logger.Warn("api shutdown", logging.Error(err))
	}

	d.pool.Stop()

	if _, err := d.store.FailInterrupted(context.Background(), ""); err != nil {
		d.logger.Warn("mark interrupted jobs", logging.Error(err))
	}

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}
