package daemon_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"vidpress/internal/api"
	"vidpress/internal/assets"
	"vidpress/internal/config"
	"vidpress/internal/daemon"
	"vidpress/internal/logging"
	"vidpress/internal/queue"
	"vidpress/internal/testsupport"
	"vidpress/internal/workpool"
)

type recordingRunner struct {
	mu   sync.Mutex
	runs []string
}

func (r *recordingRunner) Execute(ctx context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, jobID)
	return nil
}

func (r *recordingRunner) executed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.runs...)
}

func newDaemon(t *testing.T, cfg *config.Config, store *queue.Store, runner workpool.Runner) *daemon.Daemon {
	t.Helper()
	pool := workpool.New(1, 8, runner, logging.NewNop())
	svc, err := assets.NewService(cfg.Paths.AssetsDir, store)
	if err != nil {
		t.Fatalf("assets.NewService: %v", err)
	}
	server, err := api.NewServer(cfg, store, svc, pool, logging.NewNop())
	if err != nil {
		t.Fatalf("api.NewServer: %v", err)
	}
	d, err := daemon.New(cfg, store, pool, server, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d
}

func TestStartStopLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	d := newDaemon(t, cfg, store, &recordingRunner{})

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	d.Stop()
}

func TestSecondInstanceRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	first := newDaemon(t, cfg, store, &recordingRunner{})
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer first.Stop()

	second := newDaemon(t, cfg, store, &recordingRunner{})
	err := second.Start(context.Background())
	if err == nil {
		second.Stop()
		t.Fatal("expected second instance to be rejected")
	}
	if !strings.Contains(err.Error(), "already running") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStartRecoversInterruptedAndPendingJobs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	stuck := testsupport.NewJob(t, store, "/tmp/stuck.mp4", "")
	stuck.SetProcessing()
	if err := store.UpdateJob(context.Background(), stuck); err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}
	pending := testsupport.NewJob(t, store, "/tmp/pending.mp4", "")

	runner := &recordingRunner{}
	d := newDaemon(t, cfg, store, runner)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(runner.executed()) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if runs := runner.executed(); len(runs) != 1 || runs[0] != pending.ID {
		t.Fatalf("expected pending job resubmitted, got %v", runs)
	}

	recovered, err := store.GetJob(context.Background(), stuck.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if recovered.Status != queue.StatusError || recovered.Message != queue.DaemonStopReason {
		t.Fatalf("expected interrupted job failed, got %#v", recovered)
	}
}
