package render_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vidpress/internal/assets"
	"vidpress/internal/logging"
	"vidpress/internal/queue"
	"vidpress/internal/render"
	"vidpress/internal/services"
	"vidpress/internal/services/ffmpeg"
	"vidpress/internal/testsupport"
)

type fakeEngine struct {
	plans    []ffmpeg.Plan
	progress []float64
	err      error
}

func (f *fakeEngine) Render(ctx context.Context, plan ffmpeg.Plan, onProgress func(float64)) error {
	f.plans = append(f.plans, plan)
	for _, percent := range f.progress {
		if onProgress != nil {
			onProgress(percent)
		}
	}
	return f.err
}

type panicEngine struct {
	progress []float64
}

func (p *panicEngine) Render(ctx context.Context, plan ffmpeg.Plan, onProgress func(float64)) error {
	for _, percent := range p.progress {
		if onProgress != nil {
			onProgress(percent)
		}
	}
	panic("boom")
}

func fixedDuration(seconds float64) render.DurationProber {
	return func(ctx context.Context, binary, path string) (float64, bool) {
		return seconds, seconds > 0
	}
}

func TestExecuteSuccessTransitionsToDone(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	engine := &fakeEngine{progress: []float64{10, 50, 99}}
	renderer, err := render.NewRenderer(cfg, store, assets.NewResolver(cfg.Paths.AssetsDir), logging.NewNop(),
		render.WithEngine(engine), render.WithDurationProber(fixedDuration(10)))
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	job := testsupport.NewJob(t, store, "/tmp/in.mp4", `[{"type":"text","content":"hi","x":0.1,"y":0.1,"start_time":0,"end_time":5}]`)
	if err := renderer.Execute(context.Background(), job.ID); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	stored, err := store.GetJob(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if stored.Status != queue.StatusDone {
		t.Fatalf("expected done, got %s (%s)", stored.Status, stored.Message)
	}
	if stored.Progress != 100 {
		t.Fatalf("expected progress 100, got %v", stored.Progress)
	}
	if !strings.HasSuffix(stored.OutputPath, job.ID+"_output.mp4") {
		t.Fatalf("unexpected output path: %q", stored.OutputPath)
	}
	if stored.Message != "Rendering complete" {
		t.Fatalf("unexpected message: %q", stored.Message)
	}

	if len(engine.plans) != 1 {
		t.Fatalf("expected one engine invocation, got %d", len(engine.plans))
	}
	plan := engine.plans[0]
	if plan.Graph.IsEmpty() {
		t.Fatal("expected a filter graph for a text overlay")
	}
	if plan.DurationSeconds != 10 {
		t.Fatalf("expected probed duration, got %v", plan.DurationSeconds)
	}
}

func TestExecuteEmptyOverlaysUsesCopyPlan(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	engine := &fakeEngine{}
	renderer, err := render.NewRenderer(cfg, store, assets.NewResolver(cfg.Paths.AssetsDir), logging.NewNop(),
		render.WithEngine(engine), render.WithDurationProber(fixedDuration(10)))
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	job := testsupport.NewJob(t, store, "/tmp/in.mp4", "")
	if err := renderer.Execute(context.Background(), job.ID); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(engine.plans) != 1 || !engine.plans[0].Graph.IsEmpty() {
		t.Fatalf("expected empty graph plan, got %#v", engine.plans)
	}
}

func TestExecuteFailureRetainsProgress(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	engine := &fakeEngine{
		progress: []float64{63},
		err:      services.Wrap(services.ErrExternalTool, "ffmpeg", "render", "FFmpeg failed", errors.New("exit status 1")),
	}
	renderer, err := render.NewRenderer(cfg, store, assets.NewResolver(cfg.Paths.AssetsDir), logging.NewNop(),
		render.WithEngine(engine), render.WithDurationProber(fixedDuration(10)))
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	job := testsupport.NewJob(t, store, "/tmp/in.mp4", "")
	if err := renderer.Execute(context.Background(), job.ID); err == nil {
		t.Fatal("expected render error")
	}

	stored, err := store.GetJob(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if stored.Status != queue.StatusError {
		t.Fatalf("expected error status, got %s", stored.Status)
	}
	if stored.Progress != 63 {
		t.Fatalf("expected retained progress 63, got %v", stored.Progress)
	}
	if !strings.Contains(stored.Message, "FFmpeg failed") {
		t.Fatalf("expected diagnostic message, got %q", stored.Message)
	}
}

func TestExecutePanicMarksJobFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	renderer, err := render.NewRenderer(cfg, store, assets.NewResolver(cfg.Paths.AssetsDir), logging.NewNop(),
		render.WithEngine(&panicEngine{progress: []float64{40}}), render.WithDurationProber(fixedDuration(10)))
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	job := testsupport.NewJob(t, store, "/tmp/in.mp4", "")
	execErr := renderer.Execute(context.Background(), job.ID)
	if execErr == nil {
		t.Fatal("expected error after engine panic")
	}

	stored, err := store.GetJob(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if stored.Status != queue.StatusError {
		t.Fatalf("expected error status after panic, got %s (%q)", stored.Status, stored.Message)
	}
	if !strings.Contains(stored.Message, "Exception: boom") {
		t.Fatalf("expected panic diagnostic, got %q", stored.Message)
	}
	if stored.Progress != 40 {
		t.Fatalf("expected retained progress 40, got %v", stored.Progress)
	}
}

func TestExecuteMissingAssetFailsWithoutEngine(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	engine := &fakeEngine{}
	renderer, err := render.NewRenderer(cfg, store, assets.NewResolver(cfg.Paths.AssetsDir), logging.NewNop(),
		render.WithEngine(engine), render.WithDurationProber(fixedDuration(10)))
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	job := testsupport.NewJob(t, store, "/tmp/in.mp4", `[{"type":"image","content":"missing.png","x":0.5,"y":0.5,"start_time":0,"end_time":2}]`)
	execErr := renderer.Execute(context.Background(), job.ID)
	if execErr == nil {
		t.Fatal("expected error for missing asset")
	}
	if !errors.Is(execErr, services.ErrNotFound) {
		t.Fatalf("expected not-found marker, got %v", execErr)
	}
	if len(engine.plans) != 0 {
		t.Fatal("engine must not run when the graph cannot be built")
	}

	stored, err := store.GetJob(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if stored.Status != queue.StatusError {
		t.Fatalf("expected error status, got %s", stored.Status)
	}
	if !strings.Contains(stored.Message, "Overlay asset not found") {
		t.Fatalf("expected asset diagnostic, got %q", stored.Message)
	}
}

func TestExecuteUnknownDurationDisablesProgress(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	engine := &fakeEngine{}
	renderer, err := render.NewRenderer(cfg, store, assets.NewResolver(cfg.Paths.AssetsDir), logging.NewNop(),
		render.WithEngine(engine), render.WithDurationProber(fixedDuration(0)))
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	job := testsupport.NewJob(t, store, "/tmp/in.mp4", "")
	if err := renderer.Execute(context.Background(), job.ID); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if engine.plans[0].DurationSeconds != 0 {
		t.Fatalf("expected zero duration plan, got %v", engine.plans[0].DurationSeconds)
	}
}

func TestExecuteMissingJobIsNoop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	engine := &fakeEngine{}
	renderer, err := render.NewRenderer(cfg, store, assets.NewResolver(cfg.Paths.AssetsDir), logging.NewNop(),
		render.WithEngine(engine), render.WithDurationProber(fixedDuration(10)))
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	if err := renderer.Execute(context.Background(), "no-such-job"); err != nil {
		t.Fatalf("Execute for missing job should be a no-op, got %v", err)
	}
	if len(engine.plans) != 0 {
		t.Fatal("engine must not run for a missing job")
	}
}
