package render

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"vidpress/internal/config"
	"vidpress/internal/logging"
	"vidpress/internal/media/ffprobe"
	"vidpress/internal/overlay"
	"vidpress/internal/queue"
	"vidpress/internal/render/filtergraph"
	"vidpress/internal/services"
	"vidpress/internal/services/ffmpeg"
)

// Engine abstracts the ffmpeg client so tests can substitute a fake.
type Engine interface {
	Render(ctx context.Context, plan ffmpeg.Plan, onProgress func(float64)) error
}

// DurationProber reports a media file's duration in seconds. The boolean is
// false when the duration could not be determined.
type DurationProber func(ctx context.Context, binary, path string) (float64, bool)

// Renderer drives one job from pending to a terminal state.
type Renderer struct {
	cfg      *config.Config
	store    *queue.Store
	engine   Engine
	resolver filtergraph.AssetResolver
	probe    DurationProber
	logger   *slog.Logger
}

// Option configures the renderer.
type Option func(*Renderer)

// WithEngine substitutes the render engine (primarily for tests).
func WithEngine(engine Engine) Option {
	return func(r *Renderer) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// WithDurationProber substitutes the duration probe (primarily for tests).
func WithDurationProber(probe DurationProber) Option {
	return func(r *Renderer) {
		if probe != nil {
			r.probe = probe
		}
	}
}

// NewRenderer wires a renderer against the store and asset resolver.
func NewRenderer(cfg *config.Config, store *queue.Store, resolver filtergraph.AssetResolver, logger *slog.Logger, opts ...Option) (*Renderer, error) {
	if cfg == nil || store == nil || resolver == nil {
		return nil, services.Wrap(services.ErrConfiguration, "render", "new renderer", "config, store, and resolver required", nil)
	}
	renderer := &Renderer{
		cfg:      cfg,
		store:    store,
		resolver: resolver,
		probe:    ffprobe.Duration,
		logger:   logging.NewComponentLogger(logger, "render"),
	}
	for _, opt := range opts {
		opt(renderer)
	}
	if renderer.engine == nil {
		client, err := ffmpeg.New(cfg.FFmpegBinary())
		if err != nil {
			return nil, err
		}
		renderer.engine = client
	}
	return renderer, nil
}

// Execute renders the identified job and persists every state transition.
// The returned error reflects the render outcome; the job row is already in
// its terminal state when Execute returns. A panic anywhere past the
// processing transition is recovered and recorded as a terminal error so the
// row never sticks in processing while the daemon keeps running.
func (r *Renderer) Execute(ctx context.Context, jobID string) (err error) {
	ctx = services.WithJobID(ctx, jobID)
	ctx = services.WithStage(ctx, "render")
	log := r.logger.With(logging.String(logging.FieldJobID, jobID))

	job, err := r.store.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		log.Warn("job vanished before rendering")
		return nil
	}

	job.SetProcessing()
	if err := r.store.UpdateJob(ctx, job); err != nil {
		return err
	}
	log.Info("render started", logging.String("input", job.InputPath))

	lastProgress := job.Progress
	defer func() {
		if recovered := recover(); recovered != nil {
			job.Progress = lastProgress
			err = r.fail(ctx, log, job, services.Wrap(services.ErrTransient, "render", "execute",
				fmt.Sprintf("Exception: %v", recovered), nil))
		}
	}()

	outputPath := filepath.Join(r.cfg.Paths.OutputDir, job.ID+"_output.mp4")

	graph, err := r.buildGraph(job)
	if err != nil {
		return r.fail(ctx, log, job, err)
	}

	duration, ok := r.probe(ctx, r.cfg.FFprobeBinary(), job.InputPath)
	if !ok {
		log.Warn("duration unavailable, progress reporting disabled")
		duration = 0
	}

	plan := ffmpeg.Plan{
		InputPath:       job.InputPath,
		OutputPath:      outputPath,
		Graph:           graph,
		DurationSeconds: duration,
	}
	onProgress := func(percent float64) {
		if percent < lastProgress {
			return
		}
		lastProgress = percent
		if err := r.store.UpdateJobProgress(ctx, job.ID, percent); err != nil {
			log.Warn("persist progress failed", logging.Error(err))
		}
	}

	if err := r.engine.Render(ctx, plan, onProgress); err != nil {
		job.Progress = lastProgress
		return r.fail(ctx, log, job, err)
	}

	job.SetDone(outputPath)
	if err := r.store.UpdateJob(ctx, job); err != nil {
		return err
	}
	log.Info("render complete", logging.String("output", outputPath))
	return nil
}

func (r *Renderer) buildGraph(job *queue.Job) (filtergraph.Graph, error) {
	overlays, err := overlay.DecodeStored(job.OverlaysJSON)
	if err != nil {
		return filtergraph.Graph{}, fmt.Errorf("decode overlays: %w", err)
	}
	return filtergraph.Build(overlays, r.resolver)
}

// fail records the terminal error state with the diagnostic as the job
// message. Progress keeps its last reported value.
func (r *Renderer) fail(ctx context.Context, log *slog.Logger, job *queue.Job, cause error) error {
	job.SetFailed(services.Details(cause).Message)
	if err := r.store.UpdateJob(ctx, job); err != nil {
		log.Error("persist failure state", logging.Error(err))
	}
	log.Error("render failed", logging.Error(cause))
	return cause
}
