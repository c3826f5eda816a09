package ffmpeg

import (
	"context"
	"errors"
	"strings"

	"vidpress/internal/render/filtergraph"
	"vidpress/internal/services"
)

// Plan describes one render invocation. DurationSeconds is the probed source
// duration; zero means unknown, which disables progress callbacks.
type Plan struct {
	InputPath       string
	OutputPath      string
	Graph           filtergraph.Graph
	DurationSeconds float64
}

// Client wraps ffmpeg CLI interactions.
type Client struct {
	binary string
	exec   Executor
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// New constructs an ffmpeg client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	client := &Client{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Render executes ffmpeg for the plan, invoking onProgress with a percentage
// in [0, 99] for every usable progress event. 100 is never reported here; it
// is reserved for the caller's confirmed-success transition.
func (c *Client) Render(ctx context.Context, plan Plan, onProgress func(float64)) error {
	if strings.TrimSpace(plan.InputPath) == "" {
		return errors.New("input path required")
	}
	if strings.TrimSpace(plan.OutputPath) == "" {
		return errors.New("output path required")
	}

	args := buildArgs(plan)
	tail := newDiagnosticTail(maxDiagnosticLines)

	onLine := func(line string) {
		elapsed, ok := parseProgressLine(line)
		if !ok {
			tail.add(line)
			return
		}
		if onProgress == nil || plan.DurationSeconds <= 0 {
			return
		}
		onProgress(progressPercent(elapsed, plan.DurationSeconds))
	}

	if err := c.exec.Run(ctx, c.binary, args, onLine); err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "render", "FFmpeg failed", tail.wrap(err))
	}
	return nil
}

// buildArgs assembles the ffmpeg invocation. An empty graph means a pure
// remux: both streams copied, no re-encode. Otherwise extra inputs are
// attached in order so the graph's input-index contract holds, the filtered
// stream is mapped by label, and the source audio is included best-effort
// ("0:a?" does not fail when the source has no audio track).
func buildArgs(plan Plan) []string {
	args := []string{"-y", "-i", plan.InputPath}

	if plan.Graph.IsEmpty() {
		args = append(args, "-c:v", "copy", "-c:a", "copy")
	} else {
		for _, extra := range plan.Graph.ExtraInputs {
			args = append(args, "-i", extra)
		}
		args = append(args,
			"-filter_complex", plan.Graph.FilterComplex,
			"-map", plan.Graph.OutputLabel,
			"-map", "0:a?",
			"-c:v", "libx264",
			"-c:a", "aac",
		)
	}

	return append(args, "-progress", "pipe:2", "-nostats", "-v", "error", plan.OutputPath)
}
