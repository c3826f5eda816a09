package filtergraph_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"vidpress/internal/overlay"
	"vidpress/internal/render/filtergraph"
	"vidpress/internal/services"
)

type mapResolver map[string]string

func (m mapResolver) Resolve(content string) (string, error) {
	if path, ok := m[content]; ok {
		return path, nil
	}
	return "", services.Wrap(services.ErrNotFound, "assets", "resolve overlay",
		fmt.Sprintf("Overlay asset not found: %s", content), nil)
}

func textOverlay(content string, start, end float64) overlay.Overlay {
	return overlay.Overlay{Kind: overlay.KindText, Content: content, X: 0.5, Y: 0.1, StartTime: start, EndTime: end}
}

func TestBuildEmptyList(t *testing.T) {
	graph, err := filtergraph.Build(nil, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !graph.IsEmpty() {
		t.Fatalf("expected empty graph, got %+v", graph)
	}
	if graph.OutputLabel != "" || len(graph.ExtraInputs) != 0 {
		t.Fatalf("expected no label or inputs, got %+v", graph)
	}
}

func TestBuildTextOverlay(t *testing.T) {
	graph, err := filtergraph.Build([]overlay.Overlay{textOverlay("Hello", 2, 8)}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if graph.OutputLabel != "[v0]" {
		t.Fatalf("expected final label [v0], got %q", graph.OutputLabel)
	}
	fc := graph.FilterComplex
	for _, want := range []string{
		"[0:v]drawtext=",
		"text='Hello'",
		"x=w*0.5",
		"y=h*0.1",
		"fontcolor=white",
		"fontsize=36",
		"enable='between(t,2,8)'",
		"box=1",
		"boxcolor=black@0.5",
		"boxborderw=5",
		"[v0]",
	} {
		if !strings.Contains(fc, want) {
			t.Fatalf("filter graph missing %q:\n%s", want, fc)
		}
	}
}

func TestBuildEscapesDelimiters(t *testing.T) {
	o := textOverlay("a:b'c", 0, 1)
	color := "rgb:255'0"
	o.Color = &color

	graph, err := filtergraph.Build([]overlay.Overlay{o}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !strings.Contains(graph.FilterComplex, `text='a\:b\'c'`) {
		t.Fatalf("text argument not escaped:\n%s", graph.FilterComplex)
	}
	if !strings.Contains(graph.FilterComplex, `fontcolor=rgb\:255\'0`) {
		t.Fatalf("color argument not escaped:\n%s", graph.FilterComplex)
	}
	// No unescaped delimiter may remain inside the text argument.
	start := strings.Index(graph.FilterComplex, "text='") + len("text='")
	end := strings.Index(graph.FilterComplex[start:], "':x=")
	payload := graph.FilterComplex[start : start+end]
	for i := 0; i < len(payload); i++ {
		if (payload[i] == ':' || payload[i] == '\'') && (i == 0 || payload[i-1] != '\\') {
			t.Fatalf("unescaped delimiter at %d in %q", i, payload)
		}
	}
}

func TestBuildMediaOverlay(t *testing.T) {
	resolver := mapResolver{"logo.png": "/assets/logo.png"}
	o := overlay.Overlay{Kind: overlay.KindImage, Content: "logo.png", X: 0.8, Y: 0.2, StartTime: 1, EndTime: 4}

	graph, err := filtergraph.Build([]overlay.Overlay{o}, resolver)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(graph.ExtraInputs) != 1 || graph.ExtraInputs[0] != "/assets/logo.png" {
		t.Fatalf("unexpected extra inputs %v", graph.ExtraInputs)
	}
	fc := graph.FilterComplex
	for _, want := range []string{
		"[1:v]scale=100:100:force_original_aspect_ratio=decrease[ov0]",
		"[ov0]pad=100:100:(ow-iw)/2:(oh-ih)/2:color=black@0.0[pad0]",
		"[0:v][pad0]overlay=x=w*0.8:y=h*0.2:enable='between(t,1,4)'[v0]",
	} {
		if !strings.Contains(fc, want) {
			t.Fatalf("filter graph missing %q:\n%s", want, fc)
		}
	}
	if graph.OutputLabel != "[v0]" {
		t.Fatalf("expected final label [v0], got %q", graph.OutputLabel)
	}
}

func TestBuildChainsInOrder(t *testing.T) {
	resolver := mapResolver{"clip.mp4": "/assets/clip.mp4"}
	overlays := []overlay.Overlay{
		textOverlay("first", 0, 2),
		{Kind: overlay.KindVideo, Content: "clip.mp4", X: 0.1, Y: 0.9, StartTime: 2, EndTime: 6},
		textOverlay("last", 6, 9),
	}

	graph, err := filtergraph.Build(overlays, resolver)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	fc := graph.FilterComplex

	// Sequential label chaining: each stage consumes the previous output.
	if !strings.Contains(fc, "[0:v]drawtext=") {
		t.Fatalf("first stage must consume [0:v]:\n%s", fc)
	}
	if !strings.Contains(fc, "[v0][pad1]overlay=") {
		t.Fatalf("second stage must consume [v0]:\n%s", fc)
	}
	if !strings.Contains(fc, "[v1]drawtext=") {
		t.Fatalf("third stage must consume [v1]:\n%s", fc)
	}
	if graph.OutputLabel != "[v2]" {
		t.Fatalf("expected final label [v2], got %q", graph.OutputLabel)
	}
	if len(graph.ExtraInputs) != 1 {
		t.Fatalf("expected one extra input, got %v", graph.ExtraInputs)
	}
}

func TestBuildSkipsUnknownKinds(t *testing.T) {
	overlays := []overlay.Overlay{
		textOverlay("keep", 0, 1),
		{Kind: "sticker", Content: "x", X: 0, Y: 0, StartTime: 0, EndTime: 1},
		textOverlay("also keep", 1, 2),
	}

	graph, err := filtergraph.Build(overlays, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := strings.Count(graph.FilterComplex, "drawtext="); got != 2 {
		t.Fatalf("expected 2 stages, found %d:\n%s", got, graph.FilterComplex)
	}
	// The skipped overlay must not advance the label counter.
	if graph.OutputLabel != "[v1]" {
		t.Fatalf("expected final label [v1], got %q", graph.OutputLabel)
	}
}

func TestBuildAllUnknownKindsYieldsEmptyGraph(t *testing.T) {
	graph, err := filtergraph.Build([]overlay.Overlay{
		{Kind: "sticker", Content: "x", StartTime: 0, EndTime: 1},
	}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !graph.IsEmpty() {
		t.Fatalf("expected empty graph, got %+v", graph)
	}
}

func TestBuildMissingAssetFails(t *testing.T) {
	o := overlay.Overlay{Kind: overlay.KindImage, Content: "ghost.png", StartTime: 0, EndTime: 1}
	_, err := filtergraph.Build([]overlay.Overlay{o}, mapResolver{})
	if err == nil {
		t.Fatal("expected resolution failure")
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
