package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidpress/internal/config"
)

func TestDefaultValues(t *testing.T) {
	cfg := config.Default()
	if cfg.Render.MaxWorkers != 2 {
		t.Fatalf("expected default max_workers 2, got %d", cfg.Render.MaxWorkers)
	}
	if cfg.FFmpegBinary() != "ffmpeg" || cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("expected default binaries, got %q/%q", cfg.FFmpegBinary(), cfg.FFprobeBinary())
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, path, exists, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatalf("expected exists=false for %s", path)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7823" {
		t.Fatalf("unexpected api bind %q", cfg.Paths.APIBind)
	}
	if !filepath.IsAbs(cfg.Paths.UploadDir) {
		t.Fatalf("expected expanded upload dir, got %q", cfg.Paths.UploadDir)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vidpress.toml")
	content := strings.Join([]string{
		"[paths]",
		`upload_dir = "` + filepath.Join(dir, "up") + `"`,
		`output_dir = "` + filepath.Join(dir, "out") + `"`,
		`assets_dir = "` + filepath.Join(dir, "assets") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		"[render]",
		"max_workers = 4",
		`ffmpeg_path = " /opt/ffmpeg/bin/ffmpeg "`,
		"[logging]",
		`format = "JSON"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be detected")
	}
	if cfg.Render.MaxWorkers != 4 {
		t.Fatalf("expected max_workers 4, got %d", cfg.Render.MaxWorkers)
	}
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected trimmed ffmpeg path, got %q", cfg.FFmpegBinary())
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized log format, got %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsBadLogging(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vidpress.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestValidateRejectsSharedOutputDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.UploadDir = "/tmp/vidpress-data"
	cfg.Paths.OutputDir = "/tmp/vidpress-data"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when output_dir equals upload_dir")
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.UploadDir = filepath.Join(dir, "up")
	cfg.Paths.OutputDir = filepath.Join(dir, "out")
	cfg.Paths.AssetsDir = filepath.Join(dir, "assets")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, d := range []string{cfg.Paths.UploadDir, cfg.Paths.OutputDir, cfg.Paths.AssetsDir, cfg.Paths.LogDir} {
		info, err := os.Stat(d)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s, err=%v", d, err)
		}
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[render]") {
		t.Fatal("expected sample to contain render section")
	}
}
