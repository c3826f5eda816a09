package assets

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"vidpress/internal/queue"
	"vidpress/internal/services"
)

// Service stores uploaded overlay assets on disk and records them in the
// job database.
type Service struct {
	assetsDir string
	store     *queue.Store
}

// NewService constructs an asset service rooted at assetsDir.
func NewService(assetsDir string, store *queue.Store) (*Service, error) {
	if assetsDir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "assets", "new service", "assets directory required", nil)
	}
	if store == nil {
		return nil, services.Wrap(services.ErrConfiguration, "assets", "new service", "store required", nil)
	}
	return &Service{assetsDir: assetsDir, store: store}, nil
}

// Save persists an uploaded asset under a fresh UUID filename, keeping the
// original extension, and records the row. The returned asset's Filename is
// what overlay definitions reference in their content field.
func (s *Service) Save(ctx context.Context, r io.Reader, originalName, contentType string) (*queue.Asset, error) {
	if err := os.MkdirAll(s.assetsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create assets dir: %w", err)
	}

	kind := DetectKind(contentType, originalName)
	filename := uuid.NewString() + filepath.Ext(originalName)
	path := filepath.Join(s.assetsDir, filename)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create asset file: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("write asset file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("close asset file: %w", err)
	}

	if originalName == "" {
		originalName = filename
	}
	asset, err := s.store.NewAsset(ctx, filename, originalName, kind, path)
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	return asset, nil
}

// List returns all stored assets, newest first.
func (s *Service) List(ctx context.Context) ([]*queue.Asset, error) {
	return s.store.ListAssets(ctx)
}

// Resolver maps overlay content values to asset paths on disk.
type Resolver struct {
	assetsDir string
}

// NewResolver constructs a resolver rooted at assetsDir.
func NewResolver(assetsDir string) *Resolver {
	return &Resolver{assetsDir: assetsDir}
}

// Resolve turns an overlay content value into an absolute path. Absolute
// paths that exist are used verbatim; anything else is treated as a filename
// under the assets directory. Relative references that walk out of the
// assets directory are rejected as not found.
func (r *Resolver) Resolve(content string) (string, error) {
	if filepath.IsAbs(content) {
		if _, err := os.Stat(content); err == nil {
			return content, nil
		}
	}

	candidate := filepath.Join(r.assetsDir, content)
	if pathWithin(r.assetsDir, candidate) {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", services.Wrap(services.ErrNotFound, "assets", "resolve overlay",
		fmt.Sprintf("Overlay asset not found: %s (looked in %s)", content, candidate), nil)
}

// pathWithin reports whether target sits inside dir after normalization.
func pathWithin(dir, target string) bool {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
