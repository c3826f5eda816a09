package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const assetColumns = "id, filename, original_name, kind, path, created_at"

// NewAsset records an uploaded overlay asset.
func (s *Store) NewAsset(ctx context.Context, filename, originalName, kind, path string) (*Asset, error) {
	id := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO overlay_assets (id, filename, original_name, kind, path, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		id,
		filename,
		nullableString(originalName),
		kind,
		path,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert asset: %w", err)
	}

	return s.GetAssetByFilename(ctx, filename)
}

// GetAssetByFilename fetches an asset by stored filename. A missing asset
// returns (nil, nil).
func (s *Store) GetAssetByFilename(ctx context.Context, filename string) (*Asset, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM overlay_assets WHERE filename = ?`, filename)
	asset, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return asset, nil
}

// ListAssets returns all uploaded assets, newest first.
func (s *Store) ListAssets(ctx context.Context) ([]*Asset, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+assetColumns+` FROM overlay_assets ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var assets []*Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}
	return assets, nil
}

func scanAsset(scanner interface{ Scan(dest ...any) error }) (*Asset, error) {
	var (
		id           string
		filename     string
		originalName sql.NullString
		kind         string
		path         string
		createdRaw   sql.NullString
	)

	if err := scanner.Scan(&id, &filename, &originalName, &kind, &path, &createdRaw); err != nil {
		return nil, err
	}

	asset := &Asset{
		ID:           id,
		Filename:     filename,
		OriginalName: originalName.String,
		Kind:         kind,
		Path:         path,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		asset.CreatedAt = created
	}
	return asset, nil
}
