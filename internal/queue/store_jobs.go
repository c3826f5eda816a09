package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const jobColumns = "id, input_path, original_name, output_path, status, message, progress, overlays_json, created_at, updated_at"

// NewJob inserts a pending render job and returns the stored row.
func (s *Store) NewJob(ctx context.Context, inputPath, originalName, overlaysJSON string) (*Job, error) {
	id := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO render_jobs (
            id, input_path, original_name, status, message, progress,
            overlays_json, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		inputPath,
		nullableString(originalName),
		StatusPending,
		"Queued",
		0.0,
		nullableString(overlaysJSON),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	return s.GetJob(ctx, id)
}

// GetJob fetches a job by identifier. A missing job returns (nil, nil).
func (s *Store) GetJob(ctx context.Context, id string) (*Job, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM render_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// UpdateJob persists the job's mutable fields.
func (s *Store) UpdateJob(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("nil job")
	}
	job.UpdatedAt = time.Now().UTC()

	res, err := s.execWithRetry(
		ctx,
		`UPDATE render_jobs SET
            input_path = ?, original_name = ?, output_path = ?, status = ?,
            message = ?, progress = ?, overlays_json = ?, updated_at = ?
        WHERE id = ?`,
		job.InputPath,
		nullableString(job.OriginalName),
		nullableString(job.OutputPath),
		job.Status,
		nullableString(job.Message),
		job.Progress,
		nullableString(job.OverlaysJSON),
		job.UpdatedAt.Format(time.RFC3339Nano),
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update job: no row for %s", job.ID)
	}
	return nil
}

// UpdateJobProgress writes only the progress column. Used on the render hot
// path so concurrent jobs don't clobber each other's unrelated fields.
func (s *Store) UpdateJobProgress(ctx context.Context, id string, progress float64) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`UPDATE render_jobs SET progress = ?, updated_at = ? WHERE id = ?`,
		progress,
		timestamp,
		id,
	)
	if err != nil {
		return fmt.Errorf("update job progress: %w", err)
	}
	return nil
}

// ListJobs returns all jobs, newest first.
func (s *Store) ListJobs(ctx context.Context) ([]*Job, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM render_jobs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

// ListJobsByStatus returns all jobs in the given state, newest first.
func (s *Store) ListJobsByStatus(ctx context.Context, status Status) ([]*Job, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM render_jobs WHERE status = ? ORDER BY created_at DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("list jobs by status: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

// FailInterrupted marks jobs that were mid-render when the daemon stopped.
// Called at startup so a crash never leaves jobs stuck in processing.
func (s *Store) FailInterrupted(ctx context.Context, message string) (int64, error) {
	if message == "" {
		message = DaemonStopReason
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE render_jobs SET status = ?, message = ?, updated_at = ? WHERE status = ?`,
		StatusError,
		message,
		timestamp,
		StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("fail interrupted jobs: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("fail interrupted rows: %w", err)
	}
	return affected, nil
}

// Health aggregates job counts per lifecycle state.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM render_jobs GROUP BY status`)
	if err != nil {
		return HealthSummary{}, fmt.Errorf("health query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summary HealthSummary
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return HealthSummary{}, fmt.Errorf("scan health row: %w", err)
		}
		summary.Total += count
		switch status {
		case StatusPending:
			summary.Pending = count
		case StatusProcessing:
			summary.Processing = count
		case StatusDone:
			summary.Done = count
		case StatusError:
			summary.Errored = count
		}
	}
	if err := rows.Err(); err != nil {
		return HealthSummary{}, fmt.Errorf("iterate health rows: %w", err)
	}
	return summary, nil
}

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id           string
		inputPath    string
		originalName sql.NullString
		outputPath   sql.NullString
		statusStr    string
		message      sql.NullString
		progress     sql.NullFloat64
		overlaysJSON sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&inputPath,
		&originalName,
		&outputPath,
		&statusStr,
		&message,
		&progress,
		&overlaysJSON,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:           id,
		InputPath:    inputPath,
		OriginalName: originalName.String,
		OutputPath:   outputPath.String,
		Status:       Status(statusStr),
		Message:      message.String,
		Progress:     progress.Float64,
		OverlaysJSON: overlaysJSON.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	return job, nil
}
