package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const runColumns = `id, source, source_ref, content_hash, status, job_count, error_message, created_at, completed_at`

func scanRun(row pgx.Row) (*Run, error) {
	var run Run
	err := row.Scan(&run.ID, &run.Source, &run.SourceRef, &run.ContentHash, &run.Status,
		&run.JobCount, &run.ErrorMessage, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// CreateRun creates a new run record in the running state and returns its ID
func (db *DB) CreateRun(ctx context.Context, input *RunInput) (uuid.UUID, error) {
	if err := input.Validate(); err != nil {
		return uuid.Nil, fmt.Errorf("invalid run: %w", err)
	}

	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO email_runs (source, source_ref, content_hash, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		input.Source, input.SourceRef, input.ContentHash, RunStatusRunning,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun records the final status of a run. A non-nil runErr marks it failed.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, jobCount int, runErr error) error {
	status := RunStatusCompleted
	var message *string
	if runErr != nil {
		status = RunStatusFailed
		msg := runErr.Error()
		message = &msg
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE email_runs
		 SET status = $1, job_count = $2, error_message = $3, completed_at = NOW()
		 WHERE id = $4`,
		status, jobCount, message, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to complete run: run %s not found", runID)
	}
	return nil
}

// GetRun retrieves a run by ID. Returns nil when it does not exist.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	run, err := scanRun(db.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM email_runs WHERE id = $1`, runID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves recent runs, newest first
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+runColumns+` FROM email_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}
