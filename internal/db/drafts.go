package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const draftColumns = `id, run_id, position, role, experience, skills, description, links,
	body, signature_appended, degraded, created_at`

// SaveDraft stores one composed email for a run. Saving the same position twice
// replaces the earlier draft.
func (db *DB) SaveDraft(ctx context.Context, runID uuid.UUID, input *DraftInput) (*Draft, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("invalid draft: %w", err)
	}

	var d Draft
	err := db.pool.QueryRow(ctx,
		`INSERT INTO email_drafts (run_id, position, role, experience, skills, description,
		                           links, body, signature_appended, degraded)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (run_id, position) DO UPDATE SET
		     role = EXCLUDED.role, experience = EXCLUDED.experience, skills = EXCLUDED.skills,
		     description = EXCLUDED.description, links = EXCLUDED.links, body = EXCLUDED.body,
		     signature_appended = EXCLUDED.signature_appended, degraded = EXCLUDED.degraded,
		     created_at = NOW()
		 RETURNING `+draftColumns,
		runID, input.Position, input.Role, input.Experience, nonNil(input.Skills),
		input.Description, nonNil(input.Links), input.Body, input.SignatureAppended, input.Degraded,
	).Scan(&d.ID, &d.RunID, &d.Position, &d.Role, &d.Experience, &d.Skills, &d.Description,
		&d.Links, &d.Body, &d.SignatureAppended, &d.Degraded, &d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save draft %d: %w", input.Position, err)
	}
	return &d, nil
}

// ListDrafts retrieves a run's drafts in job order
func (db *DB) ListDrafts(ctx context.Context, runID uuid.UUID) ([]Draft, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+draftColumns+` FROM email_drafts WHERE run_id = $1 ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []Draft
	for rows.Next() {
		var d Draft
		if err := rows.Scan(&d.ID, &d.RunID, &d.Position, &d.Role, &d.Experience, &d.Skills,
			&d.Description, &d.Links, &d.Body, &d.SignatureAppended, &d.Degraded, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}
