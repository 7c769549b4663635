package db

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Run statuses
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run sources, mirroring where the page text came from.
const (
	SourceURL  = "url"
	SourceFile = "file"
	SourceText = "text"
)

// Run represents one generation run over a careers page
type Run struct {
	ID           uuid.UUID  `json:"id"`
	Source       string     `json:"source"`
	SourceRef    string     `json:"source_ref"`
	ContentHash  string     `json:"content_hash"`
	Status       string     `json:"status"`
	JobCount     int        `json:"job_count"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// RunInput describes a run being started
type RunInput struct {
	Source      string
	SourceRef   string // URL or file path; empty for raw text
	ContentHash string
}

// Validate checks the run input before insertion
func (in *RunInput) Validate() error {
	switch in.Source {
	case SourceURL, SourceFile, SourceText:
	default:
		return errors.New("run source must be url, file or text")
	}
	if in.Source != SourceText && in.SourceRef == "" {
		return errors.New("run source_ref is required for url and file sources")
	}
	return nil
}

// Draft is one stored email, tied to the job it was written for
type Draft struct {
	ID                uuid.UUID `json:"id"`
	RunID             uuid.UUID `json:"run_id"`
	Position          int       `json:"position"`
	Role              string    `json:"role"`
	Experience        string    `json:"experience"`
	Skills            []string  `json:"skills"`
	Description       string    `json:"description"`
	Links             []string  `json:"links"`
	Body              string    `json:"body"`
	SignatureAppended bool      `json:"signature_appended"`
	Degraded          bool      `json:"degraded"`
	CreatedAt         time.Time `json:"created_at"`
}

// DraftInput is the data saved for one composed email
type DraftInput struct {
	Position          int // index of the job in extraction order
	Role              string
	Experience        string
	Skills            []string
	Description       string
	Links             []string
	Body              string
	SignatureAppended bool
	Degraded          bool
}

// Validate checks the draft input before insertion
func (in *DraftInput) Validate() error {
	if in.Position < 0 {
		return errors.New("draft position must be non-negative")
	}
	if in.Role == "" {
		return errors.New("draft role is required")
	}
	if in.Body == "" {
		return errors.New("draft body is required")
	}
	return nil
}

// nonNil keeps NOT NULL array columns from receiving NULL
func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
