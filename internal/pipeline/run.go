// Package pipeline provides the high-level orchestration for cold email generation:
// ingest a careers page, extract its job postings, then match portfolio links and
// compose one email per posting.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cold-email-agent/internal/composition"
	"github.com/jonathan/cold-email-agent/internal/db"
	"github.com/jonathan/cold-email-agent/internal/extraction"
	"github.com/jonathan/cold-email-agent/internal/fetch"
	"github.com/jonathan/cold-email-agent/internal/ingestion"
	"github.com/jonathan/cold-email-agent/internal/linkindex"
	"github.com/jonathan/cold-email-agent/internal/llm"
	"github.com/jonathan/cold-email-agent/internal/observability"
	"github.com/jonathan/cold-email-agent/internal/types"
)

var (
	// ErrNoSource is returned when no page source was given
	ErrNoSource = errors.New("one of url, file or text is required")
	// ErrMultipleSources is returned when more than one page source was given
	ErrMultipleSources = errors.New("url, file and text are mutually exclusive")
	// ErrNoJobPostings is returned when extraction finds no postings on the page
	ErrNoJobPostings = errors.New("no job postings found on the page")
)

// RunStore persists runs and their drafts. *db.DB implements it.
type RunStore interface {
	CreateRun(ctx context.Context, input *db.RunInput) (uuid.UUID, error)
	CompleteRun(ctx context.Context, runID uuid.UUID, jobCount int, runErr error) error
	SaveDraft(ctx context.Context, runID uuid.UUID, input *db.DraftInput) (*db.Draft, error)
}

// Options holds configuration for one generation run
type Options struct {
	// Page source; exactly one must be set.
	URL  string
	File string
	Text string

	Profile     types.UserProfile
	Instruction string
	// Limit is the number of portfolio links per job; zero or less means the index default.
	Limit int
	// Concurrency above 1 composes that many jobs in parallel.
	Concurrency   int
	MaxInputChars int

	Client llm.Client
	// CompositionTier selects the model tier for emails; empty keeps the composer default.
	CompositionTier llm.ModelTier
	// Index is optional; without it emails are composed with no portfolio links.
	Index linkindex.Index
	// Store is optional; persistence failures are logged and never fail the run.
	Store RunStore
	// OutputDir, when set, receives one text file per draft.
	OutputDir string

	UseBrowser bool
	HTTP       *fetch.Options
	Renderer   fetch.Renderer

	Logger *zap.Logger
	// Printer, when set, receives verbose summaries.
	Printer *observability.Printer
}

// JobResult is the outcome for one extracted posting
type JobResult struct {
	Job   types.JobPosting `json:"job"`
	Links []string         `json:"links"`
	Draft types.EmailDraft `json:"draft"`
	// File is the written output path, if any.
	File string `json:"file,omitempty"`
}

// Result is the outcome of a run, with jobs in extraction order
type Result struct {
	RunID    uuid.UUID           `json:"run_id,omitempty"`
	Metadata *ingestion.Metadata `json:"metadata"`
	Jobs     []JobResult         `json:"jobs"`
}

// Degraded counts the jobs whose email could not be generated.
func (r *Result) Degraded() int {
	n := 0
	for _, j := range r.Jobs {
		if j.Draft.Degraded {
			n++
		}
	}
	return n
}

// Files lists the written output paths in job order.
func (r *Result) Files() []string {
	var files []string
	for _, j := range r.Jobs {
		if j.File != "" {
			files = append(files, j.File)
		}
	}
	return files
}

// Run executes the full pipeline. The profile is validated before anything else so
// that an incomplete profile never costs an LLM call. Extraction failures abort the
// run; composition failures are reported inline per job.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := opts.Profile.Validate(); err != nil {
		return nil, err
	}
	if opts.Client == nil {
		return nil, errors.New("pipeline: llm client is required")
	}

	text, metadata, err := Ingest(ctx, opts)
	if err != nil {
		return nil, err
	}
	result := &Result{Metadata: metadata}

	if opts.Store != nil {
		result.RunID = createRun(ctx, opts.Store, metadata, logger)
	}

	extractor := extraction.New(opts.Client, extraction.Options{
		MaxInputChars: opts.MaxInputChars,
		Logger:        logger,
	})
	jobs, err := extractor.ExtractJobs(ctx, ingestion.CollapseWhitespace(text))
	if err != nil {
		completeRun(ctx, opts.Store, result.RunID, 0, err, logger)
		return nil, err
	}
	if len(jobs) == 0 {
		logger.Warn("extraction found no job postings", zap.String("source", string(metadata.Source)))
		completeRun(ctx, opts.Store, result.RunID, 0, ErrNoJobPostings, logger)
		return nil, ErrNoJobPostings
	}
	if opts.Printer != nil {
		opts.Printer.PrintJobPostings(jobs)
	}

	result.Jobs = composeAll(ctx, opts, jobs, logger)

	if opts.OutputDir != "" {
		if err := WriteDrafts(opts.OutputDir, result.Jobs); err != nil {
			completeRun(ctx, opts.Store, result.RunID, len(jobs), err, logger)
			return result, err
		}
	}

	if opts.Store != nil && result.RunID != uuid.Nil {
		saveDrafts(ctx, opts.Store, result.RunID, result.Jobs, logger)
	}
	completeRun(ctx, opts.Store, result.RunID, len(jobs), nil, logger)

	logger.Info("run complete",
		zap.Int("jobs", len(result.Jobs)),
		zap.Int("degraded", result.Degraded()))
	return result, nil
}

// Ingest reads page text from the single configured source.
func Ingest(ctx context.Context, opts Options) (string, *ingestion.Metadata, error) {
	set := 0
	for _, s := range []string{opts.URL, opts.File, opts.Text} {
		if s != "" {
			set++
		}
	}
	switch {
	case set == 0:
		return "", nil, ErrNoSource
	case set > 1:
		return "", nil, ErrMultipleSources
	}

	switch {
	case opts.URL != "":
		return ingestion.IngestFromURL(ctx, opts.URL, ingestion.URLOptions{
			UseBrowser: opts.UseBrowser,
			HTTP:       opts.HTTP,
			Renderer:   opts.Renderer,
			Logger:     opts.Logger,
		})
	case opts.File != "":
		return ingestion.IngestFromFile(opts.File)
	default:
		return ingestion.IngestText(opts.Text)
	}
}

// composeAll runs link lookup and composition for every job, keeping job order.
func composeAll(ctx context.Context, opts Options, jobs []types.JobPosting, logger *zap.Logger) []JobResult {
	composer := composition.New(opts.Client, composition.Options{Tier: opts.CompositionTier, Logger: logger})
	results := make([]JobResult, len(jobs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Concurrency, 1))

	for i, job := range jobs {
		g.Go(func() error {
			var links []string
			if opts.Index != nil {
				links = opts.Index.Query(gCtx, job.Skills, opts.Limit)
			}
			draft := composer.Compose(gCtx, job, links, opts.Profile, opts.Instruction)
			results[i] = JobResult{Job: job.WithDefaults(), Links: links, Draft: draft}
			return nil
		})
	}
	// Compose never fails the group; failures are carried in the draft.
	_ = g.Wait()

	if opts.Printer != nil {
		for _, r := range results {
			opts.Printer.PrintLinks(r.Job.Role, r.Links)
			opts.Printer.PrintEmail(r.Job.Role, r.Draft)
		}
	}
	return results
}

func createRun(ctx context.Context, store RunStore, metadata *ingestion.Metadata, logger *zap.Logger) uuid.UUID {
	input := &db.RunInput{Source: string(metadata.Source), ContentHash: metadata.Hash}
	switch metadata.Source {
	case ingestion.SourceURL:
		input.SourceRef = metadata.URL
	case ingestion.SourceFile:
		input.SourceRef = metadata.Path
	}

	id, err := store.CreateRun(ctx, input)
	if err != nil {
		logger.Warn("failed to create run record, continuing without persistence", zap.Error(err))
		return uuid.Nil
	}
	logger.Debug("created run", zap.String("run_id", id.String()))
	return id
}

func saveDrafts(ctx context.Context, store RunStore, runID uuid.UUID, jobs []JobResult, logger *zap.Logger) {
	for i, r := range jobs {
		_, err := store.SaveDraft(ctx, runID, &db.DraftInput{
			Position:          i,
			Role:              r.Job.Role,
			Experience:        r.Job.Experience,
			Skills:            r.Job.Skills,
			Description:       r.Job.Description,
			Links:             r.Links,
			Body:              r.Draft.Body,
			SignatureAppended: r.Draft.SignatureAppended,
			Degraded:          r.Draft.Degraded,
		})
		if err != nil {
			logger.Warn("failed to save draft", zap.Int("position", i), zap.Error(err))
		}
	}
}

func completeRun(ctx context.Context, store RunStore, runID uuid.UUID, jobCount int, runErr error, logger *zap.Logger) {
	if store == nil || runID == uuid.Nil {
		return
	}
	if err := store.CompleteRun(ctx, runID, jobCount, runErr); err != nil {
		logger.Warn("failed to complete run record", zap.String("run_id", runID.String()), zap.Error(err))
	}
}

// String renders a one-line summary of the result.
func (r *Result) String() string {
	return fmt.Sprintf("%d emails (%d failed)", len(r.Jobs), r.Degraded())
}
