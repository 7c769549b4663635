// Package extraction turns scraped careers-page text into structured job postings using LLM extraction.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jonathan/cold-email-agent/internal/llm"
	"github.com/jonathan/cold-email-agent/internal/prompts"
	"github.com/jonathan/cold-email-agent/internal/schemas"
	"github.com/jonathan/cold-email-agent/internal/types"
)

// DefaultMaxInputChars bounds the page text sent in a single extraction call.
// Roughly 30k tokens, well inside the context window of the default models.
const DefaultMaxInputChars = 120_000

// Options configures an Extractor.
type Options struct {
	// MaxInputChars rejects longer page text before any LLM call. Zero uses the default; negative disables the check.
	MaxInputChars int
	Tier          llm.ModelTier
	Logger        *zap.Logger
}

// Extractor extracts job postings with one LLM call per page.
type Extractor struct {
	client        llm.Client
	maxInputChars int
	tier          llm.ModelTier
	logger        *zap.Logger
}

// New creates an Extractor backed by client.
func New(client llm.Client, opts Options) *Extractor {
	if opts.MaxInputChars == 0 {
		opts.MaxInputChars = DefaultMaxInputChars
	}
	if opts.Tier == "" {
		opts.Tier = llm.TierStandard
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Extractor{
		client:        client,
		maxInputChars: opts.MaxInputChars,
		tier:          opts.Tier,
		logger:        opts.Logger,
	}
}

// ExtractJobs extracts every job posting in pageText.
// Failures are *ExtractionError values; a partial list is never returned with an error.
func (e *Extractor) ExtractJobs(ctx context.Context, pageText string) ([]types.JobPosting, error) {
	if strings.TrimSpace(pageText) == "" {
		return nil, &ExtractionError{Reason: ReasonEmptyInput, Message: "page text is empty"}
	}
	if n := utf8.RuneCountInString(pageText); e.maxInputChars > 0 && n > e.maxInputChars {
		return nil, &ExtractionError{
			Reason:  ReasonInputTooLarge,
			Message: "page text exceeds the extraction limit; try a more specific URL",
		}
	}

	prompt, err := buildExtractionPrompt(pageText)
	if err != nil {
		return nil, &ExtractionError{Reason: ReasonLLMCall, Message: "failed to build prompt", Cause: err}
	}

	responseText, err := e.client.GenerateJSON(ctx, prompt, e.tier)
	if err != nil {
		reason := ReasonLLMCall
		if isContextLimitError(err) {
			reason = ReasonInputTooLarge
		}
		return nil, &ExtractionError{Reason: reason, Message: "failed to generate content from LLM", Cause: err}
	}

	jobs, err := parseJobPostings(responseText)
	if err != nil {
		e.logger.Debug("unparseable extraction response",
			zap.Int("response_chars", len(responseText)),
			zap.Error(err))
		return nil, err
	}

	e.logger.Info("extracted job postings",
		zap.Int("count", len(jobs)),
		zap.Int("page_chars", len(pageText)))
	return jobs, nil
}

// buildExtractionPrompt embeds the page text verbatim in the extraction template
func buildExtractionPrompt(pageText string) (string, error) {
	return prompts.Render("extraction.json", "extract-jobs", map[string]string{
		"PageText": pageText,
	})
}

// parseJobPostings normalizes the model output to a list of postings:
// an object becomes a one-element list, an array is kept, consecutive top-level
// values are concatenated in order, anything else is rejected.
func parseJobPostings(responseText string) ([]types.JobPosting, error) {
	cleaned := llm.CleanJSONBlock(responseText)
	if strings.TrimSpace(cleaned) == "" {
		return nil, &ExtractionError{Reason: ReasonUnparseable, Message: "empty model response"}
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	out := []types.JobPosting{}
	for {
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ExtractionError{
				Reason:  ReasonUnparseable,
				Message: "model output is not valid JSON (possibly truncated)",
				Cause:   err,
			}
		}

		postings, err := decodePostings(unwrapPostings(raw))
		if err != nil {
			return nil, err
		}
		for _, p := range postings {
			out = append(out, p.WithDefaults())
		}
	}
	return out, nil
}

// decodePostings validates and decodes one top-level JSON value.
func decodePostings(raw json.RawMessage) ([]types.JobPosting, error) {
	if err := schemas.Validate(schemas.JobPostings, raw); err != nil {
		return nil, &ExtractionError{
			Reason:  ReasonUnparseable,
			Message: "model output has an invalid shape",
			Cause:   err,
		}
	}

	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] == '{' {
		var single types.JobPosting
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, &ExtractionError{Reason: ReasonUnparseable, Message: "failed to decode job posting", Cause: err}
		}
		return []types.JobPosting{single}, nil
	}

	var postings []types.JobPosting
	if err := json.Unmarshal(trimmed, &postings); err != nil {
		return nil, &ExtractionError{Reason: ReasonUnparseable, Message: "failed to decode job postings", Cause: err}
	}
	return postings, nil
}

// postingKeys are the fields that make an object a job posting.
var postingKeys = []string{"role", "experience", "skills", "description"}

// unwrapPostings returns the array inside a wrapper object such as {"jobs": [...]}:
// an object with no posting field and exactly one property holding an array.
// Any other value is returned unchanged.
func unwrapPostings(raw json.RawMessage) json.RawMessage {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) != 1 {
		return raw
	}
	for _, key := range postingKeys {
		if _, ok := fields[key]; ok {
			return raw
		}
	}
	for _, value := range fields {
		if v := bytes.TrimSpace(value); len(v) > 0 && v[0] == '[' {
			return v
		}
	}
	return raw
}

// contextLimitMarkers are fragments providers use when a prompt exceeds the model window.
var contextLimitMarkers = []string{
	"context length",
	"context window",
	"too many tokens",
	"token limit",
	"exceeds the maximum number of tokens",
	"input token count",
	"request payload size exceeds",
}

func isContextLimitError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range contextLimitMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
