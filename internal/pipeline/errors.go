package pipeline

import (
	"errors"
	"os"
	"strings"

	"github.com/jonathan/cold-email-agent/internal/extraction"
	"github.com/jonathan/cold-email-agent/internal/ingestion"
	"github.com/jonathan/cold-email-agent/internal/types"
)

// User-facing error labels
const (
	LabelValidation = "validation error"
	LabelBadInput   = "bad input/URL"
	LabelGeneration = "generation error"
)

// Classify labels err for display. Profile problems are validation errors;
// anything wrong with the page source (including text the model cannot take)
// is bad input; everything else is a generation error.
func Classify(err error) string {
	var profileErr *types.ProfileValidationError
	if errors.As(err, &profileErr) {
		return LabelValidation
	}

	switch {
	case errors.Is(err, ErrNoSource),
		errors.Is(err, ErrMultipleSources),
		errors.Is(err, ErrNoJobPostings),
		errors.Is(err, ingestion.ErrInvalidURL),
		errors.Is(err, ingestion.ErrHTTPRequestFailed),
		errors.Is(err, ingestion.ErrNoContent),
		errors.Is(err, os.ErrNotExist):
		return LabelBadInput
	}

	switch extraction.ReasonOf(err) {
	case extraction.ReasonEmptyInput, extraction.ReasonInputTooLarge:
		return LabelBadInput
	}

	return LabelGeneration
}

// Describe prefixes err with its label unless the message already carries it.
func Describe(err error) string {
	label := Classify(err)
	msg := err.Error()
	if strings.HasPrefix(msg, label) {
		return msg
	}
	return label + ": " + msg
}
