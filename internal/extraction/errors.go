package extraction

import (
	"errors"
	"fmt"
)

// ErrExtractionFailed matches every *ExtractionError via errors.Is.
var ErrExtractionFailed = errors.New("extraction failed")

// Reason classifies why extraction failed.
type Reason string

// Extraction failure reasons.
const (
	ReasonEmptyInput    Reason = "empty input"
	ReasonInputTooLarge Reason = "input too large"
	ReasonUnparseable   Reason = "unparseable"
	ReasonLLMCall       Reason = "llm call failed"
)

// ExtractionError reports a failed job extraction. No partial result accompanies it.
type ExtractionError struct {
	Reason  Reason
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("extraction failed (%s)", e.Reason)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, ErrExtractionFailed) match any extraction error.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtractionFailed
}

// ReasonOf returns the failure reason of err, or "" when err is not an extraction error.
func ReasonOf(err error) Reason {
	var extErr *ExtractionError
	if errors.As(err, &extErr) {
		return extErr.Reason
	}
	return ""
}
