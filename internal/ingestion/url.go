package ingestion

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/cold-email-agent/internal/fetch"
)

var (
	// ErrInvalidURL is returned when URL is malformed
	ErrInvalidURL = errors.New("invalid URL")
	// ErrHTTPRequestFailed is returned when the page could not be fetched
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrNoContent is returned when a page yields no text
	ErrNoContent = errors.New("no readable content")
)

// URLOptions configures IngestFromURL.
type URLOptions struct {
	// UseBrowser enables the headless browser fallback for client-rendered pages.
	UseBrowser bool
	HTTP       *fetch.Options
	// Renderer overrides the browser used when UseBrowser is set.
	Renderer fetch.Renderer
	Logger   *zap.Logger
}

// IngestFromURL fetches a careers page, extracts its main text and cleans it.
func IngestFromURL(ctx context.Context, urlStr string, opts URLOptions) (string, *Metadata, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := fetch.ValidateURL(urlStr); err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	pageOpts := fetch.PageOptions{HTTP: opts.HTTP, Logger: logger}
	if opts.UseBrowser {
		pageOpts.Renderer = opts.Renderer
		if pageOpts.Renderer == nil {
			pageOpts.Renderer = &fetch.ChromeRenderer{Logger: logger}
		}
	}

	result, err := fetch.Page(ctx, urlStr, pageOpts)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	cleaned := CleanText(result.Text)
	if cleaned == "" {
		return "", nil, fmt.Errorf("%w at %s", ErrNoContent, urlStr)
	}

	metadata := NewMetadata(cleaned, SourceURL)
	metadata.URL = urlStr
	metadata.Platform = string(fetch.DetectPlatform(urlStr))
	metadata.Rendered = result.Rendered

	logger.Info("ingested page",
		zap.String("url", urlStr),
		zap.String("platform", metadata.Platform),
		zap.Int("chars", metadata.Chars))
	return cleaned, metadata, nil
}
