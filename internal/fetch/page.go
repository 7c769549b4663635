package fetch

import (
	"context"

	"go.uber.org/zap"
)

// PageOptions configures Page.
type PageOptions struct {
	HTTP *Options
	// Renderer, when set, re-renders pages whose static HTML yields too little text.
	Renderer Renderer
	Logger   *zap.Logger
}

// Page fetches a careers page and extracts its readable text using the
// selectors of the detected hosting platform.
func Page(ctx context.Context, urlStr string, opts PageOptions) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	result, err := URL(ctx, urlStr, opts.HTTP)
	if err != nil {
		return nil, err
	}

	platform := DetectPlatform(urlStr)
	content := ContentSelectors(platform)
	noise := NoiseSelectors(platform)

	text, err := ExtractMainText(result.HTML, content, noise...)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to extract page text", Cause: err}
	}
	result.Text = text

	if opts.Renderer != nil && ShouldUseBrowser(text) {
		logger.Info("page text too short, rendering in browser",
			zap.String("url", urlStr),
			zap.Int("text_chars", len(text)))

		html, renderErr := opts.Renderer.Render(ctx, urlStr)
		if renderErr != nil {
			// The static text is still usable.
			logger.Warn("browser rendering failed", zap.String("url", urlStr), zap.Error(renderErr))
		} else if rendered, extractErr := ExtractMainText(html, content, noise...); extractErr == nil && len(rendered) > len(text) {
			result.HTML = html
			result.Text = rendered
			result.Rendered = true
		}
	}

	logger.Debug("fetched page",
		zap.String("url", urlStr),
		zap.String("platform", string(platform)),
		zap.Bool("rendered", result.Rendered),
		zap.Int("text_chars", len(result.Text)))
	return result, nil
}
