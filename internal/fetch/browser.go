package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// MinContentLength is the extracted text length below which a page is assumed
// to be rendered client-side and is retried in the headless browser.
const MinContentLength = 500

// DefaultBrowserTimeout bounds a headless browser render.
const DefaultBrowserTimeout = 45 * time.Second

// ShouldUseBrowser reports whether extracted text is too short to be the real page.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// Renderer returns the HTML of a fully rendered page.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// ChromeRenderer renders pages with a local headless Chrome via chromedp.
type ChromeRenderer struct {
	Timeout time.Duration
	// Settle is how long to wait after load for client-side rendering.
	Settle time.Duration
	Logger *zap.Logger
}

// Render implements Renderer. Chrome or Chromium must be installed.
func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultBrowserTimeout
	}
	settle := r.Settle
	if settle <= 0 {
		settle = 3 * time.Second
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(DefaultUserAgent),
		)...,
	)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	logger.Debug("rendering page in headless browser", zap.String("url", url))

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(settle),
		// Cookie banners can hide the listing; a missing button is not an error.
		chromedp.ActionFunc(func(ctx context.Context) error {
			_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible, chromedp.AtLeast(0)).Do(ctx)
			return nil
		}),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	logger.Debug("rendered page", zap.String("url", url), zap.Int("html_bytes", len(html)))
	return html, nil
}
