package ingestion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinPostingLength is the shortest extracted body accepted without rendering
// the page in a browser
const MinPostingLength = 500

// Renderer returns the HTML of a page after its scripts have run
type Renderer func(ctx context.Context, url string) (string, error)

// NeedsRendering reports whether extracted text is too short to be a posting,
// which usually means the job board renders it with JavaScript
func NeedsRendering(text string) bool {
	return len(strings.TrimSpace(text)) < MinPostingLength
}

// ChromeRenderer renders pages in headless Chrome. Requires Chrome or
// Chromium on the host. A non-positive timeout uses DefaultFetchTimeout.
func ChromeRenderer(timeout time.Duration) Renderer {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return func(ctx context.Context, url string) (string, error) {
		allocCtx, cancel := chromedp.NewExecAllocator(ctx,
			append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", true),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
				chromedp.UserAgent(userAgent),
			)...,
		)
		defer cancel()

		browserCtx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
		defer cancel()

		var html string
		err := chromedp.Run(browserCtx,
			chromedp.Navigate(url),
			chromedp.WaitReady("body"),
			// give client-side rendering a moment to fill the page
			chromedp.Sleep(2*time.Second),
			chromedp.OuterHTML("html", &html),
		)
		if err != nil {
			return "", fmt.Errorf("browser rendering failed: %w", err)
		}
		return html, nil
	}
}
