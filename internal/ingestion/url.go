package ingestion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultFetchTimeout bounds a posting download
	DefaultFetchTimeout = 30 * time.Second
	userAgent           = "Mozilla/5.0 (compatible; ResumeFit/1.0)"
	// maxPageBytes caps how much of a page is read
	maxPageBytes = 5 << 20
)

// FetchError represents a failed posting download
type FetchError struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Posting is a job posting read from a URL
type Posting struct {
	Title    string
	Body     string
	Metadata *Metadata
}

// FetchOption configures FetchPosting
type FetchOption func(*fetchOptions)

type fetchOptions struct {
	render Renderer
}

// WithRenderer re-reads pages whose static HTML is too thin to be a posting
// (see NeedsRendering) through r
func WithRenderer(r Renderer) FetchOption {
	return func(o *fetchOptions) { o.render = r }
}

// FetchPosting downloads an HTML job posting and extracts its title and body.
// A nil client uses one with DefaultFetchTimeout.
func FetchPosting(ctx context.Context, client *http.Client, rawURL string, opts ...FetchOption) (*Posting, error) {
	var o fetchOptions
	for _, opt := range opts {
		opt(&o)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, &FetchError{URL: rawURL, Message: "invalid URL", Cause: err}
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Message: "failed to read response body", Cause: err}
	}

	title, text, err := ParseJobHTML(string(body))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Message: "content extraction failed", Cause: err}
	}

	if o.render != nil && NeedsRendering(text) {
		rendered, rerr := o.render(ctx, rawURL)
		if rerr != nil {
			if text == "" {
				return nil, &FetchError{URL: rawURL, Message: "browser rendering failed", Cause: rerr}
			}
			// keep the thin static text rather than failing
			return &Posting{Title: title, Body: text, Metadata: NewMetadata(title, text, rawURL)}, nil
		}
		if rTitle, rText, perr := ParseJobHTML(rendered); perr == nil && len(rText) > len(text) {
			title, text = rTitle, rText
		}
	}
	return &Posting{Title: title, Body: text, Metadata: NewMetadata(title, text, rawURL)}, nil
}
