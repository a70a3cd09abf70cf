// Package feed fetches the remote RSS/Atom feed exposed to every rendered
// page.
package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultMaxBytes = 5 * 1024 * 1024
	maxRedirects    = 5
)

// ErrTooLarge is returned when the feed body exceeds the configured limit.
var ErrTooLarge = errors.New("feed response too large")

// Fetcher retrieves and parses a feed.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (*gofeed.Feed, error)
}

// HTTPFetcher fetches feeds over HTTP(S) and parses them with gofeed.
type HTTPFetcher struct {
	Client   *http.Client
	MaxBytes int64
}

// NewHTTPFetcher creates a fetcher with a bounded client. Zero values pick
// the defaults.
func NewHTTPFetcher(timeout time.Duration, maxBytes int64) *HTTPFetcher {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &HTTPFetcher{Client: NewHTTPClient(timeout), MaxBytes: maxBytes}
}

// NewHTTPClient creates an HTTP client that only follows same-host
// redirects.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) == 0 {
				return nil
			}
			if req.URL.Host != via[0].URL.Host {
				return errors.New("redirect to different host blocked")
			}
			if len(via) >= maxRedirects {
				return errors.New("too many redirects")
			}
			return nil
		},
	}
}

// Fetch performs a single GET of uri and parses the body.
func (f *HTTPFetcher) Fetch(ctx context.Context, uri string) (*gofeed.Feed, error) {
	if err := ValidateURI(uri); err != nil {
		return nil, err
	}

	client := f.Client
	if client == nil {
		client = NewHTTPClient(0)
	}
	limit := f.MaxBytes
	if limit <= 0 {
		limit = defaultMaxBytes
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.1")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", uri, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: HTTP %d", uri, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", uri, err)
	}
	return parsed, nil
}

// ValidateURI accepts absolute http and https URIs only.
func ValidateURI(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL has no host: %s", raw)
	}
	return nil
}

// Static returns the same feed for every fetch. A nil Feed is allowed and
// is what `--offline` renders with.
type Static struct {
	Feed *gofeed.Feed
	Err  error
}

// Fetch returns the configured feed or error.
func (s Static) Fetch(ctx context.Context, _ string) (*gofeed.Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Feed, nil
}
