package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/ppiankov/textsense/internal/util"
)

const (
	maxRedirects = 3
	maxAttempts  = 3
)

// fetchSleepFunc is replaced in tests
var fetchSleepFunc = time.Sleep

// retryableError marks transient fetch failures
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Fetcher retrieves text from URLs, honouring robots.txt
type Fetcher struct {
	httpClient *http.Client
	robots     *util.RobotsChecker
	userAgent  string
	maxBytes   int64
}

// FetcherConfig configures a Fetcher
type FetcherConfig struct {
	UserAgent  string
	Timeout    time.Duration
	MaxBytes   int64
	HTTPProxy  string
	HTTPSProxy string
}

// NewFetcher creates a new Fetcher with the given configuration
func NewFetcher(cfg FetcherConfig) *Fetcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	client := util.NewHTTPClient(timeout, cfg.HTTPProxy, cfg.HTTPSProxy)
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}

	return &Fetcher{
		httpClient: client,
		robots:     util.NewRobotsChecker(cfg.UserAgent, client),
		userAgent:  cfg.UserAgent,
		maxBytes:   maxBytes,
	}
}

// FromURL fetches rawURL and returns its text. HTML pages are reduced to
// their visible text; text/plain bodies are returned as is.
func (f *Fetcher) FromURL(ctx context.Context, rawURL string) (*Document, error) {
	allowed, err := f.robots.CanFetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		doc, err := f.fetch(ctx, rawURL)
		if err == nil {
			return doc, nil
		}
		lastErr = err

		var retryable *retryableError
		if !errors.As(err, &retryable) || attempt == maxAttempts || ctx.Err() != nil {
			break
		}
		fetchSleepFunc(time.Duration(attempt) * 500 * time.Millisecond)
	}
	return nil, lastErr
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &retryableError{fmt.Errorf("fetch: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, &retryableError{fmt.Errorf("unexpected status: %s", resp.Status)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := readLimited(resp.Body, f.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	doc := &Document{Source: resp.Request.URL.String()}
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	doc.ContentType = mediaType

	switch mediaType {
	case "text/plain":
		doc.Text = string(body)
	case "text/html", "application/xhtml+xml", "":
		text, title, err := ExtractVisibleText(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("parse HTML: %w", err)
		}
		doc.Text, doc.Title = text, title
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mediaType)
	}

	return doc, nil
}
