package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
)

// robotsTTL is how long a fetched robots.txt is trusted
const robotsTTL = time.Hour

// RobotsChecker checks robots.txt compliance before fetching text from a URL
type RobotsChecker struct {
	cache      *gocache.Cache
	httpClient *http.Client
	userAgent  string
}

// NewRobotsChecker creates a new robots.txt checker
func NewRobotsChecker(userAgent string, httpClient *http.Client) *RobotsChecker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &RobotsChecker{
		cache:      gocache.New(robotsTTL, 10*time.Minute),
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// CanFetch reports whether the URL may be fetched according to robots.txt.
// An unreachable robots.txt allows the fetch.
func (r *RobotsChecker) CanFetch(ctx context.Context, rawURL string) (bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parse URL: %w", err)
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", parsed.Scheme, parsed.Host)

	data, err := r.robotsData(ctx, parsed.Host, robotsURL)
	if err != nil {
		return true, nil
	}

	path := parsed.Path
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, NormalizeUserAgent(r.userAgent)), nil
}

// robotsData fetches and caches robots.txt data per host
func (r *RobotsChecker) robotsData(ctx context.Context, host, robotsURL string) (*robotstxt.RobotsData, error) {
	if cached, found := r.cache.Get(host); found {
		return cached.(*robotstxt.RobotsData), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// FromResponse treats 4xx as allow-all and 5xx as disallow-all
	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.cache.Set(host, data, gocache.DefaultExpiration)
	return data, nil
}

// Clear clears the robots.txt cache
func (r *RobotsChecker) Clear() {
	r.cache.Flush()
}

// NormalizeUserAgent extracts the product token used for robots.txt matching
func NormalizeUserAgent(ua string) string {
	parts := strings.Fields(ua)
	if len(parts) > 0 {
		return strings.Split(parts[0], "/")[0]
	}
	return ua
}
