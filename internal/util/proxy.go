package util

import (
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http/httpproxy"
)

// NewProxyFunc creates a proxy function based on configuration.
// If no proxy URLs are provided, falls back to environment variables.
// noProxy follows the NO_PROXY syntax (comma-separated hosts, domains and CIDRs).
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	cfg := &httpproxy.Config{
		HTTPProxy:  httpProxy,
		HTTPSProxy: httpsProxy,
		NoProxy:    noProxy,
	}
	if cfg.HTTPSProxy == "" {
		cfg.HTTPSProxy = httpProxy
	}
	proxyForURL := cfg.ProxyFunc()

	return func(req *http.Request) (*url.URL, error) {
		return proxyForURL(req.URL)
	}
}

// NewHTTPClient returns a client with the given timeout and proxy settings
func NewHTTPClient(timeout time.Duration, httpProxy, httpsProxy string) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: NewProxyFunc(httpProxy, httpsProxy, ""),
		},
	}
}
