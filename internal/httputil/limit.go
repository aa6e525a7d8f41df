// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// limitedTransport blocks before each request until the rate limiter
// grants a token. Academic APIs expect polite clients; arXiv and the
// Crossref polite pool both document roughly one request per second.
type limitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

// RoundTrip implements http.RoundTripper.
func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}

// NewLimitedClient returns an HTTP client whose requests are paced to
// requestsPerSecond with a burst of one. A non-positive rate disables
// pacing.
func NewLimitedClient(timeout time.Duration, requestsPerSecond float64) *http.Client {
	client := &http.Client{Timeout: timeout}
	if requestsPerSecond > 0 {
		client.Transport = &limitedTransport{
			base:    http.DefaultTransport,
			limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		}
	}
	return client
}
