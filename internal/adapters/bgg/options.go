package bgg

import (
	"net/http"
	"time"

	"github.com/okian/toprated/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL overrides the XML API base URL, e.g. for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithCacheDir enables the on-disk XML cache rooted at dir.
func WithCacheDir(dir string) Option {
	return func(c *Client) {
		if dir != "" {
			c.cacheDir = dir
		}
	}
}

// WithRateLimit throttles outgoing requests to perSec requests per second.
func WithRateLimit(perSec float64) Option {
	return func(c *Client) {
		if perSec > 0 {
			c.ratePerSec = perSec
		}
	}
}

// WithMaxRetries bounds retries of a single request, including the
// "request queued" responses for collection exports.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// WithRetryInterval sets the initial backoff interval between retries.
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryInterval = d
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}
