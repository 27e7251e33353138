// Package config defines process configuration and loading for the
// toprated tools.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file, and env vars.
// - External errors are wrapped via this package's sentinel errors.
package config

import (
	"time"
)

// Default configuration values.
const (
	defaultTopN           = 100
	defaultMinFraction    = 0.05
	defaultFetchWorkers   = 1
	defaultRatePerSec     = 1.0
	defaultRequestTimeout = 30 * time.Second
	defaultMaxRetries     = 5
)

// Config contains process configuration for a report run.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// GuildID is the BGG guild whose member ratings are aggregated. Required.
	GuildID string `koanf:"guild_id"`

	// TopN caps the number of ranked games in the rendered report.
	TopN int `koanf:"top_n"`

	// MinFraction is the minimum fraction of guild members that must have
	// rated a game for it to be ranked.
	MinFraction float64 `koanf:"min_fraction"`

	// IgnoreIDs lists game ids excluded from aggregation unconditionally,
	// e.g. a reprint that duplicates a base game entry.
	IgnoreIDs []string `koanf:"ignore_ids"`

	// HTMLOut and WikiOut are optional output paths. Empty disables the format.
	HTMLOut string `koanf:"html_out"`
	WikiOut string `koanf:"wiki_out"`

	// CacheDir enables the on-disk XML cache when non-empty.
	CacheDir string `koanf:"cache_dir"`

	// APIURL overrides the BGG XML API base URL.
	APIURL string `koanf:"api_url"`

	// FetchWorkers bounds concurrent member collection fetches.
	FetchWorkers int `koanf:"fetch_workers"`

	// RatePerSec throttles BGG API requests.
	RatePerSec float64 `koanf:"rate_per_sec"`

	// RequestTimeoutMS bounds a single API request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// MaxRetries bounds retries of a single API request.
	MaxRetries int `koanf:"max_retries"`

	// MetricsAddr enables a Prometheus listener when non-empty, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		TopN:             defaultTopN,
		MinFraction:      defaultMinFraction,
		IgnoreIDs:        nil,
		FetchWorkers:     defaultFetchWorkers,
		RatePerSec:       defaultRatePerSec,
		RequestTimeoutMS: int(defaultRequestTimeout / time.Millisecond),
		MaxRetries:       defaultMaxRetries,
	}
}

// RequestTimeout returns the per-request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}
