package collect

import (
	"github.com/okian/toprated/internal/domain/model"
	"github.com/okian/toprated/pkg/logger"
)

// Option applies a configuration option to the Collector.
type Option func(*Collector)

// WithIgnoredGames sets the game ids excluded from aggregation
// unconditionally. The set is copied; later mutation of ids has no
// effect on the collector.
func WithIgnoredGames(ids []model.GameID) Option {
	return func(c *Collector) {
		for _, id := range ids {
			c.ignore[id] = true
		}
	}
}

// WithWorkers bounds concurrent member collection fetches. The default
// of 1 preserves strictly sequential fetching.
func WithWorkers(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets a custom logger for the collector.
func WithLogger(log logger.Logger) Option {
	return func(c *Collector) {
		if log != nil {
			c.log = log
		}
	}
}
