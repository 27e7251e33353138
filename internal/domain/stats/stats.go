// Package stats computes descriptive statistics for accumulated rating
// observations and applies the minimum-sample threshold.
package stats

import (
	"math"

	"github.com/okian/toprated/internal/domain/model"
)

// DefaultMinFraction is the default minimum fraction of members that
// must have rated a game for it to be retained.
const DefaultMinFraction = 0.05

// Option applies a configuration option to Summarize.
type Option func(*settings)

type settings struct {
	minFraction float64
}

// WithMinFraction overrides the minimum-sample fraction.
func WithMinFraction(f float64) Option {
	return func(s *settings) {
		if f >= 0 {
			s.minFraction = f
		}
	}
}

// Summarize computes per-game statistics for every game with more than
// floor(memberCount*minFraction) observations. The threshold is strict:
// boundary cases favor exclusion. memberCount is the total membership of
// the guild, including members whose collections could not be fetched.
//
// Summarize is pure: it never mutates its inputs and is idempotent.
func Summarize(ratings map[model.GameID][]float64, names map[model.GameID]string, memberCount int, opts ...Option) map[model.GameID]model.GameStats {
	s := settings{minFraction: DefaultMinFraction}
	for _, opt := range opts {
		opt(&s)
	}

	minCount := int(float64(memberCount) * s.minFraction)

	out := make(map[model.GameID]model.GameStats, len(ratings))
	for id, obs := range ratings {
		if len(obs) <= minCount {
			continue
		}
		mean := mean(obs)
		out[id] = model.GameStats{
			GameID: id,
			Name:   names[id],
			Mean:   mean,
			StdDev: populationStdDev(obs, mean),
			Count:  len(obs),
		}
	}
	return out
}

func mean(obs []float64) float64 {
	var sum float64
	for _, v := range obs {
		sum += v
	}
	return sum / float64(len(obs))
}

// populationStdDev uses divisor N, not the Bessel-corrected N-1.
func populationStdDev(obs []float64, mean float64) float64 {
	var sum float64
	for _, v := range obs {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(obs)))
}
