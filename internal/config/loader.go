package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TOPRATED_CONFIG is set
//  3. env (prefix TOPRATED_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("TOPRATED_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: TOPRATED_GUILD_ID, TOPRATED_TOP_N, ...
	// Map env keys like TOPRATED_TOP_N -> top_n (flat keys), preserving
	// underscores to match the koanf tags on the struct.
	envProvider := env.Provider("TOPRATED_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "toprated_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.GuildID) == "" {
		return fmt.Errorf("%w: guild_id must not be empty", ErrInvalidConfig)
	}
	if cfg.TopN <= 0 {
		return fmt.Errorf("%w: top_n must be positive, got %d", ErrInvalidConfig, cfg.TopN)
	}
	if cfg.MinFraction < 0 || cfg.MinFraction >= 1 {
		return fmt.Errorf("%w: min_fraction must be in [0,1), got %g", ErrInvalidConfig, cfg.MinFraction)
	}
	if cfg.FetchWorkers <= 0 {
		return fmt.Errorf("%w: fetch_workers must be positive, got %d", ErrInvalidConfig, cfg.FetchWorkers)
	}
	if cfg.RatePerSec <= 0 {
		return fmt.Errorf("%w: rate_per_sec must be positive, got %g", ErrInvalidConfig, cfg.RatePerSec)
	}
	return nil
}
