// Package app wires the report pipeline together: resolve the guild,
// collect member ratings, summarize, rank, and render.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/toprated/internal/domain/collect"
	"github.com/okian/toprated/internal/domain/model"
	"github.com/okian/toprated/internal/domain/ranking"
	"github.com/okian/toprated/internal/domain/stats"
	"github.com/okian/toprated/internal/report"
	"github.com/okian/toprated/pkg/logger"
	"github.com/okian/toprated/pkg/metrics"
)

// Catalog is the full catalog-service surface the pipeline consumes.
type Catalog interface {
	FetchGuild(ctx context.Context, id string) (*model.Guild, error)
	collect.Catalog
}

// Service runs one report pipeline end to end.
type Service struct {
	catalog Catalog

	// Configuration
	guildID      string
	topN         int
	minFraction  float64
	ignoreIDs    []model.GameID
	htmlOut      string
	wikiOut      string
	fetchWorkers int

	stdout io.Writer
	log    logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithGuildID sets the guild whose ratings are aggregated.
func WithGuildID(id string) Option {
	return func(s *Service) {
		s.guildID = id
	}
}

// WithTopN caps the rendered ranking.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithMinFraction sets the minimum-sample fraction for the threshold.
func WithMinFraction(f float64) Option {
	return func(s *Service) {
		if f >= 0 {
			s.minFraction = f
		}
	}
}

// WithIgnoredGames sets game ids excluded from aggregation.
func WithIgnoredGames(ids []string) Option {
	return func(s *Service) {
		for _, id := range ids {
			s.ignoreIDs = append(s.ignoreIDs, model.GameID(id))
		}
	}
}

// WithHTMLOutput writes the HTML report to path. Empty disables it.
func WithHTMLOutput(path string) Option {
	return func(s *Service) {
		s.htmlOut = path
	}
}

// WithWikiOutput writes the wiki report to path. Empty disables it.
func WithWikiOutput(path string) Option {
	return func(s *Service) {
		s.wikiOut = path
	}
}

// WithFetchWorkers bounds concurrent member collection fetches.
func WithFetchWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.fetchWorkers = n
		}
	}
}

// WithStdout redirects the console report, for tests.
func WithStdout(w io.Writer) Option {
	return func(s *Service) {
		if w != nil {
			s.stdout = w
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a Service with default configuration.
func New(catalog Catalog, opts ...Option) *Service {
	s := &Service{
		catalog:      catalog,
		topN:         report.DefaultTopN,
		minFraction:  stats.DefaultMinFraction,
		fetchWorkers: 1,
		stdout:       os.Stdout,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.log == nil {
		s.log = logger.Get().Named("app")
	}

	return s
}

// Run executes one full report pipeline. Failure to resolve the guild
// is fatal and produces no report. Failures writing optional outputs
// are returned, but only after the console report has been written.
func (s *Service) Run(ctx context.Context) error {
	start := time.Now()

	if s.guildID == "" {
		return fmt.Errorf("run: no guild id configured")
	}

	guild, err := s.catalog.FetchGuild(ctx, s.guildID)
	if err != nil {
		return fmt.Errorf("resolve guild %s: %w", s.guildID, err)
	}
	s.log.Info(ctx, "resolved guild",
		logger.String("guild", guild.Name),
		logger.Int("members", len(guild.Members)),
	)

	collector := collect.New(s.catalog,
		collect.WithIgnoredGames(s.ignoreIDs),
		collect.WithWorkers(s.fetchWorkers),
		collect.WithLogger(s.log.Named("collect")),
	)
	res, err := collector.Collect(ctx, guild)
	if err != nil {
		return err
	}

	// The threshold uses total membership, not successfully fetched
	// membership.
	summary := stats.Summarize(res.Ratings, res.Names, len(guild.Members),
		stats.WithMinFraction(s.minFraction),
	)
	entries := ranking.Rank(summary)
	metrics.UpdateGamesRanked(len(entries))

	renderOpts := []report.Option{report.WithTopN(s.topN)}
	if s.htmlOut != "" {
		renderOpts = append(renderOpts, report.WithHTML())
	}
	if s.wikiOut != "" {
		renderOpts = append(renderOpts, report.WithWiki())
	}
	rep, err := report.Render(guild, entries, renderOpts...)
	if err != nil {
		return err
	}

	// Console first: a failing file write must not cost the report.
	if _, err := io.WriteString(s.stdout, rep.Console); err != nil {
		return fmt.Errorf("write console report: %w", err)
	}

	var writeErrs []error
	if s.htmlOut != "" {
		if err := os.WriteFile(s.htmlOut, []byte(rep.HTML), 0o644); err != nil {
			writeErrs = append(writeErrs, fmt.Errorf("write html report: %w", err))
		}
	}
	if s.wikiOut != "" {
		if err := os.WriteFile(s.wikiOut, []byte(rep.Wiki), 0o644); err != nil {
			writeErrs = append(writeErrs, fmt.Errorf("write wiki report: %w", err))
		}
	}

	elapsed := time.Since(start)
	metrics.RecordPipelineDuration(elapsed.Seconds())
	s.log.Info(ctx, "report complete",
		logger.String("guild", guild.Name),
		logger.Int("members", len(guild.Members)),
		logger.Int("failedMembers", len(res.FailedMembers)),
		logger.Int("gamesObserved", len(res.Ratings)),
		logger.Int("skippedObservations", len(res.Skips)),
		logger.Int("gamesRanked", len(entries)),
		logger.Duration("elapsed", elapsed),
	)

	return errors.Join(writeErrs...)
}
