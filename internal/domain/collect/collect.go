// Package collect accumulates per-game rating observations across all
// members of a guild, applying the exclusion filters. Skip decisions are
// returned as values so they are testable without inspecting log output.
package collect

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/okian/toprated/internal/domain/model"
	"github.com/okian/toprated/pkg/logger"
	"github.com/okian/toprated/pkg/metrics"
)

// ExpansionCategory is the catalog category marking an entry as an
// add-on to a base game. Expansion ratings are excluded from the pool.
const ExpansionCategory = "Expansion for Base-game"

// Catalog is the slice of the catalog client the collector consumes.
type Catalog interface {
	FetchCollection(ctx context.Context, username string) (*model.Collection, error)
	FetchGame(ctx context.Context, id model.GameID) (*model.GameMeta, error)
}

// SkipReason classifies why a single rating observation was excluded.
type SkipReason string

// Skip reasons, in filter order.
const (
	SkipMissingMetadata SkipReason = "missing_metadata"
	SkipIgnored         SkipReason = "ignored"
	SkipNoCategories    SkipReason = "no_categories"
	SkipExpansion       SkipReason = "expansion"
)

// Skip records one excluded rating observation.
type Skip struct {
	Member string
	GameID model.GameID
	Name   string
	Reason SkipReason
}

// Result is the accumulated observation pool for one guild.
//
// Ratings and Names are keyed by game id. A display name is the first
// one observed in canonical member order, so the result is independent
// of fetch-completion order when collections are fetched concurrently.
type Result struct {
	Ratings       map[model.GameID][]float64
	Names         map[model.GameID]string
	FailedMembers []string
	Skips         []Skip
}

// Collector pulls member collections from the catalog and folds them
// into a Result.
type Collector struct {
	catalog Catalog
	ignore  map[model.GameID]bool
	workers int
	log     logger.Logger
}

// New creates a Collector with configuration options.
func New(catalog Catalog, opts ...Option) *Collector {
	c := &Collector{
		catalog: catalog,
		ignore:  make(map[model.GameID]bool),
		workers: 1,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.log == nil {
		c.log = logger.Get().Named("collect")
	}

	return c
}

// Collect fetches every member's collection and accumulates rating
// observations. A member whose collection cannot be fetched is recorded
// and skipped; only context cancellation aborts the run. Collections may
// be fetched concurrently, but results are folded in guild member order.
func (c *Collector) Collect(ctx context.Context, guild *model.Guild) (*Result, error) {
	if guild == nil {
		return nil, fmt.Errorf("collect: nil guild")
	}

	type fetched struct {
		col *model.Collection
		err error
	}
	collections := make([]fetched, len(guild.Members))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, member := range guild.Members {
		g.Go(func() error {
			col, err := c.catalog.FetchCollection(gctx, member)
			collections[i] = fetched{col: col, err: err}
			return nil
		})
	}
	// Workers never return errors: per-member failures are data, not
	// reasons to abort.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}

	res := &Result{
		Ratings: make(map[model.GameID][]float64),
		Names:   make(map[model.GameID]string),
	}
	for i, member := range guild.Members {
		f := collections[i]
		if f.err != nil || f.col == nil {
			metrics.RecordMemberFetchFailure()
			c.log.Warn(ctx, "could not fetch member collection, skipping member",
				logger.String("member", member),
				logger.Error(f.err),
			)
			res.FailedMembers = append(res.FailedMembers, member)
			continue
		}
		metrics.RecordMemberFetched()
		if err := c.accumulate(ctx, res, member, f.col); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// accumulate folds one member's rated games into the result, applying
// the exclusion filters in order: metadata available, not on the ignore
// list, has category tags, not an expansion.
func (c *Collector) accumulate(ctx context.Context, res *Result, member string, col *model.Collection) error {
	for _, game := range col.Games {
		if game.Rating == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("collect: %w", err)
		}

		meta, err := c.catalog.FetchGame(ctx, game.GameID)
		if err != nil || meta == nil {
			c.skip(ctx, res, Skip{Member: member, GameID: game.GameID, Name: game.Name, Reason: SkipMissingMetadata})
			c.log.Warn(ctx, "no metadata for game, skipping observation",
				logger.String("game", game.Name),
				logger.String("id", string(game.GameID)),
				logger.Error(err),
			)
			continue
		}

		if c.ignore[game.GameID] {
			// Deliberately excluded; no diagnostic beyond the record.
			c.skip(ctx, res, Skip{Member: member, GameID: game.GameID, Name: game.Name, Reason: SkipIgnored})
			continue
		}

		if len(meta.Categories) == 0 {
			c.skip(ctx, res, Skip{Member: member, GameID: game.GameID, Name: game.Name, Reason: SkipNoCategories})
			c.log.Warn(ctx, "game has no categories, skipping observation",
				logger.String("game", game.Name),
				logger.String("id", string(game.GameID)),
			)
			continue
		}

		if hasCategory(meta, ExpansionCategory) {
			c.skip(ctx, res, Skip{Member: member, GameID: game.GameID, Name: game.Name, Reason: SkipExpansion})
			c.log.Debug(ctx, "game is an expansion, skipping observation",
				logger.String("game", game.Name),
				logger.String("id", string(game.GameID)),
			)
			continue
		}

		res.Ratings[game.GameID] = append(res.Ratings[game.GameID], *game.Rating)
		if _, ok := res.Names[game.GameID]; !ok {
			name := game.Name
			if name == "" {
				name = meta.Name
			}
			res.Names[game.GameID] = name
		}
		metrics.RecordObservationAccepted()
	}
	return nil
}

func (c *Collector) skip(_ context.Context, res *Result, s Skip) {
	res.Skips = append(res.Skips, s)
	metrics.RecordObservationSkipped(string(s.Reason))
}

func hasCategory(meta *model.GameMeta, category string) bool {
	for _, c := range meta.Categories {
		if c == category {
			return true
		}
	}
	return false
}
