// Package query implements the bgg-query command line tool: ad-hoc
// lookups of games, users, and guilds against the catalog API.
package query

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/okian/toprated/internal/adapters/bgg"
	"github.com/okian/toprated/internal/domain/model"
	"github.com/okian/toprated/pkg/logger"
)

// Catalog is the lookup surface the tool queries.
type Catalog interface {
	FetchGuild(ctx context.Context, id string) (*model.Guild, error)
	FetchGame(ctx context.Context, id model.GameID) (*model.GameMeta, error)
	SearchGame(ctx context.Context, name string) (*bgg.SearchResult, error)
	FetchUser(ctx context.Context, name string) (*model.User, error)
}

// Run executes every lookup named in the config and prints a summary of
// each result to stdout. Individual lookup failures are reported and do
// not stop the remaining lookups; the first failure is returned at the
// end.
func Run(ctx context.Context, cfg *Config) error {
	if cfg.Empty() {
		return ErrNothingToQuery
	}

	opts := []bgg.Option{
		bgg.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		bgg.WithLogger(logger.Named("bgg")),
	}
	if cfg.APIURL != "" {
		opts = append(opts, bgg.WithBaseURL(cfg.APIURL))
	}
	if cfg.CacheDir != "" {
		opts = append(opts, bgg.WithCacheDir(cfg.CacheDir))
	}
	catalog, err := bgg.New(opts...)
	if err != nil {
		return err
	}
	return run(ctx, catalog, cfg, os.Stdout)
}

func run(ctx context.Context, catalog Catalog, cfg *Config, w io.Writer) error {
	var firstErr error
	report := func(err error) {
		fmt.Fprintf(w, "error: %v\n", err)
		if firstErr == nil {
			firstErr = err
		}
	}

	for _, name := range cfg.Games {
		res, err := catalog.SearchGame(ctx, name)
		if err != nil {
			report(fmt.Errorf("search game %q: %w", name, err))
			continue
		}
		meta, err := catalog.FetchGame(ctx, res.ID)
		if err != nil {
			report(fmt.Errorf("fetch game %s: %w", res.ID, err))
			continue
		}
		printGame(w, meta)
	}

	for _, id := range cfg.GameIDs {
		meta, err := catalog.FetchGame(ctx, model.GameID(id))
		if err != nil {
			report(fmt.Errorf("fetch game %s: %w", id, err))
			continue
		}
		printGame(w, meta)
	}

	for _, name := range cfg.Users {
		user, err := catalog.FetchUser(ctx, name)
		if err != nil {
			report(fmt.Errorf("fetch user %q: %w", name, err))
			continue
		}
		printUser(w, user)
	}

	for _, id := range cfg.Guilds {
		guild, err := catalog.FetchGuild(ctx, id)
		if err != nil {
			report(fmt.Errorf("fetch guild %s: %w", id, err))
			continue
		}
		printGuild(w, guild)
	}

	return firstErr
}

// Empty returns true when the config names nothing to look up.
func (c *Config) Empty() bool {
	return len(c.Games) == 0 && len(c.GameIDs) == 0 &&
		len(c.Users) == 0 && len(c.Guilds) == 0
}

// SplitList parses a comma-separated flag value into trimmed,
// non-empty elements.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printGame(w io.Writer, meta *model.GameMeta) {
	fmt.Fprintf(w, "%s (%s), published %s\n", meta.Name, meta.ID, meta.Year)
	if meta.MinPlayers > 0 || meta.MaxPlayers > 0 {
		fmt.Fprintf(w, "\tplayers: %d-%d, playing time: %d minutes\n",
			meta.MinPlayers, meta.MaxPlayers, meta.PlayingTime)
	}
	if len(meta.Categories) > 0 {
		fmt.Fprintf(w, "\tcategories: %s\n", strings.Join(meta.Categories, ", "))
	}
	if len(meta.Mechanics) > 0 {
		fmt.Fprintf(w, "\tmechanics: %s\n", strings.Join(meta.Mechanics, ", "))
	}
}

func printUser(w io.Writer, user *model.User) {
	fmt.Fprintf(w, "%s (id %s)\n", user.Name, user.UserID)
	if user.FirstName != "" || user.LastName != "" {
		fmt.Fprintf(w, "\tname: %s %s\n", user.FirstName, user.LastName)
	}
	if user.Country != "" {
		fmt.Fprintf(w, "\tcountry: %s\n", user.Country)
	}
	if user.YearRegistered != "" {
		fmt.Fprintf(w, "\tregistered: %s\n", user.YearRegistered)
	}
	if len(user.Top10) > 0 {
		fmt.Fprintf(w, "\ttop10: %s\n", strings.Join(user.Top10, ", "))
	}
	if len(user.Hot10) > 0 {
		fmt.Fprintf(w, "\thot10: %s\n", strings.Join(user.Hot10, ", "))
	}
}

func printGuild(w io.Writer, guild *model.Guild) {
	fmt.Fprintf(w, "%s (guild %s), %d members\n", guild.Name, guild.ID, len(guild.Members))
	if guild.Manager != "" {
		fmt.Fprintf(w, "\tmanager: %s\n", guild.Manager)
	}
	if len(guild.Members) > 0 {
		fmt.Fprintf(w, "\tmembers: %s\n", strings.Join(guild.Members, ", "))
	}
}

// ErrNothingToQuery is returned when the config names no lookups.
var ErrNothingToQuery = errors.New("nothing to query")
