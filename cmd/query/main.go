package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/toprated/internal/query"
)

// Default configuration constants.
const (
	defaultAPIURL  = "https://boardgamegeek.com/xmlapi2/"
	defaultTimeout = 30 * time.Second
)

func main() {
	var (
		games    = flag.String("game", "", "Game names to search for, comma-separated")
		gameIDs  = flag.String("id", "", "Game ids to look up directly, comma-separated")
		users    = flag.String("user", "", "Usernames to look up, comma-separated")
		guilds   = flag.String("guild", "", "Guild ids to look up, comma-separated")
		apiURL   = flag.String("url", defaultAPIURL, "Base URL of the XML API")
		cacheDir = flag.String("cache", "", "Directory for cached XML responses (default: no caching)")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		query.ShowHelp()
		return
	}

	if err := query.SetupLogging(*verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	cfg := &query.Config{
		Games:    query.SplitList(*games),
		GameIDs:  query.SplitList(*gameIDs),
		Users:    query.SplitList(*users),
		Guilds:   query.SplitList(*guilds),
		APIURL:   *apiURL,
		CacheDir: *cacheDir,
		Timeout:  *timeout,
		Verbose:  *verbose,
	}

	if cfg.Empty() {
		query.ShowHelp()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := query.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Query failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
