package query

import (
	"fmt"
	"os"

	"github.com/okian/toprated/pkg/logger"
)

// SetupLogging initializes the logger and applies the verbosity level.
func SetupLogging(verbose bool) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return logger.SetLevelString("warn")
}

// ShowHelp prints usage information for the query tool.
func ShowHelp() {
	os.Stdout.WriteString(`BGG Query Tool
==============

Look up games, users, and guilds on the BoardGameGeek XML API and print
a summary of each result.

Usage:
  go run cmd/query/main.go [options]

Options:
  -game string
        Game names to search for, comma-separated
  -id string
        Game ids to look up directly, comma-separated
  -user string
        Usernames to look up, comma-separated
  -guild string
        Guild ids to look up, comma-separated
  -url string
        Base URL of the XML API (default "https://boardgamegeek.com/xmlapi2/")
  -cache string
        Directory for cached XML responses (default: no caching)
  -timeout duration
        HTTP request timeout (default 30s)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Look up a game by name
  go run cmd/query/main.go -game "yinsh"

  # Look up several things at once, with caching
  go run cmd/query/main.go -cache ~/.toprated -id 13,9209 -user ccqi -guild 1291
`)
}
