package query

import "time"

// Config holds configuration for one query run.
type Config struct {
	Games    []string      // Game names to search for
	GameIDs  []string      // Game ids to look up directly
	Users    []string      // Usernames to look up
	Guilds   []string      // Guild ids to look up
	APIURL   string        // Catalog API base URL
	CacheDir string        // XML cache directory, empty disables caching
	Timeout  time.Duration // HTTP request timeout
	Verbose  bool          // Enable verbose logging
}
