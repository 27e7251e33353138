package bgg

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/okian/toprated/pkg/metrics"
)

// Cache object kinds, one subdirectory per kind.
const (
	kindBoardgames  = "boardgames"
	kindCollections = "collections"
	kindGuilds      = "guilds"
	kindUsers       = "users"
)

// xmlCache stores raw XML responses on disk, one file per object. Layout:
//
//	<dir>/boardgames/<id>.xml
//	<dir>/collections/<username>.xml
//	<dir>/guilds/<gid>-<page>.xml
//	<dir>/users/<name>.xml
//
// Unreadable entries are treated as misses. Writes are best effort: a
// failed write never fails the surrounding request.
type xmlCache struct {
	dir string
}

func newXMLCache(dir string) (*xmlCache, error) {
	for _, kind := range []string{kindBoardgames, kindCollections, kindGuilds, kindUsers} {
		if err := os.MkdirAll(filepath.Join(dir, kind), 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	return &xmlCache{dir: dir}, nil
}

func (c *xmlCache) path(kind, key string) string {
	// Usernames may contain characters unfit for filenames.
	return filepath.Join(c.dir, kind, url.PathEscape(key)+".xml")
}

// get returns the cached bytes for (kind, key), or ok=false on a miss.
func (c *xmlCache) get(kind, key string) ([]byte, bool) {
	data, err := os.ReadFile(c.path(kind, key))
	if err != nil || len(data) == 0 {
		metrics.RecordCacheMiss(kind)
		return nil, false
	}
	metrics.RecordCacheHit(kind)
	return data, true
}

// put stores the bytes for (kind, key), replacing any previous entry.
func (c *xmlCache) put(kind, key string, data []byte) {
	_ = os.WriteFile(c.path(kind, key), data, 0o644)
}

// drop removes a cached entry, used when a cached body fails to parse.
func (c *xmlCache) drop(kind, key string) {
	_ = os.Remove(c.path(kind, key))
}
