// Package bgg is a client for the BoardGameGeek XML API v2. It resolves
// guilds to member lists, members to rated collections, and game ids to
// metadata, with request throttling, retry, and an optional on-disk XML
// cache.
package bgg

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/okian/toprated/internal/domain/model"
	"github.com/okian/toprated/pkg/logger"
	"github.com/okian/toprated/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultBaseURL       = "https://boardgamegeek.com/xmlapi2/"
	defaultTimeout       = 30 * time.Second
	defaultRatePerSec    = 1.0
	defaultMaxRetries    = 5
	defaultRetryInterval = 500 * time.Millisecond

	// guildPageSize is fixed by the API: 25 members per guild page.
	guildPageSize = 25

	// maxBodyBytes bounds a single response body; collection exports for
	// large collections stay well under this.
	maxBodyBytes = 16 << 20
)

// SearchResult is one hit of an exact-name game search.
type SearchResult struct {
	ID   model.GameID
	Name string
	Year string
}

// Client talks to the BGG XML API v2. Safe for concurrent use.
type Client struct {
	baseURL       string
	hc            *http.Client
	cacheDir      string
	cache         *xmlCache
	ratePerSec    float64
	limiter       *rate.Limiter
	maxRetries    int
	retryInterval time.Duration
	log           logger.Logger

	// Game metadata is fetched at most once per distinct id per run.
	metaMu sync.Mutex
	meta   map[model.GameID]*model.GameMeta
}

// New creates a Client with configuration options.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:       defaultBaseURL,
		hc:            &http.Client{Timeout: defaultTimeout},
		ratePerSec:    defaultRatePerSec,
		maxRetries:    defaultMaxRetries,
		retryInterval: defaultRetryInterval,
		meta:          make(map[model.GameID]*model.GameMeta),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.log == nil {
		c.log = logger.Get().Named("bgg")
	}
	if !strings.HasSuffix(c.baseURL, "/") {
		c.baseURL += "/"
	}
	c.limiter = rate.NewLimiter(rate.Limit(c.ratePerSec), 1)

	if c.cacheDir != "" {
		cache, err := newXMLCache(c.cacheDir)
		if err != nil {
			return nil, err
		}
		c.cache = cache
	}

	return c, nil
}

// FetchGuild resolves a guild id to its name and full member list,
// walking the paged member roster. Returns ErrNotFound for unknown or
// not yet approved guilds.
func (c *Client) FetchGuild(ctx context.Context, id string) (*model.Guild, error) {
	g := &model.Guild{ID: id}
	seen := make(map[string]bool)

	page := 1
	totalPages := 1
	for page <= totalPages {
		rawURL := fmt.Sprintf("%sguild?id=%s&members=1&page=%d", c.baseURL, url.QueryEscape(id), page)
		var doc guildDoc
		parse := func(b []byte) error {
			doc = guildDoc{}
			return xml.Unmarshal(b, &doc)
		}
		key := fmt.Sprintf("%s-%d", id, page)
		if err := c.loadXML(ctx, "guild", kindGuilds, key, rawURL, parse); err != nil {
			return nil, err
		}
		if doc.Name == "" {
			// The API serves a bare guild element for unknown or not yet
			// approved guilds.
			return nil, fmt.Errorf("%w: guild %s", ErrNotFound, id)
		}
		parseGuildPage(g, seen, &doc)
		if page == 1 {
			totalPages = (doc.Members.Count + guildPageSize - 1) / guildPageSize
			if totalPages < 1 {
				totalPages = 1
			}
			if totalPages > 10 {
				c.log.Info(ctx, "large guild, fetching many member pages",
					logger.String("guild", id),
					logger.Int("pages", totalPages),
				)
			}
		}
		page++
	}

	return g, nil
}

// FetchCollection resolves a member name to their collection with rating
// stats. The collection export endpoint answers 202 while the export is
// being prepared; those responses are retried with backoff.
func (c *Client) FetchCollection(ctx context.Context, username string) (*model.Collection, error) {
	rawURL := fmt.Sprintf("%scollection?username=%s&stats=1", c.baseURL, url.QueryEscape(username))
	var doc collectionDoc
	parse := func(b []byte) error {
		doc = collectionDoc{}
		return xml.Unmarshal(b, &doc)
	}
	if err := c.loadXML(ctx, "collection", kindCollections, username, rawURL, parse); err != nil {
		return nil, err
	}
	return parseCollection(username, &doc), nil
}

// FetchGame resolves a game id to its metadata. Metadata is fetched at
// most once per distinct id for the lifetime of the client.
func (c *Client) FetchGame(ctx context.Context, id model.GameID) (*model.GameMeta, error) {
	c.metaMu.Lock()
	if meta, ok := c.meta[id]; ok {
		c.metaMu.Unlock()
		return meta, nil
	}
	c.metaMu.Unlock()

	rawURL := fmt.Sprintf("%sthing?id=%s", c.baseURL, url.QueryEscape(string(id)))
	var doc thingDoc
	parse := func(b []byte) error {
		doc = thingDoc{}
		return xml.Unmarshal(b, &doc)
	}
	if err := c.loadXML(ctx, "thing", kindBoardgames, string(id), rawURL, parse); err != nil {
		return nil, err
	}
	meta, err := parseThing(&doc)
	if err != nil {
		return nil, err
	}

	c.metaMu.Lock()
	c.meta[id] = meta
	c.metaMu.Unlock()
	return meta, nil
}

// SearchGame resolves a game display name to its id via exact search.
func (c *Client) SearchGame(ctx context.Context, name string) (*SearchResult, error) {
	rawURL := fmt.Sprintf("%ssearch?query=%s&exact=1", c.baseURL, url.QueryEscape(name))
	var doc searchDoc
	parse := func(b []byte) error {
		doc = searchDoc{}
		return xml.Unmarshal(b, &doc)
	}
	// Search results are not cached: names are a moving target.
	if err := c.loadXML(ctx, "search", "", "", rawURL, parse); err != nil {
		return nil, err
	}
	for _, it := range doc.Items {
		if it.Type != "boardgame" {
			continue
		}
		return &SearchResult{
			ID:   model.GameID(it.ID),
			Name: it.Name.Value,
			Year: it.YearPublished.Value,
		}, nil
	}
	return nil, fmt.Errorf("%w: game %q", ErrNotFound, name)
}

// FetchUser resolves a user name to their profile with top/hot lists.
func (c *Client) FetchUser(ctx context.Context, name string) (*model.User, error) {
	rawURL := fmt.Sprintf("%suser?name=%s&hot=1&top=1", c.baseURL, url.QueryEscape(name))
	var doc userDoc
	parse := func(b []byte) error {
		doc = userDoc{}
		return xml.Unmarshal(b, &doc)
	}
	if err := c.loadXML(ctx, "user", kindUsers, name, rawURL, parse); err != nil {
		return nil, err
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("%w: user %q", ErrNotFound, name)
	}
	return &model.User{
		Name:           doc.Name,
		UserID:         doc.ID,
		FirstName:      doc.FirstName.Value,
		LastName:       doc.LastName.Value,
		YearRegistered: doc.YearRegistered.Value,
		Country:        doc.Country.Value,
		Top10:          doc.Top.names(),
		Hot10:          doc.Hot.names(),
	}, nil
}

// loadXML resolves one object: read-through the cache when enabled for
// the kind, otherwise fetch with throttling and retry, then parse and
// write back. Corrupt cache entries are dropped and refetched.
func (c *Client) loadXML(ctx context.Context, endpoint, kind, key, rawURL string, parse func([]byte) error) error {
	cacheable := c.cache != nil && kind != ""
	if cacheable {
		if data, ok := c.cache.get(kind, key); ok {
			if err := parse(data); err == nil {
				return nil
			}
			c.cache.drop(kind, key)
			c.log.Warn(ctx, "dropped corrupt cache entry",
				logger.String("kind", kind),
				logger.String("key", key),
			)
		}
	}

	data, err := c.fetch(ctx, endpoint, rawURL)
	if err != nil {
		return err
	}
	if err := parse(data); err != nil {
		return fmt.Errorf("parse %s response: %w", endpoint, err)
	}
	if cacheable {
		c.cache.put(kind, key, data)
	}
	return nil
}

// fetch performs one throttled GET with retry on transient failures:
// transport errors, 5xx, 429, and the collection endpoint's 202.
func (c *Client) fetch(ctx context.Context, endpoint, rawURL string) ([]byte, error) {
	op := func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		metrics.RecordAPIRequest(endpoint)
		start := time.Now()
		resp, err := c.hc.Do(req)
		metrics.RecordAPIRequestDuration(endpoint, time.Since(start).Seconds())
		if err != nil {
			metrics.RecordAPIRequestError(endpoint)
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusOK:
			data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			if err != nil {
				metrics.RecordAPIRequestError(endpoint)
				return nil, err
			}
			return data, nil
		case resp.StatusCode == http.StatusAccepted:
			// Export queued; the API wants us to come back.
			return nil, errQueued
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			metrics.RecordAPIRequestError(endpoint)
			return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
		default:
			metrics.RecordAPIRequestError(endpoint)
			return nil, backoff.Permanent(fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode))
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInterval

	data, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(c.maxRetries)),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	return data, nil
}
