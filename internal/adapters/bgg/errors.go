package bgg

import "errors"

// Sentinel kinds for catalog client errors.
var (
	// ErrNotFound means the requested object does not exist at the catalog
	// service, or is not yet approved (guilds).
	ErrNotFound = errors.New("object not found")

	// ErrUnavailable means the catalog service could not serve the request
	// after retries were exhausted.
	ErrUnavailable = errors.New("catalog service unavailable")
)

// errQueued marks the catalog's "request accepted, retry later" response
// for collection exports. It stays internal: callers only ever see the
// final outcome.
var errQueued = errors.New("collection request queued")
