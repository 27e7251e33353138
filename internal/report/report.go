// Package report renders a ranked list of game statistics into console,
// HTML, and wiki table formats. Rendering is pure: no network access,
// no mutation of inputs.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/okian/toprated/internal/domain/model"
)

// GameURL is the catalog page for a game id, used for linked names.
const GameURL = "https://boardgamegeek.com/boardgame/"

// DefaultTopN caps the rendered ranking when no override is given.
const DefaultTopN = 100

// Report holds the rendered outputs. HTML and Wiki are empty unless
// requested.
type Report struct {
	Console string
	HTML    string
	Wiki    string
}

// Option applies a configuration option to a render call.
type Option func(*settings)

type settings struct {
	topN  int
	html  bool
	wiki  bool
	now   time.Time
	runID string
}

// WithTopN truncates the ranking to the first n entries.
func WithTopN(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithHTML requests the HTML table output.
func WithHTML() Option {
	return func(s *settings) {
		s.html = true
	}
}

// WithWiki requests the wiki pipe-table output.
func WithWiki() Option {
	return func(s *settings) {
		s.wiki = true
	}
}

// WithGeneratedAt pins the generation timestamp, for reproducible output.
func WithGeneratedAt(t time.Time) Option {
	return func(s *settings) {
		if !t.IsZero() {
			s.now = t
		}
	}
}

// WithRunID pins the run id stamped into footers, for reproducible output.
func WithRunID(id string) Option {
	return func(s *settings) {
		if id != "" {
			s.runID = id
		}
	}
}

// Render renders the ranked entries, truncated to the configured top-N,
// into every requested format. The console format is always produced.
func Render(guild *model.Guild, entries []model.RankedEntry, opts ...Option) (*Report, error) {
	s := settings{
		topN: DefaultTopN,
		now:  time.Now(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.runID == "" {
		s.runID = uuid.NewString()
	}

	if len(entries) > s.topN {
		entries = entries[:s.topN]
	}

	rep := &Report{
		Console: renderConsole(guild, entries),
	}
	if s.html {
		html, err := renderHTML(guild, entries, s.now, s.runID)
		if err != nil {
			return nil, err
		}
		rep.HTML = html
	}
	if s.wiki {
		rep.Wiki = renderWiki(guild, entries, s.now, s.runID)
	}
	return rep, nil
}
