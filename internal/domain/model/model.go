// Package model contains domain models passed between layers.
package model

// GameID identifies a game at the catalog service (BGG "thing" id).
type GameID string

// Guild represents a named group of members whose aggregate ratings are
// being summarized. Member order is the canonical order used whenever a
// deterministic traversal is required.
type Guild struct {
	ID          string
	Name        string
	Description string
	Manager     string
	Members     []string
}

// RatedGame is one entry of a member's collection as reported by the
// catalog service. Rating is nil when the member owns the game but never
// rated it.
type RatedGame struct {
	GameID    GameID
	Name      string
	Year      string
	Rating    *float64
	NumPlays  int
	Own       bool
	WantToBuy bool
}

// Collection is a member's set of owned/rated games.
type Collection struct {
	Username string
	Games    []RatedGame
}

// GameMeta holds the game metadata used by the exclusion filters and the
// query tool. Categories drive the expansion filter.
type GameMeta struct {
	ID          GameID
	Name        string
	Year        string
	Categories  []string
	Mechanics   []string
	MinPlayers  int
	MaxPlayers  int
	PlayingTime int
}

// GameStats holds the descriptive statistics for one game that survived
// filtering. Immutable once built.
type GameStats struct {
	GameID GameID
	Name   string
	Mean   float64
	StdDev float64
	Count  int
}

// RankedEntry pairs a dense 1-based rank with the game's statistics.
type RankedEntry struct {
	Rank  int
	Stats GameStats
}

// User is a catalog-service user profile, used by the query tool.
type User struct {
	Name           string
	UserID         string
	FirstName      string
	LastName       string
	YearRegistered string
	Country        string
	Top10          []string
	Hot10          []string
}
