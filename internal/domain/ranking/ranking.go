// Package ranking orders game statistics into a deterministic total
// order and assigns dense 1-based ranks.
package ranking

import (
	"sort"

	"github.com/okian/toprated/internal/domain/model"
)

// Rank orders stats by descending mean. Go maps have no iteration
// order, so ties carry an explicit deterministic tie-break: ascending
// name, then ascending game id.
func Rank(stats map[model.GameID]model.GameStats) []model.RankedEntry {
	entries := make([]model.RankedEntry, 0, len(stats))
	for _, gs := range stats {
		entries = append(entries, model.RankedEntry{Stats: gs})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Stats, entries[j].Stats
		if a.Mean != b.Mean {
			return a.Mean > b.Mean
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.GameID < b.GameID
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
