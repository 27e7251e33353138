package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/toprated/internal/domain/model"
)

// renderWiki writes the pipe-delimited table:
//
//	| Rank | Game | Mean | +/- | Ratings |
//
// The "+/-" column is a placeholder kept for compatibility with the
// wiki table layout.
func renderWiki(guild *model.Guild, entries []model.RankedEntry, now time.Time, runID string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Top rated games for guild %s\n\n", guild.Name)
	b.WriteString("| Rank | Game | Mean | +/- | Ratings |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")

	for _, e := range entries {
		fmt.Fprintf(&b, "| %d | [%s](%s%s) | %.2f | +/- | %d |\n",
			e.Rank, e.Stats.Name, GameURL, e.Stats.GameID, e.Stats.Mean, e.Stats.Count)
	}

	fmt.Fprintf(&b, "\nGenerated %s (run %s)\n", now.Format(time.RFC1123), runID)

	return b.String()
}
