package report

import (
	"fmt"
	"strings"

	"github.com/okian/toprated/internal/domain/model"
)

// renderConsole writes the fixed-width table:
//
//	Rank    Mean  Count  Stddev  Name
func renderConsole(guild *model.Guild, entries []model.RankedEntry) string {
	var b strings.Builder

	title := fmt.Sprintf("Top rated games for guild %s (%d members)", guild.Name, len(guild.Members))
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n")
	fmt.Fprintf(&b, "%4s  %6s  %5s  %6s  %s\n", "Rank", "Mean", "Count", "Stddev", "Name")

	for _, e := range entries {
		fmt.Fprintf(&b, "%4d  %6.2f  %5d  %6.2f  %s\n",
			e.Rank, e.Stats.Mean, e.Stats.Count, e.Stats.StdDev, e.Stats.Name)
	}

	return b.String()
}
