package report

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/okian/toprated/internal/domain/model"
)

var htmlTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Top rated games for {{.GuildName}}</title>
</head>
<body>
<h1>Top rated games for {{.GuildName}}</h1>
<table>
<tr><th>Rank</th><th>Game</th><th>Mean</th><th>Stddev</th><th>Ratings</th></tr>
{{- range .Rows}}
<tr><td>{{.Rank}}</td><td><a href="{{.URL}}">{{.Name}}</a></td><td>{{.Mean}}</td><td>{{.StdDev}}</td><td>{{.Count}}</td></tr>
{{- end}}
</table>
<p>Generated {{.GeneratedAt}} &middot; run {{.RunID}}</p>
</body>
</html>
`))

type htmlRow struct {
	Rank   int
	Name   string
	URL    string
	Mean   string
	StdDev string
	Count  int
}

type htmlData struct {
	GuildName   string
	Rows        []htmlRow
	GeneratedAt string
	RunID       string
}

func renderHTML(guild *model.Guild, entries []model.RankedEntry, now time.Time, runID string) (string, error) {
	data := htmlData{
		GuildName:   guild.Name,
		GeneratedAt: now.Format(time.RFC1123),
		RunID:       runID,
	}
	for _, e := range entries {
		data.Rows = append(data.Rows, htmlRow{
			Rank:   e.Rank,
			Name:   e.Stats.Name,
			URL:    GameURL + string(e.Stats.GameID),
			Mean:   fmt.Sprintf("%.2f", e.Stats.Mean),
			StdDev: fmt.Sprintf("%.2f", e.Stats.StdDev),
			Count:  e.Stats.Count,
		})
	}

	var b strings.Builder
	if err := htmlTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return b.String(), nil
}
