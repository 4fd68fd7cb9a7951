package aggregator

import (
	"github.com/pable/hoopstats/internal/model"
	"github.com/pable/hoopstats/internal/parser"
)

// NameColumns are tried in order for a row's display name.
var NameColumns = []string{"player_name", "player", "name", "player_slug"}

// BoxLine is one player's row of a game box score.
type BoxLine struct {
	Name string
	Team string
	model.StatVector
}

// BoxScore is a single game sheet rendered as per-player lines plus totals.
type BoxScore struct {
	Meta   *parser.Meta
	Lines  []BoxLine
	Totals model.StatVector
}

// Box builds a box score from a parsed game sheet.
func Box(tbl parser.Table) BoxScore {
	b := BoxScore{Meta: tbl.Meta}
	for _, rec := range tbl.Records {
		b.Lines = append(b.Lines, BoxLine{
			Name:       rec.Lookup(NameColumns...),
			Team:       TeamOf(rec),
			StatVector: Line(rec),
		})
	}
	b.Totals = Aggregate(tbl.Records).Total
	return b
}
