// Package aggregator turns player-game records into averages and totals.
package aggregator

import (
	"sort"
	"strings"

	"github.com/pable/hoopstats/internal/model"
	"github.com/pable/hoopstats/internal/parser"
)

// column binds a canonical stat to the sheet columns that may carry it.
// The first alias holding a non-empty value wins.
type column struct {
	key     string
	aliases []string
	field   func(*model.StatVector) *float64
}

// columns is the alias table, canonical key -> accepted column names.
var columns = []column{
	{"pts", []string{"pts"}, func(v *model.StatVector) *float64 { return &v.PTS }},
	{"trb", []string{"totrb", "trb", "reb"}, func(v *model.StatVector) *float64 { return &v.TRB }},
	{"ast", []string{"ass", "hock ass", "ast"}, func(v *model.StatVector) *float64 { return &v.AST }},
	{"stl", []string{"st", "stl"}, func(v *model.StatVector) *float64 { return &v.STL }},
	{"blk", []string{"bs", "blk"}, func(v *model.StatVector) *float64 { return &v.BLK }},
	{"tov", []string{"to", "tov"}, func(v *model.StatVector) *float64 { return &v.TOV }},
	{"fgm", []string{"fg", "fgm"}, func(v *model.StatVector) *float64 { return &v.FGM }},
	{"fga", []string{"fga"}, func(v *model.StatVector) *float64 { return &v.FGA }},
	{"3pm", []string{"3p", "3pm"}, func(v *model.StatVector) *float64 { return &v.TPM }},
	{"3pa", []string{"3pa"}, func(v *model.StatVector) *float64 { return &v.TPA }},
	{"oreb", []string{"or", "oreb"}, func(v *model.StatVector) *float64 { return &v.OREB }},
	{"dreb", []string{"dr", "dreb"}, func(v *model.StatVector) *float64 { return &v.DREB }},
	{"ftm", []string{"ft", "ftm"}, func(v *model.StatVector) *float64 { return &v.FTM }},
	{"fta", []string{"fta"}, func(v *model.StatVector) *float64 { return &v.FTA }},
	{"min", []string{"min"}, func(v *model.StatVector) *float64 { return &v.MIN }},
	{"pf", []string{"pf"}, func(v *model.StatVector) *float64 { return &v.PF }},
}

// Aliases returns the accepted column names for a canonical key.
func Aliases(key string) []string {
	for _, c := range columns {
		if c.key == key {
			return c.aliases
		}
	}
	return nil
}

// TeamColumns are the columns read for a row's team context.
var TeamColumns = []string{"team", "team_slug", "tm"}

// Summary is the aggregate over a record set.
type Summary struct {
	Games   int
	Average model.StatVector
	Total   model.StatVector
}

// Line reads one record as a single game's stat line. Missing or
// unparseable cells are zero. Rebounds fall back to oreb+dreb when no total
// rebound column is filled.
func Line(rec parser.Record) model.StatVector {
	var v model.StatVector
	for _, c := range columns {
		*c.field(&v) = rec.Num(c.aliases...)
	}
	if !rec.Has(Aliases("trb")...) {
		v.TRB = v.OREB + v.DREB
	}
	setPct(&v)
	return v
}

func setPct(v *model.StatVector) {
	v.FGPct = ratio(v.FGM, v.FGA)
	v.TPPct = ratio(v.TPM, v.TPA)
	v.FTPct = ratio(v.FTM, v.FTA)
}

func ratio(made, att float64) float64 {
	if att == 0 {
		return 0
	}
	return made / att
}

// Aggregate sums every record and divides by the game count. Shooting
// percentages come from summed makes and attempts, identical in both vectors.
func Aggregate(records []parser.Record) Summary {
	s := Summary{Games: len(records)}
	for _, rec := range records {
		line := Line(rec)
		for _, c := range columns {
			*c.field(&s.Total) += *c.field(&line)
		}
	}
	setPct(&s.Total)

	if s.Games > 0 {
		n := float64(s.Games)
		for _, c := range columns {
			*c.field(&s.Average) = *c.field(&s.Total) / n
		}
	}
	s.Average.FGPct, s.Average.TPPct, s.Average.FTPct = s.Total.FGPct, s.Total.TPPct, s.Total.FTPct
	return s
}

// GameHighs returns the best single-game value of every field. Percentage
// highs only consider games with at least one attempt.
func GameHighs(records []parser.Record) model.StatVector {
	var hi model.StatVector
	for i, rec := range records {
		line := Line(rec)
		for _, c := range columns {
			if f := c.field(&line); i == 0 || *f > *c.field(&hi) {
				*c.field(&hi) = *f
			}
		}
		if line.FGA > 0 && line.FGPct > hi.FGPct {
			hi.FGPct = line.FGPct
		}
		if line.TPA > 0 && line.TPPct > hi.TPPct {
			hi.TPPct = line.TPPct
		}
		if line.FTA > 0 && line.FTPct > hi.FTPct {
			hi.FTPct = line.FTPct
		}
	}
	return hi
}

// SeasonSplit is one season's aggregate.
type SeasonSplit struct {
	Season string
	Summary
}

// BySeason groups records by their "season" column, falling back to the
// year of the game date, and aggregates each group. Groups are sorted by key.
func BySeason(records []parser.Record) []SeasonSplit {
	groups := make(map[string][]parser.Record)
	for _, rec := range records {
		key := SeasonOf(rec)
		groups[key] = append(groups[key], rec)
	}
	out := make([]SeasonSplit, 0, len(groups))
	for k, recs := range groups {
		out = append(out, SeasonSplit{Season: k, Summary: Aggregate(recs)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Season < out[j].Season })
	return out
}

// SeasonOf returns a record's season label.
func SeasonOf(rec parser.Record) string {
	if s := rec.Get("season"); s != "" {
		return s
	}
	date := rec.Lookup("date", "game date", "dt")
	if date == "" {
		return "All"
	}
	if y := date[:min(4, len(date))]; isYear(y) {
		return y
	}
	if len(date) >= 4 {
		if y := date[len(date)-4:]; isYear(y) {
			return y
		}
	}
	return "Unknown"
}

func isYear(s string) bool {
	return len(s) == 4 && strings.Trim(s, "0123456789") == ""
}

// TeamOf returns the row's team cell.
func TeamOf(rec parser.Record) string {
	return rec.Lookup(TeamColumns...)
}
