package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/hoopstats/internal/aggregator"
	"github.com/pable/hoopstats/internal/model"
	"github.com/pable/hoopstats/internal/storage"
)

// Pct formats a 0..1 ratio as a percentage with one decimal ("50.0%").
// NaN and infinities render as "0.0%".
func Pct(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		x = 0
	}
	return fmt.Sprintf("%.1f%%", x*100)
}

// OneDec formats x with one decimal.
func OneDec(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		x = 0
	}
	return strconv.FormatFloat(x, 'f', 1, 64)
}

// Count formats a total; whole numbers drop the decimal.
func Count(x float64) string {
	if x == math.Trunc(x) {
		return strconv.FormatFloat(x, 'f', 0, 64)
	}
	return OneDec(x)
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

func num(mode model.Mode, x float64) string {
	if mode == model.ModeTot {
		return Count(x)
	}
	return OneDec(x)
}

// statHeader is the column order shared by every stat-line table.
var statHeader = []string{"PTS", "REB", "AST", "STL", "BLK", "TOV", "FG", "FG%", "3P", "3P%", "FT", "FT%", "OREB", "DREB"}

func statCells(mode model.Mode, v model.StatVector) []string {
	return []string{
		num(mode, v.PTS),
		num(mode, v.TRB),
		num(mode, v.AST),
		num(mode, v.STL),
		num(mode, v.BLK),
		num(mode, v.TOV),
		num(mode, v.FGM) + "-" + num(mode, v.FGA),
		Pct(v.FGPct),
		num(mode, v.TPM) + "-" + num(mode, v.TPA),
		Pct(v.TPPct),
		num(mode, v.FTM) + "-" + num(mode, v.FTA),
		Pct(v.FTPct),
		num(mode, v.OREB),
		num(mode, v.DREB),
	}
}

func row(cells ...string) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}

// PrintLeaders prints one ranked (mode, stat) list.
func PrintLeaders(w io.Writer, team string, mode model.Mode, stat model.Stat, list []model.LeaderEntry, limit int) {
	fmt.Fprintf(w, "\n%s  |  %s %s\n\n", team, mode, stat)
	table := newTable(w)
	table.Header("#", "PLAYER", "ID", string(stat))
	for i, e := range list {
		if limit > 0 && i >= limit {
			break
		}
		table.Append(strconv.Itoa(i+1), e.Name, e.PlayerID, num(mode, e.Value))
	}
	table.Render()
}

// PrintTeam prints every player's stat line for one team.
func PrintTeam(w io.Writer, slug string, team model.TeamEntry, mode model.Mode, origin string) {
	fmt.Fprintf(w, "\n%s (%s)  |  %s  |  source: %s\n\n", team.Name, slug, mode, origin)
	table := newTable(w)
	table.Header(row(append([]string{"PLAYER", "GP"}, statHeader...)...)...)
	for _, p := range team.Players {
		cells := append([]string{p.Name, strconv.Itoa(p.Games)}, statCells(mode, p.Vector(mode))...)
		table.Append(row(cells...)...)
	}
	table.Render()
}

// PrintPlayer prints career averages, totals, game highs and the season split.
func PrintPlayer(w io.Writer, name string, sum aggregator.Summary, highs model.StatVector, seasons []aggregator.SeasonSplit) {
	fmt.Fprintf(w, "\n%s  |  %d games\n\n", name, sum.Games)

	table := newTable(w)
	table.Header(row(append([]string{" "}, statHeader...)...)...)
	table.Append(row(append([]string{"AVG"}, statCells(model.ModeAvg, sum.Average)...)...)...)
	table.Append(row(append([]string{"TOT"}, statCells(model.ModeTot, sum.Total)...)...)...)
	table.Append(row(append([]string{"HIGH"}, statCells(model.ModeTot, highs)...)...)...)
	table.Render()

	if len(seasons) == 0 {
		return
	}
	fmt.Fprintln(w)
	st := newTable(w)
	st.Header(row(append([]string{"SEASON", "GP"}, statHeader...)...)...)
	for _, s := range seasons {
		st.Append(row(append([]string{s.Season, strconv.Itoa(s.Games)}, statCells(model.ModeAvg, s.Average)...)...)...)
	}
	st.Render()
}

// PrintBoxScore prints a single game with a team totals row.
func PrintBoxScore(w io.Writer, b aggregator.BoxScore) {
	if m := b.Meta; m != nil {
		fmt.Fprintf(w, "\n%s  %s %s – %s %s\n\n", m.Date, m.Team1, m.Score1, m.Score2, m.Team2)
	}
	table := newTable(w)
	table.Header(row(append([]string{"PLAYER", "TEAM", "MIN"}, statHeader...)...)...)
	for _, l := range b.Lines {
		cells := append([]string{l.Name, l.Team, Count(l.MIN)}, statCells(model.ModeTot, l.StatVector)...)
		table.Append(row(cells...)...)
	}
	totals := append([]string{"TEAM TOTALS", "", Count(b.Totals.MIN)}, statCells(model.ModeTot, b.Totals)...)
	table.Append(row(totals...)...)
	table.Render()
}

// PrintArtifactSummary prints one line per team with its top scorer.
func PrintArtifactSummary(w io.Writer, a *model.Artifact) {
	fmt.Fprintf(w, "\nGenerated: %s  |  Version: %d  |  Teams: %d\n\n",
		a.GeneratedAt.Format("2006-01-02 15:04:05Z07:00"), a.Version, len(a.Teams))

	table := newTable(w)
	table.Header("TEAM", "NAME", "PLAYERS", "TOP SCORER", "PPG")
	for _, slug := range a.TeamSlugs() {
		t := a.Teams[slug]
		top, ppg := "—", "—"
		if list, ok := t.Leaders.Lookup(model.ModeAvg, model.StatPTS); ok && len(list) > 0 {
			top, ppg = list[0].Name, OneDec(list[0].Value)
		}
		table.Append(slug, t.Name, strconv.Itoa(len(t.Players)), top, ppg)
	}
	table.Render()
}

// PrintLeagueLeaders prints a cross-team ranking.
func PrintLeagueLeaders(w io.Writer, mode model.Mode, stat string, rows []storage.LeagueLeader) {
	fmt.Fprintf(w, "\nLeague  |  %s %s\n\n", mode, stat)
	table := newTable(w)
	table.Header("#", "PLAYER", "TEAM", stat)
	for i, r := range rows {
		v := num(mode, r.Value)
		switch stat {
		case "fgPct", "tpPct", "ftPct":
			v = Pct(r.Value)
		}
		table.Append(strconv.Itoa(i+1), r.Name, r.TeamSlug, v)
	}
	table.Render()
}

// PrintRaw prints the result of an ad-hoc query.
func PrintRaw(w io.Writer, cols []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	table := newTable(w)
	table.Header(row(cols...)...)
	for _, r := range rows {
		table.Append(row(r...)...)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d rows)\n", len(rows))
}
