// Package ingest converts EasyStats HTML box score exports into the CSV
// layout the record mapper reads: a META row, the canonical header, then one
// row per known player.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"

	"github.com/pable/hoopstats/internal/identity"
	"github.com/pable/hoopstats/internal/model"
	"github.com/pable/hoopstats/internal/parser"
)

var (
	ErrNoTable = errors.New("no <table> in export")
	ErrNoRows  = errors.New("no player rows in export")
)

// Header is the column layout of an ingested game sheet.
var Header = []string{
	"date", "player_slug", "player_name", "team_slug", "opponent_slug",
	"min", "fg", "fga", "3p", "3pa", "ft", "fta", "or", "dr", "totrb",
	"ass", "pf", "st", "bs", "to", "pts",
}

// PlayerRef identifies a listed player.
type PlayerRef struct {
	Slug string
	Name string
}

// PlayerMap is keyed by scorer abbreviation ("F.Wendtman").
type PlayerMap map[string]PlayerRef

// PlayerMapFromListing derives abbreviations from full names: first initial,
// a dot, then the last name. Later players never overwrite earlier ones.
func PlayerMapFromListing(players []model.Player) PlayerMap {
	m := make(PlayerMap, len(players))
	for _, p := range players {
		fields := strings.Fields(p.Name)
		if len(fields) < 2 {
			continue
		}
		initial, _ := utf8.DecodeRuneInString(fields[0])
		key := strings.ToUpper(string(initial)) + "." + fields[len(fields)-1]
		if _, taken := m[key]; !taken {
			m[key] = PlayerRef{Slug: p.Slug, Name: p.Name}
		}
	}
	return m
}

var (
	numberedCell = regexp.MustCompile(`#\s*\d+\s+(\p{L})\.?\s*([\p{L}\-]+)`)
	bareCell     = regexp.MustCompile(`(?:^|[^\p{L}])(\p{L})\.?\s*([\p{L}\-]+)`)
	madeAttempt  = regexp.MustCompile(`^\s*(\d+)\s*-\s*(\d+)\s*$`)
)

// Abbrev reduces a scorer cell such as "#28 F. Wendtman" to "F.Wendtman".
func Abbrev(cell string) string {
	m := numberedCell.FindStringSubmatch(cell)
	if m == nil {
		m = bareCell.FindStringSubmatch(cell)
	}
	if m == nil {
		return strings.TrimSpace(cell)
	}
	return strings.ToUpper(m[1]) + "." + m[2]
}

// MadeAttempt splits "9-15" into (9, 15). Anything else is (0, 0).
func MadeAttempt(s string) (int, int) {
	m := madeAttempt.FindStringSubmatch(s)
	if m == nil {
		return 0, 0
	}
	made, _ := strconv.Atoi(m[1])
	att, _ := strconv.Atoi(m[2])
	return made, att
}

// Line is one ingested player row.
type Line struct {
	Player                 PlayerRef
	FGM, FGA, TPM, TPA     int
	FTM, FTA, OREB, DREB   int
	PF, STL, TOV, BLK, AST int
	PTS                    int
}

// Game is a parsed export.
type Game struct {
	Match
	Team1Slug string
	Team2Slug string
	// TeamSlug owns the table; the export carries one team, assumed home.
	TeamSlug     string
	OpponentSlug string
	Lines        []Line
	Unmapped     []string
}

// Options tunes Parse.
type Options struct {
	Players PlayerMap
	// Teams maps title names onto listed team slugs; unknown names are slugified.
	Teams *identity.Resolver
	Now   func() time.Time
}

// Parse reads an EasyStats HTML export.
func Parse(r io.Reader, opts Options) (*Game, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "parse html")
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	g := &Game{Match: ParseTitle(doc.Find("title").First().Text(), now())}
	g.Team1Slug = teamSlug(opts.Teams, g.Team1)
	g.Team2Slug = teamSlug(opts.Teams, g.Team2)
	g.TeamSlug, g.OpponentSlug = g.Team2Slug, g.Team1Slug

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	rows := 0
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() == 0 {
			return
		}
		cells := make([]string, tds.Length())
		tds.Each(func(j int, td *goquery.Selection) {
			cells[j] = strings.TrimSpace(td.Text())
		})
		rows++

		abbrev := Abbrev(cells[0])
		ref, ok := opts.Players[abbrev]
		if !ok {
			g.Unmapped = append(g.Unmapped, abbrev)
			return
		}
		g.Lines = append(g.Lines, lineFromCells(ref, cells))
	})
	if rows == 0 {
		return nil, ErrNoRows
	}
	return g, nil
}

func teamSlug(r *identity.Resolver, name string) string {
	if r != nil {
		if res := r.Resolve(name); res.Found {
			return res.Entity.Slug
		}
	}
	return identity.Slug(name)
}

// EasyStats columns: player, fg, fg%, 3pt, 3pt%, ft, ft%, oreb, dreb, foul,
// stl, to, blk, asst, pts.
func lineFromCells(ref PlayerRef, cells []string) Line {
	at := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}
	count := func(i int) int {
		n, err := strconv.Atoi(at(i))
		if err != nil || n < 0 {
			return 0
		}
		return n
	}
	l := Line{Player: ref}
	l.FGM, l.FGA = MadeAttempt(at(1))
	l.TPM, l.TPA = MadeAttempt(at(3))
	l.FTM, l.FTA = MadeAttempt(at(5))
	l.OREB = count(7)
	l.DREB = count(8)
	l.PF = count(9)
	l.STL = count(10)
	l.TOV = count(11)
	l.BLK = count(12)
	l.AST = count(13)
	l.PTS = count(14)
	return l
}

// SheetName is the tab title used for the game: "<date>_<team1>_vs_<team2>".
func (g *Game) SheetName() string {
	return fmt.Sprintf("%s_%s_vs_%s", g.Date, g.Team1Slug, g.Team2Slug)
}

// WriteCSV writes the META row, Header and one row per line.
func (g *Game) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	score := func(s *int) string {
		if s == nil {
			return ""
		}
		return strconv.Itoa(*s)
	}
	if err := cw.Write([]string{parser.MetaSentinel, g.Date, g.Team1Slug, g.Team2Slug, score(g.Score1), score(g.Score2)}); err != nil {
		return err
	}
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, l := range g.Lines {
		itoa := strconv.Itoa
		rec := []string{
			g.Date, l.Player.Slug, l.Player.Name, g.TeamSlug, g.OpponentSlug,
			"",
			itoa(l.FGM), itoa(l.FGA), itoa(l.TPM), itoa(l.TPA), itoa(l.FTM), itoa(l.FTA),
			itoa(l.OREB), itoa(l.DREB), itoa(l.OREB + l.DREB),
			itoa(l.AST), itoa(l.PF), itoa(l.STL), itoa(l.BLK), itoa(l.TOV), itoa(l.PTS),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
