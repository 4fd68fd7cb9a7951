package model

import (
	"sort"
	"time"
)

// Stat is a key of the ranking vocabulary.
type Stat string

const (
	StatPTS  Stat = "pts"
	StatTRB  Stat = "trb"
	StatAST  Stat = "ast"
	StatSTL  Stat = "stl"
	StatBLK  Stat = "blk"
	StatTOV  Stat = "tov"
	StatFGM  Stat = "fgm"
	StatFGA  Stat = "fga"
	Stat3PM  Stat = "3pm"
	Stat3PA  Stat = "3pa"
	StatOREB Stat = "oreb"
	StatDREB Stat = "dreb"
)

// RankedStats is the fixed vocabulary used for artifact leader keys.
var RankedStats = []Stat{
	StatPTS, StatTRB, StatAST, StatSTL, StatBLK, StatTOV,
	StatFGM, StatFGA, Stat3PM, Stat3PA, StatOREB, StatDREB,
}

// ParseStat validates s against the ranking vocabulary.
func ParseStat(s string) (Stat, bool) {
	for _, st := range RankedStats {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Mode selects per-game averages or summed totals.
type Mode string

const (
	ModeAvg Mode = "avg"
	ModeTot Mode = "tot"
)

// Modes lists every mode in artifact order.
var Modes = []Mode{ModeAvg, ModeTot}

// ParseMode validates s as "avg" or "tot".
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeAvg, ModeTot:
		return Mode(s), true
	}
	return "", false
}

// ---- Aggregates ----

// StatVector is one player's numbers, either per-game averages or totals.
// Shooting percentages are always makes/attempts over summed totals.
type StatVector struct {
	PTS   float64 `json:"pts"`
	TRB   float64 `json:"trb"`
	AST   float64 `json:"ast"`
	STL   float64 `json:"stl"`
	BLK   float64 `json:"blk"`
	TOV   float64 `json:"tov"`
	FGM   float64 `json:"fgm"`
	FGA   float64 `json:"fga"`
	TPM   float64 `json:"3pm"`
	TPA   float64 `json:"3pa"`
	OREB  float64 `json:"oreb"`
	DREB  float64 `json:"dreb"`
	FTM   float64 `json:"ftm"`
	FTA   float64 `json:"fta"`
	MIN   float64 `json:"min"`
	PF    float64 `json:"pf"`
	FGPct float64 `json:"fgPct"`
	TPPct float64 `json:"tpPct"`
	FTPct float64 `json:"ftPct"`
}

// Value returns the field for a ranking stat.
func (v StatVector) Value(s Stat) (float64, bool) {
	switch s {
	case StatPTS:
		return v.PTS, true
	case StatTRB:
		return v.TRB, true
	case StatAST:
		return v.AST, true
	case StatSTL:
		return v.STL, true
	case StatBLK:
		return v.BLK, true
	case StatTOV:
		return v.TOV, true
	case StatFGM:
		return v.FGM, true
	case StatFGA:
		return v.FGA, true
	case Stat3PM:
		return v.TPM, true
	case Stat3PA:
		return v.TPA, true
	case StatOREB:
		return v.OREB, true
	case StatDREB:
		return v.DREB, true
	}
	return 0, false
}

// ---- Artifact ----

// ArtifactVersion is bumped whenever the artifact layout changes.
const ArtifactVersion = 1

// LeaderEntry is one ranked position for a (mode, stat) pair.
type LeaderEntry struct {
	PlayerID string  `json:"playerId"`
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
}

// PlayerEntry is a roster member's aggregate within one team.
type PlayerEntry struct {
	PlayerID string     `json:"playerId"`
	Name     string     `json:"name"`
	Games    int        `json:"games"`
	Avg      StatVector `json:"avg"`
	Tot      StatVector `json:"tot"`
}

// Vector returns the avg or tot vector.
func (p PlayerEntry) Vector(m Mode) StatVector {
	if m == ModeTot {
		return p.Tot
	}
	return p.Avg
}

// Leaders is keyed by mode ("avg", "tot") then stat.
type Leaders map[Mode]map[Stat][]LeaderEntry

// Lookup returns the ranked list for (mode, stat) and whether it is present.
func (l Leaders) Lookup(m Mode, s Stat) ([]LeaderEntry, bool) {
	byStat, ok := l[m]
	if !ok {
		return nil, false
	}
	list, ok := byStat[s]
	return list, ok
}

// TeamEntry is one team's players and ranked leaders.
type TeamEntry struct {
	Name    string        `json:"name"`
	Players []PlayerEntry `json:"players"`
	Leaders Leaders       `json:"leaders"`
}

// Artifact is the precomputed leaderboard document.
type Artifact struct {
	GeneratedAt time.Time            `json:"generatedAt"`
	Version     int                  `json:"version"`
	Teams       map[string]TeamEntry `json:"teams"`
}

// TeamSlugs returns the artifact's team keys in sorted order.
func (a *Artifact) TeamSlugs() []string {
	slugs := make([]string, 0, len(a.Teams))
	for slug := range a.Teams {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// ---- Listing ----

// Player is an entry of players.json.
type Player struct {
	Slug   string `json:"slug" validate:"required,slug"`
	Name   string `json:"name" validate:"required"`
	CSVURL string `json:"csvUrl,omitempty" validate:"omitempty,source"`
	Number int    `json:"number,omitempty"`
	Pos    string `json:"pos,omitempty"`
	Team   string `json:"team,omitempty"`
}

// Team is an entry of teams.json.
type Team struct {
	Slug   string   `json:"slug" validate:"required,slug"`
	Name   string   `json:"name" validate:"required"`
	Roster []string `json:"roster" validate:"dive,required"`
}
