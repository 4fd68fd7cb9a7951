package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Match is what an export's <title> says about the game.
type Match struct {
	Team1  string
	Team2  string
	Score1 *int
	Score2 *int
	// Date is ISO (2006-01-02).
	Date string
}

var (
	atTitle    = regexp.MustCompile(`(?i)^(.+?)\s+(\d+)\s+at\s+(.+?)\s+(\d+)\s*$`)
	boxTitle   = regexp.MustCompile(`(?i)^(.+?)\s+vs\s+(.+?)\s+box-scores-(.+?)\s*$`)
	vsTitle    = regexp.MustCompile(`(?i)^(.+?)\s+vs\s+(.+?)(?:\s*-\s*(.+))?$`)
	dateLayout = []string{"2 Jan 2006", "2 January 2006", "2006-01-02", "02/01/2006", "01/02/2006"}
)

// ParseTitle understands three title shapes:
//
//	"Rice 0 at Pretty good 75"
//	"Rice vs Pretty good box-scores-23 Sep 2025"
//	"Rice vs Pretty good - 2025-09-23"
//
// Anything else becomes Team1 with an "Unknown" opponent. A missing or
// unreadable date falls back to today.
func ParseTitle(title string, today time.Time) Match {
	title = strings.TrimSpace(title)
	fallback := today.Format("2006-01-02")

	if m := atTitle.FindStringSubmatch(title); m != nil {
		s1, _ := strconv.Atoi(m[2])
		s2, _ := strconv.Atoi(m[4])
		return Match{Team1: strings.TrimSpace(m[1]), Score1: &s1, Team2: strings.TrimSpace(m[3]), Score2: &s2, Date: fallback}
	}
	if m := boxTitle.FindStringSubmatch(title); m != nil {
		return Match{Team1: strings.TrimSpace(m[1]), Team2: strings.TrimSpace(m[2]), Date: parseDate(m[3], fallback)}
	}
	if m := vsTitle.FindStringSubmatch(title); m != nil {
		return Match{Team1: strings.TrimSpace(m[1]), Team2: strings.TrimSpace(m[2]), Date: parseDate(m[3], fallback)}
	}
	return Match{Team1: title, Team2: "Unknown", Date: fallback}
}

func parseDate(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	for _, layout := range dateLayout {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return fallback
}
