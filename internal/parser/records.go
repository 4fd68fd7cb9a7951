package parser

import (
	"math"
	"strconv"
	"strings"
)

// MetaSentinel marks a leading metadata row; the real header follows it.
const MetaSentinel = "META"

// Record maps a normalized column name to a trimmed cell value.
type Record map[string]string

// Get returns the value stored under the normalized form of key.
func (r Record) Get(key string) string {
	return r[NormalizeHeader(key)]
}

// Lookup returns the first non-empty value among keys, in order.
func (r Record) Lookup(keys ...string) string {
	for _, k := range keys {
		if v := r.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// Num reads the first non-empty alias and parses it tolerantly.
func (r Record) Num(keys ...string) float64 {
	return ParseNum(r.Lookup(keys...))
}

// Has reports whether any of keys holds a non-empty value.
func (r Record) Has(keys ...string) bool {
	return r.Lookup(keys...) != ""
}

// NormalizeHeader lower-cases a column name and collapses internal whitespace.
func NormalizeHeader(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ParseNum drops every character outside [0-9.-] and parses what is left.
// Anything unparseable, NaN or infinite reads as zero.
func ParseNum(s string) float64 {
	if s == "" {
		return 0
	}
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// HeaderIndex returns 1 when the first row starts with the META sentinel, else 0.
func HeaderIndex(rows [][]string) int {
	if len(rows) > 0 && len(rows[0]) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), MetaSentinel) {
		return 1
	}
	return 0
}

// Records maps every row after headerIdx onto the header at headerIdx.
// Rows whose fields are all empty are dropped; short rows pad with "".
// A repeated header name keeps the right-most column.
func Records(rows [][]string, headerIdx int) []Record {
	if headerIdx < 0 || headerIdx >= len(rows) {
		return nil
	}
	header := make([]string, len(rows[headerIdx]))
	for i, h := range rows[headerIdx] {
		header[i] = NormalizeHeader(h)
	}

	var out []Record
	for _, row := range rows[headerIdx+1:] {
		if blank(row) {
			continue
		}
		rec := make(Record, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			v := ""
			if i < len(row) {
				v = strings.TrimSpace(row[i])
			}
			rec[h] = v
		}
		out = append(out, rec)
	}
	return out
}

func blank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Meta holds the fields of a sentinel row written by the box score ingest:
// META, date, team1, team2, score1, score2.
type Meta struct {
	Date   string
	Team1  string
	Team2  string
	Score1 string
	Score2 string
}

// Table is a parsed sheet.
type Table struct {
	Header  []string
	Meta    *Meta
	Records []Record
}

// Parse tokenizes text, detects the sentinel layout and maps the records.
func Parse(text string) Table {
	rows := Tokenize(text)
	idx := HeaderIndex(rows)
	t := Table{Records: Records(rows, idx)}
	if idx < len(rows) {
		for _, h := range rows[idx] {
			t.Header = append(t.Header, NormalizeHeader(h))
		}
	}
	if idx == 1 {
		meta := rows[0]
		at := func(i int) string {
			if i < len(meta) {
				return meta[i]
			}
			return ""
		}
		t.Meta = &Meta{Date: at(1), Team1: at(2), Team2: at(3), Score1: at(4), Score2: at(5)}
	}
	return t
}
