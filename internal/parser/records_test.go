package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "hock ass", NormalizeHeader("  Hock   ASS "))
	assert.Equal(t, "pts", NormalizeHeader("PTS"))
	assert.Equal(t, "", NormalizeHeader("   "))
}

func TestRecordsDropsBlankRowsAndPadsShortRows(t *testing.T) {
	rows := [][]string{
		{"Player", "PTS", "Hock Ass"},
		{"ann", "12", "3"},
		{"", "", ""},
		{"  ", ""},
		{"bo", "9"},
	}
	recs := Records(rows, 0)
	require.Len(t, recs, 2)
	assert.Equal(t, Record{"player": "ann", "pts": "12", "hock ass": "3"}, recs[0])
	assert.Equal(t, Record{"player": "bo", "pts": "9", "hock ass": ""}, recs[1])
}

func TestRecordsIgnoresExtraFields(t *testing.T) {
	recs := Records([][]string{{"a"}, {"1", "2", "3"}}, 0)
	require.Len(t, recs, 1)
	assert.Equal(t, Record{"a": "1"}, recs[0])
}

func TestRecordsOutOfRangeHeader(t *testing.T) {
	assert.Nil(t, Records(nil, 0))
	assert.Nil(t, Records([][]string{{"a"}}, 3))
}

func TestHeaderIndexDetectsSentinel(t *testing.T) {
	assert.Equal(t, 0, HeaderIndex([][]string{{"date", "pts"}}))
	assert.Equal(t, 1, HeaderIndex([][]string{{"meta", "2025-09-23"}, {"date", "pts"}}))
	assert.Equal(t, 0, HeaderIndex(nil))
}

func TestParseSentinelLayout(t *testing.T) {
	text := "META,2025-09-23,duncles,pretty-good,60,75\n" +
		"date,player_slug,PTS\n" +
		"2025-09-23,ann-lee,12\n" +
		",,\n"
	tbl := Parse(text)
	require.NotNil(t, tbl.Meta)
	assert.Equal(t, Meta{Date: "2025-09-23", Team1: "duncles", Team2: "pretty-good", Score1: "60", Score2: "75"}, *tbl.Meta)
	assert.Equal(t, []string{"date", "player_slug", "pts"}, tbl.Header)
	require.Len(t, tbl.Records, 1)
	assert.Equal(t, "12", tbl.Records[0].Get("PTS"))
}

func TestRecordLookupAndNum(t *testing.T) {
	r := Record{"ass": "", "hock ass": "4", "pts": "1,024", "bad": "n/a"}
	assert.Equal(t, "4", r.Lookup("ass", "hock ass"))
	assert.Equal(t, 4.0, r.Num("ass", "hock ass"))
	assert.Equal(t, 1024.0, r.Num("pts"))
	assert.Equal(t, 0.0, r.Num("bad"))
	assert.Equal(t, 0.0, r.Num("missing"))
	assert.False(t, r.Has("ass"))
}

func TestParseNum(t *testing.T) {
	cases := map[string]float64{
		"":      0,
		"12":    12,
		" 7.5 ": 7.5,
		"45%":   45,
		"-3":    -3,
		"abc":   0,
		"1.2.3": 0,
		"--":    0,
		"DNP":   0,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseNum(in), "ParseNum(%q)", in)
	}
}
