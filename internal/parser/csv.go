// Package parser turns loosely-structured spreadsheet CSV exports into
// ordered rows and header-keyed records.
package parser

import "strings"

// Tokenize splits text into rows of trimmed fields.
//
// Quoted fields may contain commas, line breaks and doubled quotes. Blank
// lines between rows are skipped, but a line made only of delimiters (",,")
// is kept as a row of empty fields. Malformed quoting never fails: an
// unterminated quote simply runs to the end of input.
func Tokenize(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
		// pending is true once the current row has seen any delimiter or
		// content, so an explicitly delimited empty row still flushes.
		pending bool
	)

	flushField := func() {
		row = append(row, strings.TrimSpace(field.String()))
		field.Reset()
	}
	flushRow := func() {
		flushField()
		rows = append(rows, row)
		row = nil
		pending = false
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				field.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
			pending = true
		case c == ',' && !inQuotes:
			flushField()
			pending = true
		case (c == '\n' || c == '\r') && !inQuotes:
			if c == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			if !pending && len(row) == 0 && field.Len() == 0 {
				continue
			}
			flushRow()
		default:
			field.WriteByte(c)
			pending = true
		}
	}
	if pending || len(row) > 0 || field.Len() > 0 {
		flushRow()
	}
	return rows
}
