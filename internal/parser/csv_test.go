package parser

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want [][]string
	}{
		{
			name: "plain rows",
			in:   "a,b\nc,d\n",
			want: [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name: "fields are trimmed",
			in:   " a , b \n",
			want: [][]string{{"a", "b"}},
		},
		{
			name: "quoted comma and newline",
			in:   "name,note\n\"Lee, Ann\",\"line one\nline two\"\n",
			want: [][]string{{"name", "note"}, {"Lee, Ann", "line one\nline two"}},
		},
		{
			name: "doubled quote is literal",
			in:   `"say ""hi""",x`,
			want: [][]string{{`say "hi"`, "x"}},
		},
		{
			name: "crlf line endings",
			in:   "a,b\r\nc,d\r\n",
			want: [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name: "blank lines skipped",
			in:   "a,b\n\n\r\n\nc,d",
			want: [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name: "explicitly delimited empty row kept",
			in:   "a,b\n,\nc,d\n",
			want: [][]string{{"a", "b"}, {"", ""}, {"c", "d"}},
		},
		{
			name: "trailing field without newline",
			in:   "a,b\nc,",
			want: [][]string{{"a", "b"}, {"c", ""}},
		},
		{
			name: "unterminated quote runs to end",
			in:   "a,\"open\nb,c",
			want: [][]string{{"a", "open\nb,c"}},
		},
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenizeRoundTripsQuotedFields(t *testing.T) {
	values := []string{
		"plain",
		"comma, inside",
		"multi\nline, with comma",
		`quote "inside" it`,
		"crlf\r\nbreak",
	}
	for _, v := range values {
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write([]string{"before", v, "after"}); err != nil {
			t.Fatalf("csv write: %v", err)
		}
		w.Flush()

		rows := Tokenize(buf.String())
		if len(rows) != 1 {
			t.Fatalf("value %q: got %d rows, want 1: %q", v, len(rows), rows)
		}
		if len(rows[0]) != 3 || rows[0][1] != v {
			t.Errorf("value %q: got row %q", v, rows[0])
		}
	}
}
