// Package identity reconciles free-text team and player labels from
// spreadsheets with canonical slugs.
package identity

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrCollision is returned when two canonical entities normalize to the same form.
var ErrCollision = errors.New("identity collision")

// Slug lower-cases s, collapses every run of non-alphanumerics into one
// hyphen and strips leading and trailing hyphens.
func Slug(s string) string {
	return collapse(s, '-')
}

// Words is Slug with spaces instead of hyphens.
func Words(s string) string {
	return collapse(s, ' ')
}

func collapse(s string, sep byte) string {
	var b strings.Builder
	b.Grow(len(s))
	gap := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if gap && b.Len() > 0 {
				b.WriteByte(sep)
			}
			gap = false
			b.WriteRune(r)
			continue
		}
		gap = true
	}
	return b.String()
}

// Matches reports whether cell names the entity (slug, name).
//
// The cell matches when its slug form equals or contains the canonical slug,
// or its word form equals or contains the canonical name's word form. An
// empty canonical form only matches an equally empty cell.
func Matches(cell, slug, name string) bool {
	cSlug, cWords := Slug(cell), Words(cell)
	tSlug, tWords := Slug(slug), Words(name)
	if cSlug == tSlug || cWords == tWords {
		return true
	}
	if tSlug != "" && strings.Contains(cSlug, tSlug) {
		return true
	}
	return tWords != "" && strings.Contains(cWords, tWords)
}
