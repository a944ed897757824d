// Package normalize converts free-form school-name strings into a canonical
// comparable form so duplicate detection and search match user-entered
// variants that differ only by character width, case, or whitespace.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Fold returns the canonical form of s: full-width characters folded to their
// half-width equivalents, letters lowercased, surrounding whitespace trimmed,
// and internal whitespace runs collapsed to a single ASCII space.
//
// Fold is pure, total and idempotent.
func Fold(s string) string {
	s = width.Fold.String(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// HasWordChar reports whether s contains at least one letter or digit in any
// script. Symbol-only strings are rejected as school names.
func HasWordChar(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// Slugify derives a URL slug from a name: folded, with runs of non-word
// characters replaced by a single hyphen.
func Slugify(s string) string {
	folded := Fold(s)
	var b strings.Builder
	lastHyphen := true
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
