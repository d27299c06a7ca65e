// Package genre normalizes free-form genre labels into stable slugs used
// for filtering.
package genre

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldMarks strips combining marks after decomposition, so "ç" becomes "c".
var foldMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Slugify converts a genre label to its lowercase hyphenated slug.
//
//	"Science Fiction"   -> "science-fiction"
//	"Ciência Ficção"    -> "ciencia-ficcao"
//	"Children's Books"  -> "childrens-books"
//
// Runs of punctuation or spaces collapse into one hyphen. Letters with no
// ASCII form are dropped.
func Slugify(s string) string {
	folded, _, err := transform.String(foldMarks, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	gap := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= utf8.RuneSelf, r == '\'':
			continue
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if gap && b.Len() > 0 {
				b.WriteByte('-')
			}
			gap = false
			b.WriteRune(r)
		default:
			gap = true
		}
	}
	return b.String()
}
