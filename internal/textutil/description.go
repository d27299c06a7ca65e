// Package textutil prepares book descriptions for storage, indexing and
// display.
package textutil

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/MohammadRstm/BookApp/internal/domain"
)

var (
	ugcPolicy   = bluemonday.UGCPolicy()
	stripPolicy = bluemonday.StripTagsPolicy()
)

// ContainsHTML reports whether s has at least one recognised HTML element.
// Text such as "a < b" or "<not a tag>" is treated as plain text.
func ContainsHTML(s string) bool {
	if !strings.ContainsRune(s, '<') {
		return false
	}

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			if z.Token().DataAtom != 0 {
				return true
			}
		}
	}
}

// Description returns the value to store for a submitted description. The
// text is kept exactly as sent; only blank input becomes
// domain.DefaultDescription.
func Description(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return domain.DefaultDescription
	}
	return raw
}

// Markdown renders a stored description for terminal display. HTML is
// sanitized and converted; anything else is returned unchanged.
func Markdown(s string) string {
	if !ContainsHTML(s) {
		return s
	}
	markdown, err := htmltomarkdown.ConvertString(ugcPolicy.Sanitize(s))
	if err != nil {
		return PlainText(s)
	}
	return strings.TrimSpace(markdown)
}

// PlainText strips all markup and decodes entities. Used for search indexing.
func PlainText(s string) string {
	stripped := html.UnescapeString(stripPolicy.Sanitize(s))
	return strings.Join(strings.Fields(stripped), " ")
}
