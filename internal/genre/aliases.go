package genre

import "strings"

// aliases folds common spellings onto one canonical slug so that "Sci-Fi"
// and "Science Fiction" land in the same bucket.
var aliases = map[string]string{
	"sci-fi":          "science-fiction",
	"scifi":           "science-fiction",
	"sf":              "science-fiction",
	"ya":              "young-adult",
	"teen":            "young-adult",
	"non-fiction":     "nonfiction",
	"self-help":       "self-help",
	"selfhelp":        "self-help",
	"personal-growth": "self-help",
	"biographies":     "biography",
	"memoir":          "biography",
	"thrillers":       "thriller",
	"suspense":        "thriller",
	"mysteries":       "mystery",
	"crime":           "mystery",
	"scary":           "horror",
	"historical":      "historical-fiction",
	"lit-rpg":         "litrpg",
	"gamelit":         "litrpg",
}

// Normalize returns the canonical slug for a raw genre label. Unknown
// labels return their slug unchanged; blank input returns "".
func Normalize(raw string) string {
	slug := Slugify(raw)
	if canonical, ok := aliases[slug]; ok {
		return canonical
	}
	return slug
}

// Equal reports whether two raw labels normalize to the same genre.
func Equal(a, b string) bool {
	na := Normalize(a)
	return na != "" && na == Normalize(b)
}

// Display trims and collapses whitespace in a label for storage, keeping the
// caller's casing.
func Display(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
