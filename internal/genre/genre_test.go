package genre

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Science Fiction", "science-fiction"},
		{"  Sci-Fi / Fantasy  ", "sci-fi-fantasy"},
		{"Ciência Ficção", "ciencia-ficcao"},
		{"LitRPG", "litrpg"},
		{"Children's Books", "childrens-books"},
		{"Crème Brûlée!", "creme-brulee"},
		{"Horror & Gothic", "horror-gothic"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func TestNormalize_Aliases(t *testing.T) {
	assert.Equal(t, "science-fiction", Normalize("Sci-Fi"))
	assert.Equal(t, "science-fiction", Normalize("SciFi"))
	assert.Equal(t, "science-fiction", Normalize("science fiction"))
	assert.Equal(t, "young-adult", Normalize("YA"))
	assert.Equal(t, "nonfiction", Normalize("Non-Fiction"))
	assert.Equal(t, "fantasy", Normalize("Fantasy"))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("Sci-Fi", "Science Fiction"))
	assert.False(t, Equal("Fantasy", "Horror"))
	assert.False(t, Equal("", ""))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "Science Fiction", Display("  Science   Fiction "))
}
