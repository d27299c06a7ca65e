package search

import (
	"github.com/MohammadRstm/BookApp/internal/domain"
	"github.com/MohammadRstm/BookApp/internal/textutil"
)

// BookDocument is the indexed form of a book.
type BookDocument struct {
	ID          string
	Title       string
	Author      string
	Description string
	Genre       string
	GenreSlug   string
	Year        int
}

// BookToDocument converts a book for indexing. Descriptions are indexed as
// plain text so markup and entity noise stay out of the terms.
func BookToDocument(b *domain.Book) *BookDocument {
	desc := b.Description
	if desc == domain.DefaultDescription {
		desc = ""
	}
	return &BookDocument{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: textutil.PlainText(desc),
		Genre:       b.Genre,
		GenreSlug:   b.GenreSlug,
		Year:        b.Year,
	}
}

// ToMap converts the document to the field names used by the mapping.
func (d *BookDocument) ToMap() map[string]any {
	return map[string]any{
		"id":          d.ID,
		"title":       d.Title,
		"author":      d.Author,
		"description": d.Description,
		"genre":       d.Genre,
		"genre_slug":  d.GenreSlug,
		"year":        float64(d.Year),
	}
}
