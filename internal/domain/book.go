package domain

// DefaultDescription is stored when a book is created without a description.
const DefaultDescription = "N/A"

// Book is a catalogue entry. Title and AddedBy never change after creation.
type Book struct {
	Base
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
	GenreSlug   string `json:"genreSlug"`
	Year        int    `json:"year"`
	AddedBy     string `json:"addedBy"`
}

// IsOwnedBy reports whether userID added the book.
func (b *Book) IsOwnedBy(userID string) bool {
	return b.AddedBy != "" && b.AddedBy == userID
}

// BookUpdate holds the editable fields of a book. Nil fields are left unchanged.
type BookUpdate struct {
	Author      *string
	Year        *int
	Description *string
	Genre       *string
	GenreSlug   string // derived from Genre by the service
}

// IsEmpty reports whether no field would change.
func (u BookUpdate) IsEmpty() bool {
	return u.Author == nil && u.Year == nil && u.Description == nil && u.Genre == nil
}

// Apply overwrites the set fields on b.
func (u BookUpdate) Apply(b *Book) {
	if u.Author != nil {
		b.Author = *u.Author
	}
	if u.Year != nil {
		b.Year = *u.Year
	}
	if u.Description != nil {
		b.Description = *u.Description
	}
	if u.Genre != nil {
		b.Genre = *u.Genre
		b.GenreSlug = u.GenreSlug
	}
}

// BookRef is the part of a book embedded in review listings.
type BookRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// BookWithRating is a book plus its derived rating view. It is computed on
// every read and never persisted.
type BookWithRating struct {
	Book
	AverageRating float64 `json:"averageRating"`
	ReviewsCount  int     `json:"reviewsCount"`
}

// BookDetails is a rated book together with all of its reviews.
type BookDetails struct {
	BookWithRating
	Reviews []ReviewWithUser `json:"reviews"`
}
