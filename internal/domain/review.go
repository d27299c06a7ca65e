package domain

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is one user's rating and text for one book.
type Review struct {
	Base
	BookID     string `json:"bookId"`
	UserID     string `json:"userId"`
	Rating     int    `json:"rating"`
	ReviewText string `json:"reviewText"`
}

// ReviewWithUser is a review with the reviewer's public name attached.
type ReviewWithUser struct {
	Review
	User UserRef `json:"user"`
}

// ReviewWithRefs is a review with both its book and reviewer attached.
type ReviewWithRefs struct {
	Review
	Book BookRef `json:"book"`
	User UserRef `json:"user"`
}

// RatingSummary accumulates ratings into the derived view of a book.
type RatingSummary struct {
	Sum   int
	Count int
}

// Add records one rating.
func (s *RatingSummary) Add(rating int) {
	s.Sum += rating
	s.Count++
}

// Average returns the arithmetic mean, or 0 when there are no ratings.
func (s RatingSummary) Average() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Sum) / float64(s.Count)
}

// WithRating attaches the summary to a book.
func (s RatingSummary) WithRating(b Book) BookWithRating {
	return BookWithRating{Book: b, AverageRating: s.Average(), ReviewsCount: s.Count}
}
