package mongostore

import (
	"time"

	"github.com/MohammadRstm/BookApp/internal/domain"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	EmailLower   string    `bson:"emailLower"`
	PasswordHash string    `bson:"passwordHash"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func newUserDoc(u *domain.User) userDoc {
	return userDoc{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		EmailLower:   domain.NormalizeEmail(u.Email),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		Base:         domain.Base{ID: d.ID, CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC()},
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
	}
}

type bookDoc struct {
	ID          string    `bson:"_id"`
	Seq         int64     `bson:"seq"`
	Title       string    `bson:"title"`
	Author      string    `bson:"author"`
	Description string    `bson:"description"`
	Genre       string    `bson:"genre"`
	GenreSlug   string    `bson:"genreSlug"`
	Year        int       `bson:"year"`
	AddedBy     string    `bson:"addedBy"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func newBookDoc(b *domain.Book, seq int64) bookDoc {
	return bookDoc{
		ID:          b.ID,
		Seq:         seq,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Genre:       b.Genre,
		GenreSlug:   b.GenreSlug,
		Year:        b.Year,
		AddedBy:     b.AddedBy,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func (d bookDoc) toDomain() *domain.Book {
	return &domain.Book{
		Base:        domain.Base{ID: d.ID, CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC()},
		Title:       d.Title,
		Author:      d.Author,
		Description: d.Description,
		Genre:       d.Genre,
		GenreSlug:   d.GenreSlug,
		Year:        d.Year,
		AddedBy:     d.AddedBy,
	}
}

// ratedBookDoc is a book as produced by the rating pipeline.
type ratedBookDoc struct {
	Book          bookDoc `bson:",inline"`
	AverageRating float64 `bson:"averageRating"`
	ReviewsCount  int     `bson:"reviewsCount"`
}

func (d ratedBookDoc) toDomain() domain.BookWithRating {
	return domain.BookWithRating{
		Book:          *d.Book.toDomain(),
		AverageRating: d.AverageRating,
		ReviewsCount:  d.ReviewsCount,
	}
}

type reviewDoc struct {
	ID         string    `bson:"_id"`
	Seq        int64     `bson:"seq"`
	BookID     string    `bson:"bookId"`
	UserID     string    `bson:"userId"`
	Rating     int       `bson:"rating"`
	ReviewText string    `bson:"reviewText"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

func newReviewDoc(r *domain.Review, seq int64) reviewDoc {
	return reviewDoc{
		ID:         r.ID,
		Seq:        seq,
		BookID:     r.BookID,
		UserID:     r.UserID,
		Rating:     r.Rating,
		ReviewText: r.ReviewText,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (d reviewDoc) toDomain() domain.Review {
	return domain.Review{
		Base:       domain.Base{ID: d.ID, CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC()},
		BookID:     d.BookID,
		UserID:     d.UserID,
		Rating:     d.Rating,
		ReviewText: d.ReviewText,
	}
}

type refDoc struct {
	ID    string `bson:"_id"`
	Title string `bson:"title"`
	Name  string `bson:"name"`
	Email string `bson:"email"`
}

// reviewRefsDoc is a review joined with its book and reviewer.
type reviewRefsDoc struct {
	Review reviewDoc `bson:",inline"`
	Book   refDoc    `bson:"book"`
	User   refDoc    `bson:"user"`
}
