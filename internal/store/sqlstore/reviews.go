package sqlstore

import (
	"context"

	"github.com/MohammadRstm/BookApp/internal/domain"
	"github.com/MohammadRstm/BookApp/internal/store"
)

const reviewColumns = `r.id, r.book_id, r.user_id, r.rating, r.review_text, r.created_at, r.updated_at`

func scanReview(row scanner, extra ...any) (*domain.Review, error) {
	var (
		r         domain.Review
		createdAt string
		updatedAt string
	)
	dest := append([]any{
		&r.ID, &r.BookID, &r.UserID, &r.Rating, &r.ReviewText, &createdAt, &updatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReview inserts a new review.
func (s *Store) CreateReview(ctx context.Context, review *domain.Review) error {
	_, err := s.exec(ctx, `
		INSERT INTO reviews (id, book_id, user_id, rating, review_text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		review.ID,
		review.BookID,
		review.UserID,
		review.Rating,
		review.ReviewText,
		formatTime(review.CreatedAt),
		formatTime(review.UpdatedAt),
	)
	return s.mapWriteErr(err)
}

// ListReviews returns every review in insertion order with its book title
// and reviewer attached.
func (s *Store) ListReviews(ctx context.Context) ([]domain.ReviewWithRefs, error) {
	rows, err := s.query(ctx, `
		SELECT `+reviewColumns+`,
			COALESCE(b.title, ''), COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM reviews r
		LEFT JOIN books b ON b.id = r.book_id
		LEFT JOIN users u ON u.id = r.user_id
		ORDER BY r.seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []domain.ReviewWithRefs{}
	for rows.Next() {
		var title, name, email string
		r, err := scanReview(rows, &title, &name, &email)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, domain.ReviewWithRefs{
			Review: *r,
			Book:   domain.BookRef{ID: r.BookID, Title: title},
			User:   domain.UserRef{ID: r.UserID, Name: name, Email: email},
		})
	}
	return reviews, rows.Err()
}

// ListReviewsByBook returns a book's reviews in insertion order with the
// reviewer's name attached.
func (s *Store) ListReviewsByBook(ctx context.Context, bookID string) ([]domain.ReviewWithUser, error) {
	rows, err := s.query(ctx, `
		SELECT `+reviewColumns+`, COALESCE(u.name, '')
		FROM reviews r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.book_id = ?
		ORDER BY r.seq`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []domain.ReviewWithUser{}
	for rows.Next() {
		var name string
		r, err := scanReview(rows, &name)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, domain.ReviewWithUser{
			Review: *r,
			User:   domain.UserRef{ID: r.UserID, Name: name},
		})
	}
	return reviews, rows.Err()
}

var _ store.Reviews = (*Store)(nil)
