// Package store defines the persistence contract shared by every BookApp
// backend. Implementations live in the sqlstore, badgerdb and mongostore
// subpackages.
package store

import (
	"context"

	"github.com/MohammadRstm/BookApp/internal/domain"
)

// Users persists accounts. Email uniqueness is case-insensitive.
type Users interface {
	// CreateUser returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}

// Books persists catalogue entries and computes their rating view.
type Books interface {
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	// UpdateBook overwrites the stored book. Last write wins.
	UpdateBook(ctx context.Context, book *domain.Book) error
	// ListBooks returns every book in insertion order.
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	ListBooksByOwner(ctx context.Context, userID string) ([]*domain.Book, error)
	// ListBooksWithRating returns one page of rated books plus the total
	// number of books matching the filter.
	ListBooksWithRating(ctx context.Context, params ListBooksParams) ([]domain.BookWithRating, int, error)
	GetBookWithRating(ctx context.Context, id string) (*domain.BookWithRating, error)
}

// Reviews persists ratings. A user may review the same book more than once.
type Reviews interface {
	CreateReview(ctx context.Context, review *domain.Review) error
	// ListReviews returns every review in insertion order with its book and
	// reviewer attached.
	ListReviews(ctx context.Context) ([]domain.ReviewWithRefs, error)
	ListReviewsByBook(ctx context.Context, bookID string) ([]domain.ReviewWithUser, error)
}

// Store is the full persistence surface used by the services.
type Store interface {
	Users
	Books
	Reviews

	Ping(ctx context.Context) error
	Close() error
}
