package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MohammadRstm/BookApp/internal/domain"
	domainerrors "github.com/MohammadRstm/BookApp/internal/errors"
	"github.com/MohammadRstm/BookApp/internal/id"
	"github.com/MohammadRstm/BookApp/internal/store"
	"github.com/MohammadRstm/BookApp/internal/validation"
)

// ReviewService records ratings and lists them.
type ReviewService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(st store.Store, v *validation.Validator, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:     st,
		validator: v,
		logger:    orDiscard(logger),
	}
}

// CreateReviewRequest is a rating with its text. The json names match the
// form fields the web client posts.
type CreateReviewRequest struct {
	Rating *int   `json:"newRating" validate:"required,gte=1,lte=5"`
	Text   string `json:"newReview" validate:"required,notblank,max=5000"`
}

// Create records a review of bookID by userID. Owners cannot review their
// own books; anyone else may review a book any number of times.
func (s *ReviewService) Create(ctx context.Context, userID, bookID string, req CreateReviewRequest) (*domain.Review, error) {
	if !id.Valid(id.PrefixBook, bookID) {
		return nil, domainerrors.BadRequest(msgInvalidBookID)
	}
	req.Text = strings.TrimSpace(req.Text)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound(msgBookNotFound)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	if book.IsOwnedBy(userID) {
		return nil, domainerrors.SelfReview("cannot review own book")
	}

	reviewID, err := id.Generate(id.PrefixReview)
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		Base:       domain.Base{ID: reviewID},
		BookID:     bookID,
		UserID:     userID,
		Rating:     *req.Rating,
		ReviewText: req.Text,
	}
	review.InitTimestamps()

	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.Info("Review added", "review_id", review.ID, "book_id", bookID, "user_id", userID, "rating", review.Rating)
	return review, nil
}

// List returns every review in insertion order with its book and reviewer.
func (s *ReviewService) List(ctx context.Context) ([]domain.ReviewWithRefs, error) {
	reviews, err := s.store.ListReviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
