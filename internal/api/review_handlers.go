package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/MohammadRstm/BookApp/internal/domain"
	"github.com/MohammadRstm/BookApp/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createReview",
		Method:        http.MethodPost,
		Path:          "/api/reviews/newreview/{id}",
		Summary:       "Review a book",
		Description:   "Rates a book from 1 to 5 with a text review. Owners cannot review their own books.",
		Tags:          []string{"Reviews"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerSecurity,
	}, s.handleCreateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "listReviews",
		Method:      http.MethodGet,
		Path:        "/api/reviews",
		Summary:     "List reviews",
		Description: "Returns every review with its book and reviewer",
		Tags:        []string{"Reviews"},
	}, s.handleListReviews)
}

// CreateReviewInput wraps a review for Huma.
type CreateReviewInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body service.CreateReviewRequest
}

// ReviewOutput wraps a created review for Huma.
type ReviewOutput struct {
	Body *domain.Review
}

// ListReviewsOutput wraps the review listing for Huma.
type ListReviewsOutput struct {
	Body []domain.ReviewWithRefs
}

func (s *Server) handleCreateReview(ctx context.Context, input *CreateReviewInput) (*ReviewOutput, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.Create(ctx, identity.UserID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleListReviews(ctx context.Context, _ *struct{}) (*ListReviewsOutput, error) {
	reviews, err := s.services.Review.List(ctx)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []domain.ReviewWithRefs{}
	}
	return &ListReviewsOutput{Body: reviews}, nil
}
