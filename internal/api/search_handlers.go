package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/MohammadRstm/BookApp/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/books/search",
		Summary:     "Search books",
		Description: "Full-text search over title, author, genre and description, best match first",
		Tags:        []string{"Search"},
	}, s.handleSearchBooks)
}

// SearchBooksInput contains search query parameters.
type SearchBooksInput struct {
	Query string `query:"q" doc:"Search text"`
	Genre string `query:"genre" doc:"Only books of this genre"`
	Limit int    `query:"limit" doc:"Maximum hits (default 20, max 100)"`
}

// SearchBooksResponse lists search hits.
type SearchBooksResponse struct {
	Hits []service.SearchHit `json:"hits"`
}

// SearchBooksOutput wraps search hits for Huma.
type SearchBooksOutput struct {
	Body SearchBooksResponse
}

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*SearchBooksOutput, error) {
	hits, err := s.services.Book.Search(ctx, input.Query, input.Genre, input.Limit)
	if err != nil {
		return nil, err
	}
	return &SearchBooksOutput{Body: SearchBooksResponse{Hits: hits}}, nil
}
