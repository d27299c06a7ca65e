package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/MohammadRstm/BookApp/internal/domain"
	"github.com/MohammadRstm/BookApp/internal/service"
	"github.com/MohammadRstm/BookApp/internal/store"
)

// totalCountHeader reports the number of books matching a listing filter.
const totalCountHeader = "X-Total-Count"

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooksWithRating",
		Method:      http.MethodGet,
		Path:        "/api/books/withRating",
		Summary:     "List books with ratings",
		Description: "Returns books with their average rating and review count, in insertion order unless sorted",
		Tags:        []string{"Books"},
	}, s.handleListBooksWithRating)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookWithRating",
		Method:      http.MethodGet,
		Path:        "/api/books/withRating/{id}",
		Summary:     "Get book details",
		Description: "Returns a book with its rating view and every review",
		Tags:        []string{"Books"},
	}, s.handleGetBookWithRating)

	huma.Register(s.api, huma.Operation{
		OperationID: "addBook",
		Method:      http.MethodPost,
		Path:        "/api/books/addNewBook",
		Summary:     "Add book",
		Description: "Adds a book owned by the caller",
		Tags:        []string{"Books"},
		Security:    bearerSecurity,
	}, s.handleAddBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMyBooks",
		Method:      http.MethodGet,
		Path:        "/api/books/by/me",
		Summary:     "List my books",
		Description: "Returns the books added by the caller",
		Tags:        []string{"Books"},
		Security:    bearerSecurity,
	}, s.handleListMyBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "editBook",
		Method:      http.MethodPut,
		Path:        "/api/books/edit/{bookId}",
		Summary:     "Edit book",
		Description: "Overwrites author, year, description or genre of a book the caller added",
		Tags:        []string{"Books"},
		Security:    bearerSecurity,
	}, s.handleEditBook)
}

// === DTOs ===

// ListBooksInput contains the listing filter.
type ListBooksInput struct {
	Genre string `query:"genre" doc:"Only books of this genre; aliases such as sci-fi are accepted"`
	Sort  string `query:"sort" doc:"Sort key: year, rating or title. Default is insertion order"`
	Order string `query:"order" doc:"asc (default) or desc"`
	Page  int    `query:"page" doc:"1-based page number, used with limit"`
	Limit int    `query:"limit" doc:"Page size, at most 100. 0 returns every book"`
}

// ListBooksOutput contains one page of rated books.
type ListBooksOutput struct {
	TotalCount int `header:"X-Total-Count" doc:"Number of books matching the filter"`
	Body       []domain.BookWithRating
}

// BookIDInput selects a book by path ID.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookDetailsResponse contains a book page.
type BookDetailsResponse struct {
	Message     string              `json:"message"`
	BookDetails *domain.BookDetails `json:"bookDetails"`
}

// BookDetailsOutput wraps a book page for Huma.
type BookDetailsOutput struct {
	Body BookDetailsResponse
}

// AddBookInput wraps a new book for Huma.
type AddBookInput struct {
	Body service.CreateBookRequest
}

// BookResponse contains a written book.
type BookResponse struct {
	Message string       `json:"message"`
	Book    *domain.Book `json:"book"`
}

// BookOutput wraps a written book for Huma.
type BookOutput struct {
	Body BookResponse
}

// MyBooksResponse lists the caller's books.
type MyBooksResponse struct {
	BooksByMe []*domain.Book `json:"booksByMe"`
}

// MyBooksOutput wraps the caller's books for Huma.
type MyBooksOutput struct {
	Body MyBooksResponse
}

// EditBookInput wraps an edit for Huma.
type EditBookInput struct {
	BookID string `path:"bookId" doc:"Book ID"`
	Body   service.EditBookRequest
}

// === Handlers ===

func (s *Server) handleListBooksWithRating(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	books, total, err := s.services.Book.ListWithRating(ctx, store.ListBooksParams{
		GenreSlug: input.Genre,
		Sort:      input.Sort,
		Order:     input.Order,
		Page:      input.Page,
		Limit:     input.Limit,
	})
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []domain.BookWithRating{}
	}
	return &ListBooksOutput{TotalCount: total, Body: books}, nil
}

func (s *Server) handleGetBookWithRating(ctx context.Context, input *BookIDInput) (*BookDetailsOutput, error) {
	details, err := s.services.Book.GetWithRating(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if details.Reviews == nil {
		details.Reviews = []domain.ReviewWithUser{}
	}
	return &BookDetailsOutput{Body: BookDetailsResponse{
		Message:     "Book Details obtained",
		BookDetails: details,
	}}, nil
}

func (s *Server) handleAddBook(ctx context.Context, input *AddBookInput) (*BookOutput, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.Create(ctx, identity.UserID, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: BookResponse{Message: "Book added", Book: book}}, nil
}

func (s *Server) handleListMyBooks(ctx context.Context, _ *struct{}) (*MyBooksOutput, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Book.ListMine(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []*domain.Book{}
	}
	return &MyBooksOutput{Body: MyBooksResponse{BooksByMe: books}}, nil
}

func (s *Server) handleEditBook(ctx context.Context, input *EditBookInput) (*BookOutput, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.Edit(ctx, identity.UserID, input.BookID, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: BookResponse{Message: "Book updated", Book: book}}, nil
}
