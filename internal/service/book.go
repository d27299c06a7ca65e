package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MohammadRstm/BookApp/internal/domain"
	domainerrors "github.com/MohammadRstm/BookApp/internal/errors"
	"github.com/MohammadRstm/BookApp/internal/genre"
	"github.com/MohammadRstm/BookApp/internal/id"
	"github.com/MohammadRstm/BookApp/internal/search"
	"github.com/MohammadRstm/BookApp/internal/store"
	"github.com/MohammadRstm/BookApp/internal/textutil"
	"github.com/MohammadRstm/BookApp/internal/validation"
)

// Messages shared by book and review operations.
const (
	msgInvalidBookID = "Invalid book ID"
	msgBookNotFound  = "Book not found"
)

// BookService orchestrates catalogue operations and keeps the search index
// in step with the store.
type BookService struct {
	store     store.Store
	index     *search.Index // nil when search is disabled
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookService creates a new book service. index may be nil.
func NewBookService(st store.Store, index *search.Index, v *validation.Validator, logger *slog.Logger) *BookService {
	return &BookService{
		store:     st,
		index:     index,
		validator: v,
		logger:    orDiscard(logger),
	}
}

// CreateBookRequest contains the fields of a new book.
type CreateBookRequest struct {
	Title       string `json:"title" validate:"required,notblank,max=300"`
	Author      string `json:"author" validate:"required,notblank,max=200"`
	Year        int    `json:"year" validate:"required,gte=1,lte=9999"`
	Description string `json:"description,omitempty" validate:"max=20000"`
	Genre       string `json:"genre" validate:"required,notblank,max=100"`
}

// EditBookRequest holds the editable fields of a book. At least one must be set.
type EditBookRequest struct {
	Author      *string `json:"author,omitempty" validate:"omitempty,notblank,max=200"`
	Year        *int    `json:"year,omitempty" validate:"omitempty,gte=1,lte=9999"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=20000"`
	Genre       *string `json:"genre,omitempty" validate:"omitempty,notblank,max=100"`
}

// SearchHit is a rated book with its relevance score.
type SearchHit struct {
	domain.BookWithRating
	Score float64 `json:"score"`
}

// ListWithRating returns one page of rated books and the number of books
// matching the filter. The zero params list everything in insertion order.
func (s *BookService) ListWithRating(ctx context.Context, params store.ListBooksParams) ([]domain.BookWithRating, int, error) {
	if params.GenreSlug != "" {
		params.GenreSlug = genre.Normalize(params.GenreSlug)
	}
	if err := params.Validate(); err != nil {
		return nil, 0, badParams(err)
	}

	books, total, err := s.store.ListBooksWithRating(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	return books, total, nil
}

// GetWithRating returns a rated book with all of its reviews.
func (s *BookService) GetWithRating(ctx context.Context, bookID string) (*domain.BookDetails, error) {
	if !id.Valid(id.PrefixBook, bookID) {
		return nil, domainerrors.BadRequest(msgInvalidBookID)
	}

	rated, err := s.store.GetBookWithRating(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound(msgBookNotFound)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	reviews, err := s.store.ListReviewsByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	for i := range reviews {
		// Only the reviewer's public name is shown on a book page.
		reviews[i].User.Email = ""
	}

	return &domain.BookDetails{BookWithRating: *rated, Reviews: reviews}, nil
}

// Create adds a book owned by userID.
func (s *BookService) Create(ctx context.Context, userID string, req CreateBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		Base:        domain.Base{ID: bookID},
		Title:       strings.TrimSpace(req.Title),
		Author:      strings.TrimSpace(req.Author),
		Description: textutil.Description(req.Description),
		Genre:       genre.Display(req.Genre),
		GenreSlug:   genre.Normalize(req.Genre),
		Year:        req.Year,
		AddedBy:     userID,
	}
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.logger.Info("Book added", "book_id", book.ID, "user_id", userID)
	s.indexBook(book)

	return book, nil
}

// ListMine returns the books added by userID in insertion order.
func (s *BookService) ListMine(ctx context.Context, userID string) ([]*domain.Book, error) {
	books, err := s.store.ListBooksByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list books by owner: %w", err)
	}
	return books, nil
}

// Edit overwrites the provided fields of a book owned by userID. Title and
// owner never change. Concurrent edits are last write wins.
func (s *BookService) Edit(ctx context.Context, userID, bookID string, req EditBookRequest) (*domain.Book, error) {
	if !id.Valid(id.PrefixBook, bookID) {
		return nil, domainerrors.BadRequest(msgInvalidBookID)
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	update := domain.BookUpdate{
		Author:      req.Author,
		Year:        req.Year,
		Description: req.Description,
		Genre:       req.Genre,
	}
	if update.IsEmpty() {
		return nil, domainerrors.Validation("At least one field is required")
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound(msgBookNotFound)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	if !book.IsOwnedBy(userID) {
		return nil, domainerrors.Forbidden("You can only edit books you added")
	}

	if update.Author != nil {
		author := strings.TrimSpace(*update.Author)
		update.Author = &author
	}
	if update.Description != nil {
		desc := textutil.Description(*update.Description)
		update.Description = &desc
	}
	if update.Genre != nil {
		label := genre.Display(*update.Genre)
		update.Genre = &label
		update.GenreSlug = genre.Normalize(label)
	}
	update.Apply(book)
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound(msgBookNotFound)
		}
		return nil, fmt.Errorf("update book: %w", err)
	}

	s.logger.Info("Book updated", "book_id", book.ID, "user_id", userID)
	s.indexBook(book)

	return book, nil
}

// SearchEnabled reports whether a search index is configured.
func (s *BookService) SearchEnabled() bool {
	return s.index != nil
}

// Search returns rated books matching query, best match first. genreLabel
// optionally restricts hits to one genre.
func (s *BookService) Search(ctx context.Context, query, genreLabel string, limit int) ([]SearchHit, error) {
	if s.index == nil {
		return nil, domainerrors.BadRequest("Search is disabled")
	}
	query = strings.TrimSpace(query)
	if query == "" && genreLabel == "" {
		return nil, domainerrors.Validation("Search query is required")
	}
	if limit < 0 || limit > search.MaxLimit {
		return nil, domainerrors.Validationf("limit must be between 0 and %d", search.MaxLimit)
	}

	res, err := s.index.Search(ctx, search.Params{
		Query:     query,
		GenreSlug: genre.Normalize(genreLabel),
		Limit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	hits := make([]SearchHit, 0, len(res.Hits))
	for _, hit := range res.Hits {
		rated, err := s.store.GetBookWithRating(ctx, hit.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				s.logger.Warn("Search hit missing from store", "book_id", hit.ID)
				continue
			}
			return nil, fmt.Errorf("get book: %w", err)
		}
		hits = append(hits, SearchHit{BookWithRating: *rated, Score: hit.Score})
	}
	return hits, nil
}

// Reindex rebuilds the search index from every stored book and returns the
// number of books indexed.
func (s *BookService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, domainerrors.BadRequest("Search is disabled")
	}

	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return 0, fmt.Errorf("list books: %w", err)
	}

	docs := make([]*search.BookDocument, 0, len(books))
	for _, b := range books {
		docs = append(docs, search.BookToDocument(b))
	}
	if err := s.index.Rebuild(docs); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	s.logger.Info("Search index rebuilt", "books", len(docs))
	return len(docs), nil
}

// indexBook refreshes one book in the search index. The store is the source
// of truth, so failures are logged and the next Reindex repairs them.
func (s *BookService) indexBook(book *domain.Book) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexBook(search.BookToDocument(book)); err != nil {
		s.logger.Warn("Failed to index book", "book_id", book.ID, "error", err)
	}
}

// badParams turns a listing parameter error into a BadRequest.
func badParams(err error) error {
	var storeErr *store.Error
	if errors.As(err, &storeErr) && storeErr.Code < 500 {
		return domainerrors.BadRequest(storeErr.Message)
	}
	return err
}
