package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/MohammadRstm/BookApp/internal/domain"
	"github.com/MohammadRstm/BookApp/internal/store"
)

// bookColumns must match the scan order in scanBook.
const bookColumns = `b.id, b.title, b.author, b.description, b.genre, b.genre_slug, b.year, b.added_by, b.created_at, b.updated_at`

// ratedBookSelect joins reviews onto books to compute the rating view in a
// single pass. Grouping by the primary key lets the other book columns
// appear unaggregated on every supported engine.
const ratedBookSelect = `SELECT ` + bookColumns + `,
	COALESCE(AVG(r.rating), 0) AS average_rating,
	COUNT(r.id) AS reviews_count
FROM books b
LEFT JOIN reviews r ON r.book_id = b.id`

const ratedBookGroup = ` GROUP BY b.seq`

func scanBook(row scanner, extra ...any) (*domain.Book, error) {
	var (
		b         domain.Book
		createdAt string
		updatedAt string
	)
	dest := append([]any{
		&b.ID, &b.Title, &b.Author, &b.Description, &b.Genre, &b.GenreSlug,
		&b.Year, &b.AddedBy, &createdAt, &updatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanRatedBook(row scanner) (domain.BookWithRating, error) {
	var (
		avg   float64
		count int
	)
	b, err := scanBook(row, &avg, &count)
	if err != nil {
		return domain.BookWithRating{}, err
	}
	return domain.BookWithRating{Book: *b, AverageRating: avg, ReviewsCount: count}, nil
}

// CreateBook inserts a new book.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	_, err := s.exec(ctx, `
		INSERT INTO books (id, title, author, description, genre, genre_slug, year, added_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		book.Title,
		book.Author,
		book.Description,
		book.Genre,
		book.GenreSlug,
		book.Year,
		book.AddedBy,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
	)
	return s.mapWriteErr(err)
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	b, err := scanBook(s.queryRow(ctx, `SELECT `+bookColumns+` FROM books b WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return b, err
}

// UpdateBook overwrites the editable columns. Title and owner are immutable.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	res, err := s.exec(ctx, `
		UPDATE books
		SET author = ?, description = ?, genre = ?, genre_slug = ?, year = ?, updated_at = ?
		WHERE id = ?`,
		book.Author,
		book.Description,
		book.Genre,
		book.GenreSlug,
		book.Year,
		formatTime(book.UpdatedAt),
		book.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ListBooks returns every book in insertion order.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.listBooks(ctx, `SELECT `+bookColumns+` FROM books b ORDER BY b.seq`)
}

// ListBooksByOwner returns the books added by userID in insertion order.
func (s *Store) ListBooksByOwner(ctx context.Context, userID string) ([]*domain.Book, error) {
	return s.listBooks(ctx, `SELECT `+bookColumns+` FROM books b WHERE b.added_by = ? ORDER BY b.seq`, userID)
}

func (s *Store) listBooks(ctx context.Context, query string, args ...any) ([]*domain.Book, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// sortExpressions maps sort keys to trusted ORDER BY expressions.
var sortExpressions = map[string]string{
	store.SortYear:   "b.year",
	store.SortRating: "average_rating",
	store.SortTitle:  "LOWER(b.title)",
}

// ListBooksWithRating returns one page of rated books and the filtered total.
func (s *Store) ListBooksWithRating(ctx context.Context, params store.ListBooksParams) ([]domain.BookWithRating, int, error) {
	if err := params.Validate(); err != nil {
		return nil, 0, err
	}

	var (
		where string
		args  []any
	)
	if params.GenreSlug != "" {
		where = ` WHERE b.genre_slug = ?`
		args = append(args, params.GenreSlug)
	}

	var total int
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM books b`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	var q strings.Builder
	q.WriteString(ratedBookSelect)
	q.WriteString(where)
	q.WriteString(ratedBookGroup)
	q.WriteString(" ORDER BY ")
	if expr, ok := sortExpressions[params.Sort]; ok {
		q.WriteString(expr)
		if params.Descending() {
			q.WriteString(" DESC, ")
		} else {
			q.WriteString(" ASC, ")
		}
	}
	q.WriteString("b.seq ASC")
	if params.Limit > 0 {
		q.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, params.Limit, params.Offset())
	}

	rows, err := s.query(ctx, q.String(), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	books := []domain.BookWithRating{}
	for rows.Next() {
		b, err := scanRatedBook(rows)
		if err != nil {
			return nil, 0, err
		}
		books = append(books, b)
	}
	return books, total, rows.Err()
}

// GetBookWithRating returns one book with its rating view.
func (s *Store) GetBookWithRating(ctx context.Context, id string) (*domain.BookWithRating, error) {
	b, err := scanRatedBook(s.queryRow(ctx, ratedBookSelect+` WHERE b.id = ?`+ratedBookGroup, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
