package store

import (
	"cmp"
	"slices"
	"strings"

	"github.com/MohammadRstm/BookApp/internal/domain"
)

// Sort keys accepted by ListBooksWithRating.
const (
	SortInsertion = ""
	SortYear      = "year"
	SortRating    = "rating"
	SortTitle     = "title"
)

// Sort directions.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// MaxPageSize caps ListBooksParams.Limit.
const MaxPageSize = 100

// ListBooksParams filters, orders and pages a rated book listing.
// The zero value lists every book in insertion order.
type ListBooksParams struct {
	GenreSlug string // matches Book.GenreSlug exactly; empty means all
	Sort      string
	Order     string
	Page      int // 1-based; ignored when Limit is 0
	Limit     int // 0 means no limit
}

// Validate normalizes the params and rejects unknown sort keys or
// out-of-range paging values.
func (p *ListBooksParams) Validate() error {
	p.Sort = strings.ToLower(strings.TrimSpace(p.Sort))
	p.Order = strings.ToLower(strings.TrimSpace(p.Order))

	switch p.Sort {
	case SortInsertion, SortYear, SortRating, SortTitle:
	default:
		return ErrInvalidInput.WithMessage("Unknown sort key: " + p.Sort)
	}

	switch p.Order {
	case "":
		p.Order = OrderAsc
	case OrderAsc, OrderDesc:
	default:
		return ErrInvalidInput.WithMessage("Order must be asc or desc")
	}

	if p.Limit < 0 || p.Limit > MaxPageSize {
		return ErrInvalidInput.WithMessage("Limit must be between 0 and 100")
	}
	if p.Page < 0 {
		return ErrInvalidInput.WithMessage("Page must be at least 1")
	}
	if p.Page == 0 {
		p.Page = 1
	}
	return nil
}

// Offset returns the number of rows to skip.
func (p ListBooksParams) Offset() int {
	if p.Limit == 0 || p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Descending reports whether the requested order is descending.
func (p ListBooksParams) Descending() bool {
	return p.Order == OrderDesc
}

// ApplyListParams filters, sorts and pages books that are already in
// insertion order. Backends that cannot push the work into a query use it.
// The sort is stable, so ties keep insertion order.
func ApplyListParams(books []domain.BookWithRating, p ListBooksParams) ([]domain.BookWithRating, int) {
	if p.GenreSlug != "" {
		books = slices.DeleteFunc(books, func(b domain.BookWithRating) bool {
			return b.GenreSlug != p.GenreSlug
		})
	}

	var compare func(a, b domain.BookWithRating) int
	switch p.Sort {
	case SortYear:
		compare = func(a, b domain.BookWithRating) int { return cmp.Compare(a.Year, b.Year) }
	case SortRating:
		compare = func(a, b domain.BookWithRating) int { return cmp.Compare(a.AverageRating, b.AverageRating) }
	case SortTitle:
		compare = func(a, b domain.BookWithRating) int {
			return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	}
	if compare != nil {
		if p.Descending() {
			asc := compare
			compare = func(a, b domain.BookWithRating) int { return asc(b, a) }
		}
		slices.SortStableFunc(books, compare)
	}

	total := len(books)
	if p.Limit == 0 {
		return books, total
	}

	start := min(p.Offset(), total)
	end := min(start+p.Limit, total)
	return books[start:end], total
}
