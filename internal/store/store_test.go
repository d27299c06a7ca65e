package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohammadRstm/BookApp/internal/domain"
	"github.com/MohammadRstm/BookApp/internal/store"
)

func TestError_Error(t *testing.T) {
	err := &store.Error{Code: http.StatusNotFound, Message: "not found"}
	assert.Equal(t, "not found", err.Error())
	assert.Equal(t, http.StatusNotFound, err.HTTPCode())
}

func TestError_ErrorWithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := store.ErrNotFound.WithCause(cause)

	assert.Contains(t, err.Error(), "record not found")
	assert.Contains(t, err.Error(), "underlying error")
	assert.ErrorIs(t, err, cause)
}

func TestError_IsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("get book: %w", store.ErrNotFound.WithMessage("book missing"))
	assert.ErrorIs(t, wrapped, store.ErrNotFound)
	assert.NotErrorIs(t, wrapped, store.ErrAlreadyExists)
}

func TestListBooksParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		input   store.ListBooksParams
		wantErr bool
		want    store.ListBooksParams
	}{
		{name: "zero value", want: store.ListBooksParams{Order: store.OrderAsc, Page: 1}},
		{
			name:  "normalizes case",
			input: store.ListBooksParams{Sort: " Rating ", Order: "DESC", Page: 2, Limit: 10},
			want:  store.ListBooksParams{Sort: store.SortRating, Order: store.OrderDesc, Page: 2, Limit: 10},
		},
		{name: "unknown sort", input: store.ListBooksParams{Sort: "price"}, wantErr: true},
		{name: "bad order", input: store.ListBooksParams{Order: "sideways"}, wantErr: true},
		{name: "limit too large", input: store.ListBooksParams{Limit: 101}, wantErr: true},
		{name: "negative page", input: store.ListBooksParams{Page: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.input
			err := p.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, store.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestListBooksParams_Offset(t *testing.T) {
	assert.Equal(t, 0, store.ListBooksParams{Page: 3}.Offset())
	assert.Equal(t, 0, store.ListBooksParams{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, store.ListBooksParams{Page: 3, Limit: 10}.Offset())
}

func rated(title, genre string, year int, avg float64) domain.BookWithRating {
	return domain.BookWithRating{
		Book:          domain.Book{Title: title, GenreSlug: genre, Year: year},
		AverageRating: avg,
	}
}

func titles(books []domain.BookWithRating) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.Title
	}
	return out
}

func TestApplyListParams(t *testing.T) {
	books := func() []domain.BookWithRating {
		return []domain.BookWithRating{
			rated("dune", "science-fiction", 1965, 4.5),
			rated("Emma", "romance", 1815, 0),
			rated("Hyperion", "science-fiction", 1989, 4.5),
			rated("Beloved", "fiction", 1987, 3),
		}
	}

	got, total := store.ApplyListParams(books(), store.ListBooksParams{})
	assert.Equal(t, 4, total)
	assert.Equal(t, []string{"dune", "Emma", "Hyperion", "Beloved"}, titles(got))

	got, total = store.ApplyListParams(books(), store.ListBooksParams{GenreSlug: "science-fiction"})
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"dune", "Hyperion"}, titles(got))

	got, _ = store.ApplyListParams(books(), store.ListBooksParams{Sort: store.SortYear, Order: store.OrderAsc})
	assert.Equal(t, []string{"Emma", "dune", "Beloved", "Hyperion"}, titles(got))

	// Ties on rating keep insertion order.
	got, _ = store.ApplyListParams(books(), store.ListBooksParams{Sort: store.SortRating, Order: store.OrderDesc})
	assert.Equal(t, []string{"dune", "Hyperion", "Beloved", "Emma"}, titles(got))

	got, _ = store.ApplyListParams(books(), store.ListBooksParams{Sort: store.SortTitle, Order: store.OrderAsc})
	assert.Equal(t, []string{"Beloved", "dune", "Emma", "Hyperion"}, titles(got))

	got, total = store.ApplyListParams(books(), store.ListBooksParams{Page: 2, Limit: 3})
	assert.Equal(t, 4, total)
	assert.Equal(t, []string{"Beloved"}, titles(got))

	got, total = store.ApplyListParams(books(), store.ListBooksParams{Page: 5, Limit: 3})
	assert.Equal(t, 4, total)
	assert.Empty(t, got)
}
