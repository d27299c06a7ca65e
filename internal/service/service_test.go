package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohammadRstm/BookApp/internal/auth"
	"github.com/MohammadRstm/BookApp/internal/domain"
	domainerrors "github.com/MohammadRstm/BookApp/internal/errors"
	"github.com/MohammadRstm/BookApp/internal/search"
	"github.com/MohammadRstm/BookApp/internal/store"
	"github.com/MohammadRstm/BookApp/internal/store/sqlstore"
	"github.com/MohammadRstm/BookApp/internal/validation"
)

type testEnv struct {
	store   store.Store
	tokens  auth.TokenService
	index   *search.Index
	auth    *AuthService
	books   *BookService
	reviews *ReviewService
}

// setupTest wires the services over a temp-dir sqlite store and an
// in-memory search index.
func setupTest(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlstore.Open(context.Background(), sqlstore.SQLite, filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.Open(search.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	tokens, err := auth.New(auth.FormatPaseto, "service test secret", "", time.Hour)
	require.NoError(t, err)

	v := validation.New()
	return &testEnv{
		store:   st,
		tokens:  tokens,
		index:   index,
		auth:    NewAuthService(st, tokens, v, nil),
		books:   NewBookService(st, index, v, nil),
		reviews: NewReviewService(st, v, nil),
	}
}

func (e *testEnv) register(t *testing.T, name, email string) *domain.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), RegisterRequest{Name: name, Email: email, Password: "secret123"})
	require.NoError(t, err)
	return user
}

func (e *testEnv) addBook(t *testing.T, userID, title, author, genreLabel string, year int) *domain.Book {
	t.Helper()
	book, err := e.books.Create(context.Background(), userID, CreateBookRequest{
		Title:  title,
		Author: author,
		Year:   year,
		Genre:  genreLabel,
	})
	require.NoError(t, err)
	return book
}

func (e *testEnv) review(t *testing.T, userID, bookID string, rating int) *domain.Review {
	t.Helper()
	r, err := e.reviews.Create(context.Background(), userID, bookID, CreateReviewRequest{Rating: &rating, Text: "thoughts"})
	require.NoError(t, err)
	return r
}

func assertCode(t *testing.T, err error, code domainerrors.Code) {
	t.Helper()
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code, domainErr.Message)
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
