package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohammadRstm/BookApp/internal/domain"
)

func TestAddBook(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.registerAndLogin(t, "Alice", "alice@example.com")

	resp := ts.api.Post("/api/books/addNewBook", bearer(token), map[string]any{
		"title":       "  Dune ",
		"author":      "Frank Herbert",
		"year":        1965,
		"description": "<p>A <b>desert</b> planet.</p>",
		"genre":       "Sci-Fi",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[BookResponse](t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, "Book added", env.Data.Message)
	book := env.Data.Book
	require.NotNil(t, book)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, userID, book.AddedBy)
	assert.Equal(t, "<p>A <b>desert</b> planet.</p>", book.Description)
	assert.Equal(t, "science-fiction", book.GenreSlug)
}

func TestAddBook_DefaultDescription(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerAndLogin(t, "Alice", "alice@example.com")
	bookID := ts.addBook(t, token, "Dune")

	resp := ts.api.Get("/api/books/withRating/" + bookID)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	env := decode[BookDetailsResponse](t, resp)
	assert.Equal(t, domain.DefaultDescription, env.Data.BookDetails.Description)
}

func TestAddBook_DescriptionRoundTrip(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerAndLogin(t, "Alice", "alice@example.com")

	descriptions := []string{
		"Line one<br>Line two",
		"A story about the <b> tag and HTML parsing",
		"Contains <script>alert(1)</script> sample code",
	}
	for _, desc := range descriptions {
		t.Run(desc, func(t *testing.T) {
			resp := ts.api.Post("/api/books/addNewBook", bearer(token), map[string]any{
				"title":       "Parsing",
				"author":      "Ada",
				"year":        2001,
				"description": desc,
				"genre":       "Technology",
			})
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
			bookID := decode[BookResponse](t, resp).Data.Book.ID

			resp = ts.api.Get("/api/books/withRating/" + bookID)
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
			assert.Equal(t, desc, decode[BookDetailsResponse](t, resp).Data.BookDetails.Description)
		})
	}
}

func TestAddBook_Validation(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerAndLogin(t, "Alice", "alice@example.com")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"author": "A", "year": 2000, "genre": "Drama"}},
		{"missing genre", map[string]any{"title": "T", "author": "A", "year": 2000}},
		{"year zero", map[string]any{"title": "T", "author": "A", "year": 0, "genre": "Drama"}},
		{"year as text", map[string]any{"title": "T", "author": "A", "year": "1965", "genre": "Drama"}},
		{"blank author", map[string]any{"title": "T", "author": " ", "year": 2000, "genre": "Drama"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/books/addNewBook", bearer(token), tt.body)
			assertError(t, resp, http.StatusBadRequest, "VALIDATION", "")
		})
	}
}

func TestAddBook_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/books/addNewBook", map[string]any{
		"title": "Dune", "author": "Frank Herbert", "year": 1965, "genre": "Sci-Fi",
	})
	assertError(t, resp, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
}

func TestGetBookWithRating(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerAndLogin(t, "Alice", "alice@example.com")
	bookID := ts.addBook(t, token, "Dune")

	resp := ts.api.Get("/api/books/withRating/" + bookID)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[BookDetailsResponse](t, resp)
	assert.Equal(t, "Book Details obtained", env.Data.Message)
	details := env.Data.BookDetails
	require.NotNil(t, details)
	assert.Equal(t, bookID, details.ID)
	assert.Zero(t, details.AverageRating)
	assert.Zero(t, details.ReviewsCount)
	assert.NotNil(t, details.Reviews)
	assert.Contains(t, resp.Body.String(), `"reviews":[]`)
}

func TestGetBookWithRating_Errors(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/books/withRating/not-an-id")
	assertError(t, resp, http.StatusBadRequest, "BAD_REQUEST", "Invalid book ID")

	resp = ts.api.Get("/api/books/withRating/book-AAAAAAAAAAAAAAAAAAAAA")
	assertError(t, resp, http.StatusNotFound, "NOT_FOUND", "Book not found")
}

func TestListBooksWithRating(t *testing.T) {
	ts := setupTestServer(t)
	alice, _ := ts.registerAndLogin(t, "Alice", "alice@example.com")
	bob, _ := ts.registerAndLogin(t, "Bob", "bob@example.com")

	resp := ts.api.Get("/api/books/withRating")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "0", resp.Header().Get(totalCountHeader))
	assert.Contains(t, resp.Body.String(), `"data":[]`)

	dune := ts.addBook(t, alice, "Dune")
	messiah := ts.addBook(t, alice, "Dune Messiah")

	resp = ts.api.Post("/api/reviews/newreview/"+messiah, bearer(bob), map[string]any{
		"newRating": 5, "newReview": "Better",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/books/withRating")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "2", resp.Header().Get(totalCountHeader))
	env := decode[[]domain.BookWithRating](t, resp)
	require.Len(t, env.Data, 2)
	assert.Equal(t, dune, env.Data[0].ID)
	assert.Equal(t, messiah, env.Data[1].ID)
	assert.Equal(t, 5.0, env.Data[1].AverageRating)
	assert.Equal(t, 1, env.Data[1].ReviewsCount)

	resp = ts.api.Get("/api/books/withRating?sort=rating&order=desc&limit=1&page=1")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "2", resp.Header().Get(totalCountHeader))
	env = decode[[]domain.BookWithRating](t, resp)
	require.Len(t, env.Data, 1)
	assert.Equal(t, messiah, env.Data[0].ID)

	resp = ts.api.Get("/api/books/withRating?genre=scifi")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decode[[]domain.BookWithRating](t, resp).Data, 2)

	resp = ts.api.Get("/api/books/withRating?genre=fantasy")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "0", resp.Header().Get(totalCountHeader))

	resp = ts.api.Get("/api/books/withRating?sort=pages")
	assertError(t, resp, http.StatusBadRequest, "BAD_REQUEST", "")
}

func TestListMyBooks(t *testing.T) {
	ts := setupTestServer(t)
	alice, _ := ts.registerAndLogin(t, "Alice", "alice@example.com")
	bob, _ := ts.registerAndLogin(t, "Bob", "bob@example.com")

	resp := ts.api.Get("/api/books/by/me", bearer(alice))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"booksByMe":[]`)

	ts.addBook(t, alice, "Dune")
	ts.addBook(t, bob, "Neuromancer")

	resp = ts.api.Get("/api/books/by/me", bearer(alice))
	require.Equal(t, http.StatusOK, resp.Code)
	env := decode[MyBooksResponse](t, resp)
	require.Len(t, env.Data.BooksByMe, 1)
	assert.Equal(t, "Dune", env.Data.BooksByMe[0].Title)
}

func TestEditBook(t *testing.T) {
	ts := setupTestServer(t)
	alice, _ := ts.registerAndLogin(t, "Alice", "alice@example.com")
	bookID := ts.addBook(t, alice, "Dune")

	resp := ts.api.Put("/api/books/edit/"+bookID, bearer(alice), map[string]any{
		"year":  1966,
		"genre": "Space Opera",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[BookResponse](t, resp)
	assert.Equal(t, "Book updated", env.Data.Message)
	assert.Equal(t, 1966, env.Data.Book.Year)
	assert.Equal(t, "Space Opera", env.Data.Book.Genre)
	assert.Equal(t, "Dune", env.Data.Book.Title)
	assert.Equal(t, "Frank Herbert", env.Data.Book.Author)
}

func TestEditBook_Errors(t *testing.T) {
	ts := setupTestServer(t)
	alice, _ := ts.registerAndLogin(t, "Alice", "alice@example.com")
	bob, _ := ts.registerAndLogin(t, "Bob", "bob@example.com")
	bookID := ts.addBook(t, alice, "Dune")

	resp := ts.api.Put("/api/books/edit/"+bookID, bearer(bob), map[string]any{"year": 1970})
	assertError(t, resp, http.StatusForbidden, "FORBIDDEN", "You can only edit books you added")

	resp = ts.api.Put("/api/books/edit/"+bookID, bearer(alice), map[string]any{})
	assertError(t, resp, http.StatusBadRequest, "VALIDATION", "At least one field is required")

	resp = ts.api.Put("/api/books/edit/"+bookID, bearer(alice), map[string]any{"title": "Renamed"})
	assertError(t, resp, http.StatusBadRequest, "VALIDATION", "")

	resp = ts.api.Put("/api/books/edit/bad-id", bearer(alice), map[string]any{"year": 1970})
	assertError(t, resp, http.StatusBadRequest, "BAD_REQUEST", "Invalid book ID")

	resp = ts.api.Put("/api/books/edit/"+bookID, map[string]any{"year": 1970})
	assertError(t, resp, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
}
