package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchBooks(t *testing.T) {
	ts := setupTestServer(t)
	alice, _ := ts.registerAndLogin(t, "Alice", "alice@example.com")
	dune := ts.addBook(t, alice, "Dune")

	resp := ts.api.Post("/api/books/addNewBook", bearer(alice), map[string]any{
		"title":       "Emma",
		"author":      "Jane Austen",
		"year":        1815,
		"description": "A comedy of manners.",
		"genre":       "Romance",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/books/search?q=dune")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	env := decode[SearchBooksResponse](t, resp)
	require.NotEmpty(t, env.Data.Hits)
	assert.Equal(t, dune, env.Data.Hits[0].ID)
	assert.Positive(t, env.Data.Hits[0].Score)

	resp = ts.api.Get("/api/books/search?genre=romance")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	env = decode[SearchBooksResponse](t, resp)
	require.Len(t, env.Data.Hits, 1)
	assert.Equal(t, "Emma", env.Data.Hits[0].Title)

	resp = ts.api.Get("/api/books/search?q=zzzzzz")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"hits":[]`)
}

func TestSearchBooks_Errors(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/books/search")
	assertError(t, resp, http.StatusBadRequest, "VALIDATION", "Search query is required")

	resp = ts.api.Get("/api/books/search?q=dune&limit=1000")
	assertError(t, resp, http.StatusBadRequest, "VALIDATION", "")
}
