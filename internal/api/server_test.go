package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohammadRstm/BookApp/internal/auth"
	"github.com/MohammadRstm/BookApp/internal/search"
	"github.com/MohammadRstm/BookApp/internal/service"
	"github.com/MohammadRstm/BookApp/internal/store"
	"github.com/MohammadRstm/BookApp/internal/store/sqlstore"
	"github.com/MohammadRstm/BookApp/internal/validation"
)

// testEnvelope mirrors the response envelope with a typed payload.
type testEnvelope[T any] struct {
	Version int            `json:"v"`
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

type testServer struct {
	*Server
	api    humatest.TestAPI
	store  store.Store
	tokens auth.TokenService
}

// setupTestServer builds the full router over a temp-dir sqlite store and
// an in-memory search index.
func setupTestServer(t *testing.T, opts ...func(*Options)) *testServer {
	t.Helper()

	st, err := sqlstore.Open(context.Background(), sqlstore.SQLite, filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.Open(search.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	tokens, err := auth.New(auth.FormatPaseto, "api test secret", "", time.Hour)
	require.NoError(t, err)

	v := validation.New()
	services := &Services{
		Auth:   service.NewAuthService(st, tokens, v, nil),
		Book:   service.NewBookService(st, index, v, nil),
		Review: service.NewReviewService(st, v, nil),
	}

	options := Options{AllowedOrigins: []string{"http://localhost:5173"}}
	for _, o := range opts {
		o(&options)
	}

	srv := NewServer(st, services, tokens, index, options, nil)

	return &testServer{
		Server: srv,
		api:    humatest.Wrap(t, srv.API()),
		store:  st,
		tokens: tokens,
	}
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	assert.Equal(t, 1, env.Version)
	return env
}

func assertError(t *testing.T, resp *httptest.ResponseRecorder, status int, code, message string) {
	t.Helper()
	require.Equal(t, status, resp.Code, resp.Body.String())
	env := decode[any](t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, code, env.Code)
	if message != "" {
		assert.Equal(t, message, env.Error)
	}
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

// registerAndLogin creates a user and returns its token and ID.
func (ts *testServer) registerAndLogin(t *testing.T, name, email string) (token, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/users/register", map[string]any{
		"name":     name,
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	user := decode[UserResponse](t, resp)

	resp = ts.api.Post("/api/users/login", map[string]any{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	login := decode[service.LoginResponse](t, resp)

	return login.Data.Token, user.Data.ID
}

// addBook creates a book through the API and returns its ID.
func (ts *testServer) addBook(t *testing.T, token, title string) string {
	t.Helper()

	resp := ts.api.Post("/api/books/addNewBook", bearer(token), map[string]any{
		"title":  title,
		"author": "Frank Herbert",
		"year":   1965,
		"genre":  "Sci-Fi",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return decode[BookResponse](t, resp).Data.Book.ID
}

func TestServer_UnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/nothing/here")
	assertError(t, resp, http.StatusNotFound, "NOT_FOUND", "Route not found")
}

func TestServer_OpenAPI(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/openapi.json")
	require.Equal(t, http.StatusOK, resp.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	for _, p := range []string{
		"/api/users/register",
		"/api/users/login",
		"/api/books/withRating",
		"/api/books/withRating/{id}",
		"/api/books/addNewBook",
		"/api/books/by/me",
		"/api/books/edit/{bookId}",
		"/api/books/search",
		"/api/reviews/newreview/{id}",
		"/api/reviews",
		"/health",
	} {
		assert.Contains(t, paths, p)
	}
}

func TestServer_RequestID(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health", "X-Request-ID: abc-123")
	assert.Equal(t, "abc-123", resp.Header().Get(RequestIDHeader))

	resp = ts.api.Get("/health")
	assert.Len(t, resp.Header().Get(RequestIDHeader), 36)
}

func TestServer_CORSPreflight(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/books/addNewBook", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/books/addNewBook", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
