package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohammadRstm/BookApp/internal/service"
)

func TestRegister(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/users/register", map[string]any{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	env := decode[UserResponse](t, resp)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Data.ID)
	assert.Equal(t, "Alice", env.Data.Name)
	assert.Equal(t, "alice@example.com", env.Data.Email)
	assert.NotContains(t, resp.Body.String(), "passwordHash")
	assert.NotContains(t, resp.Body.String(), "secret123")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerAndLogin(t, "Alice", "alice@example.com")

	resp := ts.api.Post("/api/users/register", map[string]any{
		"name":     "Other Alice",
		"email":    "alice@example.com",
		"password": "another123",
	})
	assertError(t, resp, http.StatusConflict, "ALREADY_EXISTS", "User already exists")
}

func TestRegister_Validation(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{"email": "a@example.com", "password": "secret123"}},
		{"bad email", map[string]any{"name": "A", "email": "nope", "password": "secret123"}},
		{"short password", map[string]any{"name": "A", "email": "a@example.com", "password": "abc"}},
		{"blank name", map[string]any{"name": "   ", "email": "a@example.com", "password": "secret123"}},
		{"unknown field", map[string]any{"name": "A", "email": "a@example.com", "password": "secret123", "admin": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/users/register", tt.body)
			assertError(t, resp, http.StatusBadRequest, "VALIDATION", "")
		})
	}
}

func TestLogin(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerAndLogin(t, "Alice", "alice@example.com")

	resp := ts.api.Post("/api/users/login", map[string]any{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[service.LoginResponse](t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, "LogIn successfull", env.Data.Message)
	require.NotEmpty(t, env.Data.Token)
	assert.False(t, env.Data.ExpiresAt.IsZero())

	claims, err := ts.tokens.Verify(env.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestLogin_UnknownUser(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/users/login", map[string]any{
		"email":    "ghost@example.com",
		"password": "secret123",
	})
	assertError(t, resp, http.StatusNotFound, "NOT_FOUND", "User not found")
}

func TestLogin_MalformedEmailIsUnknownUser(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/users/login", map[string]any{
		"email":    "not-an-email",
		"password": "secret123",
	})
	assertError(t, resp, http.StatusNotFound, "NOT_FOUND", "User not found")

	resp = ts.api.Post("/api/users/login", map[string]any{
		"email":    "",
		"password": "secret123",
	})
	assertError(t, resp, http.StatusBadRequest, "VALIDATION", "")
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerAndLogin(t, "Alice", "alice@example.com")

	for range 3 {
		resp := ts.api.Post("/api/users/login", map[string]any{
			"email":    "alice@example.com",
			"password": "wrong-password",
		})
		assertError(t, resp, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Incorrect credentials")
	}
}

func TestAuthRateLimit(t *testing.T) {
	ts := setupTestServer(t, func(o *Options) {
		o.AuthRateLimit = 1
		o.AuthRateBurst = 1
		o.TrustProxyHeaders = true
	})

	body := map[string]any{"email": "ghost@example.com", "password": "secret123"}

	resp := ts.api.Post("/api/users/login", "X-Forwarded-For: 203.0.113.7", body)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Post("/api/users/login", "X-Forwarded-For: 203.0.113.7", body)
	assertError(t, resp, http.StatusTooManyRequests, "RATE_LIMITED", "")

	// Another client has its own budget.
	resp = ts.api.Post("/api/users/login", "X-Forwarded-For: 198.51.100.9", body)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// Reads are never limited.
	for range 3 {
		resp = ts.api.Get("/api/books/withRating", "X-Forwarded-For: 203.0.113.7")
		assert.Equal(t, http.StatusOK, resp.Code)
	}
}

func TestAuthRateLimit_IgnoresForwardedHeadersByDefault(t *testing.T) {
	ts := setupTestServer(t, func(o *Options) {
		o.AuthRateLimit = 1
		o.AuthRateBurst = 1
	})

	body := map[string]any{"email": "ghost@example.com", "password": "secret123"}

	resp := ts.api.Post("/api/users/login", "X-Forwarded-For: 203.0.113.7", body)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// A fresh header value does not buy a fresh budget.
	resp = ts.api.Post("/api/users/login", "X-Forwarded-For: 198.51.100.9", body)
	assertError(t, resp, http.StatusTooManyRequests, "RATE_LIMITED", "")

	resp = ts.api.Post("/api/users/login", "X-Real-IP: 198.51.100.10", body)
	assertError(t, resp, http.StatusTooManyRequests, "RATE_LIMITED", "")
}

func TestProtectedRoutes_AuthHeader(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerAndLogin(t, "Alice", "alice@example.com")

	tests := []struct {
		name    string
		headers []any
		status  int
		message string
	}{
		{"missing header", nil, http.StatusUnauthorized, "Authentication required"},
		{"wrong scheme", []any{"Authorization: Token " + token}, http.StatusUnauthorized, "Invalid authorization header format"},
		{"no token", []any{"Authorization: Bearer"}, http.StatusUnauthorized, "Invalid authorization header format"},
		{"garbage token", []any{"Authorization: Bearer not-a-token"}, http.StatusUnauthorized, "Invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get("/api/books/by/me", tt.headers...)
			assertError(t, resp, tt.status, "UNAUTHORIZED", tt.message)
		})
	}

	t.Run("lowercase scheme", func(t *testing.T) {
		resp := ts.api.Get("/api/books/by/me", "Authorization: bearer "+token)
		assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	})
}

func TestRequireIdentity(t *testing.T) {
	_, err := RequireIdentity(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Authentication required", err.Error())

	ctx := withIdentity(context.Background(), &Identity{UserID: "usr-1", Name: "Alice"})
	identity, err := RequireIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", identity.UserID)
	assert.Equal(t, "Alice", identity.Name)
}
