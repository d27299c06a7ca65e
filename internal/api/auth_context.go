package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/MohammadRstm/BookApp/internal/auth"
	domainerrors "github.com/MohammadRstm/BookApp/internal/errors"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const authStateKey ctxKey = "auth"

// Identity is the caller decoded from a verified bearer token.
type Identity struct {
	UserID string
	Name   string
	Email  string
}

// authState records the outcome of token verification for the request.
type authState struct {
	identity *Identity
	err      error
}

// authMiddleware verifies Bearer tokens and stores the outcome in the
// request context. Requests without a valid token continue anonymously;
// protected handlers reject them through RequireIdentity.
func authMiddleware(tokens auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			state := verifyHeader(tokens, authHeader)
			ctx := context.WithValue(r.Context(), authStateKey, state)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func verifyHeader(tokens auth.TokenService, authHeader string) *authState {
	scheme, token, ok := strings.Cut(authHeader, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return &authState{err: domainerrors.Unauthorized("Invalid authorization header format")}
	}

	claims, err := tokens.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return &authState{err: domainerrors.TokenExpired("Invalid or expired token")}
		}
		return &authState{err: domainerrors.Unauthorized("Invalid or expired token")}
	}

	return &authState{identity: &Identity{
		UserID: claims.UserID,
		Name:   claims.Name,
		Email:  claims.Email,
	}}
}

// RequireIdentity returns the authenticated caller, or a 401 error
// describing why the request is anonymous.
func RequireIdentity(ctx context.Context) (*Identity, error) {
	state, ok := ctx.Value(authStateKey).(*authState)
	if !ok || state == nil {
		return nil, domainerrors.Unauthorized("Authentication required")
	}
	if state.err != nil {
		return nil, state.err
	}
	return state.identity, nil
}

// withIdentity stores an already verified identity. Used by tests.
func withIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, authStateKey, &authState{identity: identity})
}
