package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"

	"github.com/MohammadRstm/BookApp/internal/http/response"
	"github.com/MohammadRstm/BookApp/internal/ratelimit"
)

// rateLimitMiddleware limits an operation per client IP. Over the limit it
// answers 429 without calling the handler.
func rateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter, trustProxy bool, logger *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		r, w := humachi.Unwrap(ctx)
		key := getClientIP(r, trustProxy)

		if !limiter.Allow(key) {
			logger.Warn("Rate limit exceeded",
				"ip", key,
				"path", r.URL.Path,
				"request_id", RequestID(r.Context()),
			)
			response.TooManyRequests(w, "Too many requests. Please try again later.", logger)
			return
		}

		next(ctx)
	}
}

// getClientIP extracts the client IP from the request. Forwarding headers
// are client-controlled, so they are read only when trustProxy is set;
// otherwise the connection address is used.
func getClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		// The first X-Forwarded-For entry is the original client.
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}

	// Strip the port, keeping bracketed IPv6 hosts intact.
	ip := r.RemoteAddr
	if i := strings.LastIndexByte(ip, ':'); i > strings.LastIndexByte(ip, ']') {
		ip = ip[:i]
	}
	return strings.Trim(ip, "[]")
}
