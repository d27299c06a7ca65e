// Package api provides the HTTP API server and handlers for BookApp.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MohammadRstm/BookApp/internal/auth"
	"github.com/MohammadRstm/BookApp/internal/http/response"
	"github.com/MohammadRstm/BookApp/internal/ratelimit"
	"github.com/MohammadRstm/BookApp/internal/search"
	"github.com/MohammadRstm/BookApp/internal/service"
	"github.com/MohammadRstm/BookApp/internal/store"
)

// Services groups the business logic used by the handlers.
type Services struct {
	Auth   *service.AuthService
	Book   *service.BookService
	Review *service.ReviewService
}

// Options holds the HTTP-level settings of a Server.
type Options struct {
	Version        string
	AllowedOrigins []string
	// AuthRateLimit is the number of register/login attempts allowed per
	// client IP per minute. Zero disables limiting.
	AuthRateLimit int
	AuthRateBurst int
	// TrustProxyHeaders takes the client IP from forwarding headers rather
	// than the connection.
	TrustProxyHeaders bool
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Store
	services        *Services
	index           *search.Index // nil when search is disabled
	router          *chi.Mux
	api             huma.API
	authRateLimiter *ratelimit.KeyedRateLimiter // nil when disabled
	trustProxy      bool
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	st store.Store,
	services *Services,
	tokens auth.TokenService,
	index *search.Index,
	opts Options,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{totalCountHeader, RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(authMiddleware(tokens))

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Route not found", logger)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, logger)
	})

	humaConfig := huma.DefaultConfig("BookApp API", opts.Version)
	humaConfig.Info.Description = "Book catalogue and review API"
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO or JWT",
		},
	}
	// Drop the $schema link hook so bodies are exactly the envelope.
	humaConfig.CreateHooks = nil
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler(logger)

	s := &Server{
		store:    st,
		services: services,
		index:    index,
		router:   router,
		api:      api,
		logger:   logger,
	}
	s.trustProxy = opts.TrustProxyHeaders
	if opts.AuthRateLimit > 0 {
		s.authRateLimiter = ratelimit.PerInterval(opts.AuthRateLimit, time.Minute, max(opts.AuthRateBurst, 1))
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerBookRoutes()
	s.registerReviewRoutes()
	s.registerSearchRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// authLimited returns the middlewares for credential endpoints.
func (s *Server) authLimited() huma.Middlewares {
	if s.authRateLimiter == nil {
		return nil
	}
	return huma.Middlewares{rateLimitMiddleware(s.authRateLimiter, s.trustProxy, s.logger)}
}

// bearerSecurity marks an operation as requiring a bearer token.
var bearerSecurity = []map[string][]string{{"bearer": {}}}
