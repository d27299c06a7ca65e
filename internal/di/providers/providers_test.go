package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohammadRstm/BookApp/internal/api"
	"github.com/MohammadRstm/BookApp/internal/config"
	"github.com/MohammadRstm/BookApp/internal/logger"
	"github.com/MohammadRstm/BookApp/internal/service"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	return &config.Config{
		App:      config.AppConfig{Environment: "development", DataPath: t.TempDir()},
		Logger:   config.LoggerConfig{Level: "info"},
		Server:   config.ServerConfig{Port: "0"},
		Database: config.DatabaseConfig{Driver: driver},
		Auth: config.AuthConfig{
			Format:              config.TokenFormatPaseto,
			AccessTokenDuration: time.Hour,
		},
		Search:    config.SearchConfig{Enabled: true},
		RateLimit: config.RateLimitConfig{PerMinute: 20, Burst: 10},
	}
}

func TestOpenStore(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverBadger} {
		t.Run(driver, func(t *testing.T) {
			st, err := OpenStore(context.Background(), testConfig(t, driver), nil)
			require.NoError(t, err)
			t.Cleanup(func() { _ = st.Close() })

			assert.NoError(t, st.Ping(context.Background()))
		})
	}

	t.Run("unknown driver", func(t *testing.T) {
		_, err := OpenStore(context.Background(), testConfig(t, "cassandra"), nil)
		assert.ErrorContains(t, err, "unknown db driver")
	})
}

// newTestInjector wires every provider except config and the HTTP listener.
func newTestInjector(t *testing.T, cfg *config.Config) *do.RootScope {
	t.Helper()

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger.Discard())
	do.Provide(injector, ProvideSlogLogger)
	do.Provide(injector, ProvideStore)
	do.Provide(injector, ProvideSearchIndex)
	do.Provide(injector, ProvideTokenService)
	do.Provide(injector, ProvideValidator)
	do.Provide(injector, ProvideAuthService)
	do.Provide(injector, ProvideBookService)
	do.Provide(injector, ProvideReviewService)
	do.Provide(injector, ProvideAPIServer)

	t.Cleanup(func() { injector.Shutdown() })
	return injector
}

func TestProviders_WireServer(t *testing.T) {
	injector := newTestInjector(t, testConfig(t, config.DriverSQLite))

	srv, err := do.Invoke[*api.Server](injector)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestProviders_SearchDisabled(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)
	cfg.Search.Enabled = false
	injector := newTestInjector(t, cfg)

	handle, err := do.Invoke[*SearchIndexHandle](injector)
	require.NoError(t, err)
	assert.Nil(t, handle.Index)
	assert.NoError(t, handle.Shutdown())

	books := do.MustInvoke[*service.BookService](injector)
	assert.False(t, books.SearchEnabled())
}

func TestTriggerSearchReindexIfNeeded(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)
	injector := newTestInjector(t, cfg)

	ctx := context.Background()
	authSvc := do.MustInvoke[*service.AuthService](injector)
	user, err := authSvc.Register(ctx, service.RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	books := do.MustInvoke[*service.BookService](injector)
	_, err = books.Create(ctx, user.ID, service.CreateBookRequest{
		Title: "Dune", Author: "Frank Herbert", Year: 1965, Genre: "Sci-Fi",
	})
	require.NoError(t, err)

	// Simulate a fresh index next to existing data.
	handle := do.MustInvoke[*SearchIndexHandle](injector)
	require.NoError(t, handle.Rebuild(nil))

	TriggerSearchReindexIfNeeded(injector)

	assert.Eventually(t, func() bool {
		n, err := handle.DocumentCount()
		return err == nil && n == 1
	}, 5*time.Second, 20*time.Millisecond)
}
