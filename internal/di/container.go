// Package di provides dependency injection configuration for the BookApp server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/MohammadRstm/BookApp/internal/api"
	"github.com/MohammadRstm/BookApp/internal/auth"
	"github.com/MohammadRstm/BookApp/internal/config"
	"github.com/MohammadRstm/BookApp/internal/di/providers"
	"github.com/MohammadRstm/BookApp/internal/logger"
	"github.com/MohammadRstm/BookApp/internal/service"
	"github.com/MohammadRstm/BookApp/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Storage and search
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideValidator)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideReviewService)

	// Server
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services so configuration and connection
// errors surface before the server reports itself running.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	log := do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[auth.TokenService](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*validation.Validator](injector)

	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.ReviewService](injector)

	_ = do.MustInvoke[*api.Server](injector)

	providers.TriggerSearchReindexIfNeeded(injector)

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	log.Info("Server running", "addr", do.MustInvoke[*config.Config](injector).Addr())
	return nil
}
