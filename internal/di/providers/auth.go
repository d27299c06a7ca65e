package providers

import (
	"github.com/samber/do/v2"

	"github.com/MohammadRstm/BookApp/internal/auth"
	"github.com/MohammadRstm/BookApp/internal/config"
	"github.com/MohammadRstm/BookApp/internal/logger"
)

// ProvideTokenService provides the bearer token service. Without a
// configured secret, PASETO tokens use a key persisted under the data path.
func ProvideTokenService(i do.Injector) (auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	tokens, err := auth.New(cfg.Auth.Format, cfg.Auth.Secret, cfg.App.DataPath, cfg.Auth.AccessTokenDuration)
	if err != nil {
		return nil, err
	}

	log.Info("Token service ready",
		"format", cfg.Auth.Format,
		"access_token_duration", cfg.Auth.AccessTokenDuration,
		"generated_key", cfg.Auth.Secret == "",
	)

	return tokens, nil
}
