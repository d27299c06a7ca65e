package auth

import (
	"fmt"
	"time"
)

// Token formats accepted by New.
const (
	FormatPaseto = "paseto"
	FormatJWT    = "jwt"
)

// New builds the token service for format. For PASETO an empty secret
// falls back to the key persisted under dataDir.
func New(format, secret, dataDir string, ttl time.Duration) (TokenService, error) {
	switch format {
	case FormatJWT:
		if secret == "" {
			return nil, fmt.Errorf("jwt tokens require a secret")
		}
		return NewJWTService([]byte(secret), ttl)

	case FormatPaseto, "":
		var (
			key []byte
			err error
		)
		if secret != "" {
			key, err = KeyFromSecret(secret)
		} else {
			key, err = LoadOrGenerateKey(dataDir)
		}
		if err != nil {
			return nil, err
		}
		return NewPasetoService(key, ttl)

	default:
		return nil, fmt.Errorf("unknown token format %q", format)
	}
}
