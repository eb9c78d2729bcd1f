// internal/api/middleware/auth.go
package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/newthinker/quantlab/internal/api/response"
	"github.com/newthinker/quantlab/internal/core"
)

// APIKeyHeader carries the shared secret.
const APIKeyHeader = "X-API-Key"

// APIKeyAuth returns middleware that validates the X-API-Key header.
// If apiKey is empty, authentication is disabled. Requests for an open path
// (health checks, the metrics scrape) are always let through.
func APIKeyAuth(apiKey string, open ...string) func(http.Handler) http.Handler {
	public := make(map[string]bool, len(open))
	for _, p := range open {
		public[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" || public[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			providedKey := r.Header.Get(APIKeyHeader)
			if providedKey == "" {
				response.Error(w, http.StatusUnauthorized,
					core.WrapError(core.ErrConfigMissing, errors.New("missing "+APIKeyHeader)))
				return
			}

			// Constant-time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiKey)) != 1 {
				response.Error(w, http.StatusUnauthorized,
					core.WrapError(core.ErrConfigInvalid, errors.New("bad "+APIKeyHeader)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
