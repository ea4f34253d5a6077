package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	logpkg "github.com/benvon/fake-api/internal/logger"
	"github.com/benvon/fake-api/internal/metrics"
	"github.com/benvon/fake-api/internal/models"
	"github.com/benvon/fake-api/internal/request"
	"github.com/benvon/fake-api/internal/services/apikeys"
	"go.uber.org/zap"
)

// APIKeyHeader carries the caller's key on fake API requests
const APIKeyHeader = "x-api-key"

const (
	msgAPIKeyRequired = "API key is required. Include it in the x-api-key header."
	msgAPIKeyInvalid  = "Invalid or inactive API key"
	msgInternalError  = "Internal server error"
)

// KeyValidator resolves a plaintext key to an active record.
// Implementations return apikeys.ErrInvalidKey for unknown or inactive keys.
type KeyValidator interface {
	Validate(ctx context.Context, raw string) (*models.APIKey, error)
}

// APIKeyAuth rejects requests without a valid x-api-key and stores the
// validated key in the request context.
func APIKeyAuth(validator KeyValidator, logger *zap.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	observe := func(outcome string) {
		if m != nil {
			m.KeyValidations.WithLabelValues(outcome).Inc()
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(APIKeyHeader))
			if raw == "" {
				observe(metrics.KeyMissing)
				respondErrorJSON(w, r, http.StatusUnauthorized, msgAPIKeyRequired, logger)
				return
			}

			key, err := validator.Validate(r.Context(), raw)
			switch {
			case errors.Is(err, apikeys.ErrInvalidKey):
				observe(metrics.KeyInvalid)
				respondErrorJSON(w, r, http.StatusUnauthorized, msgAPIKeyInvalid, logger)
				return
			case err != nil:
				observe(metrics.KeyError)
				logger.Error("api_key_lookup_failed",
					zap.String("api_key", logpkg.RedactAPIKey(raw)),
					zap.String("error", logpkg.SanitizeError(err)),
				)
				respondErrorJSON(w, r, http.StatusInternalServerError, msgInternalError, logger)
				return
			}

			observe(metrics.KeyValid)
			next.ServeHTTP(w, r.WithContext(request.WithAPIKey(r.Context(), key)))
		})
	}
}
