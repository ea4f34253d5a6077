package middleware

import (
	"net/http"
	"strings"

	logpkg "github.com/benvon/fake-api/internal/logger"
	"github.com/benvon/fake-api/internal/models"
	"github.com/benvon/fake-api/internal/request"
	"go.uber.org/zap"
)

// TokenVerifier validates admin bearer tokens
type TokenVerifier interface {
	Verify(token string) (*models.AdminClaims, error)
}

// AdminAuth requires a valid "Authorization: Bearer <token>" header
func AdminAuth(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondErrorJSON(w, r, http.StatusUnauthorized, "Missing Authorization header", logger)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				respondErrorJSON(w, r, http.StatusUnauthorized, "Invalid Authorization header format", logger)
				return
			}

			claims, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				logger.Debug("admin_token_rejected", zap.String("error", logpkg.SanitizeError(err)))
				respondErrorJSON(w, r, http.StatusUnauthorized, "Invalid or expired token", logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithAdmin(r.Context(), claims)))
		})
	}
}
