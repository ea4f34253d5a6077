package middleware

import (
	"net/http"

	logpkg "github.com/benvon/fake-api/internal/logger"
	"github.com/benvon/fake-api/internal/request"
	"go.uber.org/zap"
)

// Audit logs rejected credentials and rate limit violations
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			statusCode := wrapped.statusCode
			ip := logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)
			switch statusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				logger.Warn("security_event",
					zap.Int("status_code", statusCode),
					zap.String("method", r.Method),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("ip", ip),
					zap.String("api_key", logpkg.RedactAPIKey(r.Header.Get(APIKeyHeader))),
				)
			case http.StatusTooManyRequests:
				logger.Warn("rate_limit_violation",
					zap.String("method", r.Method),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("ip", ip),
				)
			}
		})
	}
}
