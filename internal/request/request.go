package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/benvon/fake-api/internal/models"
)

type contextKey string

const (
	apiKeyContextKey contextKey = "api_key"
	adminContextKey  contextKey = "admin"
)

// APIKeyContextKey returns the context key used for the API key. Exposed for tests that inject non-key values.
func APIKeyContextKey() contextKey { return apiKeyContextKey }

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// WithAPIKey returns a context with the validated API key attached.
func WithAPIKey(ctx context.Context, key *models.APIKey) context.Context {
	return context.WithValue(ctx, apiKeyContextKey, key)
}

// APIKeyFromContext returns the validated key, or nil if missing or wrong type.
func APIKeyFromContext(r *http.Request) *models.APIKey {
	k, _ := r.Context().Value(apiKeyContextKey).(*models.APIKey)
	return k
}

// WithAdmin returns a context carrying verified admin token claims.
func WithAdmin(ctx context.Context, claims *models.AdminClaims) context.Context {
	return context.WithValue(ctx, adminContextKey, claims)
}

// AdminFromContext returns the admin claims, or nil.
func AdminFromContext(r *http.Request) *models.AdminClaims {
	c, _ := r.Context().Value(adminContextKey).(*models.AdminClaims)
	return c
}
