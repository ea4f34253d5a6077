package database

import (
	"context"
	"time"

	"github.com/benvon/fake-api/internal/models"
	"github.com/google/uuid"
)

// APIKeyStore is the subset of key persistence used by services and handlers.
type APIKeyStore interface {
	Create(ctx context.Context, key *models.APIKey) error
	GetByHash(ctx context.Context, keyHash string) (*models.APIKey, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.APIKey, error)
	List(ctx context.Context, limit, offset int) ([]*models.APIKey, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
}

// RequestLogStore persists and queries request logs
type RequestLogStore interface {
	Create(ctx context.Context, entry *models.RequestLog) error
	ListByAPIKey(ctx context.Context, apiKeyID uuid.UUID, limit int) ([]*models.RequestLog, error)
	CountByEndpoint(ctx context.Context, apiKeyID uuid.UUID) ([]models.EndpointCount, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CorsConfigGetter is what the CORS reloader needs
type CorsConfigGetter interface {
	Get(ctx context.Context) (*models.CorsConfig, error)
}

// RatelimitConfigGetter is what the rate limit reloader needs
type RatelimitConfigGetter interface {
	Get(ctx context.Context) (*models.RatelimitConfig, error)
}

// RatelimitConfigStore also lets the reloader persist the default rate
type RatelimitConfigStore interface {
	RatelimitConfigGetter
	Set(ctx context.Context, c *models.RatelimitConfig) error
}

// Ensure concrete types implement the interfaces
var (
	_ APIKeyStore           = (*APIKeyRepository)(nil)
	_ RequestLogStore       = (*RequestLogRepository)(nil)
	_ CorsConfigGetter      = (*CorsConfigRepository)(nil)
	_ RatelimitConfigGetter = (*RatelimitConfigRepository)(nil)
	_ RatelimitConfigStore  = (*RatelimitConfigRepository)(nil)
)
