// Package commands implements the fake-api-configure subcommands.
package commands

import (
	"context"
	"fmt"

	"github.com/benvon/fake-api/internal/config"
	"github.com/benvon/fake-api/internal/database"
	"github.com/benvon/fake-api/internal/models"
	"github.com/benvon/fake-api/internal/services/apikeys"
)

// CorsStore reads and writes the runtime CORS row
type CorsStore interface {
	Get(ctx context.Context) (*models.CorsConfig, error)
	Set(ctx context.Context, c *models.CorsConfig) error
	Reset(ctx context.Context) error
}

// Stores bundles what the subcommands operate on
type Stores struct {
	Keys      *apikeys.Service
	Logs      database.RequestLogStore
	Cors      CorsStore
	Ratelimit database.RatelimitConfigStore
}

// Opener connects to the backing stores. The returned func releases them.
type Opener func(ctx context.Context) (*Stores, func(), error)

// ConfigLoader returns the process configuration
type ConfigLoader func() (*config.Config, error)

// OpenDatabase loads configuration and connects to Postgres.
func OpenDatabase(ctx context.Context) (*Stores, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	stores := &Stores{
		Keys:      apikeys.NewService(database.NewAPIKeyRepository(db)),
		Logs:      database.NewRequestLogRepository(db),
		Cors:      database.NewCorsConfigRepository(db),
		Ratelimit: database.NewRatelimitConfigRepository(db),
	}
	return stores, func() { _ = db.Close() }, nil
}

// withStores opens the stores for the duration of fn
func withStores(ctx context.Context, open Opener, fn func(*Stores) error) error {
	stores, closeFn, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(stores)
}
