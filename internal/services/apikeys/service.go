// Package apikeys issues and validates API keys for the fake API.
package apikeys

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/benvon/fake-api/internal/database"
	"github.com/benvon/fake-api/internal/models"
	"github.com/google/uuid"
)

const (
	// KeyPrefix marks keys issued by this service
	KeyPrefix = "fk_"
	// keyBytes is the amount of randomness behind each key
	keyBytes = 24
	// displayPrefixLen is how much of the plaintext key is stored for display
	displayPrefixLen = 10
	// MaxNameLength bounds the optional key name
	MaxNameLength = 100
)

var (
	// ErrInvalidKey covers unknown and inactive keys alike
	ErrInvalidKey = errors.New("invalid or inactive api key")
	// ErrKeyNotFound is returned by lifecycle operations on unknown IDs
	ErrKeyNotFound = errors.New("api key not found")
)

// Service manages API key issuance, validation and lifecycle.
type Service struct {
	store  database.APIKeyStore
	random func([]byte) (int, error)
}

// NewService creates an API key service backed by store
func NewService(store database.APIKeyStore) *Service {
	return &Service{store: store, random: rand.Read}
}

// HashKey returns the hex SHA-256 of a plaintext key.
func HashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Generate creates an active key. The returned IssuedAPIKey carries the
// plaintext, which is not recoverable afterwards.
func (s *Service) Generate(ctx context.Context, name string) (*models.IssuedAPIKey, error) {
	buf := make([]byte, keyBytes)
	if _, err := s.random(buf); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	raw := KeyPrefix + hex.EncodeToString(buf)

	key := &models.APIKey{
		ID:        uuid.New(),
		KeyHash:   HashKey(raw),
		KeyPrefix: raw[:displayPrefixLen],
		IsActive:  true,
	}
	if name = strings.TrimSpace(name); name != "" {
		key.Name = &name
	}

	if err := s.store.Create(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to store api key: %w", err)
	}

	return &models.IssuedAPIKey{
		APIKey:    raw,
		ID:        key.ID,
		Name:      key.Name,
		KeyPrefix: key.KeyPrefix,
		CreatedAt: key.CreatedAt,
	}, nil
}

// Validate resolves a presented key. Unknown and inactive keys both return
// ErrInvalidKey; any other error means the lookup itself failed.
func (s *Service) Validate(ctx context.Context, raw string) (*models.APIKey, error) {
	if raw == "" {
		return nil, ErrInvalidKey
	}
	key, err := s.store.GetByHash(ctx, HashKey(raw))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidKey
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up api key: %w", err)
	}
	if !key.IsActive {
		return nil, ErrInvalidKey
	}
	return key, nil
}

// Revoke deactivates a key
func (s *Service) Revoke(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, false)
}

// Activate re-enables a revoked key
func (s *Service) Activate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, true)
}

func (s *Service) setActive(ctx context.Context, id uuid.UUID, active bool) error {
	err := s.store.SetActive(ctx, id, active)
	if errors.Is(err, database.ErrNotFound) {
		return ErrKeyNotFound
	}
	return err
}

// Get returns a key by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.APIKey, error) {
	key, err := s.store.GetByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrKeyNotFound
	}
	return key, err
}

// List returns keys newest first
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.APIKey, error) {
	return s.store.List(ctx, limit, offset)
}
