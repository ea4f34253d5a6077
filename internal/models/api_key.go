package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey is a stored API key record. The plaintext key is never persisted;
// KeyHash is the hex SHA-256 of it and KeyPrefix is kept for display.
type APIKey struct {
	ID         uuid.UUID  `json:"id"`
	KeyHash    string     `json:"-"`
	KeyPrefix  string     `json:"key_prefix"`
	Name       *string    `json:"name,omitempty"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// IssuedAPIKey is returned once, at generation time, with the plaintext key.
type IssuedAPIKey struct {
	APIKey    string    `json:"apiKey"`
	ID        uuid.UUID `json:"id"`
	Name      *string   `json:"name,omitempty"`
	KeyPrefix string    `json:"keyPrefix"`
	CreatedAt time.Time `json:"createdAt"`
}
