package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/fake-api/internal/models"
	"github.com/google/uuid"
)

const apiKeyColumns = `id, key_hash, key_prefix, name, is_active, created_at, updated_at, last_used_at`

// APIKeyRepository handles API key persistence
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new API key repository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAPIKey(row rowScanner) (*models.APIKey, error) {
	k := &models.APIKey{}
	var name sql.NullString
	var lastUsed sql.NullTime
	if err := row.Scan(
		&k.ID,
		&k.KeyHash,
		&k.KeyPrefix,
		&name,
		&k.IsActive,
		&k.CreatedAt,
		&k.UpdatedAt,
		&lastUsed,
	); err != nil {
		return nil, err
	}
	if name.Valid {
		k.Name = &name.String
	}
	if lastUsed.Valid {
		t := lastUsed.Time
		k.LastUsedAt = &t
	}
	return k, nil
}

// Create inserts a new API key. ID and timestamps are assigned when unset.
func (r *APIKeyRepository) Create(ctx context.Context, key *models.APIKey) error {
	if key.ID == uuid.Nil {
		key.ID = uuid.New()
	}
	now := time.Now().UTC()
	key.CreatedAt = now
	key.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO api_keys (id, key_hash, key_prefix, name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, key.ID, key.KeyHash, key.KeyPrefix, key.Name, key.IsActive, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create api key: %w", err)
	}
	return nil
}

// GetByHash looks up a key by the hash of its plaintext value.
func (r *APIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*models.APIKey, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE key_hash = $1`, keyHash)
	k, err := scanAPIKey(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("api key: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}
	return k, nil
}

// GetByID retrieves a key by its ID
func (r *APIKeyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.APIKey, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE id = $1`, id)
	k, err := scanAPIKey(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("api key %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}
	return k, nil
}

// List returns keys newest first. A limit of zero or less returns all keys.
func (r *APIKeyRepository) List(ctx context.Context, limit, offset int) ([]*models.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []*models.APIKey
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan api key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate api keys: %w", err)
	}
	return keys, nil
}

// SetActive activates or revokes a key.
func (r *APIKeyRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE api_keys SET is_active = $1, updated_at = $2 WHERE id = $3
	`, active, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update api key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("api key %s: %w", id, ErrNotFound)
	}
	return nil
}

// TouchLastUsed records that a key was used at the given time.
func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used_at = $1 WHERE id = $2`, at.UTC(), id); err != nil {
		return fmt.Errorf("failed to touch api key: %w", err)
	}
	return nil
}
