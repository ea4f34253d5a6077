package database

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/fake-api/internal/models"
	"github.com/google/uuid"
)

// RequestLogRepository stores request log rows
type RequestLogRepository struct {
	db *DB
}

// NewRequestLogRepository creates a new request log repository
func NewRequestLogRepository(db *DB) *RequestLogRepository {
	return &RequestLogRepository{db: db}
}

// Create inserts a request log row and fills in its ID.
func (r *RequestLogRepository) Create(ctx context.Context, entry *models.RequestLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO request_logs (api_key_id, endpoint, method, client_ip, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, entry.APIKeyID, entry.Endpoint, entry.Method, entry.ClientIP, entry.UserAgent, entry.CreatedAt).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to create request log: %w", err)
	}
	return nil
}

// ListByAPIKey returns the most recent logs for a key.
func (r *RequestLogRepository) ListByAPIKey(ctx context.Context, apiKeyID uuid.UUID, limit int) ([]*models.RequestLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, api_key_id, endpoint, method, client_ip, user_agent, created_at
		FROM request_logs
		WHERE api_key_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, apiKeyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list request logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var logs []*models.RequestLog
	for rows.Next() {
		l := &models.RequestLog{}
		if err := rows.Scan(&l.ID, &l.APIKeyID, &l.Endpoint, &l.Method, &l.ClientIP, &l.UserAgent, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan request log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate request logs: %w", err)
	}
	return logs, nil
}

// CountByEndpoint aggregates a key's logs per endpoint and method.
func (r *RequestLogRepository) CountByEndpoint(ctx context.Context, apiKeyID uuid.UUID) ([]models.EndpointCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT endpoint, method, COUNT(*)
		FROM request_logs
		WHERE api_key_id = $1
		GROUP BY endpoint, method
		ORDER BY COUNT(*) DESC, endpoint
	`, apiKeyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count request logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counts []models.EndpointCount
	for rows.Next() {
		var c models.EndpointCount
		if err := rows.Scan(&c.Endpoint, &c.Method, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan endpoint count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate endpoint counts: %w", err)
	}
	return counts, nil
}

// DeleteOlderThan removes logs created before cutoff and returns how many were removed.
func (r *RequestLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM request_logs WHERE created_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune request logs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}
