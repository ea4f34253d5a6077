package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeRequestLog persists one request log row
	JobTypeRequestLog JobType = "request_log"
)

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID       `json:"id"`
	Type       JobType         `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	NotBefore  *time.Time      `json:"not_before,omitempty"` // Earliest time to process job (nil = immediate)
	NotAfter   *time.Time      `json:"not_after,omitempty"`  // Latest time to process job (nil = no expiration)
	CreatedAt  time.Time       `json:"created_at"`
	RetryCount int             `json:"retry_count"`
	MaxRetries int             `json:"max_retries"`
}

// NewJob creates a job carrying payload encoded as JSON
func NewJob(jobType JobType, payload any) (*Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job payload: %w", err)
	}
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		Payload:    raw,
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}, nil
}

// DecodePayload unmarshals the job payload into v
func (j *Job) DecodePayload(v any) error {
	if len(j.Payload) == 0 {
		return fmt.Errorf("job %s has no payload", j.ID)
	}
	if err := json.Unmarshal(j.Payload, v); err != nil {
		return fmt.Errorf("failed to decode payload of job %s: %w", j.ID, err)
	}
	return nil
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}
	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}
	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
