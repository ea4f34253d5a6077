package queue

import (
	"context"
	"time"
)

// MessageInterface is one delivered job awaiting settlement
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetJob() *Job
}

// Publisher is the producing side, used by the API server's request log recorder
type Publisher interface {
	Enqueue(ctx context.Context, job *Job) error
	HealthCheck(ctx context.Context) error
}

// JobQueue is the full queue as seen by cmd/worker
type JobQueue interface {
	Publisher

	// Consume delivers jobs until ctx is cancelled. Each message must be
	// acked or nacked; prefetchCount caps unacknowledged deliveries.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	Close() error
}

// DLQPurger removes dead-lettered messages older than a retention window
type DLQPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error)
}
