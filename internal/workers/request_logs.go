// Package workers holds the background processing run by cmd/worker.
package workers

import (
	"context"
	"fmt"

	logpkg "github.com/benvon/fake-api/internal/logger"
	"github.com/benvon/fake-api/internal/models"
	"github.com/benvon/fake-api/internal/queue"
	"go.uber.org/zap"
)

// LogWriter persists a single request log entry
type LogWriter interface {
	Write(ctx context.Context, entry models.RequestLog) error
}

// Requeuer retries a failed message or dead-letters it once retries are exhausted
type Requeuer interface {
	Requeue(ctx context.Context, msg queue.MessageInterface) error
}

// RequestLogWorker consumes request_log jobs published by the API server
type RequestLogWorker struct {
	writer   LogWriter
	requeuer Requeuer
	logger   *zap.Logger
}

// NewRequestLogWorker creates a new request log worker
func NewRequestLogWorker(writer LogWriter, requeuer Requeuer, logger *zap.Logger) *RequestLogWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestLogWorker{writer: writer, requeuer: requeuer, logger: logger}
}

// ProcessJob handles one message and settles it: ack on success, requeue on
// a failed write, dead-letter when the job can never succeed.
func (w *RequestLogWorker) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	if job.IsExpired() {
		if err := msg.Nack(false); err != nil {
			return fmt.Errorf("failed to dead-letter expired job: %w", err)
		}
		return fmt.Errorf("job %s expired", job.ID)
	}

	if job.Type != queue.JobTypeRequestLog {
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			w.logger.Warn("failed_to_nack_unknown_job", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	var entry models.RequestLog
	if err := job.DecodePayload(&entry); err != nil {
		if nackErr := msg.Nack(false); nackErr != nil {
			w.logger.Warn("failed_to_nack_undecodable_job", zap.Error(nackErr))
		}
		return fmt.Errorf("failed to decode request log payload: %w", err)
	}

	if err := w.writer.Write(ctx, entry); err != nil {
		w.logger.Warn("request_log_job_failed_requeueing",
			zap.String("job_id", job.ID.String()),
			zap.Int("retry_count", job.RetryCount),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		if reqErr := w.requeuer.Requeue(ctx, msg); reqErr != nil {
			return fmt.Errorf("write failed (%v) and requeue failed: %w", err, reqErr)
		}
		return fmt.Errorf("failed to write request log: %w", err)
	}

	if err := msg.Ack(); err != nil {
		return fmt.Errorf("failed to ack job: %w", err)
	}
	return nil
}

// Run processes messages until ctx is done or msgs is closed.
func (w *RequestLogWorker) Run(ctx context.Context, msgs <-chan *queue.Message, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.logger.Error("queue_error", zap.Error(err))
		case msg, ok := <-msgs:
			if !ok {
				w.logger.Info("message_channel_closed")
				return
			}
			if err := w.ProcessJob(ctx, msg); err != nil {
				w.logger.Error("failed_to_process_job",
					zap.Error(err),
					zap.String("job_id", msg.GetJob().ID.String()),
					zap.String("job_type", string(msg.GetJob().Type)),
				)
			}
		}
	}
}
