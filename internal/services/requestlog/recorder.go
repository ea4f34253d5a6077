// Package requestlog records authenticated fake API calls without
// letting storage failures affect the response.
package requestlog

import (
	"context"
	"sync"
	"time"

	"github.com/benvon/fake-api/internal/database"
	"github.com/benvon/fake-api/internal/logger"
	"github.com/benvon/fake-api/internal/metrics"
	"github.com/benvon/fake-api/internal/models"
	"github.com/benvon/fake-api/internal/queue"
	"go.uber.org/zap"
)

// writeTimeout bounds each background write
const writeTimeout = 5 * time.Second

// Recorder accepts request log entries. Record never blocks on storage and
// never reports failure to the caller.
type Recorder interface {
	Record(ctx context.Context, entry models.RequestLog)
}

// DirectRecorder writes logs to the database from background goroutines.
type DirectRecorder struct {
	logs    database.RequestLogStore
	keys    database.APIKeyStore
	logger  *zap.Logger
	metrics *metrics.Metrics
	wg      sync.WaitGroup
}

// NewDirectRecorder creates a recorder that inserts rows directly.
// keys may be nil, in which case last_used_at is not maintained.
func NewDirectRecorder(logs database.RequestLogStore, keys database.APIKeyStore, log *zap.Logger, m *metrics.Metrics) *DirectRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &DirectRecorder{logs: logs, keys: keys, logger: log, metrics: m}
}

// Record schedules the write and returns immediately.
func (r *DirectRecorder) Record(ctx context.Context, entry models.RequestLog) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		// Detached from the request so a finished response does not cancel the write.
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		defer cancel()
		_ = r.Write(writeCtx, entry)
	}()
}

// Write persists one entry synchronously. Failures are logged and returned.
func (r *DirectRecorder) Write(ctx context.Context, entry models.RequestLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := r.logs.Create(ctx, &entry); err != nil {
		r.count("direct", "error")
		r.logger.Warn("request_log_write_failed",
			zap.String("api_key_id", entry.APIKeyID.String()),
			zap.String("endpoint", logger.SanitizePath(entry.Endpoint)),
			zap.String("error", logger.SanitizeError(err)),
		)
		return err
	}
	r.count("direct", "ok")

	if r.keys != nil {
		if err := r.keys.TouchLastUsed(ctx, entry.APIKeyID, entry.CreatedAt); err != nil {
			r.logger.Debug("api_key_touch_failed",
				zap.String("api_key_id", entry.APIKeyID.String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

// Wait blocks until in-flight writes finish or ctx is done.
func (r *DirectRecorder) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *DirectRecorder) count(sink, result string) {
	if r.metrics != nil {
		r.metrics.RequestLogWrites.WithLabelValues(sink, result).Inc()
	}
}

// QueueRecorder publishes entries as jobs for the worker, falling back to
// a direct write when publishing fails.
type QueueRecorder struct {
	publisher queue.Publisher
	fallback  *DirectRecorder
	logger    *zap.Logger
	metrics   *metrics.Metrics
	wg        sync.WaitGroup
}

// NewQueueRecorder creates a recorder backed by the job queue
func NewQueueRecorder(publisher queue.Publisher, fallback *DirectRecorder, log *zap.Logger, m *metrics.Metrics) *QueueRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &QueueRecorder{publisher: publisher, fallback: fallback, logger: log, metrics: m}
}

// Record publishes the entry in the background and returns immediately.
func (r *QueueRecorder) Record(ctx context.Context, entry models.RequestLog) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		defer cancel()
		r.publish(pubCtx, entry)
	}()
}

func (r *QueueRecorder) publish(ctx context.Context, entry models.RequestLog) {
	job, err := queue.NewJob(queue.JobTypeRequestLog, entry)
	if err == nil {
		err = r.publisher.Enqueue(ctx, job)
	}
	if err == nil {
		if r.metrics != nil {
			r.metrics.RequestLogWrites.WithLabelValues("queue", "ok").Inc()
		}
		return
	}

	if r.metrics != nil {
		r.metrics.RequestLogWrites.WithLabelValues("queue", "error").Inc()
	}
	r.logger.Warn("request_log_enqueue_failed_falling_back",
		zap.String("api_key_id", entry.APIKeyID.String()),
		zap.String("error", logger.SanitizeError(err)),
	)
	if r.fallback != nil {
		_ = r.fallback.Write(ctx, entry)
	}
}

// Wait blocks until in-flight publishes finish or ctx is done.
func (r *QueueRecorder) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		if r.fallback != nil {
			return r.fallback.Wait(ctx)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var (
	_ Recorder = (*DirectRecorder)(nil)
	_ Recorder = (*QueueRecorder)(nil)
)
