package workers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// LogPruner deletes request logs created before a cutoff
type LogPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionPruner periodically deletes request logs older than the retention window
type RetentionPruner struct {
	logs      LogPruner
	retention time.Duration
	interval  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewRetentionPruner creates a new pruner. A non-positive retention disables pruning.
func NewRetentionPruner(logs LogPruner, retention, interval time.Duration, logger *zap.Logger) *RetentionPruner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetentionPruner{
		logs:      logs,
		retention: retention,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// PruneOnce deletes everything older than now minus retention
func (p *RetentionPruner) PruneOnce(ctx context.Context) (int64, error) {
	if p.retention <= 0 {
		return 0, nil
	}
	cutoff := p.now().UTC().Add(-p.retention)
	n, err := p.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune request logs: %w", err)
	}
	if n > 0 {
		p.logger.Info("request_logs_pruned",
			zap.Int64("count", n),
			zap.Time("cutoff", cutoff),
		)
	}
	return n, nil
}

// Start prunes once immediately, then every interval until ctx is cancelled.
func (p *RetentionPruner) Start(ctx context.Context) {
	if p.retention <= 0 || p.interval <= 0 {
		return
	}
	if _, err := p.PruneOnce(ctx); err != nil {
		p.logger.Error("request_log_prune_failed", zap.Error(err))
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.PruneOnce(ctx); err != nil {
				p.logger.Error("request_log_prune_failed", zap.Error(err))
			}
		}
	}
}
