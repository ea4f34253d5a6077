package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/fake-api/internal/config"
	"github.com/benvon/fake-api/internal/database"
	"github.com/benvon/fake-api/internal/logger"
	"github.com/benvon/fake-api/internal/queue"
	"github.com/benvon/fake-api/internal/services/requestlog"
	"github.com/benvon/fake-api/internal/workers"
	"go.uber.org/zap"
)

const (
	rabbitMQMaxRetries = 10
	pruneInterval      = 1 * time.Hour
	dlqGCInterval      = 1 * time.Hour
	dlqRetention       = 24 * time.Hour
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.RequireQueue(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	var logOpts []logger.Option
	if cfg.LogFile != "" {
		logOpts = append(logOpts, logger.WithFile(cfg.LogFile, cfg.LogMaxSizeMB))
	}
	zapLogger, err := logger.NewProductionLogger(debugMode, logOpts...)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
		zap.Duration("request_log_retention", cfg.RequestLogRetention),
	)

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobQueue, err := queue.ConnectWithRetry(ctx, cfg.RabbitMQURL, rabbitMQMaxRetries,
		func(attempt int, delay time.Duration, err error) {
			zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", rabbitMQMaxRetries),
				zap.Duration("retry_delay", delay),
				zap.Error(err),
			)
		})
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq")

	logRepo := database.NewRequestLogRepository(db)
	writer := requestlog.NewDirectRecorder(logRepo, database.NewAPIKeyRepository(db), zapLogger, nil)
	worker := workers.NewRequestLogWorker(writer, jobQueue, zapLogger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming_messages", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run(ctx, msgChan, errChan)
	}()

	pruner := workers.NewRetentionPruner(logRepo, cfg.RequestLogRetention, pruneInterval, zapLogger)
	go pruner.Start(ctx)

	dlqGC := queue.NewGarbageCollector(jobQueue, dlqGCInterval, dlqRetention, zapLogger)
	go func() {
		if err := dlqGC.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
		}
	}()

	zapLogger.Info("worker_started")

	select {
	case <-sigChan:
		zapLogger.Info("shutdown_signal_received")
	case <-done:
		zapLogger.Warn("consumer_stopped")
	}
	cancel()
	<-done

	zapLogger.Info("worker_stopped")
}
