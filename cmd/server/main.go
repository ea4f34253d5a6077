package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/fake-api/internal/config"
	"github.com/benvon/fake-api/internal/database"
	"github.com/benvon/fake-api/internal/fakedata"
	"github.com/benvon/fake-api/internal/handlers"
	"github.com/benvon/fake-api/internal/logger"
	"github.com/benvon/fake-api/internal/metrics"
	"github.com/benvon/fake-api/internal/middleware"
	"github.com/benvon/fake-api/internal/queue"
	"github.com/benvon/fake-api/internal/services/admintoken"
	"github.com/benvon/fake-api/internal/services/apikeys"
	"github.com/benvon/fake-api/internal/services/requestlog"
	"github.com/benvon/fake-api/internal/telemetry"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const (
	configReloadInterval = 1 * time.Minute
	rabbitMQMaxRetries   = 10
)

// waiter is implemented by both request log recorders
type waiter interface {
	Wait(ctx context.Context) error
}

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

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

	zapLogger.Info("starting_server",
		zap.String("version", handlers.Version),
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.Bool("rate_limit_enabled", cfg.RateLimitEnabled),
		zap.Bool("queue_enabled", cfg.RabbitMQURL != ""),
		zap.Bool("admin_enabled", cfg.AdminEnabled()),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	var tracerProvider *sdktrace.TracerProvider
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), telemetry.Options{
				ServiceName:    serviceName,
				ServiceVersion: handlers.Version,
				Endpoint:       cfg.OTELEndpoint,
				SampleRatio:    cfg.OTELSampleRatio,
			})
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := telemetry.Shutdown(shutdownCtx, tracerProvider); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx); err != nil {
		migrateCancel()
		zapLogger.Fatal("failed_to_migrate_database", zap.Error(err))
	}
	migrateCancel()
	zapLogger.Info("connected_to_database")

	// Built once; every request serves the same users.
	users := fakedata.NewDataset(cfg.FakeUserCount, cfg.FakeDataSeed)
	zapLogger.Info("fake_users_generated",
		zap.Int("count", users.Len()),
		zap.Uint64("seed", cfg.FakeDataSeed),
	)

	m := metrics.New()
	keyRepo := database.NewAPIKeyRepository(db)
	logRepo := database.NewRequestLogRepository(db)
	corsConfigRepo := database.NewCorsConfigRepository(db)
	ratelimitConfigRepo := database.NewRatelimitConfigRepository(db)
	keyService := apikeys.NewService(keyRepo)
	healthChecker := handlers.NewHealthChecker(db)

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	direct := requestlog.NewDirectRecorder(logRepo, keyRepo, zapLogger, m)
	var recorder requestlog.Recorder = direct
	var pending waiter = direct
	if cfg.RabbitMQURL != "" {
		jobQueue, err := queue.ConnectWithRetry(bgCtx, cfg.RabbitMQURL, rabbitMQMaxRetries,
			func(attempt int, delay time.Duration, err error) {
				zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
					zap.Int("attempt", attempt),
					zap.Int("max_retries", rabbitMQMaxRetries),
					zap.Duration("retry_delay", delay),
					zap.Error(err),
				)
			})
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries", zap.Error(err))
		}
		defer func() {
			if err := jobQueue.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
		zapLogger.Info("connected_to_rabbitmq")

		queued := requestlog.NewQueueRecorder(jobQueue, direct, zapLogger, m)
		recorder, pending = queued, queued
		healthChecker.AddCheck("queue", jobQueue.HealthCheck)
	} else {
		zapLogger.Info("request_logs_written_directly")
	}

	var rateLimitReloader *middleware.RateLimitReloader
	if cfg.RateLimitEnabled {
		redisLimiter, err := middleware.NewRedisRateLimiter(cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := redisLimiter.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		zapLogger.Info("connected_to_redis")
		healthChecker.AddCheck("redis", redisLimiter.Ping)

		rateLimitReloader, err = middleware.NewRateLimitReloader(redisLimiter.Client(), ratelimitConfigRepo,
			cfg.RateLimitDefault, zapLogger, configReloadInterval)
		if err != nil {
			zapLogger.Fatal("failed_to_create_rate_limit_reloader", zap.Error(err))
		}
	}

	var adminTokens *admintoken.Manager
	if cfg.AdminEnabled() {
		adminTokens, err = admintoken.NewManager(cfg.AdminTokenSecret, cfg.AdminTokenIssuer, cfg.AdminTokenTTL)
		if err != nil {
			zapLogger.Fatal("failed_to_create_admin_token_manager", zap.Error(err))
		}
		zapLogger.Info("admin_api_enabled")
	}

	corsReloader := middleware.NewCORSReloader(corsConfigRepo, cfg.FrontendURL, zapLogger, configReloadInterval)

	deps := routerDeps{
		logger:      zapLogger,
		metrics:     m,
		keys:        keyService,
		logs:        logRepo,
		recorder:    recorder,
		users:       users,
		health:      healthChecker,
		cors:        corsReloader.Middleware(),
		adminTokens: adminTokens,
		enableHSTS:  cfg.EnableHSTS,
		tracing:     tracerProvider != nil,
	}
	if rateLimitReloader != nil {
		deps.rateLimit = rateLimitReloader.Middleware()
		go rateLimitReloader.Start(bgCtx)
	}
	go corsReloader.Start(bgCtx)

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        newRouter(deps),
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   requestTimeout + 5*time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}
	// Let in-flight request log writes land before the pools close.
	if err := pending.Wait(ctx); err != nil {
		zapLogger.Warn("request_log_writes_abandoned", zap.Error(err))
	}
	bgCancel()

	zapLogger.Info("server_exited")
}
