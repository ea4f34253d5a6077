package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/benvon/fake-api/internal/database"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const (
	defaultCORSOrigin = "http://localhost:3000"
	defaultCORSMaxAge = 86400
)

// CORSReloader wraps rs/cors and periodically reloads CORS config from the database.
// gorilla/mux applies middleware on every match, so only the policy is swapped
// and the wrapped handler is never stored.
type CORSReloader struct {
	repo     database.CorsConfigGetter
	fallback string // FRONTEND_URL
	log      *zap.Logger
	interval time.Duration
	mu       sync.RWMutex
	current  *cors.Cors
}

// NewCORSReloader creates a CORS middleware that loads config from the DB and hot-reloads it.
func NewCORSReloader(repo database.CorsConfigGetter, frontendURLFallback string, log *zap.Logger, reloadInterval time.Duration) *CORSReloader {
	if log == nil {
		log = zap.NewNop()
	}
	return &CORSReloader{
		repo:     repo,
		fallback: strings.TrimSpace(frontendURLFallback),
		log:      log,
		interval: reloadInterval,
	}
}

// Middleware loads the current policy and returns a middleware applying it.
func (r *CORSReloader) Middleware() func(http.Handler) http.Handler {
	r.load(context.Background())
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			r.mu.RLock()
			c := r.current
			r.mu.RUnlock()
			c.ServeHTTP(w, req, next.ServeHTTP)
		})
	}
}

// Start runs the reload loop until ctx is cancelled.
func (r *CORSReloader) Start(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.load(ctx)
		}
	}
}

func (r *CORSReloader) load(ctx context.Context) {
	cfg, err := r.repo.Get(ctx)
	if err != nil {
		r.log.Warn("failed_to_load_cors_config_using_fallback", zap.Error(err))
	}
	var origins []string
	var allowCreds bool
	var maxAge int
	if err != nil || cfg == nil {
		origins = database.AllowedOriginsSlice(r.fallback)
		allowCreds = true
		maxAge = defaultCORSMaxAge
	} else {
		origins = database.AllowedOriginsSlice(cfg.AllowedOrigins)
		allowCreds = cfg.AllowCredentials
		maxAge = cfg.MaxAge
	}
	if len(origins) == 0 {
		origins = []string{defaultCORSOrigin}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: allowCreds,
		MaxAge:           maxAge,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", APIKeyHeader},
	})
	r.mu.Lock()
	r.current = c
	r.mu.Unlock()
}
