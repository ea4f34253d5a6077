package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	logpkg "github.com/benvon/fake-api/internal/logger"
	"github.com/gorilla/mux"
)

// Version is overridden at build time with -ldflags "-X ...handlers.Version=..."
var Version = "dev"

const healthCheckTimeout = 5 * time.Second

// DBPinger is satisfied by *database.DB
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// HealthChecker handles health check requests
type HealthChecker struct {
	db     DBPinger
	checks map[string]func(context.Context) error
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(db DBPinger) *HealthChecker {
	return &HealthChecker{db: db, checks: make(map[string]func(context.Context) error)}
}

// AddCheck registers an extra dependency probed in extended mode
func (h *HealthChecker) AddCheck(name string, check func(context.Context) error) {
	h.checks[name] = check
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// RegisterRoutes registers /healthz, /health and /version
func (h *HealthChecker) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet) // Legacy endpoint
	r.HandleFunc("/version", VersionInfo).Methods(http.MethodGet)
}

// HealthCheck handles the /healthz endpoint. ?mode=extended probes dependencies.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	statusCode := http.StatusOK

	if r.URL.Query().Get("mode") == "extended" {
		checks := make(map[string]string)
		probe := func(name string, fn func(context.Context) error) {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()
			if err := fn(ctx); err != nil {
				response.Status = "unhealthy"
				checks[name] = "unhealthy: " + logpkg.SanitizeError(err)
				return
			}
			checks[name] = "healthy"
		}

		if h.db != nil {
			probe("database", h.db.PingContext)
		}
		names := make([]string, 0, len(h.checks))
		for name := range h.checks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			probe(name, h.checks[name])
		}

		response.Checks = checks
		if response.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// VersionInfo exposes the build version only
func VersionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
