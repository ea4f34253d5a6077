package main

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/benvon/fake-api/internal/database"
	"github.com/benvon/fake-api/internal/fakedata"
	"github.com/benvon/fake-api/internal/handlers"
	"github.com/benvon/fake-api/internal/metrics"
	"github.com/benvon/fake-api/internal/middleware"
	"github.com/benvon/fake-api/internal/services/admintoken"
	"github.com/benvon/fake-api/internal/services/apikeys"
	"github.com/benvon/fake-api/internal/services/requestlog"
	"github.com/benvon/fake-api/internal/telemetry"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	serviceName    = "fake-api"
	requestTimeout = 30 * time.Second
)

// routerDeps carries everything the HTTP surface needs. Optional parts are nil when disabled.
type routerDeps struct {
	logger      *zap.Logger
	metrics     *metrics.Metrics
	keys        *apikeys.Service
	logs        database.RequestLogStore
	recorder    requestlog.Recorder
	users       *fakedata.Dataset
	health      *handlers.HealthChecker
	cors        func(http.Handler) http.Handler
	rateLimit   func(http.Handler) http.Handler
	adminTokens *admintoken.Manager
	enableHSTS  bool
	tracing     bool
	openAPIPath string
}

func newRouter(d routerDeps) *mux.Router {
	if d.openAPIPath == "" {
		d.openAPIPath = filepath.Join("api", "openapi", "openapi.yaml")
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handlers.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowed)

	if d.tracing {
		r.Use(telemetry.Middleware(serviceName))
	}
	r.Use(middleware.SecurityHeaders(d.enableHSTS))
	if d.cors != nil {
		r.Use(d.cors)
	}
	r.Use(outsideFakeAPI(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize)))
	r.Use(outsideFakeAPI(middleware.ContentType))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ErrorHandler(d.logger))
	r.Use(middleware.Audit(d.logger))
	r.Use(middleware.Logging(d.logger))
	r.Use(middleware.Metrics(d.metrics))

	if d.rateLimit != nil {
		r.Use(exemptProbes(d.rateLimit))
	}

	handlers.RegisterDemoRoutes(r)
	d.health.RegisterRoutes(r)
	handlers.NewOpenAPIHandler(d.openAPIPath).RegisterRoutes(r)
	r.Handle("/metrics", d.metrics.Handler()).Methods(http.MethodGet)

	handlers.NewKeysHandler(d.keys, d.metrics, d.logger).RegisterRoutes(r)
	handlers.NewFakeAPIHandler(d.users, d.recorder, d.metrics, d.logger).
		RegisterRoutes(r, middleware.APIKeyAuth(d.keys, d.logger, d.metrics))

	if d.adminTokens != nil {
		handlers.NewAdminHandler(d.keys, d.logs, d.logger).
			RegisterRoutes(r, middleware.AdminAuth(d.adminTokens, d.logger))
	}

	// Preflight requests need a matching route for the CORS middleware to run.
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

// probePaths bypass rate limiting
var probePaths = map[string]bool{
	"/healthz": true,
	"/health":  true,
	"/version": true,
	"/metrics": true,
}

func exemptProbes(limit func(http.Handler) http.Handler) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if probePaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

// outsideFakeAPI skips mw on the fake endpoints, which never read a body and
// must answer auth failures before anything else.
func outsideFakeAPI(mw func(http.Handler) http.Handler) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, handlers.FakeAPIPrefix+"/") {
				next.ServeHTTP(w, r)
				return
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}
