package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/fake-api/internal/fakedata"
	logpkg "github.com/benvon/fake-api/internal/logger"
	"github.com/benvon/fake-api/internal/metrics"
	"github.com/benvon/fake-api/internal/models"
	"github.com/benvon/fake-api/internal/request"
	"github.com/benvon/fake-api/internal/services/requestlog"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Fake endpoint names
const (
	EndpointUsers = "users"
	EndpointUser  = "user"
)

// FakeAPIPrefix is where the key-protected endpoints live
const FakeAPIPrefix = "/api/test-api"

// maxEchoedEndpointLength bounds the unknown name quoted back in a 404
const maxEchoedEndpointLength = 100

// maxLoggedEndpointLength matches request_logs.endpoint
const maxLoggedEndpointLength = 500

// FakeAPIHandler serves the key-protected fake endpoints
type FakeAPIHandler struct {
	users    *fakedata.Dataset
	recorder requestlog.Recorder
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewFakeAPIHandler creates a new fake API handler
func NewFakeAPIHandler(users *fakedata.Dataset, recorder requestlog.Recorder, m *metrics.Metrics, logger *zap.Logger) *FakeAPIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FakeAPIHandler{users: users, recorder: recorder, metrics: m, logger: logger}
}

// RegisterRoutes registers the fake endpoints behind auth, which must
// reject requests without a valid key.
func (h *FakeAPIHandler) RegisterRoutes(r *mux.Router, auth mux.MiddlewareFunc) {
	sub := r.PathPrefix(FakeAPIPrefix).Subrouter()
	sub.Use(auth)
	sub.HandleFunc("/{endpoint:.+}", h.Handle).
		Methods(http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete)
}

// Handle records the call and dispatches on the endpoint name
func (h *FakeAPIHandler) Handle(w http.ResponseWriter, r *http.Request) {
	key := request.APIKeyFromContext(r)
	if key == nil {
		// Routes are registered behind auth; reaching here means miswiring.
		respondJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	endpoint := strings.Trim(mux.Vars(r)["endpoint"], "/")
	h.record(r, key, endpoint)

	switch endpoint {
	case EndpointUsers:
		h.count(EndpointUsers)
		respondJSON(w, http.StatusOK, h.users.Users())
	case EndpointUser:
		h.count(EndpointUser)
		respondJSON(w, http.StatusOK, h.users.UserByID(r.URL.Query().Get("id")))
	default:
		h.count("unknown")
		// Only the echoed name is shortened; the endpoint list always survives.
		writeEnvelope(w, http.StatusNotFound, models.Fail(unknownEndpointMessage(endpoint)))
	}
}

func unknownEndpointMessage(endpoint string) string {
	name := logpkg.SanitizeString(endpoint, maxEchoedEndpointLength)
	return fmt.Sprintf("Endpoint '%s' not found. Available endpoints: %s, %s", name, EndpointUsers, EndpointUser)
}

func (h *FakeAPIHandler) record(r *http.Request, key *models.APIKey, endpoint string) {
	if h.recorder == nil {
		return
	}
	ip := logpkg.SanitizeString(request.ClientIP(r), 64)
	ua := logpkg.SanitizeUserAgent(r.UserAgent())
	entry := models.RequestLog{
		APIKeyID:  key.ID,
		Endpoint:  logpkg.SanitizeString(endpoint, maxLoggedEndpointLength),
		Method:    r.Method,
		CreatedAt: time.Now().UTC(),
	}
	if ip != "" {
		entry.ClientIP = &ip
	}
	if ua != "" {
		entry.UserAgent = &ua
	}
	h.recorder.Record(r.Context(), entry)
}

func (h *FakeAPIHandler) count(endpoint string) {
	if h.metrics != nil {
		h.metrics.FakeAPICalls.WithLabelValues(endpoint).Inc()
	}
}
