package handlers

import (
	"context"
	"errors"
	"net/http"

	logpkg "github.com/benvon/fake-api/internal/logger"
	"github.com/benvon/fake-api/internal/metrics"
	"github.com/benvon/fake-api/internal/models"
	"github.com/benvon/fake-api/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// KeyIssuer creates new API keys
type KeyIssuer interface {
	Generate(ctx context.Context, name string) (*models.IssuedAPIKey, error)
}

// KeysHandler serves public key generation
type KeysHandler struct {
	issuer  KeyIssuer
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewKeysHandler creates a new keys handler
func NewKeysHandler(issuer KeyIssuer, m *metrics.Metrics, logger *zap.Logger) *KeysHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeysHandler{issuer: issuer, metrics: m, logger: logger}
}

// RegisterRoutes registers key routes
func (h *KeysHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/generate-key", h.GenerateKey).Methods(http.MethodPost)
}

// GenerateKey issues a key. The body is optional; {"name": "..."} labels the key.
func (h *KeysHandler) GenerateKey(w http.ResponseWriter, r *http.Request) {
	var req validation.GenerateKeyRequest
	if err := decodeJSONBody(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Normalize(); err != nil {
		respondJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	issued, err := h.issuer.Generate(r.Context(), req.Name)
	if err != nil {
		h.logger.Error("api_key_generation_failed", zap.String("error", logpkg.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Failed to generate API key")
		return
	}

	if h.metrics != nil {
		h.metrics.KeysIssued.Inc()
	}
	h.logger.Info("api_key_generated",
		zap.String("api_key_id", issued.ID.String()),
		zap.String("key_prefix", issued.KeyPrefix),
	)
	respondJSON(w, http.StatusCreated, issued)
}
