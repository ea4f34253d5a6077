package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/benvon/fake-api/internal/database"
	logpkg "github.com/benvon/fake-api/internal/logger"
	"github.com/benvon/fake-api/internal/models"
	"github.com/benvon/fake-api/internal/request"
	"github.com/benvon/fake-api/internal/services/apikeys"
	"github.com/benvon/fake-api/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	defaultAdminPageSize = 50
	defaultAdminLogLimit = 50
	maxAdminLogLimit     = 500
)

// KeyAdmin is the key lifecycle surface used by the admin API
type KeyAdmin interface {
	List(ctx context.Context, limit, offset int) ([]*models.APIKey, error)
	Get(ctx context.Context, id uuid.UUID) (*models.APIKey, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID) error
}

// KeyLogsResponse is returned by GET /api/admin/keys/{id}/logs
type KeyLogsResponse struct {
	Key            *models.APIKey         `json:"key"`
	Logs           []*models.RequestLog   `json:"logs"`
	EndpointCounts []models.EndpointCount `json:"endpoint_counts"`
}

// AdminHandler serves the token-protected key administration API
type AdminHandler struct {
	keys   KeyAdmin
	logs   database.RequestLogStore
	logger *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(keys KeyAdmin, logs database.RequestLogStore, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{keys: keys, logs: logs, logger: logger}
}

// RegisterRoutes registers admin routes behind auth
func (h *AdminHandler) RegisterRoutes(r *mux.Router, auth mux.MiddlewareFunc) {
	sub := r.PathPrefix("/api/admin").Subrouter()
	sub.Use(auth)
	sub.HandleFunc("/keys", h.ListKeys).Methods(http.MethodGet)
	sub.HandleFunc("/keys/{id}/revoke", h.RevokeKey).Methods(http.MethodPost)
	sub.HandleFunc("/keys/{id}/activate", h.ActivateKey).Methods(http.MethodPost)
	sub.HandleFunc("/keys/{id}/logs", h.KeyLogs).Methods(http.MethodGet)
}

// ListKeys lists keys newest first with limit/offset pagination
func (h *AdminHandler) ListKeys(w http.ResponseWriter, r *http.Request) {
	params := validation.ListParams{
		Limit:  queryInt(r, "limit", defaultAdminPageSize),
		Offset: queryInt(r, "offset", 0),
	}
	if err := validation.Validate.Struct(params); err != nil {
		respondJSONError(w, http.StatusBadRequest, "limit must be 1-500 and offset must not be negative")
		return
	}

	keys, err := h.keys.List(r.Context(), params.Limit, params.Offset)
	if err != nil {
		h.logger.Error("admin_list_keys_failed", zap.String("error", logpkg.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Failed to list API keys")
		return
	}
	if keys == nil {
		keys = []*models.APIKey{}
	}
	respondJSON(w, http.StatusOK, keys)
}

// RevokeKey deactivates a key
func (h *AdminHandler) RevokeKey(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

// ActivateKey reactivates a key
func (h *AdminHandler) ActivateKey(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *AdminHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := parseKeyID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var err error
	if active {
		err = h.keys.Activate(ctx, id)
	} else {
		err = h.keys.Revoke(ctx, id)
	}
	if errors.Is(err, apikeys.ErrKeyNotFound) {
		respondJSONError(w, http.StatusNotFound, "API key not found")
		return
	}
	if err != nil {
		h.logger.Error("admin_set_key_active_failed",
			zap.String("api_key_id", id.String()),
			zap.Bool("active", active),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		respondJSONError(w, http.StatusInternalServerError, "Failed to update API key")
		return
	}

	key, err := h.keys.Get(ctx, id)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to update API key")
		return
	}

	operator := ""
	if claims := request.AdminFromContext(r); claims != nil {
		operator = claims.Sub
	}
	h.logger.Info("api_key_active_changed",
		zap.String("api_key_id", id.String()),
		zap.Bool("active", active),
		zap.String("operator", logpkg.SanitizeString(operator, 128)),
	)
	respondJSON(w, http.StatusOK, key)
}

// KeyLogs returns recent request logs and per-endpoint counts for a key
func (h *AdminHandler) KeyLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := parseKeyID(w, r)
	if !ok {
		return
	}
	limit := queryInt(r, "limit", defaultAdminLogLimit)
	if limit < 1 || limit > maxAdminLogLimit {
		respondJSONError(w, http.StatusBadRequest, "limit must be between 1 and 500")
		return
	}
	ctx := r.Context()

	key, err := h.keys.Get(ctx, id)
	if errors.Is(err, apikeys.ErrKeyNotFound) {
		respondJSONError(w, http.StatusNotFound, "API key not found")
		return
	}
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to load request logs")
		return
	}

	logs, err := h.logs.ListByAPIKey(ctx, id, limit)
	if err != nil {
		h.logger.Error("admin_list_logs_failed", zap.String("error", logpkg.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Failed to load request logs")
		return
	}
	counts, err := h.logs.CountByEndpoint(ctx, id)
	if err != nil {
		h.logger.Error("admin_count_logs_failed", zap.String("error", logpkg.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Failed to load request logs")
		return
	}
	if logs == nil {
		logs = []*models.RequestLog{}
	}
	if counts == nil {
		counts = []models.EndpointCount{}
	}

	respondJSON(w, http.StatusOK, KeyLogsResponse{Key: key, Logs: logs, EndpointCounts: counts})
}

func parseKeyID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid API key ID")
		return uuid.Nil, false
	}
	return id, true
}

// queryInt parses an integer query parameter, returning def when absent.
// Unparsable values map to -1 so range validation rejects them.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}
