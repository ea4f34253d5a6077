package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

// OpenAPIHandler serves the API description as YAML and as JSON converted from it.
// The document is read and converted once, on first request.
type OpenAPIHandler struct {
	openAPIPath string
	baseDir     string

	once    sync.Once
	yamlDoc []byte
	jsonDoc []byte
	loadErr error
}

// NewOpenAPIHandler creates a new OpenAPI handler with path validation
func NewOpenAPIHandler(openAPIPath string) *OpenAPIHandler {
	absPath, _ := filepath.Abs(openAPIPath)
	baseDir, _ := filepath.Abs(filepath.Dir(openAPIPath))

	return &OpenAPIHandler{
		openAPIPath: absPath,
		baseDir:     baseDir,
	}
}

// RegisterRoutes registers OpenAPI routes
func (h *OpenAPIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/v1/openapi.yaml", h.ServeYAML).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/openapi.json", h.ServeJSON).Methods(http.MethodGet)
}

// validatePath ensures the file path is within the allowed directory
func (h *OpenAPIHandler) validatePath() error {
	relPath, err := filepath.Rel(h.baseDir, filepath.Clean(h.openAPIPath))
	if err != nil {
		return err
	}
	if filepath.IsAbs(relPath) || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return os.ErrPermission
	}
	return nil
}

func (h *OpenAPIHandler) load() error {
	h.once.Do(func() {
		if err := h.validatePath(); err != nil {
			h.loadErr = err
			return
		}
		data, err := os.ReadFile(h.openAPIPath)
		if err != nil {
			h.loadErr = err
			return
		}
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			h.loadErr = fmt.Errorf("parse openapi document: %w", err)
			return
		}
		js, err := json.Marshal(doc)
		if err != nil {
			h.loadErr = fmt.Errorf("convert openapi document: %w", err)
			return
		}
		h.yamlDoc, h.jsonDoc = data, js
	})
	return h.loadErr
}

// ServeYAML serves the OpenAPI document in YAML format
func (h *OpenAPIHandler) ServeYAML(w http.ResponseWriter, r *http.Request) {
	if err := h.load(); err != nil {
		respondJSONError(w, http.StatusNotFound, "OpenAPI document not found")
		return
	}
	w.Header().Set("Content-Type", "application/x-yaml")
	_, _ = w.Write(h.yamlDoc)
}

// ServeJSON serves the OpenAPI document in JSON format
func (h *OpenAPIHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	if err := h.load(); err != nil {
		respondJSONError(w, http.StatusNotFound, "OpenAPI document not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(h.jsonDoc)
}
