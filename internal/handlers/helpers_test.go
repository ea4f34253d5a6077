package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/benvon/fake-api/internal/models"
)

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) models.Response {
	t.Helper()
	var body models.Response
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return body
}

func TestRespondJSON(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	respondJSON(rr, http.StatusCreated, map[string]string{"message": "hello"})

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
	}
	body := decodeEnvelope(t, rr)
	if !body.Success {
		t.Error("Expected success to be true")
	}
	data, ok := body.Data.(map[string]any)
	if !ok || data["message"] != "hello" {
		t.Errorf("Expected data.message 'hello', got %v", body.Data)
	}
	if body.Error != "" {
		t.Errorf("Expected no error, got %q", body.Error)
	}
}

func TestRespondJSONError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		message string
		want    string
	}{
		{name: "short message", status: http.StatusBadRequest, message: "Invalid request body", want: "Invalid request body"},
		{name: "long message truncated", status: http.StatusNotFound, message: strings.Repeat("x", 250), want: strings.Repeat("x", 200) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rr := httptest.NewRecorder()
			respondJSONError(rr, tt.status, tt.message)

			if rr.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, rr.Code)
			}
			body := decodeEnvelope(t, rr)
			if body.Success {
				t.Error("Expected success to be false")
			}
			if body.Error != tt.want {
				t.Errorf("error = %q, want %q", body.Error, tt.want)
			}
			if body.Data != nil {
				t.Errorf("Expected no data, got %v", body.Data)
			}
		})
	}
}

func TestDecodeJSONBody(t *testing.T) {
	t.Parallel()

	var dst struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if err := decodeJSONBody(req, &dst); err != errEmptyBody {
		t.Errorf("nil body error = %v, want errEmptyBody", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("   "))
	if err := decodeJSONBody(req, &dst); err != errEmptyBody {
		t.Errorf("whitespace body error = %v, want errEmptyBody", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	if err := decodeJSONBody(req, &dst); err == nil || err == errEmptyBody {
		t.Errorf("malformed body error = %v, want syntax error", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"demo"}`))
	if err := decodeJSONBody(req, &dst); err != nil || dst.Name != "demo" {
		t.Errorf("decode = %v, name %q", err, dst.Name)
	}
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	NotFound(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound || decodeEnvelope(t, rr).Error != "Not found" {
		t.Errorf("NotFound wrote %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	MethodNotAllowed(rr, httptest.NewRequest(http.MethodPatch, "/api/generate-key", nil))
	if rr.Code != http.StatusMethodNotAllowed || decodeEnvelope(t, rr).Success {
		t.Errorf("MethodNotAllowed wrote %d", rr.Code)
	}
}
