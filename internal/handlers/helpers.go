package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/benvon/fake-api/internal/models"
)

var errEmptyBody = errors.New("empty request body")

// respondJSON sends a success envelope
func respondJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, models.OK(data))
}

// respondJSONError sends a failure envelope. message is shown to the caller
// as-is, so it must never carry internal error text.
func respondJSONError(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, models.Fail(sanitizeErrorMessage(message)))
}

func writeEnvelope(w http.ResponseWriter, status int, body models.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage bounds message length
func sanitizeErrorMessage(message string) string {
	const maxLen = 200
	r := []rune(message)
	if len(r) > maxLen {
		return string(r[:maxLen]) + "..."
	}
	return message
}

// decodeJSONBody decodes an optional JSON body into dst. An absent body
// returns errEmptyBody.
func decodeJSONBody(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errEmptyBody
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

// NotFound answers unmatched routes with the failure envelope
func NotFound(w http.ResponseWriter, r *http.Request) {
	respondJSONError(w, http.StatusNotFound, "Not found")
}

// MethodNotAllowed answers known routes called with the wrong method
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
