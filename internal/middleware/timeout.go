package middleware

import (
	"net/http"
	"time"
)

// DefaultRequestTimeout is the default request timeout
const DefaultRequestTimeout = 30 * time.Second

const timeoutBody = `{"success":false,"error":"Request timeout"}`

// Timeout enforces a deadline on request handlers. Timed out requests get
// a 503 with a failure envelope.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		// TimeoutHandler also derives the request context deadline
		return http.TimeoutHandler(next, timeout, timeoutBody)
	}
}
