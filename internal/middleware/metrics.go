package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/benvon/fake-api/internal/metrics"
	"github.com/gorilla/mux"
)

// unmatchedRoute labels requests that hit no registered route
const unmatchedRoute = "unmatched"

// Metrics records request counts and latency labelled by route template
// rather than raw path, so label cardinality stays bounded.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			route := unmatchedRoute
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			m.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(wrapped.statusCode)).Inc()
			m.HTTPDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		})
	}
}
