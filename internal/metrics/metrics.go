// Package metrics exposes Prometheus instrumentation for the fake API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fake_api"

// Outcome labels for API key validation
const (
	KeyMissing = "missing"
	KeyInvalid = "invalid"
	KeyValid   = "valid"
	KeyError   = "error"
)

// Metrics holds every collector the service reports
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	KeyValidations   *prometheus.CounterVec
	KeysIssued       prometheus.Counter
	RequestLogWrites *prometheus.CounterVec
	FakeAPICalls     *prometheus.CounterVec
}

// New registers all collectors on a fresh registry, along with Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route template, method and status code.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route template and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		KeyValidations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_key_validations_total",
			Help:      "API key checks by outcome.",
		}, []string{"outcome"}),
		KeysIssued: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_keys_issued_total",
			Help:      "API keys generated.",
		}),
		RequestLogWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_log_writes_total",
			Help:      "Request log writes by sink and result.",
		}, []string{"sink", "result"}),
		FakeAPICalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fake_api_calls_total",
			Help:      "Authenticated fake API calls by endpoint.",
		}, []string{"endpoint"}),
	}
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
