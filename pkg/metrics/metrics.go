package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request counts and latency per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Handled HTTP requests.",
	}, []string{"method", "path", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
	reg.MustRegister(requests, duration)
	return &HTTPMetrics{requests: requests, duration: duration}
}

// Observe records one handled request.
func (m *HTTPMetrics) Observe(method, path, status string, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(method, path, status).Inc()
	m.duration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// FetchMetrics tracks catalog fetch attempts per source.
type FetchMetrics struct {
	attempts  *prometheus.CounterVec
	retries   *prometheus.CounterVec
	exhausted *prometheus.CounterVec
	malformed *prometheus.CounterVec
}

// NewFetchMetrics registers the catalog fetch metrics on the provided
// registerer.
func NewFetchMetrics(reg prometheus.Registerer) *FetchMetrics {
	if reg == nil {
		return &FetchMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_fetch_attempts_total",
		Help: "Catalog fetch attempts, including retries.",
	}, []string{"source"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_fetch_retries_total",
		Help: "Catalog fetch retries after transient failures.",
	}, []string{"source"})
	exhausted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_fetch_exhausted_total",
		Help: "Catalog fetches that ran out of retry budget.",
	}, []string{"source"})
	malformed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_malformed_records_total",
		Help: "Catalog records skipped during normalization.",
	}, []string{"source"})
	reg.MustRegister(attempts, retries, exhausted, malformed)
	return &FetchMetrics{
		attempts:  attempts,
		retries:   retries,
		exhausted: exhausted,
		malformed: malformed,
	}
}

// IncAttempt counts one fetch attempt against a source.
func (m *FetchMetrics) IncAttempt(source string) {
	if m == nil || m.attempts == nil {
		return
	}
	m.attempts.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncRetry counts one scheduled retry against a source.
func (m *FetchMetrics) IncRetry(source string) {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncExhausted counts one terminal fetch failure against a source.
func (m *FetchMetrics) IncExhausted(source string) {
	if m == nil || m.exhausted == nil {
		return
	}
	m.exhausted.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncMalformed counts one skipped record against a source.
func (m *FetchMetrics) IncMalformed(source string) {
	if m == nil || m.malformed == nil {
		return
	}
	m.malformed.WithLabelValues(normalizeLabel(source)).Inc()
}

func normalizeLabel(source string) string {
	if source == "" {
		return "unknown"
	}
	return source
}
