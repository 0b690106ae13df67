package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request-level metadata for the storefront API.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// NewHTTPMetrics registers the HTTP metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route, and status class.",
	}, []string{"method", "route", "status"})
	reg.MustRegister(duration, requests)
	return &HTTPMetrics{
		duration: duration,
		requests: requests,
	}
}

// Observe records one completed request.
func (h *HTTPMetrics) Observe(method, route, status string, elapsed time.Duration) {
	if h == nil || h.duration == nil {
		return
	}
	h.duration.WithLabelValues(normalizeLabel(method), normalizeLabel(route)).Observe(elapsed.Seconds())
	h.requests.WithLabelValues(normalizeLabel(method), normalizeLabel(route), normalizeLabel(status)).Inc()
}

// PromotionMetrics tracks promotion re-evaluation outcomes.
type PromotionMetrics struct {
	refreshes *prometheus.CounterVec
}

// NewPromotionMetrics registers the promotion refresh metrics.
func NewPromotionMetrics(reg prometheus.Registerer) *PromotionMetrics {
	if reg == nil {
		return &PromotionMetrics{}
	}
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promotion_refreshes_total",
		Help: "Promotion check requests by outcome (applied, stale, failed).",
	}, []string{"outcome"})
	reg.MustRegister(refreshes)
	return &PromotionMetrics{refreshes: refreshes}
}

// IncRefresh increments the refresh counter for the given outcome.
func (p *PromotionMetrics) IncRefresh(outcome string) {
	if p == nil || p.refreshes == nil {
		return
	}
	p.refreshes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
