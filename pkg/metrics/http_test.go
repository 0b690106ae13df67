package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.Observe("GET", "/api/v1/{storeSlug}/cart", "2xx", 30*time.Millisecond)
	m.Observe("GET", "/api/v1/{storeSlug}/cart", "2xx", 10*time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/{storeSlug}/cart", "2xx")); got != 2 {
		t.Fatalf("expected 2 requests recorded, got %v", got)
	}
}

func TestPromotionMetricsNilSafe(t *testing.T) {
	var m *PromotionMetrics
	m.IncRefresh("applied") // must not panic

	empty := NewPromotionMetrics(nil)
	empty.IncRefresh("stale")
}

func TestPromotionMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPromotionMetrics(reg)
	m.IncRefresh("applied")
	m.IncRefresh("")

	if got := testutil.ToFloat64(m.refreshes.WithLabelValues("applied")); got != 1 {
		t.Fatalf("expected 1 applied refresh, got %v", got)
	}
	if got := testutil.ToFloat64(m.refreshes.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("expected empty outcome to normalize to unknown, got %v", got)
	}
}
