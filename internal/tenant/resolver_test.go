package tenant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/otofix/storefront-backend/internal/erp"
	"github.com/otofix/storefront-backend/pkg/config"
	"github.com/shopspring/decimal"
)

type stubFetcher struct {
	calls   int
	results []fetchResult
}

type fetchResult struct {
	cfg *erp.TenantConfig
	err error
}

func (s *stubFetcher) Config(ctx context.Context, slug string) (*erp.TenantConfig, error) {
	idx := s.calls
	s.calls++
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	res := s.results[idx]
	return res.cfg, res.err
}

type stubCache struct {
	data map[string]string
}

func newStubCache() *stubCache { return &stubCache{data: map[string]string{}} }

func (s *stubCache) Get(_ context.Context, key string) (string, error) {
	return s.data[key], nil
}

func (s *stubCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.data[key] = value.(string)
	return nil
}

func (s *stubCache) TenantConfigKey(slug string) string { return "tenant_cfg:" + slug }

func erpCfg() config.ERPConfig {
	return config.ERPConfig{
		BaseURL:        "http://erp.test",
		ConfigAttempts: 3,
		ConfigDelay:    time.Millisecond,
		TenantCacheTTL: time.Minute,
	}
}

func TestResolveRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{results: []fetchResult{
		{err: errors.New("transport flake")},
		{err: &erp.StatusError{StatusCode: 502, Message: "bad gateway"}},
		{cfg: &erp.TenantConfig{TenantID: "t-1", Subdomain: "oto-parts", Currency: "TRY", TaxRate: decimal.NewFromInt(20)}},
	}}
	resolver := NewResolver(fetcher, nil, nil, erpCfg())

	got := resolver.Resolve(context.Background(), "oto-parts")
	if fetcher.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", fetcher.calls)
	}
	if got.Degraded {
		t.Fatal("successful resolve must not be degraded")
	}
	if !got.TaxRate.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("unexpected tax rate %s", got.TaxRate)
	}
}

func TestResolveFallsBackAfterExhaustedRetries(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{results: []fetchResult{{err: errors.New("down")}}}
	resolver := NewResolver(fetcher, nil, nil, erpCfg())

	got := resolver.Resolve(context.Background(), "oto-parts")
	if fetcher.calls != 3 {
		t.Fatalf("expected full retry budget, got %d attempts", fetcher.calls)
	}
	if !got.Degraded {
		t.Fatal("fallback config must be marked degraded")
	}
	if got.Subdomain != "oto-parts" {
		t.Fatalf("fallback must preserve the requested slug, got %q", got.Subdomain)
	}
	if !got.TaxRate.Equal(DefaultTaxRate) {
		t.Fatalf("fallback tax rate should default to 18, got %s", got.TaxRate)
	}
}

func TestResolveNotFoundIsTerminal(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{results: []fetchResult{{err: erp.ErrNotFound}}}
	resolver := NewResolver(fetcher, nil, nil, erpCfg())

	got := resolver.Resolve(context.Background(), "ghost")
	if fetcher.calls != 1 {
		t.Fatalf("not-found must not be retried, got %d attempts", fetcher.calls)
	}
	if got.Subdomain != "ghost" || !got.Degraded {
		t.Fatalf("expected degraded default for unknown slug, got %+v", got)
	}
}

func TestResolveDefaultsNonPositiveTaxRate(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{results: []fetchResult{
		{cfg: &erp.TenantConfig{Subdomain: "oto-parts", TaxRate: decimal.Zero}},
	}}
	resolver := NewResolver(fetcher, nil, nil, erpCfg())

	got := resolver.Resolve(context.Background(), "oto-parts")
	if !got.TaxRate.Equal(DefaultTaxRate) {
		t.Fatalf("zero tax rate should default to 18, got %s", got.TaxRate)
	}
	if got.Currency != "TRY" {
		t.Fatalf("missing currency should default, got %q", got.Currency)
	}
}

func TestResolveUsesCache(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{results: []fetchResult{
		{cfg: &erp.TenantConfig{TenantID: "t-1", Subdomain: "oto-parts", Currency: "TRY", TaxRate: decimal.NewFromInt(18)}},
	}}
	cache := newStubCache()
	resolver := NewResolver(fetcher, cache, nil, erpCfg())

	first := resolver.Resolve(context.Background(), "oto-parts")
	second := resolver.Resolve(context.Background(), "oto-parts")

	if fetcher.calls != 1 {
		t.Fatalf("second resolve should come from cache, got %d fetches", fetcher.calls)
	}
	if first.TenantID != second.TenantID {
		t.Fatalf("cache returned a different tenant: %+v vs %+v", first, second)
	}
}

func TestResolveSlugOverridesBackendSubdomain(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{results: []fetchResult{
		{cfg: &erp.TenantConfig{Subdomain: "something-else", TaxRate: decimal.NewFromInt(18)}},
	}}
	resolver := NewResolver(fetcher, nil, nil, erpCfg())

	got := resolver.Resolve(context.Background(), "oto-parts")
	if got.Subdomain != "oto-parts" {
		t.Fatalf("url slug must win, got %q", got.Subdomain)
	}
}
