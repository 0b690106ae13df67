package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/otofix/storefront-backend/internal/erp"
	"github.com/otofix/storefront-backend/pkg/config"
	"github.com/otofix/storefront-backend/pkg/enums"
	"github.com/otofix/storefront-backend/pkg/logger"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate applies whenever a tenant's configured rate is absent or
// non-positive.
var DefaultTaxRate = decimal.NewFromInt(18)

const defaultCurrency = string(enums.CurrencyTRY)

// Config is a resolved tenant configuration. Degraded marks a fallback record
// built after the ERP fetch failed: branding may be wrong, but Subdomain is
// always the URL-derived slug so routing and storage stay correct.
type Config struct {
	erp.TenantConfig
	Degraded bool `json:"degraded,omitempty"`
}

type configFetcher interface {
	Config(ctx context.Context, slug string) (*erp.TenantConfig, error)
}

type configCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	TenantConfigKey(slug string) string
}

// Resolver turns a URL slug into a tenant configuration, with retry against
// the ERP and a short-lived cache in front of it.
type Resolver struct {
	fetcher  configFetcher
	cache    configCache
	logg     *logger.Logger
	attempts int
	delay    time.Duration
	cacheTTL time.Duration
}

// NewResolver wires a resolver from configuration. The cache is optional.
func NewResolver(fetcher configFetcher, cache configCache, logg *logger.Logger, cfg config.ERPConfig) *Resolver {
	attempts := cfg.ConfigAttempts
	if attempts <= 0 {
		attempts = 3
	}
	return &Resolver{
		fetcher:  fetcher,
		cache:    cache,
		logg:     logg,
		attempts: attempts,
		delay:    cfg.ConfigDelay,
		cacheTTL: cfg.TenantCacheTTL,
	}
}

// Resolve never fails: after the retry budget is spent (or the ERP says the
// tenant does not exist) it returns the default configuration carrying the
// requested slug.
func (r *Resolver) Resolve(ctx context.Context, slug string) *Config {
	if cached := r.fromCache(ctx, slug); cached != nil {
		return cached
	}

	fetched, err := r.fetchWithRetry(ctx, slug)
	if err != nil {
		if r.logg != nil && !errors.Is(err, erp.ErrNotFound) {
			r.logg.Warn(r.logg.WithTenant(ctx, slug), "tenant config fetch failed, serving default config")
		}
		return DefaultConfig(slug)
	}

	resolved := normalize(slug, fetched)
	r.toCache(ctx, slug, resolved)
	return resolved
}

func (r *Resolver) fetchWithRetry(ctx context.Context, slug string) (*erp.TenantConfig, error) {
	backoff := retry.WithMaxRetries(uint64(r.attempts-1), retry.NewConstant(maxDuration(r.delay, time.Millisecond)))

	var fetched *erp.TenantConfig
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		cfg, err := r.fetcher.Config(ctx, slug)
		if err != nil {
			// Explicit not-found is terminal; anything else burns a retry.
			if errors.Is(err, erp.ErrNotFound) {
				return err
			}
			return retry.RetryableError(err)
		}
		fetched = cfg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fetched, nil
}

func (r *Resolver) fromCache(ctx context.Context, slug string) *Config {
	if r.cache == nil {
		return nil
	}
	raw, err := r.cache.Get(ctx, r.cache.TenantConfigKey(slug))
	if err != nil || raw == "" {
		return nil
	}
	var cfg Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil
	}
	if cfg.Subdomain != slug {
		return nil
	}
	return &cfg
}

func (r *Resolver) toCache(ctx context.Context, slug string, cfg *Config) {
	if r.cache == nil {
		return
	}
	encoded, err := json.Marshal(cfg)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, r.cache.TenantConfigKey(slug), string(encoded), r.cacheTTL); err != nil && r.logg != nil {
		r.logg.Warn(r.logg.WithTenant(ctx, slug), "tenant config cache write failed")
	}
}

// DefaultConfig is the fallback record served when the ERP cannot be reached.
func DefaultConfig(slug string) *Config {
	return &Config{
		TenantConfig: erp.TenantConfig{
			Subdomain:    slug,
			Name:         slug,
			Currency:     defaultCurrency,
			TaxRate:      DefaultTaxRate,
			PrimaryColor: "#111827",
		},
		Degraded: true,
	}
}

func normalize(slug string, fetched *erp.TenantConfig) *Config {
	cfg := Config{TenantConfig: *fetched}
	// The URL slug wins over whatever the backend claims; storage namespacing
	// must follow routing.
	cfg.Subdomain = slug
	if cfg.TaxRate.LessThanOrEqual(decimal.Zero) {
		cfg.TaxRate = DefaultTaxRate
	}
	// Unknown currencies would break price formatting downstream; treat them
	// like an absent value.
	if _, err := enums.ParseCurrency(cfg.Currency); err != nil {
		cfg.Currency = defaultCurrency
	}
	return &cfg
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
