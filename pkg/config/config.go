package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every environment variable consumed by the service.
const EnvPrefix = "otofix"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Storage driver identifiers accepted by StorageConfig.Driver.
const (
	StorageDriverRedis  = "redis"
	StorageDriverSQLite = "sqlite"
	StorageDriverMemory = "memory"
)

type Config struct {
	App      AppConfig
	ERP      ERPConfig
	Redis    RedisConfig
	Storage  StorageConfig
	JWT      JWTConfig
	Checkout CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.ERP.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"OTOFIX_APP_ENV" required:"true"`
	Port         string `envconfig:"OTOFIX_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"OTOFIX_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"OTOFIX_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// ERPConfig points the storefront at the upstream commerce backend.
type ERPConfig struct {
	BaseURL        string        `envconfig:"OTOFIX_ERP_BASE_URL" required:"true"`
	Timeout        time.Duration `envconfig:"OTOFIX_ERP_TIMEOUT" default:"10s"`
	ConfigAttempts int           `envconfig:"OTOFIX_ERP_CONFIG_ATTEMPTS" default:"3"`
	ConfigDelay    time.Duration `envconfig:"OTOFIX_ERP_CONFIG_DELAY" default:"1s"`
	TenantCacheTTL time.Duration `envconfig:"OTOFIX_ERP_TENANT_CACHE_TTL" default:"5m"`
}

func (e ERPConfig) validate() error {
	parsed, err := url.Parse(e.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid erp base url %q", e.BaseURL)
	}
	if e.ConfigAttempts <= 0 {
		return fmt.Errorf("erp config attempts must be positive")
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"OTOFIX_REDIS_URL"`
	Address      string        `envconfig:"OTOFIX_REDIS_ADDR"`
	Password     string        `envconfig:"OTOFIX_REDIS_PASSWORD"`
	DB           int           `envconfig:"OTOFIX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"OTOFIX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"OTOFIX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"OTOFIX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"OTOFIX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"OTOFIX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// StorageConfig selects the key-value backend for cart/wishlist state.
type StorageConfig struct {
	Driver     string `envconfig:"OTOFIX_STORAGE_DRIVER" default:"redis"`
	SQLitePath string `envconfig:"OTOFIX_STORAGE_SQLITE_PATH" default:"storefront.db"`
}

func (s StorageConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case StorageDriverRedis, StorageDriverSQLite, StorageDriverMemory:
		return nil
	}
	return fmt.Errorf("unknown storage driver %q", s.Driver)
}

type JWTConfig struct {
	Secret                 string `envconfig:"OTOFIX_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"OTOFIX_JWT_ISSUER" default:"otofix-storefront"`
	ExpirationMinutes      int    `envconfig:"OTOFIX_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"OTOFIX_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// CheckoutConfig tunes promotion re-evaluation and total computation.
type CheckoutConfig struct {
	PromotionDebounce time.Duration `envconfig:"OTOFIX_CHECKOUT_PROMOTION_DEBOUNCE" default:"500ms"`
	PromotionTimeout  time.Duration `envconfig:"OTOFIX_CHECKOUT_PROMOTION_TIMEOUT" default:"5s"`
	ClampTotalAtZero  bool          `envconfig:"OTOFIX_CHECKOUT_CLAMP_TOTAL" default:"true"`
}
