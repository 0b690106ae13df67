package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}

	if cfg.ERP.BaseURL != "https://erp.example.com/api" {
		t.Fatalf("unexpected ERP base url: %q", cfg.ERP.BaseURL)
	}

	if got := cfg.ERP.ConfigDelay; got != time.Second {
		t.Fatalf("expected default config retry delay 1s, got %v", got)
	}

	if got := cfg.Checkout.PromotionDebounce; got != 500*time.Millisecond {
		t.Fatalf("expected default promotion debounce 500ms, got %v", got)
	}

	if !cfg.Checkout.ClampTotalAtZero {
		t.Fatal("expected total clamping to default on")
	}

	if cfg.Storage.Driver != StorageDriverRedis {
		t.Fatalf("expected default storage driver redis, got %q", cfg.Storage.Driver)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv("OTOFIX_APP_ENV"); err != nil {
		t.Fatalf("failed to unset OTOFIX_APP_ENV: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsBadERPURL(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("OTOFIX_ERP_BASE_URL", "not-a-url")

	if _, err := Load(); err == nil {
		t.Fatal("expected invalid erp base url to return an error")
	}
}

func TestLoad_RejectsUnknownStorageDriver(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("OTOFIX_STORAGE_DRIVER", "cassandra")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown storage driver to return an error")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv("OTOFIX_APP_ENV", "production")
	t.Setenv("OTOFIX_APP_PORT", "8081")
	t.Setenv("OTOFIX_ERP_BASE_URL", "https://erp.example.com/api")
	t.Setenv("OTOFIX_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("OTOFIX_JWT_SECRET", "secret")
}
