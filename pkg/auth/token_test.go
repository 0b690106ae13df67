package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/otofix/storefront-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "otofix-storefront",
		ExpirationMinutes:      60,
		RefreshTokenTTLMinutes: 43200,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	t.Parallel()
	cfg := testJWTConfig()

	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		CustomerID: "cust-42",
		TenantSlug: "oto-parts",
		Email:      "driver@example.com",
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.CustomerID != "cust-42" {
		t.Fatalf("unexpected customer id %q", claims.CustomerID)
	}
	if claims.TenantSlug != "oto-parts" {
		t.Fatalf("unexpected tenant %q", claims.TenantSlug)
	}
	if strings.TrimSpace(claims.ID) == "" {
		t.Fatal("expected a generated jti")
	}
}

func TestMintRejectsIncompletePayload(t *testing.T) {
	t.Parallel()
	cfg := testJWTConfig()

	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{TenantSlug: "oto-parts"}); err == nil {
		t.Fatal("expected error without customer id")
	}
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{CustomerID: "cust-42"}); err == nil {
		t.Fatal("expected error without tenant slug")
	}
}

func TestParseRejectsForeignSecret(t *testing.T) {
	t.Parallel()
	cfg := testJWTConfig()

	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{CustomerID: "c", TenantSlug: "s"})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, signed); err == nil {
		t.Fatal("expected signature validation to fail")
	}
}
