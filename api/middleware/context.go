package middleware

import (
	"context"

	"github.com/otofix/storefront-backend/internal/tenant"
	"github.com/otofix/storefront-backend/pkg/auth"
)

type contextKey string

const (
	ctxTenant    contextKey = "tenant_config"
	ctxSessionID contextKey = "session_id"
	ctxClaims    contextKey = "customer_claims"
)

// TenantFromContext returns the resolved tenant configuration, or nil outside
// a storefront route.
func TenantFromContext(ctx context.Context) *tenant.Config {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxTenant).(*tenant.Config); ok {
		return v
	}
	return nil
}

// SessionIDFromContext returns the visitor session identifier.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// ClaimsFromContext returns the authenticated customer's claims, or nil for
// guests.
func ClaimsFromContext(ctx context.Context) *auth.AccessTokenClaims {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxClaims).(*auth.AccessTokenClaims); ok {
		return v
	}
	return nil
}

// CustomerIDFromContext returns the authenticated customer's identifier, or
// empty for guests.
func CustomerIDFromContext(ctx context.Context) string {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.CustomerID
	}
	return ""
}

// WithTenant injects the resolved tenant configuration.
func WithTenant(ctx context.Context, cfg *tenant.Config) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxTenant, cfg)
}

// WithSessionID injects the visitor session identifier.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}
