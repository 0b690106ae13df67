package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/otofix/storefront-backend/api/responses"
	"github.com/otofix/storefront-backend/internal/tenant"
	pkgerrors "github.com/otofix/storefront-backend/pkg/errors"
	"github.com/otofix/storefront-backend/pkg/logger"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

type tenantResolver interface {
	Resolve(ctx context.Context, slug string) *tenant.Config
}

// Tenant resolves the {storeSlug} URL parameter into a tenant configuration
// and seeds the request context with it. Resolution never fails outright; an
// unreachable backend yields a degraded default so the storefront still
// renders.
func Tenant(resolver tenantResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug := chi.URLParam(r, "storeSlug")
			if !slugPattern.MatchString(slug) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid store identifier"))
				return
			}

			cfg := resolver.Resolve(r.Context(), slug)
			ctx := WithTenant(r.Context(), cfg)
			if logg != nil {
				ctx = logg.WithTenant(ctx, slug)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTenant guards handlers that must run inside a storefront route.
func RequireTenant(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if TenantFromContext(r.Context()) == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "store not found"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
