package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/otofix/storefront-backend/api/responses"
	pkgAuth "github.com/otofix/storefront-backend/pkg/auth"
	"github.com/otofix/storefront-backend/pkg/auth/session"
	"github.com/otofix/storefront-backend/pkg/config"
	pkgerrors "github.com/otofix/storefront-backend/pkg/errors"
	"github.com/otofix/storefront-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// customer claims. The tenant in the token must match the storefront being
// browsed; a token minted on one store is worthless on another.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(r, cfg, verifier)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(seedClaims(r.Context(), claims, logg)))
		})
	}
}

// OptionalAuth attaches claims when a valid token is present and lets guests
// through untouched. Checkout uses it: orders work for guests, but a signed-in
// customer's ID rides along.
func OptionalAuth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.TrimSpace(r.Header.Get("Authorization")) == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := authenticate(r, cfg, verifier)
			if err != nil {
				// A stale token degrades to a guest request rather than
				// blocking the page.
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(seedClaims(r.Context(), claims, logg)))
		})
	}
}

func authenticate(r *http.Request, cfg config.JWTConfig, verifier session.AccessSessionChecker) (*pkgAuth.AccessTokenClaims, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	token := raw
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}

	if tenantCfg := TenantFromContext(r.Context()); tenantCfg != nil && claims.TenantSlug != tenantCfg.Subdomain {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "token issued for a different store")
	}

	if verifier != nil {
		ok, err := verifier.HasSession(r.Context(), claims.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
		}
	}

	return claims, nil
}

func seedClaims(ctx context.Context, claims *pkgAuth.AccessTokenClaims, logg *logger.Logger) context.Context {
	ctx = context.WithValue(ctx, ctxClaims, claims)
	if logg != nil {
		ctx = logg.WithCustomerID(ctx, claims.CustomerID)
	}
	return ctx
}
