package controllers

import (
	"net/http"

	"github.com/otofix/storefront-backend/api/middleware"
	"github.com/otofix/storefront-backend/api/responses"
	pkgerrors "github.com/otofix/storefront-backend/pkg/errors"
	"github.com/otofix/storefront-backend/pkg/logger"
)

// StorefrontConfig serves the resolved tenant configuration for page shells:
// name, branding, currency, tax rate, and the Degraded flag when the ERP was
// unreachable.
func StorefrontConfig(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		if cfg == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "store not found"))
			return
		}
		responses.WriteSuccess(w, cfg)
	}
}
