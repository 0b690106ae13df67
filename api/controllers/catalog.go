package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/otofix/storefront-backend/api/middleware"
	"github.com/otofix/storefront-backend/api/responses"
	"github.com/otofix/storefront-backend/api/validators"
	"github.com/otofix/storefront-backend/internal/catalog"
	"github.com/otofix/storefront-backend/internal/erp"
	pkgerrors "github.com/otofix/storefront-backend/pkg/errors"
	"github.com/otofix/storefront-backend/pkg/logger"
)

const (
	maxPageSize  = 100
	maxSearchLen = 120
	maxFilterLen = 64
)

// ListProducts serves one page of the storefront catalog.
func ListProducts(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, maxPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := erp.ProductQuery{
			Category: validators.SanitizeString(r.URL.Query().Get("category"), maxFilterLen),
			Brand:    validators.SanitizeString(r.URL.Query().Get("brand"), maxFilterLen),
			Search:   validators.SanitizeString(r.URL.Query().Get("search"), maxSearchLen),
			Page:     page,
			Limit:    limit,
		}

		responses.WriteSuccess(w, svc.Products(r.Context(), cfg.Subdomain, query))
	}
}

// GetProduct serves a single catalog entry.
func GetProduct(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		id := chi.URLParam(r, "productID")
		if id == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		product, found := svc.Product(r.Context(), cfg.Subdomain, id)
		if !found {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ListCategories serves the tenant's catalog categories.
func ListCategories(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		responses.WriteSuccess(w, svc.Categories(r.Context(), cfg.Subdomain))
	}
}

// ListBrands serves the tenant's part manufacturers.
func ListBrands(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		responses.WriteSuccess(w, svc.Brands(r.Context(), cfg.Subdomain))
	}
}
