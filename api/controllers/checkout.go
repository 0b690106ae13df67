package controllers

import (
	"net/http"

	"github.com/otofix/storefront-backend/api/middleware"
	"github.com/otofix/storefront-backend/api/responses"
	"github.com/otofix/storefront-backend/api/validators"
	"github.com/otofix/storefront-backend/internal/checkout"
	"github.com/otofix/storefront-backend/pkg/logger"
)

type promoCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

// GetQuote prices the cart for the order page, re-evaluating promotions
// first.
func GetQuote(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		sessionID := middleware.SessionIDFromContext(r.Context())

		quote, err := svc.FreshQuote(r.Context(), cfg, sessionID, middleware.CustomerIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// ApplyPromoCode submits a discount code against the current cart.
func ApplyPromoCode(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		sessionID := middleware.SessionIDFromContext(r.Context())

		var payload promoCodeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.ApplyPromoCode(r.Context(), cfg, sessionID, middleware.CustomerIDFromContext(r.Context()), payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// RemovePromoCode drops the applied code and reprices without it.
func RemovePromoCode(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		sessionID := middleware.SessionIDFromContext(r.Context())

		quote, err := svc.RemovePromoCode(r.Context(), cfg, sessionID, middleware.CustomerIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// SubmitOrder posts the order to the backend. Guests submit with just a name,
// phone, and address; signed-in customers get their ID attached.
func SubmitOrder(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		sessionID := middleware.SessionIDFromContext(r.Context())

		var payload checkout.OrderDetails
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if customerID := middleware.CustomerIDFromContext(r.Context()); customerID != "" {
			payload.CustomerID = customerID
		}

		confirmation, err := svc.SubmitOrder(r.Context(), cfg, sessionID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, confirmation)
	}
}
