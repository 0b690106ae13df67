package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/otofix/storefront-backend/api/middleware"
	"github.com/otofix/storefront-backend/api/responses"
	"github.com/otofix/storefront-backend/api/validators"
	"github.com/otofix/storefront-backend/internal/cart"
	"github.com/otofix/storefront-backend/internal/checkout"
	pkgerrors "github.com/otofix/storefront-backend/pkg/errors"
	"github.com/otofix/storefront-backend/pkg/logger"
	"github.com/otofix/storefront-backend/pkg/storage"
)

type cartView struct {
	Items     []cart.Item     `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

type addCartItemRequest struct {
	ProductID string          `json:"productId" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	SKU       string          `json:"sku,omitempty"`
	Price     decimal.Decimal `json:"price" validate:"required"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func visitorCart(r *http.Request, kv storage.KV) (*cart.Store, error) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "visitor session missing")
	}
	return cart.NewStore(storage.WithPrefix(kv, sessionID))
}

func writeCart(w http.ResponseWriter, r *http.Request, logg *logger.Logger, store *cart.Store, slug string) {
	items, err := store.Items(r.Context(), slug)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart"))
		return
	}
	total := decimal.Zero
	count := 0
	for _, item := range items {
		total = total.Add(item.LineTotal())
		count += item.Quantity
	}
	responses.WriteSuccess(w, cartView{Items: items, Total: total, ItemCount: count})
}

func scheduleRefresh(r *http.Request, refresher *checkout.Refresher, store *cart.Store, slug string) {
	items, err := store.Items(r.Context(), slug)
	if err != nil {
		return
	}
	refresher.Schedule(slug, middleware.SessionIDFromContext(r.Context()), middleware.CustomerIDFromContext(r.Context()), items)
}

// GetCart serves the visitor's cart for the storefront being browsed.
func GetCart(kv storage.KV, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		store, err := visitorCart(r, kv)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCart(w, r, logg, store, cfg.Subdomain)
	}
}

// AddCartItem merges a line into the cart and queues a promotion
// re-evaluation.
func AddCartItem(kv storage.KV, refresher *checkout.Refresher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := visitorCart(r, kv)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item := cart.Item{
			ProductID: payload.ProductID,
			Name:      payload.Name,
			SKU:       payload.SKU,
			Price:     payload.Price,
			Image:     payload.Image,
			Quantity:  payload.Quantity,
		}
		if err := store.AddItem(r.Context(), cfg.Subdomain, item); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adding to cart"))
			return
		}

		scheduleRefresh(r, refresher, store, cfg.Subdomain)
		writeCart(w, r, logg, store, cfg.Subdomain)
	}
}

// UpdateCartItem sets a line's quantity; zero or below removes it.
func UpdateCartItem(kv storage.KV, refresher *checkout.Refresher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		productID := chi.URLParam(r, "productID")

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := visitorCart(r, kv)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.UpdateQuantity(r.Context(), cfg.Subdomain, productID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart"))
			return
		}

		scheduleRefresh(r, refresher, store, cfg.Subdomain)
		writeCart(w, r, logg, store, cfg.Subdomain)
	}
}

// RemoveCartItem drops a line from the cart.
func RemoveCartItem(kv storage.KV, refresher *checkout.Refresher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		productID := chi.URLParam(r, "productID")

		store, err := visitorCart(r, kv)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.RemoveItem(r.Context(), cfg.Subdomain, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing from cart"))
			return
		}

		scheduleRefresh(r, refresher, store, cfg.Subdomain)
		writeCart(w, r, logg, store, cfg.Subdomain)
	}
}

// ClearCart empties the visitor's cart for this storefront only.
func ClearCart(kv storage.KV, refresher *checkout.Refresher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())

		store, err := visitorCart(r, kv)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.Clear(r.Context(), cfg.Subdomain); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart"))
			return
		}

		scheduleRefresh(r, refresher, store, cfg.Subdomain)
		writeCart(w, r, logg, store, cfg.Subdomain)
	}
}
