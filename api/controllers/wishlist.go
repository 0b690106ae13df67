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
	"github.com/otofix/storefront-backend/internal/wishlist"
	pkgerrors "github.com/otofix/storefront-backend/pkg/errors"
	"github.com/otofix/storefront-backend/pkg/logger"
	"github.com/otofix/storefront-backend/pkg/storage"
)

type wishlistView struct {
	Items     []wishlist.Item `json:"items"`
	ItemCount int             `json:"itemCount"`
}

type wishlistItemRequest struct {
	ProductID string          `json:"productId" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	SKU       string          `json:"sku,omitempty"`
	Price     decimal.Decimal `json:"price" validate:"required"`
	Image     string          `json:"image,omitempty"`
}

func (p wishlistItemRequest) toItem() wishlist.Item {
	return wishlist.Item{
		ProductID: p.ProductID,
		Name:      p.Name,
		SKU:       p.SKU,
		Price:     p.Price,
		Image:     p.Image,
	}
}

func visitorWishlist(r *http.Request, kv storage.KV) (*wishlist.Store, error) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "visitor session missing")
	}
	return wishlist.NewStore(storage.WithPrefix(kv, sessionID))
}

func writeWishlist(w http.ResponseWriter, r *http.Request, logg *logger.Logger, store *wishlist.Store, slug string) {
	items, err := store.Items(r.Context(), slug)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading wishlist"))
		return
	}
	responses.WriteSuccess(w, wishlistView{Items: items, ItemCount: len(items)})
}

// GetWishlist serves the visitor's saved products for this storefront.
func GetWishlist(kv storage.KV, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		store, err := visitorWishlist(r, kv)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeWishlist(w, r, logg, store, cfg.Subdomain)
	}
}

// AddWishlistItem saves a product; re-saving is a no-op.
func AddWishlistItem(kv storage.KV, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())

		var payload wishlistItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := visitorWishlist(r, kv)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.AddItem(r.Context(), cfg.Subdomain, payload.toItem()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving to wishlist"))
			return
		}
		writeWishlist(w, r, logg, store, cfg.Subdomain)
	}
}

// ToggleWishlistItem flips a product's saved state, backing the heart button.
func ToggleWishlistItem(kv storage.KV, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())

		var payload wishlistItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := visitorWishlist(r, kv)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		saved, err := store.Toggle(r.Context(), cfg.Subdomain, payload.toItem())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "toggling wishlist"))
			return
		}
		responses.WriteSuccess(w, map[string]bool{"saved": saved})
	}
}

// RemoveWishlistItem drops a saved product.
func RemoveWishlistItem(kv storage.KV, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		productID := chi.URLParam(r, "productID")

		store, err := visitorWishlist(r, kv)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.RemoveItem(r.Context(), cfg.Subdomain, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing from wishlist"))
			return
		}
		writeWishlist(w, r, logg, store, cfg.Subdomain)
	}
}

// MoveWishlistItemToCart adds the saved product to the cart and removes it
// from the wishlist, then queues a promotion re-evaluation.
func MoveWishlistItemToCart(kv storage.KV, refresher *checkout.Refresher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		productID := chi.URLParam(r, "productID")

		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "visitor session missing"))
			return
		}
		visitorKV := storage.WithPrefix(kv, sessionID)
		wishlistStore, err := wishlist.NewStore(visitorKV)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "opening wishlist"))
			return
		}
		cartStore, err := cart.NewStore(visitorKV)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "opening cart"))
			return
		}

		if err := wishlistStore.MoveToCart(r.Context(), cartStore, cfg.Subdomain, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "moving to cart"))
			return
		}

		scheduleRefresh(r, refresher, cartStore, cfg.Subdomain)
		writeWishlist(w, r, logg, wishlistStore, cfg.Subdomain)
	}
}
