package checkout

import (
	"context"
	"errors"

	"github.com/otofix/storefront-backend/internal/cart"
	"github.com/otofix/storefront-backend/internal/erp"
	"github.com/otofix/storefront-backend/internal/tenant"
	pkgerrors "github.com/otofix/storefront-backend/pkg/errors"
	"github.com/otofix/storefront-backend/pkg/logger"
	"github.com/otofix/storefront-backend/pkg/storage"
)

type orderSubmitter interface {
	CreateOrder(ctx context.Context, slug string, req erp.OrderRequest) (*erp.OrderConfirmation, error)
}

// OrderDetails carries the fields the visitor fills in on the order form.
// Prices never travel here; they come from the priced quote.
type OrderDetails struct {
	CustomerID      string `json:"customerId,omitempty"`
	CustomerName    string `json:"customerName" validate:"required"`
	CustomerPhone   string `json:"customerPhone" validate:"required"`
	ShippingAddress string `json:"shippingAddress" validate:"required"`
}

// Service prices carts and submits orders. Visitor state lives in the shared
// key-value adapter, scoped per session by prefix.
type Service struct {
	kv        storage.KV
	erp       orderSubmitter
	refresher *Refresher
	logg      *logger.Logger
	clamp     bool
}

func NewService(kv storage.KV, submitter orderSubmitter, refresher *Refresher, logg *logger.Logger, clamp bool) (*Service, error) {
	if kv == nil {
		return nil, errors.New("checkout: storage is required")
	}
	if submitter == nil {
		return nil, errors.New("checkout: order submitter is required")
	}
	if refresher == nil {
		return nil, errors.New("checkout: refresher is required")
	}
	return &Service{kv: kv, erp: submitter, refresher: refresher, logg: logg, clamp: clamp}, nil
}

// Refresher exposes the promotion refresher so cart handlers can schedule
// re-evaluations after mutations.
func (s *Service) Refresher() *Refresher {
	return s.refresher
}

// Quote prices the visitor's cart with the last known promotion snapshot.
func (s *Service) Quote(ctx context.Context, cfg *tenant.Config, sessionID string) (*Quote, error) {
	items, err := s.cartFor(sessionID).Items(ctx, cfg.Subdomain)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart for quote")
	}
	snapshot := s.refresher.Snapshot(cfg.Subdomain, sessionID)
	quote := BuildQuote(items, cfg.TaxRate, snapshot.Promotions, cfg.Currency, s.clamp)
	quote.PromoCode = snapshot.PromoCode
	quote.CodeError = snapshot.CodeError
	return &quote, nil
}

// FreshQuote re-evaluates promotions before pricing, for the order page load.
// When the re-evaluation fails the quote falls back to the last known
// snapshot rather than erroring.
func (s *Service) FreshQuote(ctx context.Context, cfg *tenant.Config, sessionID, customerID string) (*Quote, error) {
	items, err := s.cartFor(sessionID).Items(ctx, cfg.Subdomain)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart for quote")
	}
	snapshot, err := s.refresher.Refresh(ctx, cfg.Subdomain, sessionID, customerID, items)
	if err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithTenant(ctx, cfg.Subdomain), "quote using last known promotions")
	}
	quote := BuildQuote(items, cfg.TaxRate, snapshot.Promotions, cfg.Currency, s.clamp)
	quote.PromoCode = snapshot.PromoCode
	quote.CodeError = snapshot.CodeError
	return &quote, nil
}

// ApplyPromoCode submits the code and reprices. A rejected code surfaces as
// Quote.CodeError while other discounts stay applied.
func (s *Service) ApplyPromoCode(ctx context.Context, cfg *tenant.Config, sessionID, customerID, code string) (*Quote, error) {
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code is required")
	}
	items, err := s.cartFor(sessionID).Items(ctx, cfg.Subdomain)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart for promo check")
	}
	snapshot, err := s.refresher.ApplyCode(ctx, cfg.Subdomain, sessionID, customerID, items, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promotion check unavailable")
	}
	quote := BuildQuote(items, cfg.TaxRate, snapshot.Promotions, cfg.Currency, s.clamp)
	quote.PromoCode = snapshot.PromoCode
	quote.CodeError = snapshot.CodeError
	return &quote, nil
}

// RemovePromoCode drops the applied code and reprices without it.
func (s *Service) RemovePromoCode(ctx context.Context, cfg *tenant.Config, sessionID, customerID string) (*Quote, error) {
	items, err := s.cartFor(sessionID).Items(ctx, cfg.Subdomain)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart for promo removal")
	}
	snapshot, err := s.refresher.RemoveCode(ctx, cfg.Subdomain, sessionID, customerID, items)
	if err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithTenant(ctx, cfg.Subdomain), "re-evaluation after code removal failed")
	}
	quote := BuildQuote(items, cfg.TaxRate, snapshot.Promotions, cfg.Currency, s.clamp)
	quote.PromoCode = snapshot.PromoCode
	quote.CodeError = snapshot.CodeError
	return &quote, nil
}

// SubmitOrder prices the cart one last time and posts the order. On success
// the cart and promotion state are cleared; on failure both stay untouched so
// the visitor can retry, and the backend's own message travels up verbatim.
func (s *Service) SubmitOrder(ctx context.Context, cfg *tenant.Config, sessionID string, details OrderDetails) (*erp.OrderConfirmation, error) {
	carts := s.cartFor(sessionID)
	items, err := carts.Items(ctx, cfg.Subdomain)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart for order")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	snapshot := s.refresher.Snapshot(cfg.Subdomain, sessionID)
	quote := BuildQuote(items, cfg.TaxRate, snapshot.Promotions, cfg.Currency, s.clamp)

	confirmation, err := s.erp.CreateOrder(ctx, cfg.Subdomain, buildOrderRequest(details, quote))
	if err != nil {
		var statusErr *erp.StatusError
		if errors.As(err, &statusErr) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, statusErr.Message).WithDetails(statusErr.Message)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order submission failed")
	}

	if err := carts.Clear(ctx, cfg.Subdomain); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithTenant(ctx, cfg.Subdomain), "cart clear after order failed")
	}
	s.refresher.Reset(cfg.Subdomain, sessionID)
	return confirmation, nil
}

func (s *Service) cartFor(sessionID string) *cart.Store {
	store, _ := cart.NewStore(storage.WithPrefix(s.kv, sessionID))
	return store
}

func buildOrderRequest(details OrderDetails, quote Quote) erp.OrderRequest {
	orderItems := make([]erp.OrderItem, 0, len(quote.Items))
	for _, item := range quote.Items {
		orderItems = append(orderItems, erp.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	promotions := make([]erp.OrderPromotion, 0, len(quote.Promotions))
	for _, promo := range quote.Promotions {
		promotions = append(promotions, erp.OrderPromotion{
			ID:             promo.ID,
			Name:           promo.Name,
			DiscountAmount: promo.DiscountAmount,
		})
	}
	return erp.OrderRequest{
		CustomerID:        details.CustomerID,
		CustomerName:      details.CustomerName,
		CustomerPhone:     details.CustomerPhone,
		ShippingAddress:   details.ShippingAddress,
		Items:             orderItems,
		Subtotal:          quote.Subtotal,
		TaxAmount:         quote.TaxAmount,
		TaxRate:           quote.TaxRate,
		DiscountAmount:    quote.DiscountAmount,
		AppliedPromotions: promotions,
		Total:             quote.Total,
	}
}
