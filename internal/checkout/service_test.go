package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/otofix/storefront-backend/internal/cart"
	"github.com/otofix/storefront-backend/internal/erp"
	"github.com/otofix/storefront-backend/internal/tenant"
	"github.com/otofix/storefront-backend/pkg/config"
	pkgerrors "github.com/otofix/storefront-backend/pkg/errors"
	"github.com/otofix/storefront-backend/pkg/storage"
	"github.com/shopspring/decimal"
)

type stubSubmitter struct {
	gotRequest *erp.OrderRequest
	err        error
}

func (s *stubSubmitter) CreateOrder(_ context.Context, _ string, req erp.OrderRequest) (*erp.OrderConfirmation, error) {
	s.gotRequest = &req
	if s.err != nil {
		return nil, s.err
	}
	return &erp.OrderConfirmation{InvoiceNumber: "INV-2026-0042"}, nil
}

func testTenant() *tenant.Config {
	return &tenant.Config{TenantConfig: erp.TenantConfig{
		TenantID:  "t-1",
		Subdomain: "oto-parts",
		Currency:  "TRY",
		TaxRate:   decimal.NewFromInt(18),
	}}
}

func newTestService(t *testing.T, kv storage.KV, submitter orderSubmitter, checker promotionChecker) *Service {
	t.Helper()
	if checker == nil {
		checker = &funcChecker{fn: func(erp.PromotionCheckRequest) (*erp.PromotionCheckResult, error) {
			return &erp.PromotionCheckResult{}, nil
		}}
	}
	refresher, err := NewRefresher(checker, nil, nil, config.CheckoutConfig{
		PromotionDebounce: time.Millisecond,
		PromotionTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("new refresher: %v", err)
	}
	svc, err := NewService(kv, submitter, refresher, nil, true)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedCart(t *testing.T, kv storage.KV, sessionID string) {
	t.Helper()
	store, err := cart.NewStore(storage.WithPrefix(kv, sessionID))
	if err != nil {
		t.Fatalf("cart store: %v", err)
	}
	ctx := context.Background()
	if err := store.AddItem(ctx, "oto-parts", cart.Item{ProductID: "p-1", Name: "Brake Pad", Price: decimal.NewFromInt(450), Quantity: 2}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.AddItem(ctx, "oto-parts", cart.Item{ProductID: "p-2", Name: "Oil Filter", Price: decimal.NewFromInt(800), Quantity: 2}); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func cartCount(t *testing.T, kv storage.KV, sessionID string) int {
	t.Helper()
	store, _ := cart.NewStore(storage.WithPrefix(kv, sessionID))
	count, err := store.ItemCount(context.Background(), "oto-parts")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return count
}

func TestSubmitOrderClearsCartOnSuccess(t *testing.T) {
	t.Parallel()

	kv := storage.NewMemory()
	seedCart(t, kv, "sess-1")
	submitter := &stubSubmitter{}
	svc := newTestService(t, kv, submitter, nil)

	conf, err := svc.SubmitOrder(context.Background(), testTenant(), "sess-1", OrderDetails{
		CustomerName:    "Deniz",
		CustomerPhone:   "+90 555 000 00 00",
		ShippingAddress: "Sanayi Mah. 4. Cad. No:7, Ankara",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if conf.InvoiceNumber != "INV-2026-0042" {
		t.Fatalf("unexpected confirmation %+v", conf)
	}
	if got := cartCount(t, kv, "sess-1"); got != 0 {
		t.Fatalf("cart must be cleared after success, got count %d", got)
	}

	req := submitter.gotRequest
	if req == nil {
		t.Fatal("order never reached the backend")
	}
	if !req.Subtotal.Equal(decimal.NewFromInt(2500)) || !req.TaxAmount.Equal(decimal.NewFromInt(450)) || !req.Total.Equal(decimal.NewFromInt(2950)) {
		t.Fatalf("unexpected pricing on order: %+v", req)
	}
	for _, item := range req.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			t.Fatalf("order items carry productId and quantity only: %+v", item)
		}
	}
}

func TestSubmitOrderKeepsCartOnFailure(t *testing.T) {
	t.Parallel()

	kv := storage.NewMemory()
	seedCart(t, kv, "sess-1")
	submitter := &stubSubmitter{err: &erp.StatusError{StatusCode: 422, Message: "insufficient stock for SKU BP-450"}}
	svc := newTestService(t, kv, submitter, nil)

	_, err := svc.SubmitOrder(context.Background(), testTenant(), "sess-1", OrderDetails{
		CustomerName:    "Deniz",
		CustomerPhone:   "+90 555 000 00 00",
		ShippingAddress: "Sanayi Mah. 4. Cad. No:7, Ankara",
	})
	if err == nil {
		t.Fatal("expected submission failure")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Message() != "insufficient stock for SKU BP-450" {
		t.Fatalf("expected verbatim backend message, got %v", err)
	}
	if got := cartCount(t, kv, "sess-1"); got != 4 {
		t.Fatalf("cart must survive a failed submission, got count %d", got)
	}
}

func TestSubmitOrderRejectsEmptyCart(t *testing.T) {
	t.Parallel()

	kv := storage.NewMemory()
	svc := newTestService(t, kv, &stubSubmitter{}, nil)

	_, err := svc.SubmitOrder(context.Background(), testTenant(), "sess-1", OrderDetails{
		CustomerName:    "Deniz",
		CustomerPhone:   "+90 555 000 00 00",
		ShippingAddress: "Sanayi Mah. 4. Cad. No:7, Ankara",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}
}

func TestSubmitOrderCarriesPromotions(t *testing.T) {
	t.Parallel()

	kv := storage.NewMemory()
	seedCart(t, kv, "sess-1")
	checker := &funcChecker{fn: func(erp.PromotionCheckRequest) (*erp.PromotionCheckResult, error) {
		return &erp.PromotionCheckResult{Promotions: []erp.AppliedPromotion{automaticPromo()}}, nil
	}}
	submitter := &stubSubmitter{}
	svc := newTestService(t, kv, submitter, checker)

	if _, err := svc.FreshQuote(context.Background(), testTenant(), "sess-1", ""); err != nil {
		t.Fatalf("fresh quote: %v", err)
	}
	if _, err := svc.SubmitOrder(context.Background(), testTenant(), "sess-1", OrderDetails{
		CustomerName:    "Deniz",
		CustomerPhone:   "+90 555 000 00 00",
		ShippingAddress: "Sanayi Mah. 4. Cad. No:7, Ankara",
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	req := submitter.gotRequest
	if len(req.AppliedPromotions) != 1 || !req.DiscountAmount.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("promotions must ride on the order, got %+v", req)
	}
	if !req.Total.Equal(decimal.NewFromInt(2650)) {
		t.Fatalf("expected discounted total 2650, got %s", req.Total)
	}
}

func TestQuoteOnEmptyCart(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, storage.NewMemory(), &stubSubmitter{}, nil)
	quote, err := svc.Quote(context.Background(), testTenant(), "sess-1")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if len(quote.Items) != 0 || !quote.Total.Equal(decimal.Zero) {
		t.Fatalf("unexpected quote %+v", quote)
	}
}
