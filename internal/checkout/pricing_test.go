package checkout

import (
	"testing"

	"github.com/otofix/storefront-backend/internal/cart"
	"github.com/otofix/storefront-backend/internal/erp"
	"github.com/otofix/storefront-backend/internal/tenant"
	"github.com/otofix/storefront-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

func sampleItems() []cart.Item {
	return []cart.Item{
		{ProductID: "p-1", Name: "Brake Pad", Price: decimal.NewFromInt(450), Quantity: 2},
		{ProductID: "p-2", Name: "Oil Filter", Price: decimal.NewFromInt(800), Quantity: 2},
	}
}

func TestBuildQuoteWorkedExample(t *testing.T) {
	t.Parallel()

	promos := []erp.AppliedPromotion{{
		ID:             "promo-1",
		Name:           "Spring sale",
		DiscountAmount: decimal.NewFromInt(300),
		Source:         enums.PromotionSourceAutomatic,
	}}

	quote := BuildQuote(sampleItems(), decimal.NewFromInt(18), promos, "TRY", true)

	if !quote.Subtotal.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("subtotal: want 2500, got %s", quote.Subtotal)
	}
	if !quote.TaxAmount.Equal(decimal.NewFromInt(450)) {
		t.Fatalf("tax: want 450, got %s", quote.TaxAmount)
	}
	if !quote.DiscountAmount.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("discount: want 300, got %s", quote.DiscountAmount)
	}
	if !quote.Total.Equal(decimal.NewFromInt(2650)) {
		t.Fatalf("total: want 2650, got %s", quote.Total)
	}
}

func TestBuildQuoteDefaultsTaxRate(t *testing.T) {
	t.Parallel()

	quote := BuildQuote(sampleItems(), decimal.Zero, nil, "TRY", true)
	if !quote.TaxRate.Equal(tenant.DefaultTaxRate) {
		t.Fatalf("expected default tax rate, got %s", quote.TaxRate)
	}
	if !quote.TaxAmount.Equal(decimal.NewFromInt(450)) {
		t.Fatalf("tax: want 450, got %s", quote.TaxAmount)
	}
}

func TestBuildQuoteClampsAtZero(t *testing.T) {
	t.Parallel()

	items := []cart.Item{{ProductID: "p-1", Price: decimal.NewFromInt(100), Quantity: 1}}
	promos := []erp.AppliedPromotion{{ID: "promo-big", DiscountAmount: decimal.NewFromInt(500)}}

	clamped := BuildQuote(items, decimal.NewFromInt(18), promos, "TRY", true)
	if !clamped.Total.Equal(decimal.Zero) {
		t.Fatalf("expected clamped total 0, got %s", clamped.Total)
	}

	raw := BuildQuote(items, decimal.NewFromInt(18), promos, "TRY", false)
	if !raw.Total.Equal(decimal.NewFromInt(-382)) {
		t.Fatalf("expected raw total -382, got %s", raw.Total)
	}
}

func TestBuildQuoteEmptyCart(t *testing.T) {
	t.Parallel()

	quote := BuildQuote(nil, decimal.NewFromInt(18), nil, "TRY", true)
	if quote.Items == nil || quote.Promotions == nil {
		t.Fatal("slices must never be nil")
	}
	if !quote.Total.Equal(decimal.Zero) {
		t.Fatalf("empty cart totals zero, got %s", quote.Total)
	}
}

func TestBuildQuoteRoundsTax(t *testing.T) {
	t.Parallel()

	items := []cart.Item{{ProductID: "p-1", Price: decimal.RequireFromString("33.33"), Quantity: 1}}
	quote := BuildQuote(items, decimal.NewFromInt(18), nil, "TRY", true)
	if !quote.TaxAmount.Equal(decimal.RequireFromString("6.00")) {
		t.Fatalf("tax: want 6.00, got %s", quote.TaxAmount)
	}
}
