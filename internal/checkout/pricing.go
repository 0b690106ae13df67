package checkout

import (
	"github.com/otofix/storefront-backend/internal/cart"
	"github.com/otofix/storefront-backend/internal/erp"
	"github.com/otofix/storefront-backend/internal/tenant"
	"github.com/shopspring/decimal"
)

// Quote is the fully priced checkout summary rendered on the order page.
// Discounts come exclusively from backend-evaluated promotions; the service
// never invents discount math of its own.
type Quote struct {
	Items          []cart.Item            `json:"items"`
	Subtotal       decimal.Decimal        `json:"subtotal"`
	TaxRate        decimal.Decimal        `json:"taxRate"`
	TaxAmount      decimal.Decimal        `json:"taxAmount"`
	DiscountAmount decimal.Decimal        `json:"discountAmount"`
	Promotions     []erp.AppliedPromotion `json:"promotions"`
	Total          decimal.Decimal        `json:"total"`
	Currency       string                 `json:"currency"`
	PromoCode      string                 `json:"promoCode,omitempty"`
	CodeError      string                 `json:"codeError,omitempty"`
}

// BuildQuote prices the cart: subtotal plus tax minus the sum of promotion
// discount amounts. A non-positive tax rate falls back to the default. With
// clamp set, oversized discounts floor the total at zero instead of going
// negative.
func BuildQuote(items []cart.Item, taxRate decimal.Decimal, promotions []erp.AppliedPromotion, currency string, clamp bool) Quote {
	if items == nil {
		items = []cart.Item{}
	}
	if promotions == nil {
		promotions = []erp.AppliedPromotion{}
	}
	if taxRate.LessThanOrEqual(decimal.Zero) {
		taxRate = tenant.DefaultTaxRate
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	taxAmount := subtotal.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)

	discount := decimal.Zero
	for _, promo := range promotions {
		discount = discount.Add(promo.DiscountAmount)
	}

	total := subtotal.Add(taxAmount).Sub(discount)
	if clamp && total.IsNegative() {
		total = decimal.Zero
	}

	return Quote{
		Items:          items,
		Subtotal:       subtotal,
		TaxRate:        taxRate,
		TaxAmount:      taxAmount,
		DiscountAmount: discount,
		Promotions:     promotions,
		Total:          total,
		Currency:       currency,
	}
}
