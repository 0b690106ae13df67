package erp

import (
	"github.com/otofix/storefront-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// TenantConfig is the per-store configuration served by the ERP. Field names
// follow the ERP's JSON contract (camelCase).
type TenantConfig struct {
	TenantID     string          `json:"tenantId"`
	Subdomain    string          `json:"subdomain"`
	Name         string          `json:"name"`
	Currency     string          `json:"currency"`
	TaxRate      decimal.Decimal `json:"taxRate"`
	PrimaryColor string          `json:"primaryColor"`
	LogoURL      string          `json:"logoUrl,omitempty"`
	Features     map[string]bool `json:"features,omitempty"`
}

// Product is a catalog entry as served by the ERP.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Description string          `json:"description,omitempty"`
	Brand       string          `json:"brand,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	InStock     bool            `json:"inStock"`
}

// PageMeta mirrors the ERP's list pagination envelope.
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	Data []Product `json:"data"`
	Meta PageMeta  `json:"meta"`
}

// ProductQuery narrows a catalog listing.
type ProductQuery struct {
	Category string
	Brand    string
	Search   string
	Page     int
	Limit    int
}

// Category is a catalog grouping.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// Brand is a parts manufacturer.
type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// AppliedPromotion is one backend-evaluated discount for the current cart
// snapshot. DiscountAmount is an absolute monetary amount, never a rate.
type AppliedPromotion struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	DiscountType   string                `json:"discountType"`
	DiscountValue  decimal.Decimal       `json:"discountValue"`
	DiscountAmount decimal.Decimal       `json:"discountAmount"`
	Source         enums.PromotionSource `json:"source"`
	Code           string                `json:"code,omitempty"`
	ProductID      string                `json:"productId,omitempty"`
	ProductName    string                `json:"productName,omitempty"`
	MinQuantity    int                   `json:"minQuantity,omitempty"`
}

// PromotionCheckItem is one cart line submitted for promotion evaluation.
type PromotionCheckItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// PromotionCheckRequest is the payload for POST /promotions/check.
type PromotionCheckRequest struct {
	Items      []PromotionCheckItem `json:"items"`
	CustomerID string               `json:"customerId,omitempty"`
	PromoCode  string               `json:"promoCode,omitempty"`
}

// PromotionCheckResult carries every currently applicable discount plus a
// per-code error when a submitted code was rejected. A code error does not
// invalidate promotions from other sources.
type PromotionCheckResult struct {
	Promotions []AppliedPromotion `json:"promotions"`
	CodeError  string             `json:"codeError,omitempty"`
}

// OrderItem is a line item on the order payload. Prices are deliberately not
// sent; the ERP reprices from its own catalog at order creation.
type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderPromotion is the audit record of a discount applied at checkout.
type OrderPromotion struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
}

// OrderRequest is the payload for POST /orders.
type OrderRequest struct {
	CustomerID        string           `json:"customerId,omitempty"`
	CustomerName      string           `json:"customerName"`
	CustomerPhone     string           `json:"customerPhone"`
	ShippingAddress   string           `json:"shippingAddress"`
	Items             []OrderItem      `json:"items"`
	Subtotal          decimal.Decimal  `json:"subtotal"`
	TaxAmount         decimal.Decimal  `json:"taxAmount"`
	TaxRate           decimal.Decimal  `json:"taxRate"`
	DiscountAmount    decimal.Decimal  `json:"discountAmount"`
	AppliedPromotions []OrderPromotion `json:"appliedPromotions"`
	Total             decimal.Decimal  `json:"total"`
	ShippingAmount    decimal.Decimal  `json:"shippingAmount"`
}

// OrderConfirmation is the ERP's answer to a successful order submission.
type OrderConfirmation struct {
	InvoiceNumber string `json:"invoiceNumber"`
	OrderID       string `json:"orderId,omitempty"`
	Status        string `json:"status,omitempty"`
}

// Customer is the ERP's customer record, consumed by account pages.
type Customer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Credentials is the login payload for the ERP's customer auth endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the payload for creating a customer account.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// Address is a saved shipping address.
type Address struct {
	ID       string `json:"id,omitempty"`
	Title    string `json:"title"`
	FullText string `json:"fullText"`
	City     string `json:"city,omitempty"`
	District string `json:"district,omitempty"`
}

// Vehicle is a saved customer vehicle used for part-fitment filtering.
type Vehicle struct {
	ID    string `json:"id,omitempty"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
	Plate string `json:"plate,omitempty"`
}
