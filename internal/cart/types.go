package cart

import "github.com/shopspring/decimal"

// Item is one cart line. Price is the unit price captured when the line was
// added; totals multiply it by Quantity.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
}

// LineTotal is the item's price times its quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
