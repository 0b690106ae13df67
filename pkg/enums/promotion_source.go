package enums

import "fmt"

// PromotionSource tags how a discount was earned.
type PromotionSource string

const (
	PromotionSourceAutomatic PromotionSource = "AUTOMATIC"
	PromotionSourceCode      PromotionSource = "CODE"
	PromotionSourceQuantity  PromotionSource = "QUANTITY"
)

var validPromotionSources = []PromotionSource{
	PromotionSourceAutomatic,
	PromotionSourceCode,
	PromotionSourceQuantity,
}

// String implements fmt.Stringer.
func (p PromotionSource) String() string {
	return string(p)
}

// IsValid reports whether the source is a known value.
func (p PromotionSource) IsValid() bool {
	for _, candidate := range validPromotionSources {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePromotionSource converts raw input into a PromotionSource.
func ParsePromotionSource(value string) (PromotionSource, error) {
	for _, candidate := range validPromotionSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promotion source %q", value)
}
