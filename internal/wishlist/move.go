package wishlist

import (
	"context"

	"github.com/otofix/storefront-backend/internal/cart"
)

type cartAdder interface {
	AddItem(ctx context.Context, slug string, item cart.Item) error
}

// MoveToCart adds the saved product to the cart with quantity one and then
// removes it from the wishlist. When the product is already in the cart the
// add merges per the cart's rules. If the cart write fails the wishlist entry
// stays put.
func (s *Store) MoveToCart(ctx context.Context, carts cartAdder, slug, productID string) error {
	items, err := s.Items(ctx, slug)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.ProductID != productID {
			continue
		}
		line := cart.Item{
			ProductID: item.ProductID,
			Name:      item.Name,
			SKU:       item.SKU,
			Price:     item.Price,
			Image:     item.Image,
			Quantity:  1,
		}
		if err := carts.AddItem(ctx, slug, line); err != nil {
			return err
		}
		return s.RemoveItem(ctx, slug, productID)
	}
	// Moving an absent product is a no-op, like removing one.
	return nil
}
