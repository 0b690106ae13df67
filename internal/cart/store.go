package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/otofix/storefront-backend/pkg/storage"
	"github.com/shopspring/decimal"
)

const storageKey = "cart"

// Store keeps one cart per tenant inside a single visitor-scoped record, so a
// visitor browsing two storefronts never sees lines leak between them.
type Store struct {
	kv storage.KV
}

func NewStore(kv storage.KV) (*Store, error) {
	if kv == nil {
		return nil, errors.New("cart: storage is required")
	}
	return &Store{kv: kv}, nil
}

// Items returns the tenant's cart lines. The result is never nil.
func (s *Store) Items(ctx context.Context, slug string) ([]Item, error) {
	carts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	items := carts[slug]
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// AddItem merges the line into the tenant's cart. An existing line for the
// same product gains the quantity; a new product appends. Quantities below one
// are treated as one.
func (s *Store) AddItem(ctx context.Context, slug string, item Item) error {
	if item.ProductID == "" {
		return errors.New("cart: product id is required")
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	return s.mutate(ctx, slug, func(items []Item) []Item {
		for i := range items {
			if items[i].ProductID == item.ProductID {
				items[i].Quantity += item.Quantity
				return items
			}
		}
		return append(items, item)
	})
}

// UpdateQuantity sets the line's quantity. Zero or negative removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, slug, productID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, slug, productID)
	}
	return s.mutate(ctx, slug, func(items []Item) []Item {
		for i := range items {
			if items[i].ProductID == productID {
				items[i].Quantity = quantity
			}
		}
		return items
	})
}

// RemoveItem drops the product's line. Removing an absent product is a no-op.
func (s *Store) RemoveItem(ctx context.Context, slug, productID string) error {
	return s.mutate(ctx, slug, func(items []Item) []Item {
		kept := items[:0]
		for _, item := range items {
			if item.ProductID != productID {
				kept = append(kept, item)
			}
		}
		return kept
	})
}

// Clear empties the tenant's cart. Other tenants' carts in the same record are
// untouched.
func (s *Store) Clear(ctx context.Context, slug string) error {
	return s.mutate(ctx, slug, func([]Item) []Item {
		return nil
	})
}

// Total is the sum of line totals across the tenant's cart.
func (s *Store) Total(ctx context.Context, slug string) (decimal.Decimal, error) {
	items, err := s.Items(ctx, slug)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total, nil
}

// ItemCount is the sum of quantities across the tenant's cart, for the header
// badge.
func (s *Store) ItemCount(ctx context.Context, slug string) (int, error) {
	items, err := s.Items(ctx, slug)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count, nil
}

func (s *Store) mutate(ctx context.Context, slug string, fn func([]Item) []Item) error {
	carts, err := s.load(ctx)
	if err != nil {
		return err
	}
	next := fn(carts[slug])
	if len(next) == 0 {
		delete(carts, slug)
	} else {
		carts[slug] = next
	}
	return s.save(ctx, carts)
}

func (s *Store) load(ctx context.Context) (map[string][]Item, error) {
	raw, err := s.kv.Get(ctx, storageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return map[string][]Item{}, nil
		}
		return nil, fmt.Errorf("loading cart: %w", err)
	}

	carts := map[string][]Item{}
	if err := json.Unmarshal(raw, &carts); err != nil {
		// A corrupt record resets to empty rather than wedging the visitor.
		return map[string][]Item{}, nil
	}
	return carts, nil
}

func (s *Store) save(ctx context.Context, carts map[string][]Item) error {
	if len(carts) == 0 {
		if err := s.kv.Delete(ctx, storageKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("clearing cart: %w", err)
		}
		return nil
	}
	encoded, err := json.Marshal(carts)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}
	if err := s.kv.Set(ctx, storageKey, encoded); err != nil {
		return fmt.Errorf("saving cart: %w", err)
	}
	return nil
}
