package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/otofix/storefront-backend/pkg/storage"
	"github.com/shopspring/decimal"
)

const storageKey = "wishlist"

// Item is one saved product. AddedAt records when the visitor first saved it;
// re-saving an already saved product keeps the original timestamp.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	AddedAt   time.Time       `json:"addedAt"`
}

// Store keeps one wishlist per tenant inside a single visitor-scoped record,
// mirroring the cart's layout.
type Store struct {
	kv  storage.KV
	now func() time.Time
}

func NewStore(kv storage.KV) (*Store, error) {
	if kv == nil {
		return nil, errors.New("wishlist: storage is required")
	}
	return &Store{kv: kv, now: time.Now}, nil
}

// Items returns the tenant's saved products, never nil.
func (s *Store) Items(ctx context.Context, slug string) ([]Item, error) {
	lists, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	items := lists[slug]
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// AddItem saves the product. Saving an already saved product is a no-op; there
// are no quantities on a wishlist.
func (s *Store) AddItem(ctx context.Context, slug string, item Item) error {
	if item.ProductID == "" {
		return errors.New("wishlist: product id is required")
	}
	return s.mutate(ctx, slug, func(items []Item) []Item {
		for _, existing := range items {
			if existing.ProductID == item.ProductID {
				return items
			}
		}
		if item.AddedAt.IsZero() {
			item.AddedAt = s.now()
		}
		return append(items, item)
	})
}

// RemoveItem drops the product. Removing an absent product is a no-op.
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

// Toggle adds the product when absent and removes it when present, returning
// whether the product is saved afterwards. It backs the heart button on
// product cards.
func (s *Store) Toggle(ctx context.Context, slug string, item Item) (bool, error) {
	saved, err := s.Contains(ctx, slug, item.ProductID)
	if err != nil {
		return false, err
	}
	if saved {
		return false, s.RemoveItem(ctx, slug, item.ProductID)
	}
	return true, s.AddItem(ctx, slug, item)
}

// Contains reports whether the product is saved for the tenant.
func (s *Store) Contains(ctx context.Context, slug, productID string) (bool, error) {
	items, err := s.Items(ctx, slug)
	if err != nil {
		return false, err
	}
	for _, item := range items {
		if item.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

// Clear empties the tenant's wishlist.
func (s *Store) Clear(ctx context.Context, slug string) error {
	return s.mutate(ctx, slug, func([]Item) []Item {
		return nil
	})
}

// ItemCount is the number of saved products for the tenant.
func (s *Store) ItemCount(ctx context.Context, slug string) (int, error) {
	items, err := s.Items(ctx, slug)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (s *Store) mutate(ctx context.Context, slug string, fn func([]Item) []Item) error {
	lists, err := s.load(ctx)
	if err != nil {
		return err
	}
	next := fn(lists[slug])
	if len(next) == 0 {
		delete(lists, slug)
	} else {
		lists[slug] = next
	}
	return s.save(ctx, lists)
}

func (s *Store) load(ctx context.Context) (map[string][]Item, error) {
	raw, err := s.kv.Get(ctx, storageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return map[string][]Item{}, nil
		}
		return nil, fmt.Errorf("loading wishlist: %w", err)
	}

	lists := map[string][]Item{}
	if err := json.Unmarshal(raw, &lists); err != nil {
		return map[string][]Item{}, nil
	}
	return lists, nil
}

func (s *Store) save(ctx context.Context, lists map[string][]Item) error {
	if len(lists) == 0 {
		if err := s.kv.Delete(ctx, storageKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("clearing wishlist: %w", err)
		}
		return nil
	}
	encoded, err := json.Marshal(lists)
	if err != nil {
		return fmt.Errorf("encoding wishlist: %w", err)
	}
	if err := s.kv.Set(ctx, storageKey, encoded); err != nil {
		return fmt.Errorf("saving wishlist: %w", err)
	}
	return nil
}
