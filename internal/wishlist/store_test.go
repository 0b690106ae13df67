package wishlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/otofix/storefront-backend/internal/cart"
	"github.com/otofix/storefront-backend/pkg/storage"
	"github.com/shopspring/decimal"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(storage.NewMemory())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestAddItemIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	first := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return first }

	item := Item{ProductID: "p-1", Name: "Brake Pad", Price: decimal.NewFromInt(450)}
	if err := store.AddItem(ctx, "oto-parts", item); err != nil {
		t.Fatalf("add: %v", err)
	}

	store.now = func() time.Time { return first.Add(time.Hour) }
	if err := store.AddItem(ctx, "oto-parts", item); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	items, _ := store.Items(ctx, "oto-parts")
	if len(items) != 1 {
		t.Fatalf("expected one entry, got %d", len(items))
	}
	if !items[0].AddedAt.Equal(first) {
		t.Fatalf("re-adding must keep the original timestamp, got %s", items[0].AddedAt)
	}
}

func TestToggleFlipsMembership(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	item := Item{ProductID: "p-1", Name: "Brake Pad", Price: decimal.NewFromInt(450)}

	saved, err := store.Toggle(ctx, "oto-parts", item)
	if err != nil || !saved {
		t.Fatalf("first toggle should save: saved=%v err=%v", saved, err)
	}
	saved, err = store.Toggle(ctx, "oto-parts", item)
	if err != nil || saved {
		t.Fatalf("second toggle should remove: saved=%v err=%v", saved, err)
	}
	count, _ := store.ItemCount(ctx, "oto-parts")
	if count != 0 {
		t.Fatalf("expected empty wishlist, got %d", count)
	}
}

func TestTenantIsolation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	_ = store.AddItem(ctx, "oto-parts", Item{ProductID: "p-1", Price: decimal.NewFromInt(450)})
	_ = store.AddItem(ctx, "yedek-dunyasi", Item{ProductID: "p-9", Price: decimal.NewFromInt(90)})

	if err := store.Clear(ctx, "oto-parts"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	theirs, _ := store.Items(ctx, "yedek-dunyasi")
	if len(theirs) != 1 {
		t.Fatalf("other tenant's wishlist must survive, got %+v", theirs)
	}
}

func TestMoveToCart(t *testing.T) {
	t.Parallel()

	kv := storage.NewMemory()
	wl, _ := NewStore(kv)
	carts, _ := cart.NewStore(kv)
	ctx := context.Background()

	_ = wl.AddItem(ctx, "oto-parts", Item{ProductID: "p-1", Name: "Brake Pad", Price: decimal.NewFromInt(450)})
	_ = carts.AddItem(ctx, "oto-parts", cart.Item{ProductID: "p-1", Name: "Brake Pad", Price: decimal.NewFromInt(450), Quantity: 2})

	if err := wl.MoveToCart(ctx, carts, "oto-parts", "p-1"); err != nil {
		t.Fatalf("move: %v", err)
	}

	lines, _ := carts.Items(ctx, "oto-parts")
	if len(lines) != 1 || lines[0].Quantity != 3 {
		t.Fatalf("expected cart line merged to quantity 3, got %+v", lines)
	}
	saved, _ := wl.Contains(ctx, "oto-parts", "p-1")
	if saved {
		t.Fatal("moved product must leave the wishlist")
	}
}

type failingCart struct{}

func (failingCart) AddItem(context.Context, string, cart.Item) error {
	return errors.New("cart write failed")
}

func TestMoveToCartKeepsWishlistOnCartFailure(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	_ = store.AddItem(ctx, "oto-parts", Item{ProductID: "p-1", Price: decimal.NewFromInt(450)})

	if err := store.MoveToCart(ctx, failingCart{}, "oto-parts", "p-1"); err == nil {
		t.Fatal("expected cart failure to propagate")
	}
	saved, _ := store.Contains(ctx, "oto-parts", "p-1")
	if !saved {
		t.Fatal("wishlist entry must survive a failed cart write")
	}
}

func TestMoveAbsentProductIsNoop(t *testing.T) {
	t.Parallel()

	kv := storage.NewMemory()
	wl, _ := NewStore(kv)
	carts, _ := cart.NewStore(kv)
	ctx := context.Background()

	if err := wl.MoveToCart(ctx, carts, "oto-parts", "ghost"); err != nil {
		t.Fatalf("move absent: %v", err)
	}
	count, _ := carts.ItemCount(ctx, "oto-parts")
	if count != 0 {
		t.Fatalf("cart must stay empty, got %d", count)
	}
}
