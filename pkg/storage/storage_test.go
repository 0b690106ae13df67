package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestMemoryRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := NewMemory()

	if _, err := kv.Get(ctx, "cart"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for fresh key, got %v", err)
	}

	if err := kv.Set(ctx, "cart", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := kv.Get(ctx, "cart")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Fatalf("unexpected value %s", got)
	}

	// Returned slice must be a copy, not an alias into the store.
	got[0] = 'X'
	again, err := kv.Get(ctx, "cart")
	if err != nil || string(again) != `{"a":1}` {
		t.Fatalf("stored value mutated through returned slice: %s %v", again, err)
	}

	if err := kv.Delete(ctx, "cart"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := kv.Get(ctx, "cart"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestWithPrefixIsolatesVisitors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	base := NewMemory()

	visitorA := WithPrefix(base, "visitor-a")
	visitorB := WithPrefix(base, "visitor-b")

	if err := visitorA.Set(ctx, "cart", []byte("a")); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, err := visitorB.Get(ctx, "cart"); err != ErrNotFound {
		t.Fatalf("visitor b should not see visitor a state, got %v", err)
	}
	got, err := visitorA.Get(ctx, "cart")
	if err != nil || string(got) != "a" {
		t.Fatalf("visitor a state lost: %s %v", got, err)
	}
}

func TestWithPrefixEmptyIsNoop(t *testing.T) {
	t.Parallel()
	base := NewMemory()
	if WithPrefix(base, "") != KV(base) {
		t.Fatal("empty prefix should return the wrapped adapter unchanged")
	}
}

func TestGormKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer kv.Close()

	if _, err := kv.Get(ctx, "wishlist"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := kv.Set(ctx, "wishlist", []byte("one")); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := kv.Set(ctx, "wishlist", []byte("two")); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	got, err := kv.Get(ctx, "wishlist")
	if err != nil || string(got) != "two" {
		t.Fatalf("expected upserted value, got %s %v", got, err)
	}

	if err := kv.Delete(ctx, "wishlist"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := kv.Get(ctx, "wishlist"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
