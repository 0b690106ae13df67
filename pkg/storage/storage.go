package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when a key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// KV is the durable key-value adapter behind the cart and wishlist stores.
// Implementations must treat values as opaque bytes and keep writes
// last-write-wins; no cross-client merge logic is expected.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// WithPrefix namespaces every key of the wrapped adapter. The storefront uses
// it to scope cart/wishlist state to a visitor session.
func WithPrefix(kv KV, prefix string) KV {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return kv
	}
	return &prefixed{kv: kv, prefix: prefix + ":"}
}

type prefixed struct {
	kv     KV
	prefix string
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.kv.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.kv.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.kv.Delete(ctx, p.prefix+key)
}
