package storage

import (
	"context"

	redisclient "github.com/otofix/storefront-backend/pkg/redis"
)

// RedisKV persists state through the shared Redis client. Entries carry no
// TTL: carts and wishlists survive until explicitly cleared.
type RedisKV struct {
	client *redisclient.Client
}

// NewRedis wraps the shared Redis client as a KV adapter.
func NewRedis(client *redisclient.Client) *RedisKV {
	return &RedisKV{client: client}
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.client.StateKey(key))
	if err != nil {
		if redisclient.IsNil(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(value), nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.client.StateKey(key), string(value), 0)
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.client.StateKey(key))
}
