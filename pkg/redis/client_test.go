package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestSetGetDelLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	if err := client.Set(ctx, "otofix:state:x", "value", 10*time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := client.Get(ctx, "otofix:state:x")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != "value" {
		t.Fatalf("expected stored value, got %q", got)
	}

	if err := client.Del(ctx, "otofix:state:x"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, "otofix:state:x"); !IsNil(err) {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.TenantConfigKey("oto-parts"); got != "otofix:tenant_cfg:oto-parts" {
		t.Fatalf("unexpected tenant config key %s", got)
	}
	if got := client.AccessSessionKey("abc"); got != "otofix:session:access:abc" {
		t.Fatalf("unexpected session key %s", got)
	}
	if got := client.StateKey("visitor-1", "cart"); got != "otofix:state:visitor-1:cart" {
		t.Fatalf("unexpected state key %s", got)
	}
	if got := client.StateKey("", "cart"); got != "otofix:state:cart" {
		t.Fatalf("state key should skip empty parts, got %s", got)
	}
}

func TestIncrWithTTL(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	for want := int64(1); want <= 3; want++ {
		count, err := client.IncrWithTTL(ctx, "otofix:rl:ip:login:1.2.3.4", time.Minute)
		if err != nil {
			t.Fatalf("incr failed: %v", err)
		}
		if count != want {
			t.Fatalf("expected count %d, got %d", want, count)
		}
	}
}

type mockCmdable struct {
	data map[string]string
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	var current int64
	fmt.Sscan(m.data[key], &current)
	current++
	m.data[key] = fmt.Sprint(current)
	return redis.NewIntResult(current, nil)
}

func (m *mockCmdable) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	_, ok := m.data[key]
	return redis.NewBoolResult(ok, nil)
}
