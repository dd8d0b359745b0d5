package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type snapshot struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client, zap.NewNop()), mr
}

func TestSetGetJSONRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	stored := []snapshot{{Name: "Sneakers", Price: 49.99}, {Name: "Boots", Price: 89.5}}
	c.SetJSON(ctx, "test:key", stored, time.Minute)

	loaded := []snapshot{}
	if !c.GetJSON(ctx, "test:key", &loaded) {
		t.Fatal("expected a cache hit")
	}
	if len(loaded) != 2 || loaded[0] != stored[0] || loaded[1] != stored[1] {
		t.Fatalf("round trip mismatch: %v", loaded)
	}
}

func TestGetJSONMissReturnsFalse(t *testing.T) {
	c, _ := newTestCache(t)

	loaded := []snapshot{}
	if c.GetJSON(context.Background(), "never:written", &loaded) {
		t.Fatal("expected a miss for an unwritten key")
	}
}

func TestGetJSONExpiresAfterTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.SetJSON(ctx, "test:ttl", snapshot{Name: "Hat"}, 5*time.Minute)

	loaded := snapshot{}
	if !c.GetJSON(ctx, "test:ttl", &loaded) {
		t.Fatal("expected a hit inside the TTL")
	}

	mr.FastForward(5*time.Minute + time.Second)

	if c.GetJSON(ctx, "test:ttl", &loaded) {
		t.Fatal("expected a miss after the TTL elapsed")
	}
}

func TestGetJSONUndecodablePayloadIsAMiss(t *testing.T) {
	c, mr := newTestCache(t)

	mr.Set("test:garbage", "{not json")

	loaded := snapshot{}
	if c.GetJSON(context.Background(), "test:garbage", &loaded) {
		t.Fatal("undecodable payload should read as a miss")
	}
}

// Redis being down must never surface as an error to callers
func TestCacheDegradesWhenRedisIsDown(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	mr.Close()

	loaded := snapshot{}
	if c.GetJSON(ctx, "any", &loaded) {
		t.Fatal("read against a dead redis should be a miss")
	}

	// Writes are best-effort and must not panic
	c.SetJSON(ctx, "any", snapshot{Name: "X"}, time.Minute)
}

func TestCategoryProductsKey(t *testing.T) {
	key := CategoryProductsKey("6540f0d2b9f1c2a3d4e5f601")
	want := "category:6540f0d2b9f1c2a3d4e5f601:products"
	if key != want {
		t.Fatalf("key = %q, want %q", key, want)
	}
}
