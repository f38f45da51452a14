package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis connects to a local Redis on DB 15 and skips when none is running.
// The integration build tag runs the same checks against a container.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestNewRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	r := NewRedis(client, "")
	if r.redis != client {
		t.Error("redis client not set correctly")
	}
	if r.prefix != DefaultKeyPrefix {
		t.Errorf("prefix = %q, want %q", r.prefix, DefaultKeyPrefix)
	}
	if got := r.key(UserKey(3)); got != "reqres:User_3" {
		t.Errorf("key() = %q, want reqres:User_3", got)
	}
}

func TestNewRedis_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewRedis should panic with nil redis client")
		}
	}()
	NewRedis(nil, "")
}

func TestRedis_InvalidTTL(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	err := NewRedis(client, "").Set(context.Background(), "k", []byte("v"), 0)
	if !errors.Is(err, ErrInvalidTTL) {
		t.Errorf("Set(ttl=0) error = %v, want ErrInvalidTTL", err)
	}
}

func TestRedis_SetAndGet(t *testing.T) {
	runRedisContract(t, setupTestRedis(t))
}

// runRedisContract exercises the Cache contract against a live server.
func runRedisContract(t *testing.T, client *redis.Client) {
	t.Helper()

	r := NewRedis(client, "test:")
	ctx := context.Background()

	if _, ok, err := r.TryGet(ctx, UserKey(1)); err != nil || ok {
		t.Fatalf("TryGet on empty cache = %v, %v; want miss", ok, err)
	}

	if err := r.Set(ctx, UserKey(1), []byte(`{"id":1}`), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	data, ok, err := r.TryGet(ctx, UserKey(1))
	if err != nil || !ok {
		t.Fatalf("TryGet after Set = %v, %v; want hit", ok, err)
	}
	if string(data) != `{"id":1}` {
		t.Errorf("data = %s", data)
	}

	ttl, err := client.TTL(ctx, "test:User_1").Result()
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("redis TTL = %v, want (0, 1m]", ttl)
	}

	if err := r.Delete(ctx, UserKey(1)); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := r.TryGet(ctx, UserKey(1)); ok {
		t.Error("entry should be gone after Delete")
	}

	// Corrupt payloads surface as ErrInvalidEntry.
	client.Set(ctx, "test:broken", "not json", time.Minute)
	if _, _, err := r.TryGet(ctx, "broken"); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("TryGet(broken) error = %v, want ErrInvalidEntry", err)
	}

	// A stored deadline in the past is treated as absent even if Redis still holds the key.
	stale := `{"data":"eyJpZCI6MX0=","expires":"2000-01-01T00:00:00Z","cached_at":"2000-01-01T00:00:00Z"}`
	client.Set(ctx, "test:stale", stale, time.Minute)
	if _, ok, err := r.TryGet(ctx, "stale"); err != nil || ok {
		t.Errorf("TryGet(stale) = %v, %v; want miss", ok, err)
	}
	if n, _ := client.Exists(ctx, "test:stale").Result(); n != 0 {
		t.Error("stale entry should be deleted on read")
	}
}
