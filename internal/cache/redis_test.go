package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheWithClient(client)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestSetAndGet(t *testing.T) {
	c, _ := newTestCache(t)

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	in := payload{Name: "snapshot", Count: 3}
	if err := c.Set("key", in, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out payload
	if err := c.Get("key", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestGetMissingKey(t *testing.T) {
	c, _ := newTestCache(t)

	var out map[string]string
	if err := c.Get("absent", &out); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestExpiration(t *testing.T) {
	c, mr := newTestCache(t)

	if err := c.Set("key", "value", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	var out string
	if err := c.Get("key", &out); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after expiry, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	c, _ := newTestCache(t)

	if err := c.Set("key", "value", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Delete("key"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var out string
	if err := c.Get("key", &out); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	c, mr := newTestCache(t)

	if err := c.Health(); err != nil {
		t.Fatalf("health: %v", err)
	}
	mr.Close()
	if err := c.Health(); err == nil {
		t.Error("expected health check to fail after shutdown")
	}
}
