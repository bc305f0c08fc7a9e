package cache

import (
	"bytes"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedis(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(mr.Addr(), "", 0, ttl)
	if err != nil {
		t.Fatalf("NewRedisCache failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c, _ := newTestRedis(t, 0)
	key := Key(KindClassify, 512, "some text")

	if _, ok := c.Get(key); ok {
		t.Fatal("expected miss on empty cache")
	}
	if err := c.Set(key, []byte(`{"is_ai":true}`), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok := c.Get(key)
	if !ok || !bytes.Equal(got, []byte(`{"is_ai":true}`)) {
		t.Errorf("Get = %q, %v", got, ok)
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("expected miss after delete")
	}
}

func TestRedisCache_DefaultTTL(t *testing.T) {
	c, mr := newTestRedis(t, time.Minute)
	key := Key(KindFeatures, 0, "text")

	if err := c.Set(key, []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, ok := c.Get(key); ok {
		t.Error("expected entry to expire with the default TTL")
	}
}

func TestRedisCache_ClearOnlyOwnKeys(t *testing.T) {
	c, mr := newTestRedis(t, 0)
	if err := mr.Set("unrelated", "keep"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	for _, text := range []string{"a", "b", "c"} {
		if err := c.Set(Key(KindClassify, 512, text), []byte("v"), 0); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if keys := mr.Keys(); len(keys) != 1 || keys[0] != "unrelated" {
		t.Errorf("expected only the unrelated key to survive, got %v", keys)
	}
}

func TestRedisCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedisCache(addr, "", 0, 0); err == nil {
		t.Error("expected ping failure for a closed server")
	}
}
