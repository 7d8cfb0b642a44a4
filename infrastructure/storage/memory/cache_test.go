package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/steam-mcp/domain/cache"
	"github.com/felixgeelhaar/steam-mcp/infrastructure/storage/memory"
)

func TestNewTTLCache(t *testing.T) {
	t.Parallel()

	t.Run("creates cache with capacity", func(t *testing.T) {
		t.Parallel()

		c, err := memory.NewTTLCache(512)
		if err != nil {
			t.Fatalf("NewTTLCache() error = %v", err)
		}

		stats := c.Stats()
		if stats.MaxSize != 512 {
			t.Errorf("MaxSize = %d, want 512", stats.MaxSize)
		}
	})

	t.Run("rejects non-positive capacity", func(t *testing.T) {
		t.Parallel()

		if _, err := memory.NewTTLCache(0); !errors.Is(err, cache.ErrInvalidCapacity) {
			t.Errorf("NewTTLCache(0) error = %v, want ErrInvalidCapacity", err)
		}
	})
}

func TestTTLCache_SetAndGet(t *testing.T) {
	t.Parallel()

	t.Run("sets and gets value", func(t *testing.T) {
		t.Parallel()

		c, _ := memory.NewTTLCache(16)
		ctx := context.Background()

		if err := c.Set(ctx, "key1", []byte("value1"), cache.SetOptions{}); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		value, found, err := c.Get(ctx, "key1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !found {
			t.Fatal("Get() should find the key")
		}
		if string(value) != "value1" {
			t.Errorf("Get() = %q, want value1", value)
		}
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		t.Parallel()

		c, _ := memory.NewTTLCache(16)
		ctx := context.Background()

		_ = c.Set(ctx, "key1", []byte("value1"), cache.SetOptions{})
		first, _, _ := c.Get(ctx, "key1")
		first[0] = 'X'

		second, _, _ := c.Get(ctx, "key1")
		if string(second) != "value1" {
			t.Errorf("cached value mutated to %q", second)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()

		c, _ := memory.NewTTLCache(16)
		_, found, err := c.Get(context.Background(), "absent")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if found {
			t.Error("Get() found a key that was never set")
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		t.Parallel()

		c, _ := memory.NewTTLCache(16)
		if err := c.Set(context.Background(), "", []byte("v"), cache.SetOptions{}); !errors.Is(err, cache.ErrInvalidKey) {
			t.Errorf("Set() error = %v, want ErrInvalidKey", err)
		}
	})
}

func TestTTLCache_Expiry(t *testing.T) {
	t.Parallel()

	c, _ := memory.NewTTLCache(16)
	ctx := context.Background()

	if err := c.Set(ctx, "short", []byte("v"), cache.SetOptions{TTL: 20 * time.Millisecond}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Set(ctx, "forever", []byte("v"), cache.SetOptions{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, found, _ := c.Get(ctx, "short"); !found {
		t.Error("entry expired before its TTL")
	}

	time.Sleep(40 * time.Millisecond)

	if _, found, _ := c.Get(ctx, "short"); found {
		t.Error("entry readable past its TTL")
	}
	if _, found, _ := c.Get(ctx, "forever"); !found {
		t.Error("zero-TTL entry expired")
	}
}

func TestTTLCache_DeleteAndClear(t *testing.T) {
	t.Parallel()

	c, _ := memory.NewTTLCache(16)
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), cache.SetOptions{})
	_ = c.Set(ctx, "b", []byte("2"), cache.SetOptions{})

	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, found, _ := c.Get(ctx, "a"); found {
		t.Error("Get() found a deleted key")
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if stats := c.Stats(); stats.Size != 0 {
		t.Errorf("Size after Clear() = %d, want 0", stats.Size)
	}
}

func TestTTLCache_EvictsOldestAtCapacity(t *testing.T) {
	t.Parallel()

	c, _ := memory.NewTTLCache(2)
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), cache.SetOptions{})
	_ = c.Set(ctx, "b", []byte("2"), cache.SetOptions{})
	_ = c.Set(ctx, "c", []byte("3"), cache.SetOptions{})

	if stats := c.Stats(); stats.Size != 2 {
		t.Errorf("Size = %d, want 2", stats.Size)
	}
	if _, found, _ := c.Get(ctx, "a"); found {
		t.Error("least recently used entry survived eviction")
	}
	if _, found, _ := c.Get(ctx, "c"); !found {
		t.Error("newest entry evicted")
	}
}

func TestTTLCache_Stats(t *testing.T) {
	t.Parallel()

	c, _ := memory.NewTTLCache(16)
	ctx := context.Background()

	_ = c.Set(ctx, "hit", []byte("v"), cache.SetOptions{})
	_, _, _ = c.Get(ctx, "hit")
	_, _, _ = c.Get(ctx, "hit")
	_, _, _ = c.Get(ctx, "miss")

	stats := c.Stats()
	if stats.Hits != 2 {
		t.Errorf("Hits = %d, want 2", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.Size != 1 {
		t.Errorf("Size = %d, want 1", stats.Size)
	}
}

func TestTTLCache_ContextCancelled(t *testing.T) {
	t.Parallel()

	c, _ := memory.NewTTLCache(16)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Set(ctx, "k", []byte("v"), cache.SetOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Set() error = %v, want context.Canceled", err)
	}
	if _, _, err := c.Get(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get() error = %v, want context.Canceled", err)
	}
}
