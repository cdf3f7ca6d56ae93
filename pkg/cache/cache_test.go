package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemoryCacheGetSet(t *testing.T) {
	c := NewMemoryCache(10)
	ctx := context.Background()

	if _, ok, _ := c.Get(ctx, "missing"); ok {
		t.Error("Get(missing) = hit, want miss")
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() = %v", err)
	}
	data, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v; want hit", ok, err)
	}
	if string(data) != "v" {
		t.Errorf("Get() = %q, want %q", data, "v")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(10)
	ctx := context.Background()

	_ = c.Set(ctx, "short", []byte("v"), time.Nanosecond)
	time.Sleep(time.Millisecond)
	if _, ok, _ := c.Get(ctx, "short"); ok {
		t.Error("expired entry returned a hit")
	}

	// Zero TTL means no expiry.
	_ = c.Set(ctx, "forever", []byte("v"), 0)
	if _, ok, _ := c.Get(ctx, "forever"); !ok {
		t.Error("zero-TTL entry should not expire")
	}
}

func TestMemoryCacheEviction(t *testing.T) {
	c := NewMemoryCache(5)
	ctx := context.Background()

	for i := range 10 {
		_ = c.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Minute)
	}
	if c.Len() > 5 {
		t.Errorf("Len() = %d after eviction, want <= 5", c.Len())
	}
	// The newest entry must survive eviction.
	if _, ok, _ := c.Get(ctx, "k9"); !ok {
		t.Error("newest entry was evicted")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache(10)
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() = %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("deleted key returned a hit")
	}
	// Deleting a missing key is not an error.
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete(missing) = %v, want nil", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() = %v", err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "mouser:LM358", []byte(`{"stock":100}`), time.Hour); err != nil {
		t.Fatalf("Set() = %v", err)
	}
	data, ok, err := c.Get(ctx, "mouser:LM358")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v; want hit", ok, err)
	}
	if string(data) != `{"stock":100}` {
		t.Errorf("Get() = %q", data)
	}

	if err := c.Delete(ctx, "mouser:LM358"); err != nil {
		t.Fatalf("Delete() = %v", err)
	}
	if _, ok, _ := c.Get(ctx, "mouser:LM358"); ok {
		t.Error("deleted entry returned a hit")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() = %v", err)
	}
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), time.Nanosecond)
	time.Sleep(time.Millisecond)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("expired file entry returned a hit")
	}
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() = %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("NullCache must never return a hit")
	}
}
