package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache[T any](size int, ttl time.Duration) (*LRUCache[T], *fakeClock) {
	clk := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCache[T](size, ttl)
	c.now = clk.now
	return c, clk
}

func TestLRUCacheEviction(t *testing.T) {
	c, _ := newTestCache[string](3, time.Hour)
	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Set("key3", "value3")
	c.Set("key4", "value4")

	if _, found := c.Get("key1"); found {
		t.Error("key1 should have been evicted")
	}
	for _, k := range []string{"key2", "key3", "key4"} {
		if _, found := c.Get(k); !found {
			t.Errorf("%s should still exist", k)
		}
	}
}

func TestLRUCacheGetRefreshesRecency(t *testing.T) {
	c, _ := newTestCache[int](2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, found := c.Get("b"); found {
		t.Error("b should have been evicted as least recently used")
	}
	if v, found := c.Get("a"); !found || v != 1 {
		t.Errorf("a should survive, got %d %v", v, found)
	}
}

func TestLRUCacheTTLExpiration(t *testing.T) {
	c, clk := newTestCache[string](100, 50*time.Millisecond)
	c.Set("key1", "value1")
	if _, found := c.Get("key1"); !found {
		t.Error("key1 should exist immediately")
	}
	clk.advance(60 * time.Millisecond)
	if _, found := c.Get("key1"); found {
		t.Error("key1 should have expired")
	}
	if c.Size() != 0 {
		t.Errorf("expired entry should be removed on read, size=%d", c.Size())
	}
}

func TestLRUCacheCleanExpired(t *testing.T) {
	c, clk := newTestCache[string](10, time.Minute)
	c.Set("old1", "x")
	c.Set("old2", "x")
	clk.advance(2 * time.Minute)
	c.Set("fresh", "y")

	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("expected 2 expired entries removed, got %d", n)
	}
	if c.Size() != 1 {
		t.Fatalf("expected 1 entry left, got %d", c.Size())
	}
}

func TestLRUCacheOverwriteAndDelete(t *testing.T) {
	c, _ := newTestCache[string](2, time.Hour)
	c.Set("k", "v1")
	c.Set("k", "v2")
	if v, _ := c.Get("k"); v != "v2" || c.Size() != 1 {
		t.Fatalf("overwrite failed: %q size=%d", v, c.Size())
	}
	c.Delete("k")
	c.Delete("missing")
	if c.Size() != 0 {
		t.Fatalf("delete failed, size=%d", c.Size())
	}
}

func TestManagerSweep(t *testing.T) {
	a, clk := newTestCache[int](10, time.Second)
	b := NewLRUCache[int](10, time.Hour)
	a.Set("x", 1)
	b.Set("y", 2)
	clk.advance(2 * time.Second)

	m := NewManager()
	m.Register(a)
	m.Register(b)
	m.Register(nil)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("expected 1 removal, got %d", n)
	}

	m.StartCleanup(time.Hour)
	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}
