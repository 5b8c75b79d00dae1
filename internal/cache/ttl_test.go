package cache

import (
	"testing"
	"time"
)

func TestGetSetDelete(t *testing.T) {
	c := New[int](4, time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatal("empty cache should miss")
	}
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected hit with 1, got %v %v", v, ok)
	}
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("deleted key should miss")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New[string](4, 10*time.Millisecond)
	c.Set("k", "v")
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry should miss")
	}
	if c.Size() != 0 {
		t.Fatalf("expired entry should be removed, size=%d", c.Size())
	}
}

func TestLRUEviction(t *testing.T) {
	c := New[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // refresh recency so b is the eviction victim
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Fatal("least recently used entry should be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("recently used entry should survive")
	}
	if c.Size() != 2 {
		t.Fatalf("size should stay at capacity, got %d", c.Size())
	}
}
