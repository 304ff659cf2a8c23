package cache

import (
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok := c.Get("k")
	if !ok || string(got) != "v" {
		t.Errorf("expected v, got %q (found=%v)", got, ok)
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestBadgerCache_InMemory(t *testing.T) {
	c, err := NewBadgerCache("", time.Hour)
	if err != nil {
		t.Fatalf("NewBadgerCache failed: %v", err)
	}
	defer func() { _ = c.Close() }()

	if err := c.Set("paper", []byte(`{"citationCount":3}`), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok := c.Get("paper")
	if !ok || string(got) != `{"citationCount":3}` {
		t.Errorf("unexpected value %q (found=%v)", got, ok)
	}

	if err := c.Delete("paper"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := c.Get("paper"); ok {
		t.Error("expected miss after delete")
	}
	if err := c.Delete("never-set"); err != nil {
		t.Errorf("deleting an unknown key should not fail: %v", err)
	}
}

func TestBadgerCache_Persistent(t *testing.T) {
	dir := t.TempDir()

	c, err := NewBadgerCache(dir, time.Hour)
	if err != nil {
		t.Fatalf("NewBadgerCache failed: %v", err)
	}
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewBadgerCache(dir, time.Hour)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	if got, ok := reopened.Get("k"); !ok || string(got) != "v" {
		t.Errorf("expected value to survive reopen, got %q (found=%v)", got, ok)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	memory := NewMemoryCache(time.Minute, time.Minute)
	disk, err := NewBadgerCache("", time.Hour)
	if err != nil {
		t.Fatalf("NewBadgerCache failed: %v", err)
	}
	defer func() { _ = disk.Close() }()

	_ = disk.Set("k", []byte("v"), 0)
	layered := NewLayeredCache(memory, disk)

	if got, ok := layered.Get("k"); !ok || string(got) != "v" {
		t.Fatalf("expected disk hit, got %q (found=%v)", got, ok)
	}
	if got, ok := memory.Get("k"); !ok || string(got) != "v" {
		t.Errorf("expected value promoted to memory, got %q (found=%v)", got, ok)
	}
}

func TestCacheKey_Stable(t *testing.T) {
	a := CacheKey("https://api.example.org/paper/1")
	b := CacheKey("https://api.example.org/paper/1")
	c := CacheKey("https://api.example.org/paper/2")
	if a != b {
		t.Error("expected identical keys for identical URLs")
	}
	if a == c {
		t.Error("expected different keys for different URLs")
	}
}
