package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T, maxAge time.Duration) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "responses.db"), maxAge)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := openTestStore(t, time.Hour)

	if _, ok := store.Get("https://example.org/a"); ok {
		t.Fatal("Get on empty cache reported a hit")
	}

	if err := store.Put("https://example.org/a", []byte("first")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	body, ok := store.Get("https://example.org/a")
	if !ok || string(body) != "first" {
		t.Fatalf("Get = %q, %v; want first, true", body, ok)
	}

	// Overwrite keeps one row per URL.
	if err := store.Put("https://example.org/a", []byte("second")); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	body, ok = store.Get("https://example.org/a")
	if !ok || string(body) != "second" {
		t.Fatalf("Get after overwrite = %q, %v", body, ok)
	}
	if n, err := store.Len(); err != nil || n != 1 {
		t.Fatalf("Len = %d, %v; want 1", n, err)
	}
}

func TestStoreExpiry(t *testing.T) {
	store := openTestStore(t, time.Nanosecond)

	if err := store.Put("https://example.org/a", []byte("stale")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, ok := store.Get("https://example.org/a"); ok {
		t.Error("expired entry reported as a hit")
	}
}

func TestStoreNoExpiry(t *testing.T) {
	store := openTestStore(t, 0)

	if err := store.Put("https://example.org/a", []byte("keep")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := store.Get("https://example.org/a"); !ok {
		t.Error("maxAge 0 should disable expiry")
	}
}

func TestStoreClear(t *testing.T) {
	store := openTestStore(t, time.Hour)

	for _, url := range []string{"a", "b", "c"} {
		if err := store.Put(url, []byte("x")); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n, _ := store.Len(); n != 0 {
		t.Errorf("Len after Clear = %d, want 0", n)
	}
}
