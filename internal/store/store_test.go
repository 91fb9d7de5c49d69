package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func newStores(t *testing.T) map[string]KV {
	t.Helper()

	sqliteStore, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = sqliteStore.Close() })

	return map[string]KV{
		"memory": NewMemoryStore(0),
		"sqlite": sqliteStore,
	}
}

func TestKVGetSetRemove(t *testing.T) {
	for name, kv := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := kv.Get("missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound for missing key, got %v", err)
			}

			if err := kv.Set("weatherFavorites", `["Helsinki"]`); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			got, err := kv.Get("weatherFavorites")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got != `["Helsinki"]` {
				t.Errorf("expected stored value, got %q", got)
			}

			if err := kv.Set("weatherFavorites", `["Espoo"]`); err != nil {
				t.Fatalf("overwrite failed: %v", err)
			}
			got, _ = kv.Get("weatherFavorites")
			if got != `["Espoo"]` {
				t.Errorf("expected overwritten value, got %q", got)
			}

			if err := kv.Remove("weatherFavorites"); err != nil {
				t.Fatalf("Remove failed: %v", err)
			}
			if _, err := kv.Get("weatherFavorites"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after remove, got %v", err)
			}

			if err := kv.Remove("never-set"); err != nil {
				t.Errorf("removing a missing key should not fail: %v", err)
			}
		})
	}
}

func TestMemoryStoreQuota(t *testing.T) {
	s := NewMemoryStore(2)

	if err := s.Set("a", "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Set("b", "2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Set("c", "3"); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	// Overwriting an existing key still works when full.
	if err := s.Set("a", "10"); err != nil {
		t.Fatalf("overwrite in full store failed: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 keys, got %d", s.Len())
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widget.db")

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if err := s.Set("weatherSearchHistory", `["Kauniainen"]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get("weatherSearchHistory")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if got != `["Kauniainen"]` {
		t.Errorf("expected persisted value, got %q", got)
	}
	if err := reopened.Ping(); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
