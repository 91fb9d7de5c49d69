package store

import (
	"sync"
)

// MemoryStore is a concurrency-safe in-memory KV.
// It loses its contents on exit and is meant for tests and ephemeral runs.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string

	// maxEntries bounds the number of keys (0 = unlimited).
	maxEntries int
}

// NewMemoryStore creates an empty MemoryStore.
// If maxEntries is <= 0, it is treated as unlimited.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]string),
		maxEntries: maxEntries,
	}
}

// Get returns the value for key or ErrNotFound.
func (s *MemoryStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key. Writing a new key into a full store fails.
func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; !exists && s.maxEntries > 0 && len(s.data) >= s.maxEntries {
		return ErrQuotaExceeded
	}
	s.data[key] = value
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

// Len reports the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
