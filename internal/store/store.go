package store

import "errors"

var (
	// ErrNotFound is returned when a key has no stored value.
	ErrNotFound = errors.New("no value stored for key")

	// ErrQuotaExceeded is returned when a bounded store has no room for a new key.
	ErrQuotaExceeded = errors.New("store quota exceeded")
)

// KV is the persistent local store contract: string keys to string values,
// read/write/delete only. Implementations are safe for concurrent use.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}
