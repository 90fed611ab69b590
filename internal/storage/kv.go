package storage

import "context"

//go:generate moq -out kv_mock.go . KV

// KV defines the key/value persistence facade the form engine writes through.
// This is the lowest storage layer - it works with raw string values and knows
// nothing about sections, TTLs or form state.
type KV interface {
	// GetItem retrieves the value stored under key.
	// Returns ErrClaveNoEncontrada if the key does not exist.
	GetItem(ctx context.Context, clave string) (string, error)

	// SetItem stores a value under key.
	// Returns ErrCuotaExcedida when the backing store is out of space.
	SetItem(ctx context.Context, clave, valor string) error

	// RemoveItem deletes a key. Removing an absent key is not an error.
	RemoveItem(ctx context.Context, clave string) error

	// Keys returns every stored key.
	Keys(ctx context.Context) ([]string, error)

	// Close releases the underlying store.
	Close() error
}
