// Package storage implements the durable store: a versioned, integrity
// checked key/value persistence layer over a local sqlite database. It owns
// the on-disk bytes; everything else in the client reads and writes through
// it.
package storage

import "context"

// Repository is the raw key/value layer beneath the store. Implementations
// are backed by the local sqlite database.
type Repository interface {
	// Get returns the value for key, or (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set inserts or replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns every key/value pair.
	List(ctx context.Context) (map[string][]byte, error)

	// ListPrefix returns every key/value pair whose key starts with prefix.
	ListPrefix(ctx context.Context, prefix string) (map[string][]byte, error)

	// Clear removes every key.
	Clear(ctx context.Context) error
}
