// Package store provides the persisted key-value layer that backs every
// client state store. Values are opaque byte blobs, normally JSON.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when a key has never been written or was removed.
var ErrNotFound = errors.New("key not found")

// Store is a durable string-keyed blob store with last-write-wins semantics
// per key. There are no multi-key transactions.
type Store interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set creates or replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists stored keys with the given prefix in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Ping verifies the backing medium is reachable.
	Ping(ctx context.Context) error

	// Close releases the backing medium.
	Close() error
}
