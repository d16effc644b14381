// Package storage provides persistent key-value backends for tracklight.
//
// The core persists all of its durable state as a single opaque string blob
// under one key, so a Store only needs get/set/remove of strings.
// Implementations must be safe for concurrent use.
package storage

import (
	"context"
	"errors"
)

// Store persists opaque string values by key.
type Store interface {
	// GetItem retrieves the value for a key.
	// Returns ErrNotFound if the key doesn't exist.
	GetItem(ctx context.Context, key string) (string, error)

	// SetItem stores a value under a key, overwriting any prior value.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes a key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates the key doesn't exist.
	ErrNotFound = errors.New("storage: key not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("storage: store closed")
)
