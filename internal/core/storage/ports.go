package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key holds no value.
var ErrKeyNotFound = errors.New("key not found")

// KeyValue defines the durable key-value operations the features persist through.
// This is a port implemented by Redis, Pebble and an in-process map.
type KeyValue interface {
	// Get retrieves the value stored under key.
	// Returns an error wrapping ErrKeyNotFound when nothing is stored.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping checks if the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend.
	Close() error
}
