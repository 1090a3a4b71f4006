package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
)

// PebbleAdapter implements KeyValue on an embedded Pebble database.
// Every write is synced, each mutation is durable once Set returns.
type PebbleAdapter struct {
	db     *pebble.DB
	closed atomic.Bool
}

// NewPebbleAdapter opens (or creates) a Pebble database in dir.
func NewPebbleAdapter(dir string) (*PebbleAdapter, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleAdapter{db: db}, nil
}

// Get retrieves a copy of the value stored under key.
func (p *PebbleAdapter) Get(_ context.Context, key string) ([]byte, error) {
	v, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	defer closer.Close()

	return append([]byte(nil), v...), nil
}

// Set stores value under key.
func (p *PebbleAdapter) Set(_ context.Context, key string, value []byte) error {
	if err := p.db.Set([]byte(key), value, pebble.Sync); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (p *PebbleAdapter) Delete(_ context.Context, key string) error {
	if err := p.db.Delete([]byte(key), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Ping reports whether the database is still open.
func (p *PebbleAdapter) Ping(_ context.Context) error {
	if p.closed.Load() {
		return errors.New("pebble ping failed: database closed")
	}
	return nil
}

// Close flushes and closes the database.
func (p *PebbleAdapter) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.db.Close()
}
