package storage

import (
	"fmt"

	"afterlife/internal/core/config"
)

// Open builds the KeyValue backend selected by cfg.Backend.
func Open(cfg config.StorageConfig) (KeyValue, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		return NewMemoryAdapter(), nil
	case config.BackendRedis:
		kv, err := NewRedisAdapter(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case config.BackendPebble:
		kv, err := NewPebbleAdapter(cfg.PebbleDir)
		if err != nil {
			return nil, err
		}
		return kv, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}
