package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"afterlife/internal/core/storage"
	"afterlife/internal/features/orders/domain"
)

// DefaultOrdersKey is the storage key the order list lives under.
const DefaultOrdersKey = "afterlife-orders"

// SchemaVersion is written into every persisted envelope.
const SchemaVersion = 1

// envelope is the persisted layout. Earlier data was a bare JSON array of orders,
// which Load still accepts.
type envelope struct {
	Version int            `json:"version"`
	Orders  []domain.Order `json:"orders"`
}

// KVOrderRepository implements ports.OrderRepository on a storage.KeyValue.
type KVOrderRepository struct {
	kv  storage.KeyValue
	key string
}

// NewKVOrderRepository creates a KVOrderRepository writing under key.
func NewKVOrderRepository(kv storage.KeyValue, key string) *KVOrderRepository {
	if key == "" {
		key = DefaultOrdersKey
	}
	return &KVOrderRepository{kv: kv, key: key}
}

// Key returns the storage key in use.
func (r *KVOrderRepository) Key() string { return r.key }

// Load reads and decodes the order list.
func (r *KVOrderRepository) Load(ctx context.Context) ([]domain.Order, error) {
	data, err := r.kv.Get(ctx, r.key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []domain.Order{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}

	return Decode(data)
}

// Save encodes the full list and overwrites the stored value.
func (r *KVOrderRepository) Save(ctx context.Context, orders []domain.Order) error {
	data, err := Encode(orders)
	if err != nil {
		return err
	}

	if err := r.kv.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("failed to save orders: %w", err)
	}
	return nil
}

// Encode serializes orders into the versioned envelope.
func Encode(orders []domain.Order) ([]byte, error) {
	if orders == nil {
		orders = []domain.Order{}
	}
	data, err := json.Marshal(envelope{Version: SchemaVersion, Orders: orders})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal orders: %w", err)
	}
	return data, nil
}

// Decode parses either the versioned envelope or a legacy bare array.
func Decode(data []byte) ([]domain.Order, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []domain.Order{}, nil
	}

	var orders []domain.Order
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &orders); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedState, err)
		}
	case '{':
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedState, err)
		}
		if env.Version != SchemaVersion {
			return nil, fmt.Errorf("%w: unsupported schema version %d", domain.ErrMalformedState, env.Version)
		}
		orders = env.Orders
	default:
		return nil, fmt.Errorf("%w: unexpected payload", domain.ErrMalformedState)
	}

	for _, o := range orders {
		if err := o.CheckInvariants(); err != nil {
			return nil, err
		}
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}
