package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"afterlife/internal/core/storage"
	"afterlife/internal/features/cart/domain"
)

// DefaultCartKey is the storage key the cart lives under.
const DefaultCartKey = "afterlife-cart"

// KVCartRepository implements ports.CartRepository on a storage.KeyValue.
type KVCartRepository struct {
	kv  storage.KeyValue
	key string
}

// NewKVCartRepository creates a new KVCartRepository writing under key.
func NewKVCartRepository(kv storage.KeyValue, key string) *KVCartRepository {
	if key == "" {
		key = DefaultCartKey
	}
	return &KVCartRepository{
		kv:  kv,
		key: key,
	}
}

// Save stores the cart.
func (r *KVCartRepository) Save(ctx context.Context, cart domain.Cart) error {
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	if err := r.kv.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	return nil
}

// Load retrieves the cart. A missing key is an empty cart.
func (r *KVCartRepository) Load(ctx context.Context) (domain.Cart, error) {
	data, err := r.kv.Get(ctx, r.key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return domain.Cart{Items: []domain.CartItem{}}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("failed to get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return domain.Cart{}, fmt.Errorf("%w: %v", domain.ErrMalformedCart, err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}

	return cart, nil
}

// Delete removes the stored cart.
func (r *KVCartRepository) Delete(ctx context.Context) error {
	if err := r.kv.Delete(ctx, r.key); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
