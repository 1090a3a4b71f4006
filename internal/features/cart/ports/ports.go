package ports

import (
	"context"

	"afterlife/internal/features/cart/domain"
	orderdomain "afterlife/internal/features/orders/domain"
)

// CartService defines the primary port for cart operations.
type CartService interface {
	Cart(ctx context.Context) (domain.Cart, error)
	AddToCart(ctx context.Context, product orderdomain.Product, quantity int) (domain.Cart, error)
	RemoveFromCart(ctx context.Context, productID string) (domain.Cart, error)
	Clear(ctx context.Context) error
	Checkout(ctx context.Context) (orderdomain.Order, error)
}

// CartRepository defines the secondary port for cart storage.
type CartRepository interface {
	Load(ctx context.Context) (domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
	Delete(ctx context.Context) error
}

// OrderPlacer turns a checked-out cart into an order.
type OrderPlacer interface {
	AddOrder(ctx context.Context, products []orderdomain.Product, totalAmount float64) (orderdomain.Order, error)
}
