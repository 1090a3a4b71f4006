package ports

import (
	"context"
	"time"

	"afterlife/internal/features/orders/domain"
)

// OrderStore defines the primary port for order operations.
type OrderStore interface {
	AddOrder(ctx context.Context, products []domain.Product, totalAmount float64) (domain.Order, error)
	GetOrderByID(orderID string) (domain.Order, bool)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.DeliveryStatus, progress int, message string) error
	ApplyStatusUpdate(ctx context.Context, orderID string, update domain.StatusUpdate) (domain.Order, error)
	Orders() []domain.Order
}

// OrderRepository defines the secondary port persisting the whole order list.
type OrderRepository interface {
	// Load returns the persisted list, most recent first. An empty store yields an empty list.
	// Undecodable data yields an error wrapping domain.ErrMalformedState.
	Load(ctx context.Context) ([]domain.Order, error)
	// Save overwrites the persisted list.
	Save(ctx context.Context, orders []domain.Order) error
}

// IDGenerator produces order identifiers of the form ORD-<token>.
type IDGenerator interface {
	NewID(now time.Time) string
}

// IDObserver is implemented by generators that must skip identifiers already in use.
type IDObserver interface {
	ObserveID(id string)
}
