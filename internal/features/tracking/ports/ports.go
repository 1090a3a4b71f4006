package ports

import orderdomain "afterlife/internal/features/orders/domain"

// OrderReader is the slice of the order store the journey view reads from.
type OrderReader interface {
	GetOrderByID(orderID string) (orderdomain.Order, bool)
}
