package service

import (
	"fmt"

	orderdomain "afterlife/internal/features/orders/domain"
	"afterlife/internal/features/tracking/domain"
	"afterlife/internal/features/tracking/ports"
)

// TrackingService builds journey views for orders.
type TrackingService struct {
	orders ports.OrderReader
}

// NewTrackingService creates a new TrackingService reading from orders.
func NewTrackingService(orders ports.OrderReader) *TrackingService {
	return &TrackingService{
		orders: orders,
	}
}

// GetJourney returns the journey view of an order.
func (s *TrackingService) GetJourney(orderID string) (*domain.Journey, error) {
	order, ok := s.orders.GetOrderByID(orderID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", orderdomain.ErrOrderNotFound, orderID)
	}

	journey := domain.BuildJourney(order.Tracking)
	return &journey, nil
}
