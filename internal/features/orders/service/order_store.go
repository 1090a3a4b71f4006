package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"afterlife/internal/core/clock"
	"afterlife/internal/core/logger"
	"afterlife/internal/core/metrics"
	"afterlife/internal/features/orders/adapters"
	"afterlife/internal/features/orders/domain"
	"afterlife/internal/features/orders/ports"

	"go.uber.org/zap"
)

// OrderStore owns every order of the session, persists the whole list after each
// mutation and mediates all reads and writes. Operations are serialized by a mutex,
// so each call, including its write to storage, completes before the next starts.
type OrderStore struct {
	mu     sync.Mutex
	orders []domain.Order

	repo    ports.OrderRepository
	clock   clock.Clock
	ids     ports.IDGenerator
	strict  bool
	metrics *metrics.Registry
	log     *zap.Logger
}

// Option configures an OrderStore.
type Option func(*OrderStore)

// WithClock sets the time source for placement, arrival and history timestamps.
func WithClock(c clock.Clock) Option {
	return func(s *OrderStore) { s.clock = c }
}

// WithIDGenerator sets the order identifier generator.
func WithIDGenerator(g ports.IDGenerator) Option {
	return func(s *OrderStore) { s.ids = g }
}

// WithStrictTransitions rejects backward moves and updates after delivery.
func WithStrictTransitions(strict bool) Option {
	return func(s *OrderStore) { s.strict = strict }
}

// WithMetrics records store activity in r.
func WithMetrics(r *metrics.Registry) Option {
	return func(s *OrderStore) { s.metrics = r }
}

// NewOrderStore creates the store and loads the persisted list once.
// Malformed persisted data is logged and replaced by an empty list; any other
// load failure is returned.
func NewOrderStore(ctx context.Context, repo ports.OrderRepository, opts ...Option) (*OrderStore, error) {
	s := &OrderStore{
		repo:  repo,
		clock: clock.System{},
		ids:   adapters.NewTimestampIDGenerator(),
		log:   logger.Named("order_store"),
	}
	for _, opt := range opts {
		opt(s)
	}

	orders, err := repo.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrMalformedState):
		s.log.Warn("Persisted orders are unreadable, starting with an empty list", zap.Error(err))
		orders = []domain.Order{}
	case err != nil:
		return nil, fmt.Errorf("service: failed to load orders: %w", err)
	}

	if obs, ok := s.ids.(ports.IDObserver); ok {
		for _, o := range orders {
			obs.ObserveID(o.ID)
		}
	}

	s.orders = orders
	s.observeSize()
	s.log.Info("Order store ready", zap.Int("orders", len(orders)), zap.Bool("strict_transitions", s.strict))
	return s, nil
}

// AddOrder places a new order for products and puts it at the front of the list.
func (s *OrderStore) AddOrder(ctx context.Context, products []domain.Product, totalAmount float64) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	order, err := domain.NewOrder(s.ids.NewID(now), products, totalAmount, now)
	if err != nil {
		return domain.Order{}, err
	}

	next := make([]domain.Order, 0, len(s.orders)+1)
	next = append(next, order)
	next = append(next, s.orders...)

	if err := s.persist(ctx, next); err != nil {
		return domain.Order{}, err
	}
	s.orders = next

	if s.metrics != nil {
		s.metrics.OrdersCreated.Inc()
	}
	s.observeSize()
	s.log.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.Int("products", len(order.Products)),
		zap.Float64("total_amount", order.TotalAmount),
	)
	return order.Clone(), nil
}

// GetOrderByID looks an order up. ok is false when no order has that id.
func (s *OrderStore) GetOrderByID(orderID string) (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(orderID)
	if i < 0 {
		return domain.Order{}, false
	}
	return s.orders[i].Clone(), true
}

// Orders returns every order, most recent first.
func (s *OrderStore) Orders() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = o.Clone()
	}
	return out
}

// UpdateOrderStatus moves an order to status with the given progress and appends message
// to its history. The current location is left as it is.
// An unknown orderID changes nothing and returns domain.ErrOrderNotFound.
func (s *OrderStore) UpdateOrderStatus(ctx context.Context, orderID string, status domain.DeliveryStatus, progress int, message string) error {
	_, err := s.ApplyStatusUpdate(ctx, orderID, domain.StatusUpdate{
		Status:   status,
		Progress: progress,
		Message:  message,
	})
	return err
}

// ApplyStatusUpdate is UpdateOrderStatus with an optional location change.
// It returns the updated order.
func (s *OrderStore) ApplyStatusUpdate(ctx context.Context, orderID string, update domain.StatusUpdate) (domain.Order, error) {
	if err := update.Validate(); err != nil {
		s.reject("invalid_argument")
		return domain.Order{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(orderID)
	if i < 0 {
		s.reject("not_found")
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}

	if s.strict {
		if err := domain.ValidateTransition(s.orders[i].Tracking.Status, update.Status); err != nil {
			s.reject("invalid_transition")
			s.log.Warn("Status update rejected",
				zap.String("order_id", orderID),
				zap.String("from", string(s.orders[i].Tracking.Status)),
				zap.String("to", string(update.Status)),
			)
			return domain.Order{}, err
		}
	}

	updated := s.orders[i].Clone()
	updated.Tracking.Apply(update, s.clock.Now())

	next := make([]domain.Order, len(s.orders))
	copy(next, s.orders)
	next[i] = updated

	if err := s.persist(ctx, next); err != nil {
		return domain.Order{}, err
	}
	s.orders = next

	if s.metrics != nil {
		s.metrics.StatusUpdates.WithLabelValues(string(update.Status)).Inc()
	}
	s.log.Info("Order status updated",
		zap.String("order_id", orderID),
		zap.String("status", string(update.Status)),
		zap.Int("progress", update.Progress),
	)
	return updated.Clone(), nil
}

func (s *OrderStore) indexOf(orderID string) int {
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			return i
		}
	}
	return -1
}

// persist writes next in full. The in-memory list is only replaced by callers once this succeeds.
func (s *OrderStore) persist(ctx context.Context, next []domain.Order) error {
	start := time.Now()
	err := s.repo.Save(ctx, next)
	if s.metrics != nil {
		s.metrics.PersistLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.PersistFailures.Inc()
		}
		s.log.Error("Failed to persist orders", zap.Error(err))
		return fmt.Errorf("service: failed to persist orders: %w", err)
	}
	return nil
}

func (s *OrderStore) reject(reason string) {
	if s.metrics != nil {
		s.metrics.RejectedUpdates.WithLabelValues(reason).Inc()
	}
}

func (s *OrderStore) observeSize() {
	if s.metrics != nil {
		s.metrics.OrdersInStore.Set(float64(len(s.orders)))
	}
}

var _ ports.OrderStore = (*OrderStore)(nil)
