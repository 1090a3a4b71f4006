package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"afterlife/internal/core/clock"
	"afterlife/internal/core/logger"
	"afterlife/internal/core/metrics"
	"afterlife/internal/features/cart/domain"
	"afterlife/internal/features/cart/ports"
	orderdomain "afterlife/internal/features/orders/domain"

	"go.uber.org/zap"
)

// CartServiceImpl implements ports.CartService.
type CartServiceImpl struct {
	mu      sync.Mutex
	repo    ports.CartRepository
	orders  ports.OrderPlacer
	clock   clock.Clock
	metrics *metrics.Registry
	log     *zap.Logger
}

// NewCartService creates a new CartServiceImpl. Checkout places orders through orders.
func NewCartService(repo ports.CartRepository, orders ports.OrderPlacer, clk clock.Clock, m *metrics.Registry) *CartServiceImpl {
	if clk == nil {
		clk = clock.System{}
	}
	return &CartServiceImpl{
		repo:    repo,
		orders:  orders,
		clock:   clk,
		metrics: m,
		log:     logger.Named("cart"),
	}
}

// Cart returns the current cart.
func (s *CartServiceImpl) Cart(ctx context.Context) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// AddToCart adds quantity units of product and saves the cart.
func (s *CartServiceImpl) AddToCart(ctx context.Context, product orderdomain.Product, quantity int) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx)
	if err != nil {
		return domain.Cart{}, err
	}
	if err := cart.Add(product, quantity, s.clock.Now()); err != nil {
		return domain.Cart{}, err
	}

	if err := s.repo.Save(ctx, cart); err != nil {
		return domain.Cart{}, fmt.Errorf("service: failed to save cart: %w", err)
	}
	return cart, nil
}

// RemoveFromCart drops the line of productID and saves the cart.
func (s *CartServiceImpl) RemoveFromCart(ctx context.Context, productID string) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx)
	if err != nil {
		return domain.Cart{}, err
	}
	if err := cart.Remove(productID); err != nil {
		return domain.Cart{}, err
	}

	if err := s.repo.Save(ctx, cart); err != nil {
		return domain.Cart{}, fmt.Errorf("service: failed to save cart: %w", err)
	}
	return cart, nil
}

// Clear empties the cart.
func (s *CartServiceImpl) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx); err != nil {
		return fmt.Errorf("service: failed to clear cart: %w", err)
	}
	return nil
}

// Checkout places one order for every line of the cart, priced at the subtotal,
// then empties the cart.
func (s *CartServiceImpl) Checkout(ctx context.Context) (orderdomain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx)
	if err != nil {
		return orderdomain.Order{}, err
	}
	if cart.IsEmpty() {
		return orderdomain.Order{}, domain.ErrEmptyCart
	}

	order, err := s.orders.AddOrder(ctx, cart.Products(), cart.Subtotal())
	if err != nil {
		return orderdomain.Order{}, fmt.Errorf("service: failed to place order: %w", err)
	}

	// The order is already durable; a stale cart is only logged.
	if err := s.repo.Delete(ctx); err != nil {
		s.log.Error("Failed to clear cart after checkout", zap.String("order_id", order.ID), zap.Error(err))
	}

	if s.metrics != nil {
		s.metrics.CartCheckouts.Inc()
	}
	s.log.Info("Cart checked out",
		zap.String("order_id", order.ID),
		zap.Int("items", cart.Count()),
		zap.Float64("subtotal", cart.Subtotal()),
	)
	return order, nil
}

func (s *CartServiceImpl) load(ctx context.Context) (domain.Cart, error) {
	cart, err := s.repo.Load(ctx)
	if errors.Is(err, domain.ErrMalformedCart) {
		s.log.Warn("Persisted cart is unreadable, starting with an empty cart", zap.Error(err))
		return domain.Cart{Items: []domain.CartItem{}}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("service: failed to load cart: %w", err)
	}
	return cart, nil
}

var _ ports.CartService = (*CartServiceImpl)(nil)
