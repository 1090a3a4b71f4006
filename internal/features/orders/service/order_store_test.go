package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"afterlife/internal/core/clock"
	"afterlife/internal/core/metrics"
	"afterlife/internal/core/storage"
	"afterlife/internal/features/orders/adapters"
	"afterlife/internal/features/orders/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of ports.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Load(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, orders []domain.Order) error {
	args := m.Called(ctx, orders)
	return args.Error(0)
}

var start = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func oakDesk() domain.Product {
	return domain.Product{ID: "p-oak", Name: "Oak Desk", Price: 120, CurrentLocation: "Boston warehouse"}
}

func newTestStore(t *testing.T, opts ...Option) (*OrderStore, *storage.MemoryAdapter, *clock.Manual) {
	t.Helper()
	kv := storage.NewMemoryAdapter()
	clk := clock.NewManual(start)
	opts = append([]Option{WithClock(clk)}, opts...)

	s, err := NewOrderStore(context.Background(), adapters.NewKVOrderRepository(kv, "afterlife-orders"), opts...)
	require.NoError(t, err)
	return s, kv, clk
}

func TestOrderStore_AddOrder(t *testing.T) {
	s, _, _ := newTestStore(t)

	order, err := s.AddOrder(context.Background(), []domain.Product{oakDesk()}, 120)
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("ORD-%d", start.UnixMilli()), order.ID)
	assert.Equal(t, start, order.PlacedAt)
	assert.Equal(t, start.Add(7*24*time.Hour), order.Tracking.EstimatedArrival)
	assert.Equal(t, domain.StatusFarewell, order.Tracking.Status)
	assert.Equal(t, 15, order.Tracking.JourneyProgress)
	assert.Equal(t, "Boston warehouse", order.Tracking.CurrentLocation)
	require.Len(t, order.Tracking.StatusHistory, 1)
	assert.Contains(t, order.Tracking.StatusHistory[0].Message, "Oak Desk")

	got, ok := s.GetOrderByID(order.ID)
	require.True(t, ok)
	assert.Equal(t, order, got)
}

func TestOrderStore_AddOrder_InvalidArgument(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddOrder(ctx, nil, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = s.AddOrder(ctx, []domain.Product{oakDesk()}, -3)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	assert.Empty(t, s.Orders())
}

func TestOrderStore_MostRecentFirst(t *testing.T) {
	s, _, clk := newTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		o, err := s.AddOrder(ctx, []domain.Product{oakDesk()}, float64(i))
		require.NoError(t, err)
		ids = append(ids, o.ID)
		clk.Advance(time.Second)
	}

	orders := s.Orders()
	require.Len(t, orders, 5)
	for i, o := range orders {
		assert.Equal(t, ids[len(ids)-1-i], o.ID)
	}
}

func TestOrderStore_IDsUniqueWithinSameInstant(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		o, err := s.AddOrder(ctx, []domain.Product{oakDesk()}, 1)
		require.NoError(t, err)
		assert.False(t, seen[o.ID], o.ID)
		seen[o.ID] = true
	}
}

func TestOrderStore_Invariants(t *testing.T) {
	s, _, clk := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		o, err := s.AddOrder(ctx, []domain.Product{oakDesk()}, 10)
		require.NoError(t, err)
		clk.Advance(time.Minute)
		require.NoError(t, s.UpdateOrderStatus(ctx, o.ID, domain.StatusTransit, 40, "Left the warehouse"))
	}

	for _, o := range s.Orders() {
		assert.Equal(t, o.ID, o.Tracking.OrderID)
		require.NotEmpty(t, o.Tracking.StatusHistory)
		assert.Equal(t, domain.StatusFarewell, o.Tracking.StatusHistory[0].Status)
		assert.Equal(t, o.Products[0], o.Tracking.Product)
	}
}

func TestOrderStore_GetOrderByID(t *testing.T) {
	s, _, _ := newTestStore(t)
	o, err := s.AddOrder(context.Background(), []domain.Product{oakDesk()}, 120)
	require.NoError(t, err)

	t.Run("Idempotent", func(t *testing.T) {
		first, ok1 := s.GetOrderByID(o.ID)
		second, ok2 := s.GetOrderByID(o.ID)
		assert.True(t, ok1)
		assert.True(t, ok2)
		assert.Equal(t, first, second)
	})

	t.Run("ReturnsCopy", func(t *testing.T) {
		got, _ := s.GetOrderByID(o.ID)
		got.Tracking.Status = domain.StatusNewBeginning
		got.Tracking.StatusHistory[0].Message = "mutated"

		again, _ := s.GetOrderByID(o.ID)
		assert.Equal(t, domain.StatusFarewell, again.Tracking.Status)
		assert.NotEqual(t, "mutated", again.Tracking.StatusHistory[0].Message)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, ok := s.GetOrderByID("ORD-missing")
		assert.False(t, ok)
	})
}

func TestOrderStore_UpdateOrderStatus(t *testing.T) {
	s, _, clk := newTestStore(t)
	ctx := context.Background()
	o, err := s.AddOrder(ctx, []domain.Product{oakDesk()}, 120)
	require.NoError(t, err)

	clk.Advance(3 * time.Hour)
	require.NoError(t, s.UpdateOrderStatus(ctx, o.ID, domain.StatusTransit, 50, "On its way"))

	got, ok := s.GetOrderByID(o.ID)
	require.True(t, ok)
	assert.Equal(t, domain.StatusTransit, got.Tracking.Status)
	assert.Equal(t, 50, got.Tracking.JourneyProgress)
	require.Len(t, got.Tracking.StatusHistory, len(o.Tracking.StatusHistory)+1)

	last, _ := got.Tracking.LastEntry()
	assert.Equal(t, "On its way", last.Message)
	assert.Equal(t, domain.StatusTransit, last.Status)
	assert.Equal(t, start.Add(3*time.Hour), last.Date)

	// Location stays where it was at creation: UpdateOrderStatus never touches it.
	assert.Equal(t, "Boston warehouse", got.Tracking.CurrentLocation)

	// Everything fixed at creation is untouched.
	assert.Equal(t, o.Products, got.Products)
	assert.Equal(t, o.TotalAmount, got.TotalAmount)
	assert.Equal(t, o.PlacedAt, got.PlacedAt)
	assert.Equal(t, o.Tracking.EstimatedArrival, got.Tracking.EstimatedArrival)
}

func TestOrderStore_UpdateLeavesOtherOrdersUntouched(t *testing.T) {
	s, _, clk := newTestStore(t)
	ctx := context.Background()

	a, err := s.AddOrder(ctx, []domain.Product{oakDesk()}, 1)
	require.NoError(t, err)
	clk.Advance(time.Second)
	b, err := s.AddOrder(ctx, []domain.Product{oakDesk()}, 2)
	require.NoError(t, err)

	require.NoError(t, s.UpdateOrderStatus(ctx, a.ID, domain.StatusNearArrival, 90, "Almost there"))

	gotB, ok := s.GetOrderByID(b.ID)
	require.True(t, ok)
	assert.Equal(t, b, gotB)
}

func TestOrderStore_UpdateUnknownOrder(t *testing.T) {
	s, kv, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.AddOrder(ctx, []domain.Product{oakDesk()}, 120)
	require.NoError(t, err)

	before := s.Orders()
	rawBefore, err := kv.Get(ctx, "afterlife-orders")
	require.NoError(t, err)

	err = s.UpdateOrderStatus(ctx, "ORD-nope", domain.StatusTransit, 50, "On its way")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	assert.Equal(t, before, s.Orders())
	rawAfter, err := kv.Get(ctx, "afterlife-orders")
	require.NoError(t, err)
	assert.Equal(t, rawBefore, rawAfter)
}

func TestOrderStore_UpdateValidation(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	o, err := s.AddOrder(ctx, []domain.Product{oakDesk()}, 120)
	require.NoError(t, err)

	assert.ErrorIs(t, s.UpdateOrderStatus(ctx, o.ID, "shipped", 50, "x"), domain.ErrInvalidArgument)
	assert.ErrorIs(t, s.UpdateOrderStatus(ctx, o.ID, domain.StatusTransit, 120, "x"), domain.ErrInvalidArgument)

	got, _ := s.GetOrderByID(o.ID)
	assert.Len(t, got.Tracking.StatusHistory, 1)
}

func TestOrderStore_LenientTransitionsByDefault(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	o, err := s.AddOrder(ctx, []domain.Product{oakDesk()}, 120)
	require.NoError(t, err)

	require.NoError(t, s.UpdateOrderStatus(ctx, o.ID, domain.StatusNewBeginning, 100, "Delivered"))
	require.NoError(t, s.UpdateOrderStatus(ctx, o.ID, domain.StatusTransit, 30, "Sent back out"))

	got, _ := s.GetOrderByID(o.ID)
	assert.Equal(t, domain.StatusTransit, got.Tracking.Status)
	assert.Equal(t, 30, got.Tracking.JourneyProgress)
	assert.Len(t, got.Tracking.StatusHistory, 3)
}

func TestOrderStore_StrictTransitions(t *testing.T) {
	reg := metrics.NewRegistry()
	s, _, _ := newTestStore(t, WithStrictTransitions(true), WithMetrics(reg))
	ctx := context.Background()
	o, err := s.AddOrder(ctx, []domain.Product{oakDesk()}, 120)
	require.NoError(t, err)

	require.NoError(t, s.UpdateOrderStatus(ctx, o.ID, domain.StatusNearArrival, 80, "Close"))

	err = s.UpdateOrderStatus(ctx, o.ID, domain.StatusTransit, 50, "Backwards")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, s.UpdateOrderStatus(ctx, o.ID, domain.StatusNewBeginning, 100, "Home"))

	err = s.UpdateOrderStatus(ctx, o.ID, domain.StatusNewBeginning, 100, "Again")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, _ := s.GetOrderByID(o.ID)
	assert.Len(t, got.Tracking.StatusHistory, 3)
	assert.Equal(t, 2.0, testutil.ToFloat64(reg.RejectedUpdates.WithLabelValues("invalid_transition")))
}

func TestOrderStore_ApplyStatusUpdateWithLocation(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	o, err := s.AddOrder(ctx, []domain.Product{oakDesk()}, 120)
	require.NoError(t, err)

	hub := "Hartford sorting hub"
	updated, err := s.ApplyStatusUpdate(ctx, o.ID, domain.StatusUpdate{
		Status: domain.StatusTransit, Progress: 45, Message: "Sorted", Location: &hub,
	})
	require.NoError(t, err)
	assert.Equal(t, hub, updated.Tracking.CurrentLocation)

	got, _ := s.GetOrderByID(o.ID)
	assert.Equal(t, updated, got)
}

func TestOrderStore_PersistsAndReloads(t *testing.T) {
	kv := storage.NewMemoryAdapter()
	repo := adapters.NewKVOrderRepository(kv, "afterlife-orders")
	ctx := context.Background()
	clk := clock.NewManual(start)

	s, err := NewOrderStore(ctx, repo, WithClock(clk))
	require.NoError(t, err)
	o, err := s.AddOrder(ctx, []domain.Product{oakDesk()}, 120)
	require.NoError(t, err)
	require.NoError(t, s.UpdateOrderStatus(ctx, o.ID, domain.StatusTransit, 50, "On its way"))

	reloaded, err := NewOrderStore(ctx, repo, WithClock(clk))
	require.NoError(t, err)
	assert.Equal(t, s.Orders(), reloaded.Orders())

	// A fresh store on the same data never reissues an existing id.
	next, err := reloaded.AddOrder(ctx, []domain.Product{oakDesk()}, 5)
	require.NoError(t, err)
	assert.NotEqual(t, o.ID, next.ID)
}

func TestOrderStore_MalformedStateStartsEmpty(t *testing.T) {
	kv := storage.NewMemoryAdapter()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "afterlife-orders", []byte("{definitely not json")))

	s, err := NewOrderStore(ctx, adapters.NewKVOrderRepository(kv, "afterlife-orders"))
	require.NoError(t, err)
	assert.Empty(t, s.Orders())

	_, err = s.AddOrder(ctx, []domain.Product{oakDesk()}, 1)
	require.NoError(t, err)
	assert.Len(t, s.Orders(), 1)
}

func TestOrderStore_LoadError(t *testing.T) {
	repo := new(MockOrderRepository)
	repo.On("Load", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	s, err := NewOrderStore(context.Background(), repo)
	assert.Nil(t, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load orders")
	repo.AssertExpectations(t)
}

func TestOrderStore_SaveFailureKeepsMemoryUnchanged(t *testing.T) {
	repo := new(MockOrderRepository)
	ctx := context.Background()
	reg := metrics.NewRegistry()

	repo.On("Load", mock.Anything).Return([]domain.Order{}, nil).Once()
	s, err := NewOrderStore(ctx, repo, WithClock(clock.NewManual(start)), WithMetrics(reg))
	require.NoError(t, err)

	t.Run("AddOrder", func(t *testing.T) {
		repo.On("Save", mock.Anything, mock.AnythingOfType("[]domain.Order")).Return(errors.New("disk full")).Once()

		_, err := s.AddOrder(ctx, []domain.Product{oakDesk()}, 120)
		assert.Error(t, err)
		assert.Empty(t, s.Orders())
	})

	t.Run("UpdateOrderStatus", func(t *testing.T) {
		repo.On("Save", mock.Anything, mock.AnythingOfType("[]domain.Order")).Return(nil).Once()
		o, err := s.AddOrder(ctx, []domain.Product{oakDesk()}, 120)
		require.NoError(t, err)

		repo.On("Save", mock.Anything, mock.AnythingOfType("[]domain.Order")).Return(errors.New("disk full")).Once()
		err = s.UpdateOrderStatus(ctx, o.ID, domain.StatusTransit, 50, "On its way")
		assert.Error(t, err)

		got, _ := s.GetOrderByID(o.ID)
		assert.Equal(t, o, got)
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(reg.PersistFailures))
	repo.AssertExpectations(t)
}

func TestOrderStore_Metrics(t *testing.T) {
	reg := metrics.NewRegistry()
	s, _, _ := newTestStore(t, WithMetrics(reg))
	ctx := context.Background()

	o, err := s.AddOrder(ctx, []domain.Product{oakDesk()}, 120)
	require.NoError(t, err)
	require.NoError(t, s.UpdateOrderStatus(ctx, o.ID, domain.StatusTransit, 50, "On its way"))
	assert.Error(t, s.UpdateOrderStatus(ctx, "ORD-x", domain.StatusTransit, 50, "x"))

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.OrdersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.OrdersInStore))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.StatusUpdates.WithLabelValues("transit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.RejectedUpdates.WithLabelValues("not_found")))
}
