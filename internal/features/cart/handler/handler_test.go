package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"afterlife/internal/features/cart/domain"
	orderdomain "afterlife/internal/features/orders/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCartService is a mock implementation of ports.CartService
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Cart(ctx context.Context) (domain.Cart, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Cart), args.Error(1)
}

func (m *MockCartService) AddToCart(ctx context.Context, product orderdomain.Product, quantity int) (domain.Cart, error) {
	args := m.Called(ctx, product, quantity)
	return args.Get(0).(domain.Cart), args.Error(1)
}

func (m *MockCartService) RemoveFromCart(ctx context.Context, productID string) (domain.Cart, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(domain.Cart), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCartService) Checkout(ctx context.Context) (orderdomain.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).(orderdomain.Order), args.Error(1)
}

func setupApp(service *MockCartService) *fiber.App {
	app := fiber.New()
	NewCartHandler(service).Register(app)
	return app
}

var vase = orderdomain.Product{ID: "p-vase", Name: "Murano Vase", Price: 55}

func TestCartHandler_GetCart(t *testing.T) {
	mockService := new(MockCartService)
	app := setupApp(mockService)

	cart := domain.Cart{Items: []domain.CartItem{{Product: vase, Quantity: 2}}}
	mockService.On("Cart", mock.Anything).Return(cart, nil).Once()

	resp, err := app.Test(httptest.NewRequest("GET", "/cart", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body CartResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
	assert.InDelta(t, 110.0, body.Subtotal, 1e-9)
	mockService.AssertExpectations(t)
}

func TestCartHandler_AddItem(t *testing.T) {
	t.Run("DefaultsQuantity", func(t *testing.T) {
		mockService := new(MockCartService)
		app := setupApp(mockService)

		body, _ := json.Marshal(AddItemRequest{Product: vase})
		mockService.On("AddToCart", mock.Anything, vase, 1).
			Return(domain.Cart{Items: []domain.CartItem{{Product: vase, Quantity: 1}}}, nil).Once()

		req := httptest.NewRequest("POST", "/cart/items", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidItem", func(t *testing.T) {
		mockService := new(MockCartService)
		app := setupApp(mockService)

		body, _ := json.Marshal(AddItemRequest{Product: vase, Quantity: -2})
		mockService.On("AddToCart", mock.Anything, vase, -2).Return(domain.Cart{}, domain.ErrInvalidItem).Once()

		req := httptest.NewRequest("POST", "/cart/items", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockService.AssertExpectations(t)
	})
}

func TestCartHandler_RemoveItem(t *testing.T) {
	mockService := new(MockCartService)
	app := setupApp(mockService)

	mockService.On("RemoveFromCart", mock.Anything, "p-none").Return(domain.Cart{}, domain.ErrItemNotInCart).Once()

	resp, err := app.Test(httptest.NewRequest("DELETE", "/cart/items/p-none", nil))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	mockService.AssertExpectations(t)
}

func TestCartHandler_Checkout(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockCartService)
		app := setupApp(mockService)

		order := orderdomain.Order{ID: "ORD-1", Products: []orderdomain.Product{vase}, TotalAmount: 55}
		mockService.On("Checkout", mock.Anything).Return(order, nil).Once()

		resp, err := app.Test(httptest.NewRequest("POST", "/cart/checkout", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var got orderdomain.Order
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "ORD-1", got.ID)
		mockService.AssertExpectations(t)
	})

	t.Run("EmptyCart", func(t *testing.T) {
		mockService := new(MockCartService)
		app := setupApp(mockService)

		mockService.On("Checkout", mock.Anything).Return(orderdomain.Order{}, domain.ErrEmptyCart).Once()

		resp, err := app.Test(httptest.NewRequest("POST", "/cart/checkout", nil))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockCartService)
		app := setupApp(mockService)

		mockService.On("Checkout", mock.Anything).Return(orderdomain.Order{}, errors.New("redis down")).Once()

		resp, err := app.Test(httptest.NewRequest("POST", "/cart/checkout", nil))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		var body ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "unknown", body.RayID)
	})
}
