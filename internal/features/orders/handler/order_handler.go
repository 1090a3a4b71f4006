package handler

import (
	"errors"
	"net/http"

	"afterlife/internal/core/logger"
	"afterlife/internal/features/orders/domain"
	"afterlife/internal/features/orders/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests related to orders.
type OrderHandler struct {
	// store is the order store shared by every surface of the application.
	store ports.OrderStore
}

// NewOrderHandler creates a new instance of OrderHandler.
func NewOrderHandler(store ports.OrderStore) *OrderHandler {
	return &OrderHandler{
		store: store,
	}
}

// Register mounts the order routes on r.
func (h *OrderHandler) Register(r fiber.Router) {
	r.Get("/orders", h.ListOrders)
	r.Post("/orders", h.CreateOrder)
	r.Get("/orders/:id", h.GetOrder)
	r.Post("/orders/:id/status", h.UpdateStatus)
}

// CreateOrderRequest represents the request body for placing an order.
type CreateOrderRequest struct {
	Products    []domain.Product `json:"products"`
	TotalAmount float64          `json:"totalAmount"`
}

// UpdateStatusRequest represents the request body for a delivery status update.
type UpdateStatusRequest struct {
	Status   domain.DeliveryStatus `json:"status"`
	Progress int                   `json:"progress"`
	Message  string                `json:"message"`
	// Location replaces the current location when present.
	Location *string `json:"location,omitempty"`
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}

// ListOrders handles GET /orders.
// @Summary List orders
// @Description Returns every order, most recent first.
// @Tags orders
// @Produce json
// @Success 200 {array} domain.Order
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(h.store.Orders())
}

// GetOrder handles GET /orders/:id.
// @Summary Get Order by ID
// @Description Fetch one order with its delivery tracking.
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")

	order, ok := h.store.GetOrderByID(orderID)
	if !ok {
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{
			Message: "Order not found",
			RayID:   rayID(c),
		})
	}

	return c.Status(http.StatusOK).JSON(order)
}

// CreateOrder handles POST /orders.
// @Summary Place an order
// @Description Creates an order from a cart selection and starts its delivery journey.
// @Tags orders
// @Accept json
// @Produce json
// @Param order body CreateOrderRequest true "Products and total"
// @Success 201 {object} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Invalid request body",
			RayID:   rayID(c),
		})
	}

	order, err := h.store.AddOrder(c.UserContext(), req.Products, req.TotalAmount)
	if err != nil {
		return h.fail(c, "Failed to place order", "", err)
	}

	return c.Status(http.StatusCreated).JSON(order)
}

// UpdateStatus handles POST /orders/:id/status.
// @Summary Update delivery status
// @Description Moves the order's delivery to a new stage and appends a history entry.
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param update body UpdateStatusRequest true "New status"
// @Success 200 {object} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /orders/{id}/status [post]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Invalid request body",
			RayID:   rayID(c),
		})
	}

	order, err := h.store.ApplyStatusUpdate(c.UserContext(), orderID, domain.StatusUpdate{
		Status:   req.Status,
		Progress: req.Progress,
		Message:  req.Message,
		Location: req.Location,
	})
	if err != nil {
		return h.fail(c, "Failed to update order status", orderID, err)
	}

	return c.Status(http.StatusOK).JSON(order)
}

// fail maps store errors to HTTP statuses.
func (h *OrderHandler) fail(c *fiber.Ctx, logMsg, orderID string, err error) error {
	status := http.StatusInternalServerError
	msg := "Internal Server Error"

	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, domain.ErrOrderNotFound):
		status = http.StatusNotFound
		msg = "Order not found"
	case errors.Is(err, domain.ErrInvalidTransition):
		status = http.StatusConflict
		msg = err.Error()
	default:
		logger.Get().Error(logMsg,
			zap.String("order_id", orderID),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)
	}

	return c.Status(status).JSON(ErrorResponse{
		Message: msg,
		RayID:   rayID(c),
	})
}

func rayID(c *fiber.Ctx) string {
	id, ok := c.Locals("requestid").(string)
	if !ok {
		return "unknown"
	}
	return id
}
