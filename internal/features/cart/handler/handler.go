package handler

import (
	"errors"
	"net/http"

	"afterlife/internal/core/logger"
	"afterlife/internal/features/cart/domain"
	"afterlife/internal/features/cart/ports"
	orderdomain "afterlife/internal/features/orders/domain"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartHandler handles HTTP requests for the cart.
type CartHandler struct {
	service ports.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service ports.CartService) *CartHandler {
	return &CartHandler{
		service: service,
	}
}

// Register mounts the cart routes on r.
func (h *CartHandler) Register(r fiber.Router) {
	r.Get("/cart", h.GetCart)
	r.Post("/cart/items", h.AddItem)
	r.Delete("/cart/items/:productId", h.RemoveItem)
	r.Post("/cart/checkout", h.Checkout)
}

// AddItemRequest represents the request body for adding a product to the cart.
type AddItemRequest struct {
	Product  orderdomain.Product `json:"product"`
	Quantity int                 `json:"quantity"` // Defaults to 1
}

// CartResponse is the cart with its totals.
type CartResponse struct {
	Items    []domain.CartItem `json:"items"`
	Count    int               `json:"count"`
	Subtotal float64           `json:"subtotal"`
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	Message string `json:"message"`
	RayID   string `json:"ray_id"`
}

func newCartResponse(cart domain.Cart) CartResponse {
	items := cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return CartResponse{
		Items:    items,
		Count:    cart.Count(),
		Subtotal: cart.Subtotal(),
	}
}

// GetCart handles GET /cart.
// @Summary Get the cart
// @Description Returns the cart lines with unit count and subtotal.
// @Tags cart
// @Produce json
// @Success 200 {object} CartResponse
// @Failure 500 {object} ErrorResponse
// @Router /cart [get]
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	cart, err := h.service.Cart(c.UserContext())
	if err != nil {
		return h.fail(c, "Failed to get cart", err)
	}

	return c.Status(http.StatusOK).JSON(newCartResponse(cart))
}

// AddItem handles POST /cart/items.
// @Summary Add a product to the cart
// @Description Adds the product, or raises its quantity when it is already in the cart.
// @Tags cart
// @Accept json
// @Produce json
// @Param item body AddItemRequest true "Product and quantity"
// @Success 200 {object} CartResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Invalid request body",
			RayID:   rayID(c),
		})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := h.service.AddToCart(c.UserContext(), req.Product, req.Quantity)
	if err != nil {
		return h.fail(c, "Failed to add item to cart", err)
	}

	return c.Status(http.StatusOK).JSON(newCartResponse(cart))
}

// RemoveItem handles DELETE /cart/items/:productId.
// @Summary Remove a product from the cart
// @Tags cart
// @Produce json
// @Param productId path string true "Product ID"
// @Success 200 {object} CartResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /cart/items/{productId} [delete]
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	cart, err := h.service.RemoveFromCart(c.UserContext(), c.Params("productId"))
	if err != nil {
		return h.fail(c, "Failed to remove item from cart", err)
	}

	return c.Status(http.StatusOK).JSON(newCartResponse(cart))
}

// Checkout handles POST /cart/checkout.
// @Summary Check out the cart
// @Description Places one order for the cart contents at the subtotal and empties the cart.
// @Tags cart
// @Produce json
// @Success 201 {object} orderdomain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /cart/checkout [post]
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	order, err := h.service.Checkout(c.UserContext())
	if err != nil {
		return h.fail(c, "Failed to check out cart", err)
	}

	return c.Status(http.StatusCreated).JSON(order)
}

func (h *CartHandler) fail(c *fiber.Ctx, logMsg string, err error) error {
	switch {
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidItem),
		errors.Is(err, orderdomain.ErrInvalidArgument):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Message: err.Error(), RayID: rayID(c)})
	case errors.Is(err, domain.ErrItemNotInCart):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{Message: "Item not in cart", RayID: rayID(c)})
	}

	logger.Get().Error(logMsg, zap.String("ray_id", rayID(c)), zap.Error(err))
	return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
		Message: "Internal server error",
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
