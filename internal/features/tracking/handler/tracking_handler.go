package handler

import (
	"errors"

	orderdomain "afterlife/internal/features/orders/domain"
	"afterlife/internal/features/tracking/service"

	"github.com/gofiber/fiber/v2"
)

// TrackingHandler handles HTTP requests for tracking operations.
type TrackingHandler struct {
	trackingService *service.TrackingService
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(trackingService *service.TrackingService) *TrackingHandler {
	return &TrackingHandler{
		trackingService: trackingService,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// GetJourney godoc
// @Summary Get the delivery journey of an order
// @Description Returns the four journey stages, the current one, progress, location and history
// @Tags tracking
// @Produce json
// @Param orderId path string true "Order ID"
// @Success 200 {object} domain.Journey
// @Failure 404 {object} ErrorResponse
// @Router /tracking/{orderId} [get]
func (h *TrackingHandler) GetJourney(c *fiber.Ctx) error {
	rayID, _ := c.Locals("requestid").(string)

	journey, err := h.trackingService.GetJourney(c.Params("orderId"))
	if err != nil {
		if errors.Is(err, orderdomain.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Message: "order not found",
				RayID:   rayID,
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID,
		})
	}

	return c.JSON(journey)
}
