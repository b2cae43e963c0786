package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/maker-atelier/service-booking/internal/application"
	"github.com/maker-atelier/service-booking/pkg/response"
)

// BookingHandler handles HTTP requests for the customer booking flow.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers the public booking routes.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	{
		bookings.POST("/checkout", h.CreateCheckout)
		bookings.POST("/confirm", h.ConfirmBooking)
		bookings.GET("/:id", h.GetBooking)
	}
}

// CreateCheckout handles POST /api/v1/bookings/checkout.
func (h *BookingHandler) CreateCheckout(c *gin.Context) {
	var req application.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateCheckout(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ConfirmBooking handles POST /api/v1/bookings/confirm. The success page
// calls it with the session id from the checkout redirect; confirmation is
// idempotent because the provider event consumer may get there first.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	var req application.ConfirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ConfirmBooking(c.Request.Context(), req.SessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
