package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/maker-atelier/service-booking/internal/application"
	"github.com/maker-atelier/service-booking/pkg/response"
)

// CouponHandler handles HTTP requests for coupon operations.
type CouponHandler struct {
	service *application.CouponService
}

// NewCouponHandler creates a new CouponHandler.
func NewCouponHandler(service *application.CouponService) *CouponHandler {
	return &CouponHandler{service: service}
}

// RegisterRoutes registers the public coupon routes. Validation is
// unauthenticated so the booking page can check a code before checkout.
func (h *CouponHandler) RegisterRoutes(r *gin.RouterGroup) {
	coupons := r.Group("/coupons")
	{
		coupons.POST("/validate", h.ValidateCoupon)
	}
}

// ValidateCoupon handles POST /api/v1/coupons/validate.
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	var req application.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ValidateCoupon(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
