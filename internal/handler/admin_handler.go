package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/maker-atelier/service-booking/internal/application"
	"github.com/maker-atelier/service-booking/pkg/auth"
	"github.com/maker-atelier/service-booking/pkg/middleware"
	"github.com/maker-atelier/service-booking/pkg/response"
)

// AdminHandler handles the back office: coupon management, workshop
// management, booking oversight and revenue stats.
type AdminHandler struct {
	couponService   *application.CouponService
	workshopService *application.WorkshopService
	bookingService  *application.BookingService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	couponService *application.CouponService,
	workshopService *application.WorkshopService,
	bookingService *application.BookingService,
) *AdminHandler {
	return &AdminHandler{
		couponService:   couponService,
		workshopService: workshopService,
		bookingService:  bookingService,
	}
}

// RegisterRoutes registers all admin routes behind JWT auth with the admin role.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/admin")
	admin.Use(authMW, adminRole)
	{
		admin.POST("/coupons", h.CreateCoupon)
		admin.GET("/coupons", h.ListCoupons)
		admin.DELETE("/coupons/:id", h.DeactivateCoupon)

		admin.POST("/workshops", h.CreateWorkshop)
		admin.PATCH("/workshops/:id", h.UpdateWorkshop)
		admin.DELETE("/workshops/:id", h.DeactivateWorkshop)

		admin.GET("/bookings", h.ListBookings)
		admin.POST("/bookings/:id/cancel", h.CancelBooking)
		admin.GET("/stats/bookings", h.BookingStats)
	}
}

// CreateCoupon handles POST /api/v1/admin/coupons.
func (h *AdminHandler) CreateCoupon(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.couponService.CreateCoupon(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListCoupons handles GET /api/v1/admin/coupons.
func (h *AdminHandler) ListCoupons(c *gin.Context) {
	page, limit := pagination(c)

	coupons, total, err := h.couponService.ListCoupons(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, coupons, total, page, limit)
}

// DeactivateCoupon handles DELETE /api/v1/admin/coupons/:id. Coupons are
// never hard deleted so redemption history stays auditable.
func (h *AdminHandler) DeactivateCoupon(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid coupon id")
		return
	}

	if err := h.couponService.DeactivateCoupon(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deactivated": true})
}

// CreateWorkshop handles POST /api/v1/admin/workshops.
func (h *AdminHandler) CreateWorkshop(c *gin.Context) {
	var req application.CreateWorkshopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.workshopService.CreateWorkshop(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateWorkshop handles PATCH /api/v1/admin/workshops/:id.
func (h *AdminHandler) UpdateWorkshop(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid workshop id")
		return
	}

	var req application.UpdateWorkshopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.workshopService.UpdateWorkshop(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeactivateWorkshop handles DELETE /api/v1/admin/workshops/:id.
func (h *AdminHandler) DeactivateWorkshop(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid workshop id")
		return
	}

	if err := h.workshopService.DeactivateWorkshop(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deactivated": true})
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := pagination(c)

	bookings, total, err := h.bookingService.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

type cancelBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CancelBooking handles POST /api/v1/admin/bookings/:id/cancel.
func (h *AdminHandler) CancelBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}

	var req cancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookingService.CancelBooking(c.Request.Context(), id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	stats, err := h.bookingService.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
