package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/maker-atelier/service-booking/internal/application"
	"github.com/maker-atelier/service-booking/pkg/response"
)

// WorkshopHandler handles HTTP requests for the public workshop catalogue.
type WorkshopHandler struct {
	service *application.WorkshopService
}

// NewWorkshopHandler creates a new WorkshopHandler.
func NewWorkshopHandler(service *application.WorkshopService) *WorkshopHandler {
	return &WorkshopHandler{service: service}
}

// RegisterRoutes registers the public workshop routes.
func (h *WorkshopHandler) RegisterRoutes(r *gin.RouterGroup) {
	workshops := r.Group("/workshops")
	{
		workshops.GET("", h.ListWorkshops)
		workshops.GET("/:id", h.GetWorkshop)
	}
}

// ListWorkshops handles GET /api/v1/workshops.
func (h *WorkshopHandler) ListWorkshops(c *gin.Context) {
	result, err := h.service.ListActiveWorkshops(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetWorkshop handles GET /api/v1/workshops/:id.
func (h *WorkshopHandler) GetWorkshop(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid workshop id")
		return
	}

	result, err := h.service.GetWorkshop(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
