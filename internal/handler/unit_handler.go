package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lagoon-stays/service-reservation/internal/application"
	"github.com/lagoon-stays/service-reservation/internal/response"
)

// UnitHandler handles public HTTP requests for the unit catalog.
type UnitHandler struct {
	service *application.UnitService
}

// NewUnitHandler creates a new UnitHandler.
func NewUnitHandler(service *application.UnitService) *UnitHandler {
	return &UnitHandler{service: service}
}

// RegisterRoutes registers the public catalog routes. Reads are open;
// catalog writes live under the admin routes.
func (h *UnitHandler) RegisterRoutes(r *gin.RouterGroup) {
	units := r.Group("/api/v1/units")
	{
		units.GET("", h.ListUnits)
		units.GET("/:id", h.GetUnit)
	}
}

// ListUnits handles GET /api/v1/units.
func (h *UnitHandler) ListUnits(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListUnits(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetUnit handles GET /api/v1/units/:id.
func (h *UnitHandler) GetUnit(c *gin.Context) {
	unitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid unit ID")
		return
	}

	result, err := h.service.GetUnit(c.Request.Context(), unitID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
