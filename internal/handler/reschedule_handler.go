package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lagoon-stays/service-reservation/internal/application"
	"github.com/lagoon-stays/service-reservation/internal/auth"
	"github.com/lagoon-stays/service-reservation/internal/middleware"
	"github.com/lagoon-stays/service-reservation/internal/response"
)

// RescheduleHandler handles HTTP requests for the reschedule workflow.
type RescheduleHandler struct {
	service *application.RescheduleService
}

// NewRescheduleHandler creates a new RescheduleHandler.
func NewRescheduleHandler(service *application.RescheduleService) *RescheduleHandler {
	return &RescheduleHandler{service: service}
}

// RegisterRoutes registers reschedule routes on the given router group.
func (h *RescheduleHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	reschedules := r.Group("/api/v1/reschedules")
	reschedules.Use(middleware.Auth(jwtManager))
	{
		reschedules.POST("", h.SubmitRequest)
		reschedules.GET("/booking/:bookingId", h.ListByBooking)
	}
}

// SubmitRequest handles POST /api/v1/reschedules.
func (h *RescheduleHandler) SubmitRequest(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.SubmitRescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SubmitRequest(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListByBooking handles GET /api/v1/reschedules/booking/:bookingId.
func (h *RescheduleHandler) ListByBooking(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.ListByBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
