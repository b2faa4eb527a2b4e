package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lagoon-stays/service-reservation/internal/application"
	"github.com/lagoon-stays/service-reservation/internal/auth"
	"github.com/lagoon-stays/service-reservation/internal/domain"
	"github.com/lagoon-stays/service-reservation/internal/middleware"
	"github.com/lagoon-stays/service-reservation/internal/response"
)

// AdminHandler handles admin HTTP requests: booking resolution, reschedule
// resolution, catalog writes, statistics and outbound notifications.
type AdminHandler struct {
	bookings      *application.BookingService
	reschedules   *application.RescheduleService
	feedbacks     *application.FeedbackService
	units         *application.UnitService
	notifications *application.NotificationService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	bookings *application.BookingService,
	reschedules *application.RescheduleService,
	feedbacks *application.FeedbackService,
	units *application.UnitService,
	notifications *application.NotificationService,
) *AdminHandler {
	return &AdminHandler{
		bookings:      bookings,
		reschedules:   reschedules,
		feedbacks:     feedbacks,
		units:         units,
		notifications: notifications,
	}
}

// RegisterRoutes registers admin routes. Every route requires an
// authenticated admin; the services enforce the same rule again.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.Auth(jwtManager), middleware.RequireRole(domain.RoleAdmin))
	{
		admin.GET("/bookings", h.ListBookings)
		admin.POST("/bookings/:id/approve", h.ApproveBooking)
		admin.POST("/bookings/:id/decline", h.DeclineBooking)

		admin.GET("/reschedules", h.ListReschedules)
		admin.POST("/reschedules/:id/approve", h.ApproveReschedule)
		admin.POST("/reschedules/:id/decline", h.DeclineReschedule)

		admin.POST("/units", h.CreateUnit)
		admin.PUT("/units/:id", h.UpdateUnit)
		admin.DELETE("/units/:id", h.DeleteUnit)

		admin.POST("/notifications", h.SendNotification)

		admin.GET("/stats/bookings", h.BookingStats)
		admin.GET("/stats/feedbacks", h.FeedbackStats)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)

	result, err := h.bookings.ListBookings(c.Request.Context(), actor, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// ApproveBooking handles POST /api/v1/admin/bookings/:id/approve.
func (h *AdminHandler) ApproveBooking(c *gin.Context) {
	resolveBooking(c, h.bookings.ApproveBooking)
}

// DeclineBooking handles POST /api/v1/admin/bookings/:id/decline.
func (h *AdminHandler) DeclineBooking(c *gin.Context) {
	resolveBooking(c, h.bookings.DeclineBooking)
}

func resolveBooking(c *gin.Context, resolve func(context.Context, domain.Actor, uuid.UUID) (*application.BookingDTO, error)) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := resolve(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListReschedules handles GET /api/v1/admin/reschedules.
func (h *AdminHandler) ListReschedules(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)

	result, err := h.reschedules.ListAll(c.Request.Context(), actor, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// ApproveReschedule handles POST /api/v1/admin/reschedules/:id/approve.
func (h *AdminHandler) ApproveReschedule(c *gin.Context) {
	resolveReschedule(c, h.reschedules.ApproveRequest)
}

// DeclineReschedule handles POST /api/v1/admin/reschedules/:id/decline.
func (h *AdminHandler) DeclineReschedule(c *gin.Context) {
	resolveReschedule(c, h.reschedules.DeclineRequest)
}

func resolveReschedule(c *gin.Context, resolve func(context.Context, domain.Actor, uuid.UUID) (*application.RescheduleDTO, error)) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reschedule request ID")
		return
	}

	result, err := resolve(c.Request.Context(), actor, requestID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateUnit handles POST /api/v1/admin/units.
func (h *AdminHandler) CreateUnit(c *gin.Context) {
	var req application.UpsertUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.units.CreateUnit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateUnit handles PUT /api/v1/admin/units/:id.
func (h *AdminHandler) UpdateUnit(c *gin.Context) {
	unitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid unit ID")
		return
	}

	var req application.UpsertUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.units.UpdateUnit(c.Request.Context(), unitID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteUnit handles DELETE /api/v1/admin/units/:id.
func (h *AdminHandler) DeleteUnit(c *gin.Context) {
	unitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid unit ID")
		return
	}

	if err := h.units.DeleteUnit(c.Request.Context(), unitID); err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessMessage(c, "unit deleted", nil)
}

// SendNotification handles POST /api/v1/admin/notifications.
func (h *AdminHandler) SendNotification(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.notifications.Send(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	stats, err := h.bookings.GetBookingStats(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// FeedbackStats handles GET /api/v1/admin/stats/feedbacks.
func (h *AdminHandler) FeedbackStats(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	year, err := strconv.Atoi(c.DefaultQuery("year", "0"))
	if err != nil || year == 0 {
		response.BadRequest(c, "year query parameter is required")
		return
	}

	stats, err := h.feedbacks.GetYearlyStats(c.Request.Context(), actor, year)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
