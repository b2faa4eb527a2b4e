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

// FeedbackHandler handles HTTP requests for feedback operations.
type FeedbackHandler struct {
	service *application.FeedbackService
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(service *application.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// RegisterRoutes registers feedback routes on the given router group.
func (h *FeedbackHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	feedbacks := r.Group("/api/v1/feedbacks")
	feedbacks.Use(middleware.Auth(jwtManager))
	{
		feedbacks.POST("", h.SubmitFeedback)
		feedbacks.GET("/booking/:bookingId", h.GetByBooking)
	}
}

// SubmitFeedback handles POST /api/v1/feedbacks.
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SubmitFeedback(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetByBooking handles GET /api/v1/feedbacks/booking/:bookingId. Returns a
// null payload when no feedback has been submitted yet.
func (h *FeedbackHandler) GetByBooking(c *gin.Context) {
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

	result, err := h.service.GetByBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
