package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lagoon-stays/service-reservation/internal/domain"
	bookingDomain "github.com/lagoon-stays/service-reservation/internal/domain/booking"
	feedbackDomain "github.com/lagoon-stays/service-reservation/internal/domain/feedback"
	notificationDomain "github.com/lagoon-stays/service-reservation/internal/domain/notification"
	"github.com/lagoon-stays/service-reservation/internal/events"
)

// SubmitFeedbackRequest holds the data needed to submit feedback.
type SubmitFeedbackRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
	Rating    int       `json:"rating" binding:"required"`
	Comment   string    `json:"comment"`
}

// FeedbackDTO is the response representation of feedback.
type FeedbackDTO struct {
	ID        uuid.UUID `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedbackService gates feedback on completed stays: the completion rule is
// evaluated before eligibility, so a booking whose check-out has passed can
// receive feedback on the same request that completes it.
type FeedbackService struct {
	feedbacks  feedbackDomain.Repository
	bookings   bookingDomain.Repository
	bookingSvc *BookingService
	notifier   notificationDomain.Notifier
	producer   EventPublisher
	clock      domain.Clock
	logger     *zap.Logger
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(
	feedbacks feedbackDomain.Repository,
	bookings bookingDomain.Repository,
	bookingSvc *BookingService,
	notifier notificationDomain.Notifier,
	producer EventPublisher,
	clock domain.Clock,
	logger *zap.Logger,
) *FeedbackService {
	return &FeedbackService{
		feedbacks:  feedbacks,
		bookings:   bookings,
		bookingSvc: bookingSvc,
		notifier:   notifier,
		producer:   producer,
		clock:      clock,
		logger:     logger,
	}
}

// SubmitFeedback records feedback for a booking the actor personally owns.
// Only completed bookings are eligible, and each booking accepts feedback
// exactly once.
func (s *FeedbackService) SubmitFeedback(ctx context.Context, actor domain.Actor, req SubmitFeedbackRequest) (*FeedbackDTO, error) {
	bk, err := s.bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	// Ownership is strict here: admins cannot submit feedback on behalf of
	// a customer.
	if !actor.Owns(bk.UserID()) {
		return nil, domain.NewForbiddenError("you can only submit feedback for your own bookings")
	}

	// Evaluate lazy completion before the eligibility check, so a stay whose
	// check-out has passed becomes reviewable on this very request.
	if err := s.bookingSvc.applyLazyCompletion(ctx, bk); err != nil {
		return nil, err
	}
	if bk.Status() != bookingDomain.StatusCompleted {
		return nil, domain.NewConflictError("feedback can only be submitted for completed bookings")
	}

	fb, err := feedbackDomain.NewFeedback(req.BookingID, actor.UserID, req.Rating, req.Comment, s.clock.Now())
	if err != nil {
		return nil, err
	}

	// Save enforces one-feedback-per-booking atomically.
	if err := s.feedbacks.Save(ctx, fb); err != nil {
		return nil, err
	}

	s.notifier.Emit(ctx, actor.UserID, "Thank You for Your Feedback",
		fmt.Sprintf("Thank you for your %s feedback on booking #%s! Your %d-star review helps us improve our service.",
			ratingAdjective(fb.Rating()), fb.BookingID(), fb.Rating()),
		notificationDomain.CategorySystem)

	evt := events.FeedbackEvent{
		FeedbackID: fb.ID(),
		BookingID:  fb.BookingID(),
		UserID:     fb.UserID(),
		Rating:     fb.Rating(),
		OccurredAt: s.clock.Now(),
	}
	publishEvent(ctx, s.producer, s.logger, events.FeedbackSubmitted, fb.BookingID().String(), evt)

	result := toFeedbackDTO(fb)
	return &result, nil
}

// GetByBooking retrieves the feedback for a booking, or nil if none has been
// submitted yet.
func (s *FeedbackService) GetByBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (*FeedbackDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(bk.UserID()) {
		return nil, domain.NewForbiddenError("unauthorized to view feedback for this booking")
	}

	fb, err := s.feedbacks.FindByBooking(ctx, bookingID)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}

	result := toFeedbackDTO(fb)
	return &result, nil
}

// GetYearlyStats aggregates rating statistics for a calendar year (admin).
func (s *FeedbackService) GetYearlyStats(ctx context.Context, actor domain.Actor, year int) (*feedbackDomain.YearlyStats, error) {
	if !actor.IsAdmin() {
		return nil, domain.NewForbiddenError("only administrators can view feedback statistics")
	}
	if year < 2000 || year > 2100 {
		return nil, domain.NewValidationError("year must be between 2000 and 2100")
	}
	return s.feedbacks.StatsForYear(ctx, year)
}

func ratingAdjective(rating int) string {
	switch {
	case rating >= 4:
		return "excellent"
	case rating >= 3:
		return "good"
	default:
		return "valuable"
	}
}

func toFeedbackDTO(fb *feedbackDomain.Feedback) FeedbackDTO {
	return FeedbackDTO{
		ID:        fb.ID(),
		BookingID: fb.BookingID(),
		UserID:    fb.UserID(),
		Rating:    fb.Rating(),
		Comment:   fb.Comment(),
		CreatedAt: fb.CreatedAt(),
	}
}
