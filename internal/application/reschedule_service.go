package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lagoon-stays/service-reservation/internal/domain"
	bookingDomain "github.com/lagoon-stays/service-reservation/internal/domain/booking"
	notificationDomain "github.com/lagoon-stays/service-reservation/internal/domain/notification"
	rescheduleDomain "github.com/lagoon-stays/service-reservation/internal/domain/reschedule"
	"github.com/lagoon-stays/service-reservation/internal/events"
)

// SubmitRescheduleRequest holds the data needed to propose new stay dates.
type SubmitRescheduleRequest struct {
	BookingID   uuid.UUID `json:"booking_id" binding:"required"`
	NewCheckIn  time.Time `json:"new_check_in" binding:"required"`
	NewCheckOut time.Time `json:"new_check_out" binding:"required"`
	Reason      string    `json:"reason"`
}

// RescheduleDTO is the response representation of a reschedule request.
type RescheduleDTO struct {
	ID          uuid.UUID  `json:"id"`
	BookingID   uuid.UUID  `json:"booking_id"`
	NewCheckIn  time.Time  `json:"new_check_in"`
	NewCheckOut time.Time  `json:"new_check_out"`
	Reason      string     `json:"reason,omitempty"`
	Status      string     `json:"status"`
	RespondedBy *uuid.UUID `json:"responded_by,omitempty"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RescheduleService orchestrates the reschedule workflow: customers propose
// new dates for a booking, admins resolve the proposal, and approval is the
// only path that mutates the booking's dates.
type RescheduleService struct {
	reschedules rescheduleDomain.Repository
	bookings    bookingDomain.Repository
	notifier    notificationDomain.Notifier
	producer    EventPublisher
	clock       domain.Clock
	logger      *zap.Logger
}

// NewRescheduleService creates a new RescheduleService.
func NewRescheduleService(
	reschedules rescheduleDomain.Repository,
	bookings bookingDomain.Repository,
	notifier notificationDomain.Notifier,
	producer EventPublisher,
	clock domain.Clock,
	logger *zap.Logger,
) *RescheduleService {
	return &RescheduleService{
		reschedules: reschedules,
		bookings:    bookings,
		notifier:    notifier,
		producer:    producer,
		clock:       clock,
		logger:      logger,
	}
}

// SubmitRequest creates a pending reschedule request for a booking the actor
// owns. A cancelled booking cannot be rescheduled, and a booking carries at
// most one pending request at a time.
func (s *RescheduleService) SubmitRequest(ctx context.Context, actor domain.Actor, req SubmitRescheduleRequest) (*RescheduleDTO, error) {
	bk, err := s.bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if !actor.CanAccess(bk.UserID()) {
		return nil, domain.NewForbiddenError("unauthorized to reschedule this booking")
	}
	if bk.Status() == bookingDomain.StatusCancelled {
		return nil, domain.NewConflictError("a cancelled booking cannot be rescheduled")
	}

	request, err := rescheduleDomain.NewRequest(req.BookingID, req.NewCheckIn, req.NewCheckOut, req.Reason, s.clock.Now())
	if err != nil {
		return nil, err
	}

	// Save enforces the one-pending-request-per-booking rule atomically.
	if err := s.reschedules.Save(ctx, request); err != nil {
		return nil, err
	}

	s.notifier.Emit(ctx, bk.UserID(), "Reschedule Request Submitted",
		fmt.Sprintf("Your reschedule request for booking #%s has been submitted. New dates: %s to %s. Please wait for admin approval.",
			bk.ID(), request.NewCheckIn().Format(dateLayout), request.NewCheckOut().Format(dateLayout)),
		notificationDomain.CategoryBooking)
	s.publishRescheduleEvent(ctx, events.RescheduleRequested, request, bk.UserID())

	result := toRescheduleDTO(request)
	return &result, nil
}

// ListByBooking retrieves all reschedule requests for one booking, newest
// first. Owners see their own bookings' requests; admins see any.
func (s *RescheduleService) ListByBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) ([]RescheduleDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(bk.UserID()) {
		return nil, domain.NewForbiddenError("unauthorized to view reschedule requests for this booking")
	}

	requests, err := s.reschedules.FindByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	dtos := make([]RescheduleDTO, len(requests))
	for i, r := range requests {
		dtos[i] = toRescheduleDTO(r)
	}
	return dtos, nil
}

// ListAll retrieves all reschedule requests with pagination (admin).
func (s *RescheduleService) ListAll(ctx context.Context, actor domain.Actor, page, limit int) (*domain.PaginatedResult[RescheduleDTO], error) {
	if !actor.IsAdmin() {
		return nil, domain.NewForbiddenError("only administrators can list all reschedule requests")
	}

	requests, total, err := s.reschedules.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]RescheduleDTO, len(requests))
	for i, r := range requests {
		dtos[i] = toRescheduleDTO(r)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// ApproveRequest resolves a pending request as approved and overwrites the
// booking's stay dates with the proposal. The booking's status is not
// touched: approval moves dates, never state.
func (s *RescheduleService) ApproveRequest(ctx context.Context, actor domain.Actor, requestID uuid.UUID) (*RescheduleDTO, error) {
	if !actor.IsAdmin() {
		return nil, domain.NewForbiddenError("only administrators can approve reschedule requests")
	}

	request, err := s.reschedules.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status() != rescheduleDomain.StatusPending {
		return nil, domain.NewConflictError("this reschedule request has already been processed")
	}

	bk, err := s.bookings.FindByID(ctx, request.BookingID())
	if err != nil {
		return nil, err
	}
	if bk.Status() == bookingDomain.StatusCancelled {
		return nil, domain.NewConflictError("cannot reschedule a cancelled booking")
	}

	// Claim the request before touching the booking: the store resolves a
	// request at most once, so a concurrent admin who also read it pending
	// conflicts here and never rewrites the booking's dates.
	now := s.clock.Now()
	if err := request.Approve(actor.UserID, now); err != nil {
		return nil, err
	}
	if err := s.reschedules.Update(ctx, request); err != nil {
		return nil, err
	}

	if err := bk.Reschedule(request.NewCheckIn(), request.NewCheckOut(), now); err != nil {
		return nil, err
	}
	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.notifier.Emit(ctx, bk.UserID(), "Reschedule Request Approved",
		fmt.Sprintf("Your reschedule request for booking #%s has been approved. New dates: %s to %s.",
			bk.ID(), bk.CheckIn().Format(dateLayout), bk.CheckOut().Format(dateLayout)),
		notificationDomain.CategoryBooking)
	s.publishRescheduleEvent(ctx, events.BookingRescheduled, request, bk.UserID())

	result := toRescheduleDTO(request)
	return &result, nil
}

// DeclineRequest resolves a pending request as declined. The booking keeps
// its current dates.
func (s *RescheduleService) DeclineRequest(ctx context.Context, actor domain.Actor, requestID uuid.UUID) (*RescheduleDTO, error) {
	if !actor.IsAdmin() {
		return nil, domain.NewForbiddenError("only administrators can decline reschedule requests")
	}

	request, err := s.reschedules.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	bk, err := s.bookings.FindByID(ctx, request.BookingID())
	if err != nil {
		return nil, err
	}

	if err := request.Decline(actor.UserID, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.reschedules.Update(ctx, request); err != nil {
		return nil, err
	}

	s.notifier.Emit(ctx, bk.UserID(), "Reschedule Request Declined",
		fmt.Sprintf("Your reschedule request for booking #%s has been declined. Your original booking dates remain unchanged.", bk.ID()),
		notificationDomain.CategoryBooking)
	s.publishRescheduleEvent(ctx, events.RescheduleDeclined, request, bk.UserID())

	result := toRescheduleDTO(request)
	return &result, nil
}

func (s *RescheduleService) publishRescheduleEvent(ctx context.Context, eventType string, r *rescheduleDomain.Request, userID uuid.UUID) {
	evt := events.RescheduleEvent{
		RequestID:   r.ID(),
		BookingID:   r.BookingID(),
		UserID:      userID,
		NewCheckIn:  r.NewCheckIn(),
		NewCheckOut: r.NewCheckOut(),
		Status:      string(r.Status()),
		OccurredAt:  s.clock.Now(),
	}
	publishEvent(ctx, s.producer, s.logger, eventType, r.BookingID().String(), evt)
}

func toRescheduleDTO(r *rescheduleDomain.Request) RescheduleDTO {
	return RescheduleDTO{
		ID:          r.ID(),
		BookingID:   r.BookingID(),
		NewCheckIn:  r.NewCheckIn(),
		NewCheckOut: r.NewCheckOut(),
		Reason:      r.Reason(),
		Status:      string(r.Status()),
		RespondedBy: r.RespondedBy(),
		RespondedAt: r.RespondedAt(),
		CreatedAt:   r.CreatedAt(),
		UpdatedAt:   r.UpdatedAt(),
	}
}
