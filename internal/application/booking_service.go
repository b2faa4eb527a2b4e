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
	unitDomain "github.com/lagoon-stays/service-reservation/internal/domain/unit"
	"github.com/lagoon-stays/service-reservation/internal/events"
)

const dateLayout = "Jan 02, 2006"

// EventPublisher publishes integration events. Satisfied by *events.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event *events.CloudEvent) error
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	UnitID         uuid.UUID `json:"unit_id" binding:"required"`
	GuestName      string    `json:"guest_name" binding:"required"`
	Contact        string    `json:"contact" binding:"required"`
	CheckIn        time.Time `json:"check_in" binding:"required"`
	CheckOut       time.Time `json:"check_out" binding:"required"`
	Pax            int       `json:"pax" binding:"required"`
	SpecialRequest string    `json:"special_request"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	UnitID         uuid.UUID  `json:"unit_id"`
	GuestName      string     `json:"guest_name"`
	Contact        string     `json:"contact"`
	CheckIn        time.Time  `json:"check_in"`
	CheckOut       time.Time  `json:"check_out"`
	Pax            int        `json:"pax"`
	SpecialRequest string     `json:"special_request,omitempty"`
	Status         string     `json:"status"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	Version        int64      `json:"version"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// AvailabilityDTO reports bookings that overlap a requested stay. It is
// advisory: nothing in the engine rejects overlapping bookings.
type AvailabilityDTO struct {
	UnitID    uuid.UUID    `json:"unit_id"`
	CheckIn   time.Time    `json:"check_in"`
	CheckOut  time.Time    `json:"check_out"`
	Available bool         `json:"available"`
	Conflicts []BookingDTO `json:"conflicts"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
	ByYear        map[int]int64    `json:"by_year"`
}

// BookingService is the application service orchestrating the booking
// lifecycle: creation, admin resolution, cancellation and the lazy
// completion rule applied on every read path.
type BookingService struct {
	bookings bookingDomain.Repository
	units    unitDomain.Repository
	notifier notificationDomain.Notifier
	producer EventPublisher
	clock    domain.Clock
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.Repository,
	units unitDomain.Repository,
	notifier notificationDomain.Notifier,
	producer EventPublisher,
	clock domain.Clock,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		units:    units,
		notifier: notifier,
		producer: producer,
		clock:    clock,
		logger:   logger,
	}
}

// CreateBooking creates a new pending booking for the given user.
func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	u, err := s.units.FindByID(ctx, req.UnitID)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, domain.NewValidationError("the requested unit does not exist")
		}
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(
		userID,
		req.UnitID,
		req.GuestName,
		req.Contact,
		req.CheckIn,
		req.CheckOut,
		req.Pax,
		req.SpecialRequest,
		s.clock.Now(),
	)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	// The booking is durable; everything below is best-effort.
	s.notifier.Emit(ctx, userID, "Booking Submitted",
		fmt.Sprintf("Your booking for %s has been submitted and is pending approval. Booking ID: #%s", u.Name(), bk.ID()),
		notificationDomain.CategoryBooking)
	s.publishBookingEvent(ctx, events.BookingSubmitted, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking, applying the lazy completion rule
// before any other concern so the caller always sees current status.
func (s *BookingService) GetBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.applyLazyCompletion(ctx, bk); err != nil {
		return nil, err
	}

	if !actor.CanAccess(bk.UserID()) {
		return nil, domain.NewForbiddenError("unauthorized to view this booking")
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// ListBookings retrieves bookings visible to the actor: admins see all,
// everyone else sees their own. The lazy completion rule is applied per
// item and the response reflects updated statuses.
func (s *BookingService) ListBookings(ctx context.Context, actor domain.Actor, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	var (
		bookings []*bookingDomain.Booking
		total    int64
		err      error
	)
	if actor.IsAdmin() {
		bookings, total, err = s.bookings.ListAll(ctx, page, limit)
	} else {
		bookings, total, err = s.bookings.FindByUserID(ctx, actor.UserID, page, limit)
	}
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		if err := s.applyLazyCompletion(ctx, bk); err != nil {
			return nil, err
		}
		dtos[i] = toBookingDTO(bk)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// ApproveBooking transitions a pending booking to approved (admin only).
func (s *BookingService) ApproveBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	if !actor.IsAdmin() {
		return nil, domain.NewForbiddenError("only administrators can approve bookings")
	}

	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Approve(s.clock.Now()); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.notifier.Emit(ctx, bk.UserID(), "Booking Approved",
		fmt.Sprintf("Great news! Your booking #%s for %s has been approved. Check-in: %s, Check-out: %s",
			bk.ID(), s.unitName(ctx, bk.UnitID()),
			bk.CheckIn().Format(dateLayout), bk.CheckOut().Format(dateLayout)),
		notificationDomain.CategoryBooking)
	s.publishBookingEvent(ctx, events.BookingApproved, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// DeclineBooking transitions a pending booking to declined (admin only).
func (s *BookingService) DeclineBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	if !actor.IsAdmin() {
		return nil, domain.NewForbiddenError("only administrators can decline bookings")
	}

	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Decline(s.clock.Now()); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.notifier.Emit(ctx, bk.UserID(), "Booking Declined",
		fmt.Sprintf("Unfortunately, your booking #%s for %s has been declined. Please contact us for more information or try booking another date.",
			bk.ID(), s.unitName(ctx, bk.UnitID())),
		notificationDomain.CategoryBooking)
	s.publishBookingEvent(ctx, events.BookingDeclined, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// CancelBooking cancels a booking. The owner may cancel their own booking;
// admins may cancel any. Cancellation is a status transition, never a
// deletion.
func (s *BookingService) CancelBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !actor.CanAccess(bk.UserID()) {
		return nil, domain.NewForbiddenError("unauthorized to cancel this booking")
	}

	if err := bk.Cancel(s.clock.Now()); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	cancelledBy := "you"
	if actor.IsAdmin() && !actor.Owns(bk.UserID()) {
		cancelledBy = "the administrator"
	}
	s.notifier.Emit(ctx, bk.UserID(), "Booking Cancelled",
		fmt.Sprintf("Your booking #%s for %s has been cancelled by %s.",
			bk.ID(), s.unitName(ctx, bk.UnitID()), cancelledBy),
		notificationDomain.CategoryBooking)
	s.publishBookingEvent(ctx, events.BookingCancelled, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// CheckAvailability reports bookings overlapping the requested stay. It is
// purely informational: neither booking creation nor reschedule approval
// rejects overlaps.
func (s *BookingService) CheckAvailability(ctx context.Context, unitID uuid.UUID, checkIn, checkOut time.Time) (*AvailabilityDTO, error) {
	if !checkOut.After(checkIn) {
		return nil, domain.NewValidationError("check-out must be after check-in")
	}
	if _, err := s.units.FindByID(ctx, unitID); err != nil {
		return nil, err
	}

	overlapping, err := s.bookings.FindOverlapping(ctx, unitID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	conflicts := make([]BookingDTO, len(overlapping))
	for i, bk := range overlapping {
		conflicts[i] = toBookingDTO(bk)
	}

	return &AvailabilityDTO{
		UnitID:    unitID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
	}, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context, actor domain.Actor) (*BookingStatsDTO, error) {
	if !actor.IsAdmin() {
		return nil, domain.NewForbiddenError("only administrators can view booking statistics")
	}

	byStatus, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}
	byYear, err := s.bookings.CountByYear(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count by year: %w", err)
	}

	var total int64
	for _, c := range byStatus {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      byStatus,
		ByYear:        byYear,
	}, nil
}

// applyLazyCompletion evaluates the demand-driven completion rule on bk and,
// when the transition fires, persists it with a conditional write. Side
// effects are emitted only by the caller whose write took effect, so
// concurrent readers of the same stale booking notify at most once.
func (s *BookingService) applyLazyCompletion(ctx context.Context, bk *bookingDomain.Booking) error {
	now := s.clock.Now()
	if !bk.CompleteIfDue(now) {
		return nil
	}

	fired, err := s.bookings.MarkCompleted(ctx, bk.ID(), now)
	if err != nil {
		return err
	}
	if !fired {
		return nil
	}

	s.notifier.Emit(ctx, bk.UserID(), "Stay Completed",
		fmt.Sprintf("Your stay at %s (Booking #%s) has been completed. We hope you enjoyed your stay! Please leave a review if you haven't already.",
			s.unitName(ctx, bk.UnitID()), bk.ID()),
		notificationDomain.CategoryBooking)
	s.publishBookingEvent(ctx, events.BookingCompleted, bk)
	return nil
}

// unitName resolves a unit's display name, best-effort.
func (s *BookingService) unitName(ctx context.Context, unitID uuid.UUID) string {
	u, err := s.units.FindByID(ctx, unitID)
	if err != nil {
		s.logger.Warn("failed to resolve unit name", zap.String("unit_id", unitID.String()), zap.Error(err))
		return "your unit"
	}
	return u.Name()
}

func (s *BookingService) publishBookingEvent(ctx context.Context, eventType string, bk *bookingDomain.Booking) {
	evt := events.BookingEvent{
		BookingID:  bk.ID(),
		UserID:     bk.UserID(),
		UnitID:     bk.UnitID(),
		Status:     string(bk.Status()),
		CheckIn:    bk.CheckIn(),
		CheckOut:   bk.CheckOut(),
		OccurredAt: s.clock.Now(),
	}
	publishEvent(ctx, s.producer, s.logger, eventType, bk.ID().String(), evt)
}

// publishEvent wraps data in a CloudEvent and publishes it, logging failures
// instead of surfacing them: event delivery never fails a transition.
func publishEvent(ctx context.Context, producer EventPublisher, logger *zap.Logger, eventType, key string, data interface{}) {
	cloudEvent, err := events.NewCloudEvent("service-reservation", eventType, data)
	if err != nil {
		logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := producer.PublishEvent(ctx, events.TopicReservationEvents, key, cloudEvent); err != nil {
		logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:             bk.ID(),
		UserID:         bk.UserID(),
		UnitID:         bk.UnitID(),
		GuestName:      bk.GuestName(),
		Contact:        bk.Contact(),
		CheckIn:        bk.CheckIn(),
		CheckOut:       bk.CheckOut(),
		Pax:            bk.Pax(),
		SpecialRequest: bk.SpecialRequest(),
		Status:         string(bk.Status()),
		ApprovedAt:     bk.ApprovedAt(),
		Version:        bk.Version(),
		CreatedAt:      bk.CreatedAt(),
		UpdatedAt:      bk.UpdatedAt(),
	}
}
