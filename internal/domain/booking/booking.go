package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lagoon-stays/service-reservation/internal/domain"
)

const maxSpecialRequestLen = 1000

// Booking is the aggregate root for a stay reservation on a rentable unit.
type Booking struct {
	id             uuid.UUID
	userID         uuid.UUID
	unitID         uuid.UUID
	guestName      string
	contact        string
	checkIn        time.Time
	checkOut       time.Time
	pax            int
	specialRequest string
	status         Status
	approvedAt     *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking with status=pending. The caller never
// chooses the initial status. now is the reference time for date validation.
func NewBooking(
	userID uuid.UUID,
	unitID uuid.UUID,
	guestName, contact string,
	checkIn, checkOut time.Time,
	pax int,
	specialRequest string,
	now time.Time,
) (*Booking, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if unitID == uuid.Nil {
		return nil, domain.NewValidationError("unit ID is required")
	}
	if guestName == "" {
		return nil, domain.NewValidationError("guest name is required")
	}
	if contact == "" {
		return nil, domain.NewValidationError("contact is required")
	}
	if !checkIn.After(now) {
		return nil, domain.NewValidationError("check-in must be in the future")
	}
	if !checkOut.After(checkIn) {
		return nil, domain.NewValidationError("check-out must be after check-in")
	}
	if pax < 1 {
		return nil, domain.NewValidationError("pax must be at least 1")
	}
	if len(specialRequest) > maxSpecialRequestLen {
		return nil, domain.NewValidationError(fmt.Sprintf("special request must be at most %d characters", maxSpecialRequestLen))
	}

	return &Booking{
		id:             uuid.New(),
		userID:         userID,
		unitID:         unitID,
		guestName:      guestName,
		contact:        contact,
		checkIn:        checkIn,
		checkOut:       checkOut,
		pax:            pax,
		specialRequest: specialRequest,
		status:         StatusPending,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id, userID, unitID uuid.UUID,
	guestName, contact string,
	checkIn, checkOut time.Time,
	pax int,
	specialRequest string,
	status Status,
	approvedAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:             id,
		userID:         userID,
		unitID:         unitID,
		guestName:      guestName,
		contact:        contact,
		checkIn:        checkIn,
		checkOut:       checkOut,
		pax:            pax,
		specialRequest: specialRequest,
		status:         status,
		approvedAt:     approvedAt,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// UserID returns the owning user's ID.
func (b *Booking) UserID() uuid.UUID { return b.userID }

// UnitID returns the rentable unit's ID.
func (b *Booking) UnitID() uuid.UUID { return b.unitID }

// GuestName returns the guest name on the booking.
func (b *Booking) GuestName() string { return b.guestName }

// Contact returns the guest contact string.
func (b *Booking) Contact() string { return b.contact }

// CheckIn returns the check-in timestamp.
func (b *Booking) CheckIn() time.Time { return b.checkIn }

// CheckOut returns the check-out timestamp.
func (b *Booking) CheckOut() time.Time { return b.checkOut }

// Pax returns the party size.
func (b *Booking) Pax() int { return b.pax }

// SpecialRequest returns the optional special-request text.
func (b *Booking) SpecialRequest() string { return b.specialRequest }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// ApprovedAt returns the approval timestamp, or nil if never approved.
func (b *Booking) ApprovedAt() *time.Time { return b.approvedAt }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Approve transitions the booking from pending to approved and stamps the
// approval time.
func (b *Booking) Approve(now time.Time) error {
	if !b.status.CanTransitionTo(StatusApproved) {
		return domain.NewConflictError(fmt.Sprintf("cannot approve a %s booking", b.status))
	}
	b.status = StatusApproved
	b.approvedAt = &now
	b.updatedAt = now
	return nil
}

// Decline transitions the booking from pending to declined and clears any
// approval timestamp.
func (b *Booking) Decline(now time.Time) error {
	if !b.status.CanTransitionTo(StatusDeclined) {
		return domain.NewConflictError(fmt.Sprintf("cannot decline a %s booking", b.status))
	}
	b.status = StatusDeclined
	b.approvedAt = nil
	b.updatedAt = now
	return nil
}

// Cancel transitions the booking to cancelled. Allowed from pending and
// approved only; cancellation never removes the record.
func (b *Booking) Cancel(now time.Time) error {
	if !b.status.CanTransitionTo(StatusCancelled) {
		return domain.NewConflictError(fmt.Sprintf("cannot cancel a %s booking", b.status))
	}
	b.status = StatusCancelled
	b.updatedAt = now
	return nil
}

// CompleteIfDue applies the lazy completion rule: an approved booking whose
// check-out has passed becomes completed. Returns true when the transition
// fired on this call; repeated evaluation after completion is a no-op.
func (b *Booking) CompleteIfDue(now time.Time) bool {
	if b.status != StatusApproved {
		return false
	}
	if !b.checkOut.Before(now) {
		return false
	}
	b.status = StatusCompleted
	b.updatedAt = now
	return true
}

// Reschedule overwrites the stay dates. Status is deliberately untouched:
// reschedule approval changes when the stay happens, not where the booking
// sits in its lifecycle.
func (b *Booking) Reschedule(checkIn, checkOut time.Time, now time.Time) error {
	if b.status == StatusCancelled {
		return domain.NewConflictError("cannot reschedule a cancelled booking")
	}
	if !checkOut.After(checkIn) {
		return domain.NewValidationError("check-out must be after check-in")
	}
	b.checkIn = checkIn
	b.checkOut = checkOut
	b.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
}
