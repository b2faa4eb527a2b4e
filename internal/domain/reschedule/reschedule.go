package reschedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lagoon-stays/service-reservation/internal/domain"
)

const maxReasonLen = 1000

// Status represents the state of a reschedule request. Requests are resolved
// exactly once; approved and declined are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

// IsValid returns true if the status is a recognized reschedule status.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusDeclined
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid reschedule status: %s", s)
	}
	return status, nil
}

// Request is a proposal to move an existing booking to new stay dates,
// subject to admin approval. It stores only the proposal, never a copy of
// the booking's current dates.
type Request struct {
	id          uuid.UUID
	bookingID   uuid.UUID
	newCheckIn  time.Time
	newCheckOut time.Time
	reason      string
	status      Status
	respondedBy *uuid.UUID
	respondedAt *time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

// NewRequest creates a pending reschedule request after validating the
// proposed dates against now.
func NewRequest(bookingID uuid.UUID, newCheckIn, newCheckOut time.Time, reason string, now time.Time) (*Request, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if !newCheckIn.After(now) {
		return nil, domain.NewValidationError("new check-in must be in the future")
	}
	if !newCheckOut.After(newCheckIn) {
		return nil, domain.NewValidationError("new check-out must be after new check-in")
	}
	if len(reason) > maxReasonLen {
		return nil, domain.NewValidationError(fmt.Sprintf("reason must be at most %d characters", maxReasonLen))
	}

	return &Request{
		id:          uuid.New(),
		bookingID:   bookingID,
		newCheckIn:  newCheckIn,
		newCheckOut: newCheckOut,
		reason:      reason,
		status:      StatusPending,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds a Request from persistence data (no validation).
func Reconstruct(
	id, bookingID uuid.UUID,
	newCheckIn, newCheckOut time.Time,
	reason string,
	status Status,
	respondedBy *uuid.UUID,
	respondedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Request {
	return &Request{
		id:          id,
		bookingID:   bookingID,
		newCheckIn:  newCheckIn,
		newCheckOut: newCheckOut,
		reason:      reason,
		status:      status,
		respondedBy: respondedBy,
		respondedAt: respondedAt,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

// ID returns the request's unique identifier.
func (r *Request) ID() uuid.UUID { return r.id }

// BookingID returns the target booking's ID.
func (r *Request) BookingID() uuid.UUID { return r.bookingID }

// NewCheckIn returns the proposed check-in timestamp.
func (r *Request) NewCheckIn() time.Time { return r.newCheckIn }

// NewCheckOut returns the proposed check-out timestamp.
func (r *Request) NewCheckOut() time.Time { return r.newCheckOut }

// Reason returns the optional reason text.
func (r *Request) Reason() string { return r.reason }

// Status returns the request's status.
func (r *Request) Status() Status { return r.status }

// RespondedBy returns the responding admin's user ID, or nil while pending.
func (r *Request) RespondedBy() *uuid.UUID { return r.respondedBy }

// RespondedAt returns the response timestamp, or nil while pending.
func (r *Request) RespondedAt() *time.Time { return r.respondedAt }

// CreatedAt returns the creation timestamp.
func (r *Request) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (r *Request) UpdatedAt() time.Time { return r.updatedAt }

// --- Behavior ---

// Approve resolves a pending request as approved, recording the responder.
func (r *Request) Approve(responderID uuid.UUID, now time.Time) error {
	if r.status != StatusPending {
		return domain.NewConflictError("this reschedule request has already been processed")
	}
	r.status = StatusApproved
	r.respondedBy = &responderID
	r.respondedAt = &now
	r.updatedAt = now
	return nil
}

// Decline resolves a pending request as declined, recording the responder.
func (r *Request) Decline(responderID uuid.UUID, now time.Time) error {
	if r.status != StatusPending {
		return domain.NewConflictError("this reschedule request has already been processed")
	}
	r.status = StatusDeclined
	r.respondedBy = &responderID
	r.respondedAt = &now
	r.updatedAt = now
	return nil
}
