package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicReservationEvents carries every booking lifecycle event.
const TopicReservationEvents = "reservation.events"

// Event types published to reservation.events.
const (
	BookingSubmitted    = "booking.submitted"
	BookingApproved     = "booking.approved"
	BookingDeclined     = "booking.declined"
	BookingCancelled    = "booking.cancelled"
	BookingCompleted    = "booking.completed"
	BookingRescheduled  = "booking.rescheduled"
	RescheduleRequested = "reschedule.requested"
	RescheduleDeclined  = "reschedule.declined"
	FeedbackSubmitted   = "feedback.submitted"
)

// BookingEvent is the payload for booking lifecycle transitions.
type BookingEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	UserID     uuid.UUID `json:"user_id"`
	UnitID     uuid.UUID `json:"unit_id"`
	Status     string    `json:"status"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RescheduleEvent is the payload for reschedule workflow transitions.
type RescheduleEvent struct {
	RequestID   uuid.UUID `json:"request_id"`
	BookingID   uuid.UUID `json:"booking_id"`
	UserID      uuid.UUID `json:"user_id"`
	NewCheckIn  time.Time `json:"new_check_in"`
	NewCheckOut time.Time `json:"new_check_out"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// FeedbackEvent is the payload for submitted feedback.
type FeedbackEvent struct {
	FeedbackID uuid.UUID `json:"feedback_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	UserID     uuid.UUID `json:"user_id"`
	Rating     int       `json:"rating"`
	OccurredAt time.Time `json:"occurred_at"`
}
