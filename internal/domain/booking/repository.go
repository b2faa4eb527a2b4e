package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for booking aggregates.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByUserID retrieves bookings belonging to a specific user with pagination.
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// FindOverlapping retrieves bookings on a unit whose stay intersects the
	// given range and whose status still occupies the unit (pending or approved).
	FindOverlapping(ctx context.Context, unitID uuid.UUID, checkIn, checkOut time.Time) ([]*Booking, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// CountByYear returns booking counts grouped by check-in year (admin).
	CountByYear(ctx context.Context) (map[int]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, bk *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, bk *Booking) error

	// MarkCompleted conditionally advances a booking from approved to
	// completed. Returns true only for the caller whose write took effect,
	// so concurrent lazy-completion evaluations fire side effects once.
	MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}
