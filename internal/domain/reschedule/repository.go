package reschedule

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for reschedule requests.
type Repository interface {
	// FindByID retrieves a request by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Request, error)

	// FindByBooking retrieves all requests for a booking, newest first.
	FindByBooking(ctx context.Context, bookingID uuid.UUID) ([]*Request, error)

	// ListAll retrieves all requests with pagination, newest first (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Request, int64, error)

	// Save persists a new pending request. The store enforces the
	// one-pending-request-per-booking invariant atomically; a concurrent
	// duplicate surfaces as a ConflictError.
	Save(ctx context.Context, req *Request) error

	// Update persists the resolution of a request. The store only writes
	// rows that are still pending, so concurrent resolutions collapse into
	// one winner; the loser surfaces as a ConflictError.
	Update(ctx context.Context, req *Request) error
}
