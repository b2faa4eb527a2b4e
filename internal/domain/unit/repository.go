package unit

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for rentable units.
type Repository interface {
	// FindByID retrieves a unit by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Unit, error)

	// ListAll retrieves all units with pagination.
	ListAll(ctx context.Context, page, limit int) ([]*Unit, int64, error)

	// Save persists a new unit.
	Save(ctx context.Context, u *Unit) error

	// Update persists changes to an existing unit.
	Update(ctx context.Context, u *Unit) error

	// Delete removes a unit from the catalog.
	Delete(ctx context.Context, id uuid.UUID) error
}
