package unit

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lagoon-stays/service-reservation/internal/domain"
)

// UnitType classifies a rentable unit.
type UnitType string

const (
	TypeVilla   UnitType = "villa"
	TypeCottage UnitType = "cottage"
	TypeRoom    UnitType = "room"
)

// IsValid returns true if the unit type is recognized.
func (t UnitType) IsValid() bool {
	return t == TypeVilla || t == TypeCottage || t == TypeRoom
}

// Unit is the aggregate root for a rentable villa, cottage or room.
type Unit struct {
	id          uuid.UUID
	name        string
	unitType    UnitType
	description string
	priceCents  int64
	capacity    int
	amenities   []string
	imageURL    string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewUnit creates a new rentable unit with validated fields.
func NewUnit(name string, unitType UnitType, description string, priceCents int64, capacity int, amenities []string, imageURL string, now time.Time) (*Unit, error) {
	if name == "" {
		return nil, domain.NewValidationError("unit name is required")
	}
	if !unitType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid unit type: %s", unitType))
	}
	if priceCents <= 0 {
		return nil, domain.NewValidationError("price must be positive")
	}
	if capacity < 1 {
		return nil, domain.NewValidationError("capacity must be at least 1")
	}

	return &Unit{
		id:          uuid.New(),
		name:        name,
		unitType:    unitType,
		description: description,
		priceCents:  priceCents,
		capacity:    capacity,
		amenities:   amenities,
		imageURL:    imageURL,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds a Unit from persistence data (no validation).
func Reconstruct(id uuid.UUID, name string, unitType UnitType, description string, priceCents int64, capacity int, amenities []string, imageURL string, createdAt, updatedAt time.Time) *Unit {
	return &Unit{
		id:          id,
		name:        name,
		unitType:    unitType,
		description: description,
		priceCents:  priceCents,
		capacity:    capacity,
		amenities:   amenities,
		imageURL:    imageURL,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// Getters.
func (u *Unit) ID() uuid.UUID        { return u.id }
func (u *Unit) Name() string         { return u.name }
func (u *Unit) Type() UnitType       { return u.unitType }
func (u *Unit) Description() string  { return u.description }
func (u *Unit) PriceCents() int64    { return u.priceCents }
func (u *Unit) Capacity() int        { return u.capacity }
func (u *Unit) Amenities() []string  { return u.amenities }
func (u *Unit) ImageURL() string     { return u.imageURL }
func (u *Unit) CreatedAt() time.Time { return u.createdAt }
func (u *Unit) UpdatedAt() time.Time { return u.updatedAt }

// ApplyUpdate overwrites the mutable catalog fields.
func (u *Unit) ApplyUpdate(name string, unitType UnitType, description string, priceCents int64, capacity int, amenities []string, imageURL string, now time.Time) error {
	if name == "" {
		return domain.NewValidationError("unit name is required")
	}
	if !unitType.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid unit type: %s", unitType))
	}
	if priceCents <= 0 {
		return domain.NewValidationError("price must be positive")
	}
	if capacity < 1 {
		return domain.NewValidationError("capacity must be at least 1")
	}
	u.name = name
	u.unitType = unitType
	u.description = description
	u.priceCents = priceCents
	u.capacity = capacity
	u.amenities = amenities
	u.imageURL = imageURL
	u.updatedAt = now
	return nil
}
