package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lagoon-stays/service-reservation/internal/domain"
	unitDomain "github.com/lagoon-stays/service-reservation/internal/domain/unit"
)

// UpsertUnitRequest holds the data for creating or updating a catalog unit.
type UpsertUnitRequest struct {
	Name        string   `json:"name" binding:"required"`
	UnitType    string   `json:"unit_type" binding:"required"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"price_cents" binding:"required"`
	Capacity    int      `json:"capacity" binding:"required"`
	Amenities   []string `json:"amenities"`
	ImageURL    string   `json:"image_url"`
}

// UnitDTO is the response representation of a catalog unit.
type UnitDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	UnitType    string    `json:"unit_type"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Capacity    int       `json:"capacity"`
	Amenities   []string  `json:"amenities"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UnitService manages the rentable unit catalog. Reads are public; writes
// are restricted to admins at the routing layer.
type UnitService struct {
	units  unitDomain.Repository
	clock  domain.Clock
	logger *zap.Logger
}

// NewUnitService creates a new UnitService.
func NewUnitService(units unitDomain.Repository, clock domain.Clock, logger *zap.Logger) *UnitService {
	return &UnitService{units: units, clock: clock, logger: logger}
}

// CreateUnit adds a new unit to the catalog.
func (s *UnitService) CreateUnit(ctx context.Context, req UpsertUnitRequest) (*UnitDTO, error) {
	u, err := unitDomain.NewUnit(
		req.Name,
		unitDomain.UnitType(req.UnitType),
		req.Description,
		req.PriceCents,
		req.Capacity,
		req.Amenities,
		req.ImageURL,
		s.clock.Now(),
	)
	if err != nil {
		return nil, err
	}

	if err := s.units.Save(ctx, u); err != nil {
		return nil, err
	}

	result := toUnitDTO(u)
	return &result, nil
}

// GetUnit retrieves a single unit.
func (s *UnitService) GetUnit(ctx context.Context, id uuid.UUID) (*UnitDTO, error) {
	u, err := s.units.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toUnitDTO(u)
	return &result, nil
}

// ListUnits retrieves the catalog with pagination.
func (s *UnitService) ListUnits(ctx context.Context, page, limit int) (*domain.PaginatedResult[UnitDTO], error) {
	units, total, err := s.units.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]UnitDTO, len(units))
	for i, u := range units {
		dtos[i] = toUnitDTO(u)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// UpdateUnit overwrites a unit's catalog fields.
func (s *UnitService) UpdateUnit(ctx context.Context, id uuid.UUID, req UpsertUnitRequest) (*UnitDTO, error) {
	u, err := s.units.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := u.ApplyUpdate(
		req.Name,
		unitDomain.UnitType(req.UnitType),
		req.Description,
		req.PriceCents,
		req.Capacity,
		req.Amenities,
		req.ImageURL,
		s.clock.Now(),
	); err != nil {
		return nil, err
	}

	if err := s.units.Update(ctx, u); err != nil {
		return nil, err
	}

	result := toUnitDTO(u)
	return &result, nil
}

// DeleteUnit removes a unit from the catalog. Existing bookings keep their
// unit reference; only the catalog entry disappears.
func (s *UnitService) DeleteUnit(ctx context.Context, id uuid.UUID) error {
	return s.units.Delete(ctx, id)
}

func toUnitDTO(u *unitDomain.Unit) UnitDTO {
	return UnitDTO{
		ID:          u.ID(),
		Name:        u.Name(),
		UnitType:    string(u.Type()),
		Description: u.Description(),
		PriceCents:  u.PriceCents(),
		Capacity:    u.Capacity(),
		Amenities:   u.Amenities(),
		ImageURL:    u.ImageURL(),
		CreatedAt:   u.CreatedAt(),
		UpdatedAt:   u.UpdatedAt(),
	}
}
