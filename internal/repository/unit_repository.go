package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lagoon-stays/service-reservation/internal/domain"
	unitDomain "github.com/lagoon-stays/service-reservation/internal/domain/unit"
)

// UnitModel is the GORM model for the units table.
type UnitModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name        string          `gorm:"not null;size:255"`
	UnitType    string          `gorm:"not null;size:20;index"`
	Description string          `gorm:"size:2000"`
	PriceCents  int64           `gorm:"not null"`
	Capacity    int             `gorm:"not null"`
	Amenities   json.RawMessage `gorm:"type:jsonb"`
	ImageURL    string          `gorm:"size:500"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (UnitModel) TableName() string {
	return "units"
}

// GormUnitRepository is the GORM-based implementation of unit.Repository.
type GormUnitRepository struct {
	db *gorm.DB
}

// NewGormUnitRepository creates a new GormUnitRepository.
func NewGormUnitRepository(db *gorm.DB) *GormUnitRepository {
	return &GormUnitRepository{db: db}
}

// FindByID retrieves a unit by its unique identifier.
func (r *GormUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*unitDomain.Unit, error) {
	var model UnitModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("unit", id.String())
		}
		return nil, fmt.Errorf("failed to find unit: %w", err)
	}
	return toDomainUnit(&model)
}

// ListAll retrieves all units with pagination.
func (r *GormUnitRepository) ListAll(ctx context.Context, page, limit int) ([]*unitDomain.Unit, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&UnitModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count units: %w", err)
	}

	var models []UnitModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list units: %w", err)
	}

	units := make([]*unitDomain.Unit, len(models))
	for i, m := range models {
		u, err := toDomainUnit(&m)
		if err != nil {
			return nil, 0, err
		}
		units[i] = u
	}
	return units, total, nil
}

// Save persists a new unit.
func (r *GormUnitRepository) Save(ctx context.Context, u *unitDomain.Unit) error {
	model, err := toUnitModel(u)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save unit: %w", err)
	}
	return nil
}

// Update persists changes to an existing unit.
func (r *GormUnitRepository) Update(ctx context.Context, u *unitDomain.Unit) error {
	model, err := toUnitModel(u)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&UnitModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":        model.Name,
			"unit_type":   model.UnitType,
			"description": model.Description,
			"price_cents": model.PriceCents,
			"capacity":    model.Capacity,
			"amenities":   model.Amenities,
			"image_url":   model.ImageURL,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update unit: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("unit", model.ID.String())
	}
	return nil
}

// Delete removes a unit from the catalog.
func (r *GormUnitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&UnitModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete unit: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("unit", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toUnitModel(u *unitDomain.Unit) (*UnitModel, error) {
	amenities, err := json.Marshal(u.Amenities())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal amenities: %w", err)
	}
	return &UnitModel{
		ID:          u.ID(),
		Name:        u.Name(),
		UnitType:    string(u.Type()),
		Description: u.Description(),
		PriceCents:  u.PriceCents(),
		Capacity:    u.Capacity(),
		Amenities:   amenities,
		ImageURL:    u.ImageURL(),
		CreatedAt:   u.CreatedAt(),
		UpdatedAt:   u.UpdatedAt(),
	}, nil
}

func toDomainUnit(m *UnitModel) (*unitDomain.Unit, error) {
	var amenities []string
	if len(m.Amenities) > 0 {
		if err := json.Unmarshal(m.Amenities, &amenities); err != nil {
			return nil, fmt.Errorf("failed to unmarshal amenities: %w", err)
		}
	}
	return unitDomain.Reconstruct(
		m.ID,
		m.Name,
		unitDomain.UnitType(m.UnitType),
		m.Description,
		m.PriceCents,
		m.Capacity,
		amenities,
		m.ImageURL,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
