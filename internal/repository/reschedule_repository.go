package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lagoon-stays/service-reservation/internal/domain"
	rescheduleDomain "github.com/lagoon-stays/service-reservation/internal/domain/reschedule"
)

// RescheduleRequestModel is the GORM model for the reschedule_requests table.
// The partial unique index closes the check-then-insert race on the
// one-pending-request-per-booking invariant at the store level.
type RescheduleRequestModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_reschedule_pending_booking,where:status = 'pending'"`
	NewCheckIn  time.Time  `gorm:"not null"`
	NewCheckOut time.Time  `gorm:"not null"`
	Reason      string     `gorm:"size:1000"`
	Status      string     `gorm:"not null;size:20;index"`
	RespondedBy *uuid.UUID `gorm:"type:uuid"`
	RespondedAt *time.Time `gorm:""`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RescheduleRequestModel) TableName() string {
	return "reschedule_requests"
}

// GormRescheduleRepository is the GORM-based implementation of reschedule.Repository.
type GormRescheduleRepository struct {
	db *gorm.DB
}

// NewGormRescheduleRepository creates a new GormRescheduleRepository.
func NewGormRescheduleRepository(db *gorm.DB) *GormRescheduleRepository {
	return &GormRescheduleRepository{db: db}
}

// FindByID retrieves a reschedule request by its unique identifier.
func (r *GormRescheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*rescheduleDomain.Request, error) {
	var model RescheduleRequestModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("reschedule request", id.String())
		}
		return nil, fmt.Errorf("failed to find reschedule request: %w", err)
	}
	return toDomainRequest(&model)
}

// FindByBooking retrieves all requests for a booking, newest first.
func (r *GormRescheduleRepository) FindByBooking(ctx context.Context, bookingID uuid.UUID) ([]*rescheduleDomain.Request, error) {
	var models []RescheduleRequestModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find reschedule requests by booking: %w", err)
	}

	requests := make([]*rescheduleDomain.Request, len(models))
	for i, m := range models {
		req, err := toDomainRequest(&m)
		if err != nil {
			return nil, err
		}
		requests[i] = req
	}
	return requests, nil
}

// ListAll retrieves all requests with pagination, newest first (admin).
func (r *GormRescheduleRepository) ListAll(ctx context.Context, page, limit int) ([]*rescheduleDomain.Request, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&RescheduleRequestModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reschedule requests: %w", err)
	}

	var models []RescheduleRequestModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reschedule requests: %w", err)
	}

	requests := make([]*rescheduleDomain.Request, len(models))
	for i, m := range models {
		req, err := toDomainRequest(&m)
		if err != nil {
			return nil, 0, err
		}
		requests[i] = req
	}
	return requests, total, nil
}

// Save persists a new pending request. A violation of the partial unique
// index means another pending request already exists for the booking.
func (r *GormRescheduleRepository) Save(ctx context.Context, req *rescheduleDomain.Request) error {
	if err := r.db.WithContext(ctx).Create(toRequestModel(req)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("you already have a pending reschedule request for this booking")
		}
		return fmt.Errorf("failed to save reschedule request: %w", err)
	}
	return nil
}

// Update persists the resolution of a request. The write is conditional on
// the row still being pending, so when two admins race to resolve the same
// request only one write takes effect and the loser gets a ConflictError.
func (r *GormRescheduleRepository) Update(ctx context.Context, req *rescheduleDomain.Request) error {
	model := toRequestModel(req)
	result := r.db.WithContext(ctx).
		Model(&RescheduleRequestModel{}).
		Where("id = ? AND status = ?", model.ID, string(rescheduleDomain.StatusPending)).
		Updates(map[string]interface{}{
			"status":       model.Status,
			"responded_by": model.RespondedBy,
			"responded_at": model.RespondedAt,
			"updated_at":   model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update reschedule request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("this reschedule request has already been processed")
	}
	return nil
}

// --- Conversion Helpers ---

func toRequestModel(req *rescheduleDomain.Request) *RescheduleRequestModel {
	return &RescheduleRequestModel{
		ID:          req.ID(),
		BookingID:   req.BookingID(),
		NewCheckIn:  req.NewCheckIn(),
		NewCheckOut: req.NewCheckOut(),
		Reason:      req.Reason(),
		Status:      string(req.Status()),
		RespondedBy: req.RespondedBy(),
		RespondedAt: req.RespondedAt(),
		CreatedAt:   req.CreatedAt(),
		UpdatedAt:   req.UpdatedAt(),
	}
}

func toDomainRequest(m *RescheduleRequestModel) (*rescheduleDomain.Request, error) {
	status, err := rescheduleDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return rescheduleDomain.Reconstruct(
		m.ID,
		m.BookingID,
		m.NewCheckIn,
		m.NewCheckOut,
		m.Reason,
		status,
		m.RespondedBy,
		m.RespondedAt,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
