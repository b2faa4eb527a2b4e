package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lagoon-stays/service-reservation/internal/domain"
	bookingDomain "github.com/lagoon-stays/service-reservation/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID  `gorm:"type:uuid;index;not null"`
	UnitID         uuid.UUID  `gorm:"type:uuid;index;not null"`
	GuestName      string     `gorm:"not null;size:255"`
	Contact        string     `gorm:"not null;size:255"`
	CheckIn        time.Time  `gorm:"not null;index"`
	CheckOut       time.Time  `gorm:"not null"`
	Pax            int        `gorm:"not null"`
	SpecialRequest string     `gorm:"size:1000"`
	Status         string     `gorm:"not null;size:20;index"`
	ApprovedAt     *time.Time `gorm:""`
	Version        int64      `gorm:"not null;default:1"`
	CreatedAt      time.Time  `gorm:"not null"`
	UpdatedAt      time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByUserID retrieves bookings for a specific user with pagination.
func (r *GormBookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count user bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find user bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// FindOverlapping retrieves pending or approved bookings on a unit whose
// stay intersects [checkIn, checkOut).
func (r *GormBookingRepository) FindOverlapping(ctx context.Context, unitID uuid.UUID, checkIn, checkOut time.Time) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Where("status IN ?", []string{string(bookingDomain.StatusPending), string(bookingDomain.StatusApproved)}).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn).
		Order("check_in ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}

	bookings, _, err := toDomainBookings(models, int64(len(models)))
	return bookings, err
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// CountByYear returns booking counts grouped by check-in year (admin).
func (r *GormBookingRepository) CountByYear(ctx context.Context) (map[int]int64, error) {
	type yearCount struct {
		Year  int
		Count int64
	}
	var results []yearCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("EXTRACT(YEAR FROM check_in)::int as year, count(*) as count").
		Group("year").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by year: %w", err)
	}

	counts := make(map[int]int64)
	for _, yc := range results {
		counts[yc.Year] = yc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	if err := r.db.WithContext(ctx).Create(toBookingModel(bk)).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// Only update if the version matches (current version - 1 since
	// IncrementVersion was called by the service).
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"guest_name":      model.GuestName,
			"contact":         model.Contact,
			"check_in":        model.CheckIn,
			"check_out":       model.CheckOut,
			"pax":             model.Pax,
			"special_request": model.SpecialRequest,
			"status":          model.Status,
			"approved_at":     model.ApprovedAt,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// MarkCompleted conditionally advances an approved booking to completed.
// The status predicate in the WHERE clause makes concurrent evaluations of
// the lazy-completion rule collapse into exactly one effective write.
func (r *GormBookingRepository) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND status = ?", id, string(bookingDomain.StatusApproved)).
		Updates(map[string]interface{}{
			"status":     string(bookingDomain.StatusCompleted),
			"updated_at": at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark booking completed: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:             bk.ID(),
		UserID:         bk.UserID(),
		UnitID:         bk.UnitID(),
		GuestName:      bk.GuestName(),
		Contact:        bk.Contact(),
		CheckIn:        bk.CheckIn(),
		CheckOut:       bk.CheckOut(),
		Pax:            bk.Pax(),
		SpecialRequest: bk.SpecialRequest(),
		Status:         string(bk.Status()),
		ApprovedAt:     bk.ApprovedAt(),
		Version:        bk.Version(),
		CreatedAt:      bk.CreatedAt(),
		UpdatedAt:      bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return bookingDomain.Reconstruct(
		m.ID,
		m.UserID,
		m.UnitID,
		m.GuestName,
		m.Contact,
		m.CheckIn,
		m.CheckOut,
		m.Pax,
		m.SpecialRequest,
		status,
		m.ApprovedAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel, total int64) ([]*bookingDomain.Booking, int64, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}
