package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lagoon-stays/service-reservation/internal/domain"
	feedbackDomain "github.com/lagoon-stays/service-reservation/internal/domain/feedback"
)

// FeedbackModel is the GORM model for the feedbacks table. The unique index
// on booking_id enforces one-feedback-per-booking at the store level.
type FeedbackModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Rating    int       `gorm:"not null"`
	Comment   string    `gorm:"size:1000"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (FeedbackModel) TableName() string {
	return "feedbacks"
}

// GormFeedbackRepository is the GORM-based implementation of feedback.Repository.
type GormFeedbackRepository struct {
	db *gorm.DB
}

// NewGormFeedbackRepository creates a new GormFeedbackRepository.
func NewGormFeedbackRepository(db *gorm.DB) *GormFeedbackRepository {
	return &GormFeedbackRepository{db: db}
}

// FindByBooking retrieves the feedback for a booking.
func (r *GormFeedbackRepository) FindByBooking(ctx context.Context, bookingID uuid.UUID) (*feedbackDomain.Feedback, error) {
	var model FeedbackModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("feedback for booking", bookingID.String())
		}
		return nil, fmt.Errorf("failed to find feedback by booking: %w", err)
	}
	return toDomainFeedback(&model), nil
}

// Save persists new feedback. A duplicate booking_id means feedback was
// already submitted, possibly by a concurrent request.
func (r *GormFeedbackRepository) Save(ctx context.Context, fb *feedbackDomain.Feedback) error {
	model := &FeedbackModel{
		ID:        fb.ID(),
		BookingID: fb.BookingID(),
		UserID:    fb.UserID(),
		Rating:    fb.Rating(),
		Comment:   fb.Comment(),
		CreatedAt: fb.CreatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("feedback has already been submitted for this booking")
		}
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	return nil
}

// StatsForYear aggregates rating statistics for a calendar year (admin).
func (r *GormFeedbackRepository) StatsForYear(ctx context.Context, year int) (*feedbackDomain.YearlyStats, error) {
	type ratingCount struct {
		Rating int
		Count  int64
	}
	var byRating []ratingCount
	if err := r.db.WithContext(ctx).Model(&FeedbackModel{}).
		Select("rating, count(*) as count").
		Where("EXTRACT(YEAR FROM created_at) = ?", year).
		Group("rating").
		Find(&byRating).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	distribution := map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	var total, sum int64
	for _, rc := range byRating {
		distribution[rc.Rating] = rc.Count
		total += rc.Count
		sum += int64(rc.Rating) * rc.Count
	}

	var average float64
	if total > 0 {
		average = float64(sum) / float64(total)
	}

	type monthAgg struct {
		Month int
		Avg   float64
		Count int64
	}
	var byMonth []monthAgg
	if err := r.db.WithContext(ctx).Model(&FeedbackModel{}).
		Select("EXTRACT(MONTH FROM created_at)::int as month, avg(rating) as avg, count(*) as count").
		Where("EXTRACT(YEAR FROM created_at) = ?", year).
		Group("month").
		Order("month ASC").
		Find(&byMonth).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly ratings: %w", err)
	}

	monthly := make([]feedbackDomain.MonthStats, len(byMonth))
	for i, m := range byMonth {
		monthly[i] = feedbackDomain.MonthStats{
			Month:         m.Month,
			AverageRating: m.Avg,
			Count:         m.Count,
		}
	}

	return &feedbackDomain.YearlyStats{
		Year:          year,
		AverageRating: average,
		TotalFeedback: total,
		Distribution:  distribution,
		Monthly:       monthly,
	}, nil
}

func toDomainFeedback(m *FeedbackModel) *feedbackDomain.Feedback {
	return feedbackDomain.Reconstruct(m.ID, m.BookingID, m.UserID, m.Rating, m.Comment, m.CreatedAt)
}
