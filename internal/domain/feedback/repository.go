package feedback

import (
	"context"

	"github.com/google/uuid"
)

// YearlyStats aggregates ratings submitted within one calendar year.
type YearlyStats struct {
	Year          int           `json:"year"`
	AverageRating float64       `json:"average_rating"`
	TotalFeedback int64         `json:"total_feedback"`
	Distribution  map[int]int64 `json:"rating_distribution"`
	Monthly       []MonthStats  `json:"monthly_breakdown"`
}

// MonthStats is the per-month slice of a YearlyStats breakdown.
type MonthStats struct {
	Month         int     `json:"month"`
	AverageRating float64 `json:"average_rating"`
	Count         int64   `json:"count"`
}

// Repository defines the persistence contract for feedback.
type Repository interface {
	// FindByBooking retrieves the feedback for a booking, or a NotFoundError.
	FindByBooking(ctx context.Context, bookingID uuid.UUID) (*Feedback, error)

	// Save persists new feedback. The store enforces the one-feedback-per-
	// booking invariant atomically; a concurrent duplicate surfaces as a
	// ConflictError.
	Save(ctx context.Context, fb *Feedback) error

	// StatsForYear aggregates rating statistics for a calendar year (admin).
	StatsForYear(ctx context.Context, year int) (*YearlyStats, error)
}
