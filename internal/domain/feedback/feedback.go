package feedback

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lagoon-stays/service-reservation/internal/domain"
)

const maxCommentLen = 1000

// Feedback is the single rating/comment a user may attach to their own
// completed booking. It is created once and never updated.
type Feedback struct {
	id        uuid.UUID
	bookingID uuid.UUID
	userID    uuid.UUID
	rating    int
	comment   string
	createdAt time.Time
}

// NewFeedback creates feedback after validating the rating and comment.
// Eligibility (booking ownership and completion) is the engine's concern.
func NewFeedback(bookingID, userID uuid.UUID, rating int, comment string, now time.Time) (*Feedback, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if rating < 1 || rating > 5 {
		return nil, domain.NewValidationError("rating must be between 1 and 5")
	}
	if len(comment) > maxCommentLen {
		return nil, domain.NewValidationError(fmt.Sprintf("comment must be at most %d characters", maxCommentLen))
	}

	return &Feedback{
		id:        uuid.New(),
		bookingID: bookingID,
		userID:    userID,
		rating:    rating,
		comment:   comment,
		createdAt: now,
	}, nil
}

// Reconstruct rebuilds Feedback from persistence data (no validation).
func Reconstruct(id, bookingID, userID uuid.UUID, rating int, comment string, createdAt time.Time) *Feedback {
	return &Feedback{
		id:        id,
		bookingID: bookingID,
		userID:    userID,
		rating:    rating,
		comment:   comment,
		createdAt: createdAt,
	}
}

// ID returns the feedback's unique identifier.
func (f *Feedback) ID() uuid.UUID { return f.id }

// BookingID returns the reviewed booking's ID.
func (f *Feedback) BookingID() uuid.UUID { return f.bookingID }

// UserID returns the reviewer's user ID.
func (f *Feedback) UserID() uuid.UUID { return f.userID }

// Rating returns the rating in [1,5].
func (f *Feedback) Rating() int { return f.rating }

// Comment returns the optional comment text.
func (f *Feedback) Comment() string { return f.comment }

// CreatedAt returns the creation timestamp.
func (f *Feedback) CreatedAt() time.Time { return f.createdAt }
