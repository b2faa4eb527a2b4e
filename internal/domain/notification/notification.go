package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lagoon-stays/service-reservation/internal/domain"
)

// Category classifies a notification for client-side grouping.
type Category string

const (
	CategoryBooking   Category = "booking"
	CategorySystem    Category = "system"
	CategoryPromotion Category = "promotion"
)

// IsValid returns true if the category is recognized.
func (c Category) IsValid() bool {
	return c == CategoryBooking || c == CategorySystem || c == CategoryPromotion
}

// ReadStatus marks whether the recipient has seen a notification.
type ReadStatus string

const (
	StatusUnread ReadStatus = "unread"
	StatusRead   ReadStatus = "read"
)

// Notification is an in-app message addressed to a single user.
type Notification struct {
	id        uuid.UUID
	userID    uuid.UUID
	title     string
	message   string
	category  Category
	status    ReadStatus
	createdAt time.Time
	updatedAt time.Time
}

// NewNotification creates an unread notification.
func NewNotification(userID uuid.UUID, title, message string, category Category, now time.Time) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if title == "" {
		return nil, domain.NewValidationError("title is required")
	}
	if message == "" {
		return nil, domain.NewValidationError("message is required")
	}
	if !category.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid notification category: %s", category))
	}

	return &Notification{
		id:        uuid.New(),
		userID:    userID,
		title:     title,
		message:   message,
		category:  category,
		status:    StatusUnread,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Notification from persistence data (no validation).
func Reconstruct(id, userID uuid.UUID, title, message string, category Category, status ReadStatus, createdAt, updatedAt time.Time) *Notification {
	return &Notification{
		id:        id,
		userID:    userID,
		title:     title,
		message:   message,
		category:  category,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Getters.
func (n *Notification) ID() uuid.UUID        { return n.id }
func (n *Notification) UserID() uuid.UUID    { return n.userID }
func (n *Notification) Title() string        { return n.title }
func (n *Notification) Message() string      { return n.message }
func (n *Notification) Category() Category   { return n.category }
func (n *Notification) Status() ReadStatus   { return n.status }
func (n *Notification) CreatedAt() time.Time { return n.createdAt }
func (n *Notification) UpdatedAt() time.Time { return n.updatedAt }

// MarkRead flips the notification to read.
func (n *Notification) MarkRead(now time.Time) {
	n.status = StatusRead
	n.updatedAt = now
}
