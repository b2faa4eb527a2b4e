package notification

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for in-app notifications.
type Repository interface {
	// FindByID retrieves a notification by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// FindByUser retrieves a user's notifications, newest first.
	FindByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Notification, int64, error)

	// CountUnread returns the number of unread notifications for a user.
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)

	// Save persists a new notification.
	Save(ctx context.Context, n *Notification) error

	// Update persists changes to an existing notification.
	Update(ctx context.Context, n *Notification) error

	// MarkAllRead flips every unread notification for a user to read.
	MarkAllRead(ctx context.Context, userID uuid.UUID) error

	// Delete removes a notification.
	Delete(ctx context.Context, id uuid.UUID) error
}
