package notification

import (
	"context"

	"github.com/google/uuid"
)

// Notifier delivers a notification to a user. Delivery is fire-and-forget
// relative to the lifecycle engine: implementations log failures and never
// return them into the triggering transition.
type Notifier interface {
	Emit(ctx context.Context, userID uuid.UUID, title, message string, category Category)
}
