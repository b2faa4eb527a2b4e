package notifier

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lagoon-stays/service-reservation/internal/domain"
	notificationDomain "github.com/lagoon-stays/service-reservation/internal/domain/notification"
)

// StoreNotifier delivers notifications by persisting in-app notification
// rows. Failures are logged and swallowed: a delivery problem never fails
// the state transition that triggered it.
type StoreNotifier struct {
	repo   notificationDomain.Repository
	clock  domain.Clock
	logger *zap.Logger
}

// NewStoreNotifier creates a StoreNotifier.
func NewStoreNotifier(repo notificationDomain.Repository, clock domain.Clock, logger *zap.Logger) *StoreNotifier {
	return &StoreNotifier{repo: repo, clock: clock, logger: logger}
}

// Emit persists one notification for the user, best-effort.
func (n *StoreNotifier) Emit(ctx context.Context, userID uuid.UUID, title, message string, category notificationDomain.Category) {
	note, err := notificationDomain.NewNotification(userID, title, message, category, n.clock.Now())
	if err != nil {
		n.logger.Warn("failed to build notification",
			zap.String("user_id", userID.String()),
			zap.String("title", title),
			zap.Error(err),
		)
		return
	}

	if err := n.repo.Save(ctx, note); err != nil {
		n.logger.Warn("failed to deliver notification",
			zap.String("user_id", userID.String()),
			zap.String("title", title),
			zap.Error(err),
		)
	}
}
