package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lagoon-stays/service-reservation/internal/domain"
	notificationDomain "github.com/lagoon-stays/service-reservation/internal/domain/notification"
)

// SendNotificationRequest holds the data for an admin-sent notification.
type SendNotificationRequest struct {
	UserID   uuid.UUID `json:"user_id" binding:"required"`
	Title    string    `json:"title" binding:"required"`
	Message  string    `json:"message" binding:"required"`
	Category string    `json:"category" binding:"required"`
}

// NotificationDTO is the response representation of a notification.
type NotificationDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NotificationService manages each user's in-app notification inbox.
type NotificationService struct {
	notifications notificationDomain.Repository
	clock         domain.Clock
	logger        *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notifications notificationDomain.Repository, clock domain.Clock, logger *zap.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, clock: clock, logger: logger}
}

// ListForUser retrieves the actor's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, actor domain.Actor, page, limit int) (*domain.PaginatedResult[NotificationDTO], error) {
	notes, total, err := s.notifications.FindByUser(ctx, actor.UserID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]NotificationDTO, len(notes))
	for i, n := range notes {
		dtos[i] = toNotificationDTO(n)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// CountUnread returns the actor's unread notification count.
func (s *NotificationService) CountUnread(ctx context.Context, actor domain.Actor) (int64, error) {
	return s.notifications.CountUnread(ctx, actor.UserID)
}

// MarkRead flips one of the actor's notifications to read.
func (s *NotificationService) MarkRead(ctx context.Context, actor domain.Actor, id uuid.UUID) (*NotificationDTO, error) {
	note, err := s.notifications.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(note.UserID()) {
		return nil, domain.NewForbiddenError("unauthorized to modify this notification")
	}

	note.MarkRead(s.clock.Now())
	if err := s.notifications.Update(ctx, note); err != nil {
		return nil, err
	}

	result := toNotificationDTO(note)
	return &result, nil
}

// MarkAllRead flips all of the actor's unread notifications to read.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor domain.Actor) error {
	return s.notifications.MarkAllRead(ctx, actor.UserID)
}

// Delete removes one of the actor's notifications.
func (s *NotificationService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	note, err := s.notifications.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Owns(note.UserID()) {
		return domain.NewForbiddenError("unauthorized to delete this notification")
	}
	return s.notifications.Delete(ctx, id)
}

// Send creates a notification addressed to any user (admin).
func (s *NotificationService) Send(ctx context.Context, actor domain.Actor, req SendNotificationRequest) (*NotificationDTO, error) {
	if !actor.IsAdmin() {
		return nil, domain.NewForbiddenError("only administrators can send notifications")
	}

	note, err := notificationDomain.NewNotification(
		req.UserID,
		req.Title,
		req.Message,
		notificationDomain.Category(req.Category),
		s.clock.Now(),
	)
	if err != nil {
		return nil, err
	}

	if err := s.notifications.Save(ctx, note); err != nil {
		return nil, err
	}

	result := toNotificationDTO(note)
	return &result, nil
}

func toNotificationDTO(n *notificationDomain.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID(),
		UserID:    n.UserID(),
		Title:     n.Title(),
		Message:   n.Message(),
		Category:  string(n.Category()),
		Status:    string(n.Status()),
		CreatedAt: n.CreatedAt(),
		UpdatedAt: n.UpdatedAt(),
	}
}
