package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/koltech/wallline/internal/domain"
	"github.com/koltech/wallline/internal/repository"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService is a fire-and-forget sink: it persists a notification
// row and pushes it to the recipient's live connection. Delivery failures are
// logged and never propagated to the triggering operation.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	notifier         Notifier
}

func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *NotificationService) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *NotificationService) Notify(ctx context.Context, recipient uuid.UUID, sender *uuid.UUID, ntype, title, message string, data any, priority string) {
	var payload json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			log.Printf("notifications: marshal data for %s: %v", ntype, err)
		} else {
			payload = b
		}
	}

	n := &domain.Notification{
		ID:          uuid.New(),
		RecipientID: recipient,
		SenderID:    sender,
		Type:        ntype,
		Title:       title,
		Message:     message,
		Data:        payload,
		Priority:    priority,
		CreatedAt:   time.Now(),
	}

	if err := s.notificationRepo.Create(ctx, n); err != nil {
		log.Printf("notifications: persisting %s for %s: %v", ntype, recipient, err)
		return
	}

	if s.notifier != nil {
		s.notifier.NotifyUser(recipient, n)
	}
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	notifications, err := s.notificationRepo.ListByRecipient(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.notificationRepo.MarkRead(ctx, notificationID, userID)
}
