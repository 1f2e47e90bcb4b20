package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/sirupsen/logrus"
)

const DefaultNotificationLimit = 10

// Channel pushes an already persisted notification somewhere the recipient
// will see it sooner than the next poll. Delivery is best-effort.
type Channel interface {
	Name() string
	Send(ctx context.Context, n *models.Notification) error
}

type NotificationService struct {
	Store    NotificationStore
	Channels []Channel
	Now      func() time.Time
}

func NewNotificationService(store NotificationStore, channels ...Channel) *NotificationService {
	return &NotificationService{
		Store:    store,
		Channels: channels,
		Now:      time.Now,
	}
}

// Deliver persists n and then fans it out to every channel. Only the
// persist error is returned; channel failures are logged.
func (s *NotificationService) Deliver(ctx context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.IsRead = false
	n.CreatedAt = s.Now()

	if err := s.Store.InsertNotification(ctx, n); err != nil {
		return storageFailure("insert notification", err)
	}

	for _, ch := range s.Channels {
		if err := ch.Send(ctx, n); err != nil {
			logrus.WithFields(logrus.Fields{
				"channel":         ch.Name(),
				"notification_id": n.ID,
				"user_id":         n.UserID,
			}).WithError(err).Warn("notification push failed")
		}
	}
	return nil
}

// NotificationPage is the newest slice of a user's notifications plus the
// total number still unread.
type NotificationPage struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit int) (*NotificationPage, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	items, err := s.Store.ListNotifications(ctx, userID, limit)
	if err != nil {
		return nil, storageFailure("list notifications", err)
	}
	unread, err := s.Store.CountUnread(ctx, userID)
	if err != nil {
		return nil, storageFailure("count unread notifications", err)
	}
	if items == nil {
		items = []models.Notification{}
	}
	return &NotificationPage{Notifications: items, UnreadCount: unread}, nil
}

// MarkRead flips is_read on one of the caller's notifications. Marking an
// already read notification is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	err := s.Store.MarkRead(ctx, userID, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	}
	return storageFailure("mark notification read", err)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.Store.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, storageFailure("mark all notifications read", err)
	}
	return n, nil
}
