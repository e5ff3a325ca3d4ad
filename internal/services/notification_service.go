// Notification bookkeeping service.
//
// This file implements derived notification bookkeeping. Notifications are
// created by feed interactions targeting a record owner; the per-user unread
// count is maintained incrementally alongside every mutation rather than
// recomputed by scanning, and must always equal the number of unread rows.
//
// The same idempotent-transition discipline as the ledger applies: marking
// an already-read notification read is a silent no-op and never drives the
// counter negative.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/moodlog/go-mood-backend/internal/domain"
	"github.com/moodlog/go-mood-backend/internal/repo"
)

// NotificationService owns a user's notification inbox and its cached
// unread count. It implements the ledger's Notifier interface.
type NotificationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// NotifyInteraction appends an unread notification for ownerID and bumps
// the unread counter in the same transaction. The caller (the ledger) has
// already excluded self-targeted interactions and supplies its transaction
// handle so the notification lands atomically with the interaction.
func (s *NotificationService) NotifyInteraction(ctx context.Context, tx *gorm.DB, ownerID, typ, recordID, preview string) error {
	if _, err := repo.CreateNotification(ctx, tx, ownerID, typ, recordID, preview); err != nil {
		return err
	}
	return repo.AdjustUnreadCounter(ctx, tx, ownerID, +1)
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	return repo.ListNotifications(ctx, s.DB, userID)
}

// UnreadCount returns the cached unread count for the user.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return repo.GetUnreadCounter(ctx, s.DB, userID)
}

// MarkRead marks a single notification read. Re-reading an already-read
// notification is a silent no-op; only an actual flip decrements the
// counter, floored at zero. Returns ErrNotificationNotFound when the id is
// unknown or belongs to another recipient.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetNotification(ctx, tx, id, userID); err != nil {
			if isNotFound(err) {
				return ErrNotificationNotFound
			}
			return err
		}
		changed, err := repo.MarkNotificationRead(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return repo.AdjustUnreadCounter(ctx, tx, userID, -1)
	})
}

// MarkAllRead marks every notification read and zeroes the counter in one
// atomic step. Calling it on an already-empty inbox is a no-op.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.MarkAllNotificationsRead(ctx, tx, userID); err != nil {
			return err
		}
		return repo.SetUnreadCounter(ctx, tx, userID, 0)
	})
}
