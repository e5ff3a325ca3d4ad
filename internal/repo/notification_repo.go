// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for notifications
// and the per-user unread counter cache.
//
// The counter is adjusted by the same service transaction that mutates
// notification rows, so the pair stays consistent; this file only offers the
// primitives.
package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moodlog/go-mood-backend/internal/domain"
)

// CreateNotification inserts an unread notification for the recipient.
func CreateNotification(ctx context.Context, db *gorm.DB, userID, typ, recordID, preview string) (*domain.Notification, error) {
	n := &domain.Notification{
		ID:       uuid.NewString(),
		UserID:   userID,
		Type:     typ,
		RecordID: recordID,
		Preview:  preview,
	}
	if err := db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// GetNotification fetches a notification by id scoped to its recipient.
// Returns ErrNotFound when missing or owned by another user.
func GetNotification(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Notification, error) {
	var n domain.Notification
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNotifications returns the recipient's notifications, newest first.
func ListNotifications(ctx context.Context, db *gorm.DB, userID string) ([]domain.Notification, error) {
	var out []domain.Notification
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// MarkNotificationRead flips is_read on a single unread notification,
// reporting whether a row actually changed. Marking an already-read row
// reports changed=false with no error.
func MarkNotificationRead(ctx context.Context, db *gorm.DB, id, userID string) (changed bool, err error) {
	res := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND user_id = ? AND is_read = ?", id, userID, false).
		Update("is_read", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkAllNotificationsRead flips is_read on every unread notification for
// the recipient, returning the number of rows changed.
func MarkAllNotificationsRead(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// CountUnreadNotifications recomputes the unread count by scanning rows.
// The incremental counter is authoritative for reads; this exists for
// consistency checks and tests.
func CountUnreadNotifications(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

// GetUnreadCounter reads the cached unread counter, defaulting to 0 when
// the user has no counter row yet.
func GetUnreadCounter(ctx context.Context, db *gorm.DB, userID string) (int, error) {
	var c domain.NotificationCounter
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return c.Unread, nil
}

// AdjustUnreadCounter shifts the cached unread counter by delta, clamped at
// zero, creating the counter row on first use. Runs as a conditional UPDATE
// so concurrent adjustments cannot interleave a stale read.
func AdjustUnreadCounter(ctx context.Context, db *gorm.DB, userID string, delta int) error {
	res := db.WithContext(ctx).
		Model(&domain.NotificationCounter{}).
		Where("user_id = ?", userID).
		UpdateColumn("unread", gorm.Expr("MAX(unread + ?, 0)", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	c := &domain.NotificationCounter{UserID: userID, Unread: max(delta, 0)}
	return db.WithContext(ctx).Create(c).Error
}

// SetUnreadCounter overwrites the cached unread counter, creating the row
// when absent. Used by mark-all-read.
func SetUnreadCounter(ctx context.Context, db *gorm.DB, userID string, n int) error {
	res := db.WithContext(ctx).
		Model(&domain.NotificationCounter{}).
		Where("user_id = ?", userID).
		UpdateColumn("unread", n)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	c := &domain.NotificationCounter{UserID: userID, Unread: n}
	return db.WithContext(ctx).Create(c).Error
}
