// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Record
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. In particular, the lazy
// scheduled-to-public derivation lives in the service layer; queries here
// select on stored state plus the publish instant.
//
// Error semantics:
//   - When a record is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/moodlog/go-mood-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateRecord inserts a fully populated Record row. The caller (service
// layer) is responsible for id assignment, validation, and deriving
// ScheduledPublishAt.
func CreateRecord(ctx context.Context, db *gorm.DB, r *domain.Record) error {
	return db.WithContext(ctx).Create(r).Error
}

// GetRecord fetches a single record by id scoped to its owner. If the record
// does not exist (or belongs to another user), it returns ErrNotFound.
func GetRecord(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Record, error) {
	var r domain.Record
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetAnyRecord fetches a record by id regardless of owner. Used by the feed
// ledger, which operates on other users' records.
func GetAnyRecord(ctx context.Context, db *gorm.DB, id string) (*domain.Record, error) {
	var r domain.Record
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRecords returns all records authored by userID, most recent first.
// It returns an empty slice if the user has none. On DB error, it returns
// the error.
func ListRecords(ctx context.Context, db *gorm.DB, userID string) ([]domain.Record, error) {
	var out []domain.Record
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListPublicRecords returns records readable by the public at instant now,
// most recent first: stored-public rows plus scheduled rows whose publish
// instant has passed. When excludeUserID is non-empty, that author's records
// are omitted (the feed never shows a viewer their own entries).
func ListPublicRecords(ctx context.Context, db *gorm.DB, excludeUserID string, now time.Time) ([]domain.Record, error) {
	q := db.WithContext(ctx).
		Where("visibility = ? OR (visibility = ? AND scheduled_publish_at <= ?)",
			domain.VisibilityPublic, domain.VisibilityScheduled, now)
	if excludeUserID != "" {
		q = q.Where("user_id <> ?", excludeUserID)
	}
	var out []domain.Record
	err := q.Order("created_at desc").Find(&out).Error
	return out, err
}

// UpdateRecordFields applies a partial column update to a record owned by
// userID. If no rows are affected (record missing or not owned), it returns
// ErrNotFound.
func UpdateRecordFields(ctx context.Context, db *gorm.DB, id, userID string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Record{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteRecord removes a record owned by userID. The row is soft-deleted
// (retained for audit) and excluded from every subsequent read. Returns
// ErrNotFound when the record is missing or owned by someone else.
func DeleteRecord(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Record{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AdjustHeartsCount shifts a record's hearts counter by delta, clamped at
// zero. Runs as a single conditional UPDATE so concurrent adjustments cannot
// interleave a stale read.
func AdjustHeartsCount(ctx context.Context, db *gorm.DB, id string, delta int) error {
	return db.WithContext(ctx).
		Model(&domain.Record{}).
		Where("id = ?", id).
		UpdateColumn("hearts_count", gorm.Expr("MAX(hearts_count + ?, 0)", delta)).Error
}

// IncrementMessagesCount bumps a record's message counter by one.
func IncrementMessagesCount(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).
		Model(&domain.Record{}).
		Where("id = ?", id).
		UpdateColumn("messages_count", gorm.Expr("messages_count + 1")).Error
}
