// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for feed
// interaction state: empathy marks, one-shot message sends, and daily view
// rows for the quota.
//
// The repository follows a "thin" approach: it performs persistence and
// simple query composition, leaving the idempotency and quota rules to the
// services package. Uniqueness of (user, record) marks and (user, item, day)
// views relies on database unique indexes; duplicate-key errors are
// propagated raw so the service layer can translate (or absorb) them.
package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moodlog/go-mood-backend/internal/domain"
)

// --- empathy marks ---

// HasEmpathy reports whether userID currently holds an empathy mark on
// recordID.
func HasEmpathy(ctx context.Context, db *gorm.DB, userID, recordID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.EmpathyMark{}).
		Where("user_id = ? AND record_id = ?", userID, recordID).
		Count(&n).Error
	return n > 0, err
}

// CreateEmpathy inserts an empathy mark for (userID, recordID). A duplicate
// pair violates the unique index and the raw DB error is returned.
func CreateEmpathy(ctx context.Context, db *gorm.DB, userID, recordID string) error {
	m := &domain.EmpathyMark{
		ID:       uuid.NewString(),
		UserID:   userID,
		RecordID: recordID,
	}
	return db.WithContext(ctx).Create(m).Error
}

// DeleteEmpathy removes the empathy mark for (userID, recordID), reporting
// whether a row was actually deleted. Deleting an absent mark is not an
// error; it returns removed=false.
func DeleteEmpathy(ctx context.Context, db *gorm.DB, userID, recordID string) (removed bool, err error) {
	res := db.WithContext(ctx).
		Where("user_id = ? AND record_id = ?", userID, recordID).
		Delete(&domain.EmpathyMark{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// --- message sends ---

// GetMessageSend fetches the message-send row for (userID, recordID), or nil
// when the viewer has not messaged this record yet.
func GetMessageSend(ctx context.Context, db *gorm.DB, userID, recordID string) (*domain.MessageSend, error) {
	var s domain.MessageSend
	err := db.WithContext(ctx).
		Where("user_id = ? AND record_id = ?", userID, recordID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateMessageSend inserts the one-shot message row for (userID, recordID).
// A duplicate pair violates the unique index and the raw DB error is
// returned.
func CreateMessageSend(ctx context.Context, db *gorm.DB, userID, recordID, presetID string) error {
	s := &domain.MessageSend{
		ID:       uuid.NewString(),
		UserID:   userID,
		RecordID: recordID,
		PresetID: presetID,
	}
	return db.WithContext(ctx).Create(s).Error
}

// InteractionFlags carries the viewer's per-item ledger state used to
// decorate feed items.
type InteractionFlags struct {
	HasEmpathized  bool
	HasSentMessage bool
}

// LoadInteractionFlags bulk-loads the viewer's empathy and message flags for
// a set of record ids. Absent ids map to zero flags.
func LoadInteractionFlags(ctx context.Context, db *gorm.DB, userID string, recordIDs []string) (map[string]InteractionFlags, error) {
	out := make(map[string]InteractionFlags, len(recordIDs))
	if len(recordIDs) == 0 {
		return out, nil
	}

	var marks []domain.EmpathyMark
	if err := db.WithContext(ctx).
		Where("user_id = ? AND record_id IN ?", userID, recordIDs).
		Find(&marks).Error; err != nil {
		return nil, err
	}
	for _, m := range marks {
		f := out[m.RecordID]
		f.HasEmpathized = true
		out[m.RecordID] = f
	}

	var sends []domain.MessageSend
	if err := db.WithContext(ctx).
		Where("user_id = ? AND record_id IN ?", userID, recordIDs).
		Find(&sends).Error; err != nil {
		return nil, err
	}
	for _, s := range sends {
		f := out[s.RecordID]
		f.HasSentMessage = true
		out[s.RecordID] = f
	}
	return out, nil
}

// --- feed views (daily quota) ---

// CountViews returns the number of distinct feed items userID has consumed
// on the given day.
func CountViews(ctx context.Context, db *gorm.DB, userID, dayKey string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.FeedView{}).
		Where("user_id = ? AND day_key = ?", userID, dayKey).
		Count(&n).Error
	return n, err
}

// HasViewed reports whether userID already consumed itemID on the given day.
func HasViewed(ctx context.Context, db *gorm.DB, userID, itemID, dayKey string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.FeedView{}).
		Where("user_id = ? AND item_id = ? AND day_key = ?", userID, itemID, dayKey).
		Count(&n).Error
	return n > 0, err
}

// CreateView inserts a view row for (userID, itemID, dayKey). A duplicate
// triple violates the unique index and the raw DB error is returned.
func CreateView(ctx context.Context, db *gorm.DB, userID, itemID, dayKey string) error {
	v := &domain.FeedView{
		ID:     uuid.NewString(),
		UserID: userID,
		ItemID: itemID,
		DayKey: dayKey,
	}
	return db.WithContext(ctx).Create(v).Error
}

// PurgeStaleViews deletes userID's view rows from days strictly before
// dayKey. Day keys sort lexicographically in date order, so a plain string
// comparison selects every earlier day. Called opportunistically on quota
// writes to keep the table bounded.
func PurgeStaleViews(ctx context.Context, db *gorm.DB, userID, dayKey string) error {
	return db.WithContext(ctx).
		Where("user_id = ? AND day_key < ?", userID, dayKey).
		Delete(&domain.FeedView{}).Error
}

// DeleteViews removes all of userID's view rows for the given day. Used by
// the support-tooling quota reset.
func DeleteViews(ctx context.Context, db *gorm.DB, userID, dayKey string) error {
	return db.WithContext(ctx).
		Where("user_id = ? AND day_key = ?", userID, dayKey).
		Delete(&domain.FeedView{}).Error
}
