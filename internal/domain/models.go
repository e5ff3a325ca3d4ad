// Package domain defines the persistence models for mood records, feed
// interaction marks, and notifications. These types are mapped with GORM and
// form the core data layer of the mood-sharing backend.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Emotion level bounds. A record's level is an integer weather score from
// 1 (stormy) to 5 (sunny) and is immutable after creation.
const (
	EmotionLevelMin = 1
	EmotionLevelMax = 5
)

// Record represents one user's emotional-weather entry. The emotion level is
// fixed at creation; content and visibility may change afterwards within the
// rules enforced by the service layer.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID: identifier of the author; indexed for efficient retrieval.
//   - EmotionLevel: weather score in [1,5], immutable once set.
//   - Content: entry text, trimmed, bounded by the configured maximum.
//   - Visibility: private, scheduled, or public (see visibility.go).
//   - HeartsCount / MessagesCount: interaction counters, adjusted only by
//     the feed ledger service.
//   - ScheduledPublishAt: set iff Visibility == scheduled; the instant at
//     which the entry becomes publicly readable. Retained after the lazy
//     publish flip for audit.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (retains row for audit/history).
type Record struct {
	ID                 string         `json:"id"                   gorm:"type:char(36);primaryKey"`
	UserID             string         `json:"user_id"              gorm:"type:varchar(64);not null;index:idx_user_records"`
	EmotionLevel       int            `json:"emotion_level"        gorm:"not null;check:emotion_level BETWEEN 1 AND 5"`
	Content            string         `json:"content"              gorm:"type:text;not null"`
	Visibility         Visibility     `json:"visibility"           gorm:"type:varchar(16);not null;index;check:visibility IN ('private','scheduled','public')"`
	HeartsCount        int            `json:"hearts_count"         gorm:"not null;default:0"`
	MessagesCount      int            `json:"messages_count"       gorm:"not null;default:0"`
	ScheduledPublishAt *time.Time     `json:"scheduled_publish_at,omitempty" gorm:"index"`
	CreatedAt          time.Time      `json:"created_at"           gorm:"index"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-"                    gorm:"index"`
}

// TableName returns the database table name for Record.
func (Record) TableName() string { return "records" }

// EmpathyMark records that a viewer currently holds an empathy reaction on a
// record. At most one mark may exist per (user, record), enforced by a unique
// index; the ledger service keeps Record.HeartsCount consistent with the set
// of marks.
type EmpathyMark struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	UserID    string    `gorm:"type:varchar(64);not null;index;uniqueIndex:ux_empathy_user_record,priority:1"`
	RecordID  string    `gorm:"type:char(36);not null;index;uniqueIndex:ux_empathy_user_record,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the database table name for EmpathyMark.
func (EmpathyMark) TableName() string { return "empathy_marks" }

// MessageSend records that a viewer has sent their one preset comfort
// message to a record. The (user, record) pair is unique; the row is never
// deleted or overwritten, so the first preset chosen is the one that sticks.
type MessageSend struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	UserID    string    `gorm:"type:varchar(64);not null;index;uniqueIndex:ux_message_user_record,priority:1"`
	RecordID  string    `gorm:"type:char(36);not null;index;uniqueIndex:ux_message_user_record,priority:2"`
	PresetID  string    `gorm:"type:varchar(32);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the database table name for MessageSend.
func (MessageSend) TableName() string { return "message_sends" }

// FeedView records that a user consumed a feed item on a given local
// calendar day. Day rollover is implicit: quota queries are keyed by the
// current day key, so rows from earlier days stop counting without a sweep.
//
// The (user, item, day) triple is unique, which makes repeated views of the
// same item within one day free with respect to the quota.
type FeedView struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	UserID    string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_view_user_item_day,priority:1;index:idx_view_user_day,priority:1"`
	ItemID    string    `gorm:"type:char(36);not null;uniqueIndex:ux_view_user_item_day,priority:2"`
	DayKey    string    `gorm:"type:char(10);not null;uniqueIndex:ux_view_user_item_day,priority:3;index:idx_view_user_day,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the database table name for FeedView.
func (FeedView) TableName() string { return "feed_views" }

// Notification types.
const (
	NotificationTypeEmpathy = "empathy"
	NotificationTypeMessage = "message"
)

// Notification is a derived inbox item created when another user's empathy
// or message lands on one of the recipient's records.
type Notification struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"-"          gorm:"type:varchar(64);not null;index:idx_user_notifications"`
	Type      string    `json:"type"       gorm:"type:varchar(16);not null;check:type IN ('empathy','message')"`
	RecordID  string    `json:"record_id"  gorm:"type:char(36);not null;index"`
	Preview   string    `json:"preview"    gorm:"type:varchar(255);not null"`
	IsRead    bool      `json:"is_read"    gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName returns the database table name for Notification.
func (Notification) TableName() string { return "notifications" }

// NotificationCounter caches the number of unread notifications per user so
// the badge count is a single-row read. Every notification mutation updates
// the counter in the same transaction; it must always equal the count of
// unread rows.
type NotificationCounter struct {
	UserID    string    `gorm:"type:varchar(64);primaryKey"`
	Unread    int       `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// TableName returns the database table name for NotificationCounter.
func (NotificationCounter) TableName() string { return "notification_counters" }

// FeedItem is the viewer-facing projection of another user's public record.
// Counters mirror the record; the two flags are derived from the viewer's
// empathy mark and message send for the item.
type FeedItem struct {
	ID             string    `json:"id"`
	EmotionLevel   int       `json:"emotion_level"`
	Content        string    `json:"content"`
	HeartsCount    int       `json:"hearts_count"`
	MessagesCount  int       `json:"messages_count"`
	HasEmpathized  bool      `json:"has_empathized"`
	HasSentMessage bool      `json:"has_sent_message"`
	CreatedAt      time.Time `json:"created_at"`
}
