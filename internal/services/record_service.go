// Record lifecycle service.
//
// This file implements the RecordService, the authoritative owner of a
// user's own mood records. It validates content and emotion levels, enforces
// the visibility state machine for explicit transitions, derives the
// scheduled publish instant on creation, and applies the lazy
// scheduled-to-public flip at every read boundary.
//
// Service-level errors (ErrRecordNotFound, ErrEmptyContent, ErrContentTooLong,
// ErrInvalidEmotion, ErrInvalidVisibility, ErrInvalidTransition) are returned
// for predictable cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moodlog/go-mood-backend/internal/clock"
	"github.com/moodlog/go-mood-backend/internal/domain"
	"github.com/moodlog/go-mood-backend/internal/repo"
)

// RecordUpdate carries the partial-update payload for a record. Nil fields
// are left unchanged. The emotion level is intentionally absent: it is
// immutable after creation.
type RecordUpdate struct {
	Content    *string
	Visibility *domain.Visibility
}

// RecordService provides create/read/update/delete operations on the
// authenticated user's records. All reads go through the lazy publish
// derivation; stored visibility is never mutated by reads.
type RecordService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Clock supplies "now" for creation timestamps, scheduling, and the
	// lazy publish derivation.
	Clock clock.Clock

	// ContentMaxLen caps content by rune length.
	ContentMaxLen int
	// PublishDelay is the fixed offset between creating a scheduled record
	// and its automatic publication. System-wide; not stored per record.
	PublishDelay time.Duration
}

// Defaults applied by NewRecordService when a limit is unset.
const (
	DefaultContentMaxLen = 500
	DefaultPublishDelay  = 24 * time.Hour
)

// NewRecordService constructs a RecordService with the given limits. A
// non-positive contentMaxLen or publishDelay falls back to the defaults
// (500 runes, 24h).
func NewRecordService(db *gorm.DB, clk clock.Clock, contentMaxLen int, publishDelay time.Duration) *RecordService {
	if contentMaxLen <= 0 {
		contentMaxLen = DefaultContentMaxLen
	}
	if publishDelay <= 0 {
		publishDelay = DefaultPublishDelay
	}
	return &RecordService{
		DB:            db,
		Clock:         clk,
		ContentMaxLen: contentMaxLen,
		PublishDelay:  publishDelay,
	}
}

// Create validates and inserts a new record for userID. Content is trimmed;
// empty or overlong content, an out-of-range emotion level, and an unknown
// visibility are each rejected with the matching sentinel. A scheduled
// record receives ScheduledPublishAt = now + PublishDelay.
func (s *RecordService) Create(ctx context.Context, userID string, emotionLevel int, content string, visibility domain.Visibility) (*domain.Record, error) {
	content, err := s.validateContent(content)
	if err != nil {
		return nil, err
	}
	if emotionLevel < domain.EmotionLevelMin || emotionLevel > domain.EmotionLevelMax {
		return nil, ErrInvalidEmotion
	}
	if !visibility.Valid() {
		return nil, ErrInvalidVisibility
	}

	now := s.Clock.Now().UTC()
	r := &domain.Record{
		ID:           uuid.NewString(),
		UserID:       userID,
		EmotionLevel: emotionLevel,
		Content:      content,
		Visibility:   visibility,
		CreatedAt:    now,
	}
	if visibility == domain.VisibilityScheduled {
		at := now.Add(s.PublishDelay)
		r.ScheduledPublishAt = &at
	}
	if err := repo.CreateRecord(ctx, s.DB, r); err != nil {
		return nil, err
	}
	recordsCreated.WithLabelValues(string(visibility)).Inc()
	return r, nil
}

// Get fetches one of userID's records with the lazy publish derivation
// applied. Returns ErrRecordNotFound when missing or foreign.
func (s *RecordService) Get(ctx context.Context, userID, id string) (*domain.Record, error) {
	r, err := repo.GetRecord(ctx, s.DB, id, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	out := r.Presented(s.Clock.Now().UTC())
	return &out, nil
}

// ListMine returns a snapshot of userID's records, newest first, each with
// the lazy publish derivation applied.
func (s *RecordService) ListMine(ctx context.Context, userID string) ([]domain.Record, error) {
	rows, err := repo.ListRecords(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now().UTC()
	out := make([]domain.Record, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].Presented(now))
	}
	return out, nil
}

// ListPublic returns a snapshot of publicly readable records, newest first.
// Scheduled records whose publish instant has passed are included and read
// as public; the stored rows are untouched. When excludeUserID is non-empty
// that author's entries are omitted.
func (s *RecordService) ListPublic(ctx context.Context, excludeUserID string) ([]domain.Record, error) {
	now := s.Clock.Now().UTC()
	rows, err := repo.ListPublicRecords(ctx, s.DB, excludeUserID, now)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Record, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].Presented(now))
	}
	return out, nil
}

// Update applies a partial update to one of userID's records. Content is
// re-validated; a visibility change must be a legal explicit edge of the
// state machine. A rejected update leaves the record unchanged.
//
// Allowed explicit transitions: private -> public, public -> private,
// scheduled -> private (which clears ScheduledPublishAt). The automatic
// scheduled -> public flip never goes through this call.
func (s *RecordService) Update(ctx context.Context, userID, id string, upd RecordUpdate) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := repo.GetRecord(ctx, tx, id, userID)
		if err != nil {
			if isNotFound(err) {
				return ErrRecordNotFound
			}
			return err
		}

		fields := map[string]any{}

		if upd.Content != nil {
			content, err := s.validateContent(*upd.Content)
			if err != nil {
				return err
			}
			fields["content"] = content
		}

		if upd.Visibility != nil {
			next := *upd.Visibility
			if !next.Valid() {
				return ErrInvalidVisibility
			}
			if !r.Visibility.CanTransitionTo(next) {
				return ErrInvalidTransition
			}
			if next != r.Visibility {
				fields["visibility"] = next
				if r.Visibility == domain.VisibilityScheduled {
					// Manual override cancels the pending publication.
					fields["scheduled_publish_at"] = nil
				}
			}
		}

		if len(fields) == 0 {
			return nil
		}
		return repo.UpdateRecordFields(ctx, tx, id, userID, fields)
	})
}

// Delete permanently removes one of userID's records. There is no undo.
// Returns ErrRecordNotFound when missing or foreign.
func (s *RecordService) Delete(ctx context.Context, userID, id string) error {
	err := repo.DeleteRecord(ctx, s.DB, id, userID)
	if isNotFound(err) {
		return ErrRecordNotFound
	}
	return err
}

// validateContent trims and bounds record content.
func (s *RecordService) validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > s.ContentMaxLen {
		return "", ErrContentTooLong
	}
	return content, nil
}
