// Feed interaction ledger service.
//
// This file implements the feed interaction ledger: at most one active
// empathy reaction per viewer per item, and at most one preset comfort
// message per viewer per item, ever.
//
// Every mutation is idempotent. Re-adding empathy, re-removing it, and
// re-sending a message are silent no-ops; only genuinely state-changing
// calls touch the record counters, so for any call sequence the hearts
// delta from baseline is exactly 1 while empathized and 0 while not.
// Each mutation runs inside one transaction so the existence check, the
// mark insert/delete, the counter adjustment, and the notification land
// atomically. Uniqueness races on the marks degrade to the idempotent
// no-op via the database unique index.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/moodlog/go-mood-backend/internal/domain"
	"github.com/moodlog/go-mood-backend/internal/repo"
)

// Notifier receives interaction events targeting a record owner. The
// NotificationService implements it; tests may substitute a recorder.
// Implementations are invoked inside the ledger's transaction and must use
// the supplied handle.
type Notifier interface {
	// NotifyInteraction appends an unread notification for ownerID about an
	// empathy or message event on recordID.
	NotifyInteraction(ctx context.Context, tx *gorm.DB, ownerID, typ, recordID, preview string) error
}

// LedgerService owns per-item reaction and message state for feed viewers.
// It shares no mutable state with the quota tracker or the record store; it
// only adjusts record counters through conditional updates.
type LedgerService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Notifier is told about interactions that target someone else's
	// record. Optional; nil disables notifications.
	Notifier Notifier
}

// NewLedgerService constructs a LedgerService.
func NewLedgerService(db *gorm.DB, n Notifier) *LedgerService {
	return &LedgerService{DB: db, Notifier: n}
}

// previewLen caps the notification preview text.
const previewLen = 80

// AddEmpathy places userID's empathy on the record. A repeat call is a
// silent no-op; the first call increments the record's hearts counter and
// notifies the owner (unless the viewer is the owner). Returns
// ErrRecordNotFound for an unknown item.
func (s *LedgerService) AddEmpathy(ctx context.Context, userID, recordID string) error {
	placed := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := repo.GetAnyRecord(ctx, tx, recordID)
		if err != nil {
			if isNotFound(err) {
				return ErrRecordNotFound
			}
			return err
		}

		has, err := repo.HasEmpathy(ctx, tx, userID, recordID)
		if err != nil {
			return err
		}
		if has {
			return nil
		}

		if err := repo.CreateEmpathy(ctx, tx, userID, recordID); err != nil {
			// Lost a race against an identical request; the mark exists,
			// which is exactly the state this call wanted.
			if isDuplicate(err) {
				return nil
			}
			return err
		}
		if err := repo.AdjustHeartsCount(ctx, tx, recordID, +1); err != nil {
			return err
		}
		placed = true
		return s.notify(ctx, tx, userID, r, domain.NotificationTypeEmpathy)
	})
	if err == nil && placed {
		empathyEvents.WithLabelValues("add").Inc()
	}
	return err
}

// RemoveEmpathy withdraws userID's empathy from the record. A repeat call
// (or a call without a prior AddEmpathy) is a silent no-op; an actual
// removal decrements the hearts counter, floored at zero. Returns
// ErrRecordNotFound for an unknown item.
func (s *LedgerService) RemoveEmpathy(ctx context.Context, userID, recordID string) error {
	withdrawn := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetAnyRecord(ctx, tx, recordID); err != nil {
			if isNotFound(err) {
				return ErrRecordNotFound
			}
			return err
		}

		removed, err := repo.DeleteEmpathy(ctx, tx, userID, recordID)
		if err != nil {
			return err
		}
		if !removed {
			return nil
		}
		withdrawn = true
		return repo.AdjustHeartsCount(ctx, tx, recordID, -1)
	})
	if err == nil && withdrawn {
		empathyEvents.WithLabelValues("remove").Inc()
	}
	return err
}

// SendMessage delivers userID's one preset comfort message to the record.
// The first call records the preset, bumps the message counter, and
// notifies the owner; every later call is a silent no-op and the originally
// chosen preset stands. Returns ErrUnknownPreset for a preset id outside
// the fixed set and ErrRecordNotFound for an unknown item.
func (s *LedgerService) SendMessage(ctx context.Context, userID, recordID, presetID string) error {
	preset, ok := domain.PresetByID(presetID)
	if !ok {
		return ErrUnknownPreset
	}

	sent := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := repo.GetAnyRecord(ctx, tx, recordID)
		if err != nil {
			if isNotFound(err) {
				return ErrRecordNotFound
			}
			return err
		}

		existing, err := repo.GetMessageSend(ctx, tx, userID, recordID)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}

		if err := repo.CreateMessageSend(ctx, tx, userID, recordID, presetID); err != nil {
			if isDuplicate(err) {
				return nil
			}
			return err
		}
		if err := repo.IncrementMessagesCount(ctx, tx, recordID); err != nil {
			return err
		}
		sent = true
		return s.notify(ctx, tx, userID, r, domain.NotificationTypeMessage, preset.Label)
	})
	if err == nil && sent {
		presetMessagesSent.Inc()
	}
	return err
}

// Flags bulk-loads the viewer's per-item ledger flags for feed decoration.
func (s *LedgerService) Flags(ctx context.Context, userID string, recordIDs []string) (map[string]repo.InteractionFlags, error) {
	return repo.LoadInteractionFlags(ctx, s.DB, userID, recordIDs)
}

// notify forwards an interaction event to the Notifier unless the viewer
// targeted their own record. The preview is the preset label for messages
// and a clipped excerpt of the record content for empathy.
func (s *LedgerService) notify(ctx context.Context, tx *gorm.DB, actorID string, r *domain.Record, typ string, label ...string) error {
	if s.Notifier == nil || r.UserID == actorID {
		return nil
	}
	preview := clip(r.Content, previewLen)
	if len(label) > 0 {
		preview = label[0]
	}
	return s.Notifier.NotifyInteraction(ctx, tx, r.UserID, typ, r.ID, preview)
}

// clip truncates s to at most n runes.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
