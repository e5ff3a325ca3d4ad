// Daily feed-viewing quota service.
//
// This file implements the daily feed-viewing quota. Each user may consume a
// fixed number of distinct feed items per local calendar day; the allowance
// refills at local midnight.
//
// Rollover is lazy: nothing runs at midnight. View rows are keyed by the
// calendar day they were recorded on, every query is scoped to the current
// day key, and rows from earlier days simply stop counting (a purge on the
// write path keeps the table bounded). Each operation resolves "today" once
// and runs inside a single transaction, so the rollover check and the
// read/write that follows observe the same day. There is no window where a
// stale day is read after the calendar has advanced.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/moodlog/go-mood-backend/internal/clock"
	"github.com/moodlog/go-mood-backend/internal/repo"
)

// DefaultDailyFeedLimit is the product's daily viewing cap.
const DefaultDailyFeedLimit = 20

// QuotaState is the caller-facing snapshot of a user's quota for today.
type QuotaState struct {
	DayKey       string `json:"day_key"`
	Limit        int    `json:"limit"`
	Used         int    `json:"used"`
	Remaining    int    `json:"remaining"`
	ReachedLimit bool   `json:"reached_limit"`
}

// QuotaService enforces the per-user daily feed-viewing cap. It is
// independent of which records are shown and shares no state with the
// record store or the interaction ledger.
type QuotaService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Clock supplies "now" for day-key resolution.
	Clock clock.Clock
	// Loc is the timezone whose midnight refills the quota.
	Loc *time.Location
	// DailyLimit is the viewing cap; values < 1 fall back to the default.
	DailyLimit int
}

// NewQuotaService constructs a QuotaService. A nil loc defaults to the
// process-local timezone, a non-positive limit to DefaultDailyFeedLimit.
func NewQuotaService(db *gorm.DB, clk clock.Clock, loc *time.Location, dailyLimit int) *QuotaService {
	if dailyLimit < 1 {
		dailyLimit = DefaultDailyFeedLimit
	}
	return &QuotaService{DB: db, Clock: clk, Loc: loc, DailyLimit: dailyLimit}
}

// today resolves the current day key once per logical operation.
func (s *QuotaService) today() (string, error) {
	return clock.DayKey(s.Clock.Now(), s.Loc)
}

// State returns the user's quota snapshot for today. Remaining is never
// negative, even if the configured limit shrank below an already-recorded
// day's usage.
func (s *QuotaService) State(ctx context.Context, userID string) (QuotaState, error) {
	day, err := s.today()
	if err != nil {
		return QuotaState{}, err
	}
	used, err := repo.CountViews(ctx, s.DB, userID, day)
	if err != nil {
		return QuotaState{}, err
	}
	remaining := s.DailyLimit - int(used)
	if remaining < 0 {
		remaining = 0
	}
	return QuotaState{
		DayKey:       day,
		Limit:        s.DailyLimit,
		Used:         int(used),
		Remaining:    remaining,
		ReachedLimit: remaining == 0,
	}, nil
}

// Remaining returns how many distinct feed items the user may still view
// today.
func (s *QuotaService) Remaining(ctx context.Context, userID string) (int, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return 0, err
	}
	return st.Remaining, nil
}

// HasReachedLimit reports whether the user's allowance for today is spent.
func (s *QuotaService) HasReachedLimit(ctx context.Context, userID string) (bool, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return false, err
	}
	return st.ReachedLimit, nil
}

// MarkViewed records that the user consumed itemID today. The call is
// idempotent (re-viewing an item never spends quota twice) and silently
// does nothing once the cap is hit: a capped view is a steady state, not an
// error. The check-and-insert pair runs inside one transaction.
func (s *QuotaService) MarkViewed(ctx context.Context, userID, itemID string) error {
	day, err := s.today()
	if err != nil {
		return err
	}
	charged := false
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Rollover: rows from earlier days no longer count; drop them.
		if err := repo.PurgeStaleViews(ctx, tx, userID, day); err != nil {
			return err
		}
		viewed, err := repo.HasViewed(ctx, tx, userID, itemID, day)
		if err != nil {
			return err
		}
		if viewed {
			return nil
		}
		used, err := repo.CountViews(ctx, tx, userID, day)
		if err != nil {
			return err
		}
		if int(used) >= s.DailyLimit {
			return nil
		}
		if err := repo.CreateView(ctx, tx, userID, itemID, day); err != nil {
			// A concurrent request recorded the same view first; that is
			// the idempotent outcome, not a failure.
			if isDuplicate(err) {
				return nil
			}
			return err
		}
		charged = true
		return nil
	})
	if err == nil && charged {
		feedViewsMarked.Inc()
	}
	return err
}

// ResetToday clears the user's viewed set for today. Support tooling only;
// not part of any normal user flow.
func (s *QuotaService) ResetToday(ctx context.Context, userID string) error {
	day, err := s.today()
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.PurgeStaleViews(ctx, tx, userID, day); err != nil {
			return err
		}
		return repo.DeleteViews(ctx, tx, userID, day)
	})
}
