// Package services defines the business logic for mood records, the daily
// feed quota, the feed interaction ledger, and notifications. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the
// handler layer.
//
// Idempotent no-ops are deliberately NOT errors: re-empathizing, re-sending
// a preset message, re-reading a notification, and marking a view past the
// daily cap all succeed silently, because they represent a repeated user
// action or steady state rather than a failure.
package services

import "errors"

// Record-related errors.
var (
	// ErrRecordNotFound indicates that the requested record does not exist or
	// is not accessible to the current user.
	ErrRecordNotFound = errors.New("record not found")

	// ErrEmptyContent is returned when record content is empty after
	// trimming leading and trailing whitespace.
	ErrEmptyContent = errors.New("content is empty")

	// ErrContentTooLong is returned when record content exceeds the
	// configured maximum length. The limit is enforced at save time even if
	// a client allowed transient overflow for warning display.
	ErrContentTooLong = errors.New("content too long")

	// ErrInvalidEmotion is returned when an emotion level is outside the
	// allowed range (currently 1 through 5).
	ErrInvalidEmotion = errors.New("emotion level must be between 1 and 5")

	// ErrInvalidVisibility is returned when a visibility value is not one of
	// private, scheduled, or public.
	ErrInvalidVisibility = errors.New("unknown visibility")

	// ErrInvalidTransition is returned when a requested visibility change is
	// not a legal edge in the state machine (e.g. public -> scheduled).
	ErrInvalidTransition = errors.New("visibility transition not allowed")
)

// Feed-ledger errors.
var (
	// ErrUnknownPreset is returned when a message preset id is not a member
	// of the fixed preset set.
	ErrUnknownPreset = errors.New("unknown message preset")

	// ErrConflict is reserved for a concurrent write that lost a race on an
	// idempotency-guarded field. With the SQLite backend most such races
	// degrade to idempotent no-ops instead; remote backends may surface it.
	ErrConflict = errors.New("conflicting concurrent write")
)

// Notification errors.
var (
	// ErrNotificationNotFound indicates that the requested notification does
	// not exist or belongs to another recipient.
	ErrNotificationNotFound = errors.New("notification not found")
)
