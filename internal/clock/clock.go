// Package clock provides the application's single source of wall-clock time
// and the calendar-day keying used by the feed quota and scheduled publishing.
//
// All time-dependent business logic takes a Clock through its constructor so
// tests can substitute a fixed or advancing fake instead of patching globals.
// DayKey is the only place a timestamp is folded into a calendar day; quota
// rollover and day comparisons elsewhere must go through it.
package clock

import (
	"errors"
	"time"
)

// ErrInvalidTimestamp is returned by DayKey when the supplied timestamp is
// the zero value and therefore cannot be mapped to a calendar day.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// dayKeyLayout formats a day key as YYYY-MM-DD, which sorts
// lexicographically in chronological order.
const dayKeyLayout = "2006-01-02"

// Clock abstracts the wall-clock time source.
//
// Implementations must be safe for concurrent use. Production code uses
// System; tests inject a fake with a settable instant.
type Clock interface {
	// Now returns the current instant.
	Now() time.Time
}

// System is the production Clock backed by time.Now.
type System struct{}

// Now implements Clock.
func (System) Now() time.Time { return time.Now() }

// DayKey converts t into the calendar-day key of the given location,
// formatted YYYY-MM-DD. Keys are stable within one local calendar day and
// strictly increasing (lexicographically) across day boundaries.
//
// A nil loc defaults to time.Local. The zero timestamp is rejected with
// ErrInvalidTimestamp.
func DayKey(t time.Time, loc *time.Location) (string, error) {
	if t.IsZero() {
		return "", ErrInvalidTimestamp
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dayKeyLayout), nil
}
