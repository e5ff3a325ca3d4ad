// Record visibility state machine.
//
// A record is private, scheduled, or public. Scheduled records carry a
// publish instant and become public by lazy derivation at read time; there is
// no background sweep. The transitions a caller may request explicitly are a
// strict subset of the machine:
//
//	private  -> public     (share now)
//	public   -> private    (unshare)
//	scheduled -> private   (cancel the scheduled share; clears the instant)
//
// scheduled -> public happens only automatically, when the publish instant
// passes. Anything else is rejected with an invalid-transition error by the
// service layer.
package domain

import "time"

// Visibility is the sharing state of a record.
type Visibility string

// Visibility states.
const (
	VisibilityPrivate   Visibility = "private"
	VisibilityScheduled Visibility = "scheduled"
	VisibilityPublic    Visibility = "public"
)

// Valid reports whether v is one of the known visibility states.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityScheduled, VisibilityPublic:
		return true
	}
	return false
}

// CanTransitionTo reports whether an explicit caller-requested change from v
// to next is a legal edge. Same-state "changes" are allowed as no-ops.
// The automatic scheduled -> public flip is not an explicit transition and
// is deliberately absent here.
func (v Visibility) CanTransitionTo(next Visibility) bool {
	if v == next {
		return true
	}
	switch v {
	case VisibilityPrivate:
		return next == VisibilityPublic
	case VisibilityPublic:
		return next == VisibilityPrivate
	case VisibilityScheduled:
		return next == VisibilityPrivate
	}
	return false
}

// EffectiveVisibility derives the visibility a reader must observe at time
// now. A scheduled record whose publish instant has passed reads as public;
// the stored state and ScheduledPublishAt are left untouched so the original
// scheduling survives for audit.
func (r *Record) EffectiveVisibility(now time.Time) Visibility {
	if r.Visibility == VisibilityScheduled && r.ScheduledPublishAt != nil && !now.Before(*r.ScheduledPublishAt) {
		return VisibilityPublic
	}
	return r.Visibility
}

// Presented returns a copy of r with the lazily derived visibility applied,
// suitable for returning across the read boundary. The copy keeps
// ScheduledPublishAt so clients can still see when a published entry had
// been scheduled.
func (r *Record) Presented(now time.Time) Record {
	out := *r
	out.Visibility = r.EffectiveVisibility(now)
	return out
}
