package entry

import "time"

// Entry is the time-entry record used across storage, balancing, and outputs.
type Entry struct {
	ID            int64
	ProjectNumber string
	StartDateTime time.Time
	EndDateTime   time.Time // zero while the timer is still running

	// CorrectedDuration holds the day-balanced duration in seconds. It is
	// nil unless a balancing run has been applied, and is cleared by undo.
	// The derived duration is never modified.
	CorrectedDuration *int64
}

// Running reports whether the entry has no end time yet.
func (e Entry) Running() bool {
	return e.EndDateTime.IsZero()
}

// DurationSeconds returns the derived duration end-start in whole seconds.
// Running entries and inverted ranges yield 0.
func (e Entry) DurationSeconds() int64 {
	if e.Running() {
		return 0
	}
	seconds := int64(e.EndDateTime.Sub(e.StartDateTime).Seconds())
	if seconds < 0 {
		return 0
	}
	return seconds
}

// EffectiveDurationSeconds returns the corrected duration when one is set,
// otherwise the derived duration. Reports and exports use this value.
func (e Entry) EffectiveDurationSeconds() int64 {
	if e.CorrectedDuration != nil {
		return *e.CorrectedDuration
	}
	return e.DurationSeconds()
}

// Balanced reports whether the entry carries a corrected duration that
// differs from its derived duration.
func (e Entry) Balanced() bool {
	return e.CorrectedDuration != nil && *e.CorrectedDuration != e.DurationSeconds()
}
