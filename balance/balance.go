// Package balance implements the daily balancing computation
// ("Tagesausgleich"): redistribute a day's entry durations proportionally so
// their sum matches the target effective work duration of a schedule, rounded
// to 15-minute granularity.
//
// The computation is pure. It never touches storage and leaves the original
// durations untouched; callers persist the resulting plan and can undo it by
// clearing the corrected durations again.
package balance

import (
	"errors"
	"math"
	"sort"

	"daytally/entry"
	"daytally/internal/timeutil"
)

// GranularitySeconds is the rounding unit for corrected durations.
const GranularitySeconds = 900

// residualEpsilonHours is the residual below which rounded durations are
// accepted without correction.
const residualEpsilonHours = 0.01

var (
	// ErrInvalidSchedule is returned when the schedule yields a
	// non-positive effective work window.
	ErrInvalidSchedule = errors.New("schedule effective work window is not positive")

	// ErrZeroTotalDuration is returned when every entry of the day has
	// zero duration, leaving no proportions to redistribute by.
	ErrZeroTotalDuration = errors.New("all entries have zero duration")
)

// Schedule describes the target work day the entries are balanced against.
type Schedule struct {
	WorkStart         string // "HH:MM"
	WorkEnd           string // "HH:MM"
	LunchBreakMinutes int
	OtherBreakMinutes int
}

// EffectiveHours returns the target effective work duration of the day:
// (work end - work start) minus breaks, in hours. ErrInvalidSchedule is
// returned when the resulting window is not positive.
func (s Schedule) EffectiveHours() (float64, error) {
	start, err := timeutil.ParseClock(s.WorkStart)
	if err != nil {
		return 0, err
	}
	end, err := timeutil.ParseClock(s.WorkEnd)
	if err != nil {
		return 0, err
	}

	effectiveMinutes := end - start - s.LunchBreakMinutes - s.OtherBreakMinutes
	if effectiveMinutes <= 0 {
		return 0, ErrInvalidSchedule
	}

	return float64(effectiveMinutes) / 60.0, nil
}

// AdjustedEntry is one entry's share of a balancing plan.
type AdjustedEntry struct {
	ID                int64
	OriginalDuration  int64   // derived duration, seconds
	UnroundedDuration float64 // proportional share before rounding, seconds
	Duration          int64   // corrected duration, seconds, multiple of GranularitySeconds
}

// Plan is the result of one balancing computation. The difference values are
// nil when the computation was a no-op (no entries, or a schedule without
// work start/end). Entries keeps the input order.
type Plan struct {
	// TimeDifferenceHours is target minus current total, before rounding.
	// Positive means the entries under-report time.
	TimeDifferenceHours *float64

	// RoundedDifferenceHours is the residual after rounding and residual
	// correction. A nonzero value is a normal outcome the caller should
	// confirm before applying, not an error.
	RoundedDifferenceHours *float64

	Entries []AdjustedEntry
}

// NoOp reports whether the plan carries no adjustment.
func (p Plan) NoOp() bool {
	return p.TimeDifferenceHours == nil
}

// ComputeAdjustment redistributes the entries' durations proportionally so
// their sum matches the schedule's effective hours, rounds every share to
// GranularitySeconds, and corrects the rounding residual by moving whole
// granularity steps onto the largest entries.
//
// Running entries must already be filtered out by the caller, as must
// entries of other days; the computation trusts the list it receives.
func ComputeAdjustment(entries []entry.Entry, schedule Schedule) (Plan, error) {
	if schedule.WorkStart == "" || schedule.WorkEnd == "" || len(entries) == 0 {
		return Plan{Entries: []AdjustedEntry{}}, nil
	}

	effectiveHours, err := schedule.EffectiveHours()
	if err != nil {
		return Plan{}, err
	}

	totalSeconds := int64(0)
	for _, e := range entries {
		totalSeconds += e.DurationSeconds()
	}
	if totalSeconds == 0 {
		return Plan{}, ErrZeroTotalDuration
	}

	totalCurrentHours := float64(totalSeconds) / 3600.0
	timeDifference := effectiveHours - totalCurrentHours

	adjusted := make([]AdjustedEntry, len(entries))
	for i, e := range entries {
		original := e.DurationSeconds()
		unrounded := float64(original) * effectiveHours / totalCurrentHours
		rounded := int64(math.Round(unrounded/GranularitySeconds)) * GranularitySeconds
		adjusted[i] = AdjustedEntry{
			ID:                e.ID,
			OriginalDuration:  original,
			UnroundedDuration: unrounded,
			Duration:          rounded,
		}
	}

	roundedDifference := effectiveHours - totalHours(adjusted)
	if math.Abs(roundedDifference) >= residualEpsilonHours {
		correctResidual(adjusted, roundedDifference)
		roundedDifference = effectiveHours - totalHours(adjusted)
	}

	return Plan{
		TimeDifferenceHours:    &timeDifference,
		RoundedDifferenceHours: &roundedDifference,
		Entries:                adjusted,
	}, nil
}

// correctResidual closes the gap between the rounded sum and the target by
// walking the entries in descending unrounded order (stable on ties) and
// moving one granularity step per visit, wrapping around until the required
// step count is spent. Entries that would go negative are skipped. A full
// pass without progress terminates the walk; the remaining residual is then
// reported to the caller instead of looping forever.
func correctResidual(adjusted []AdjustedEntry, residualHours float64) {
	order := make([]int, len(adjusted))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return adjusted[order[a]].UnroundedDuration > adjusted[order[b]].UnroundedDuration
	})

	stepValue := int64(GranularitySeconds)
	if residualHours < 0 {
		stepValue = -stepValue
	}
	steps := int(math.Round(math.Abs(residualHours) / 0.25))

	for steps > 0 {
		appliedInPass := 0
		for _, idx := range order {
			if steps == 0 {
				break
			}
			if adjusted[idx].Duration+stepValue < 0 {
				continue
			}
			adjusted[idx].Duration += stepValue
			steps--
			appliedInPass++
		}
		if appliedInPass == 0 {
			break
		}
	}
}

func totalHours(adjusted []AdjustedEntry) float64 {
	total := int64(0)
	for _, e := range adjusted {
		total += e.Duration
	}
	return float64(total) / 3600.0
}
