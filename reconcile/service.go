// Package reconcile drives a day balancing run against the store: it fetches
// the day's completed entries, computes the adjustment plan, and persists or
// undoes corrected durations. The math itself lives in package balance.
package reconcile

import (
	"fmt"
	"time"

	"daytally/balance"
	"daytally/storage"
)

type Result struct {
	Day             string
	EntriesBalanced int
	RowsUpdated     int

	// TimeDifferenceHours and RoundedDifferenceHours mirror the plan; nil
	// when there was nothing to balance.
	TimeDifferenceHours    *float64
	RoundedDifferenceHours *float64

	Plan balance.Plan
}

// Preview computes the adjustment plan for the local calendar day without
// writing anything. Callers show the residual to the user and call Apply once
// confirmed.
func Preview(store *storage.SQLiteStore, day time.Time, schedule balance.Schedule) (*Result, error) {
	entries, err := store.ListCompletedForDay(day)
	if err != nil {
		return nil, err
	}

	plan, err := balance.ComputeAdjustment(entries, schedule)
	if err != nil {
		return nil, fmt.Errorf("balance day %s: %w", day.Format("2006-01-02"), err)
	}

	return &Result{
		Day:                    day.Format("2006-01-02"),
		EntriesBalanced:        len(plan.Entries),
		TimeDifferenceHours:    plan.TimeDifferenceHours,
		RoundedDifferenceHours: plan.RoundedDifferenceHours,
		Plan:                   plan,
	}, nil
}

// Apply persists the plan's corrected durations in one transaction and
// returns the updated row count.
func Apply(store *storage.SQLiteStore, result *Result) (int, error) {
	if result == nil || result.Plan.NoOp() {
		return 0, nil
	}

	corrections := make(map[int64]int64, len(result.Plan.Entries))
	for _, adjusted := range result.Plan.Entries {
		corrections[adjusted.ID] = adjusted.Duration
	}

	updated, err := store.ApplyCorrections(corrections)
	if err != nil {
		return 0, fmt.Errorf("persist balanced durations: %w", err)
	}
	result.RowsUpdated = updated
	return updated, nil
}

// Run previews and immediately applies the plan. Callers that need residual
// confirmation use Preview/Apply separately.
func Run(store *storage.SQLiteStore, day time.Time, schedule balance.Schedule) (*Result, error) {
	result, err := Preview(store, day, schedule)
	if err != nil {
		return nil, err
	}
	if _, err := Apply(store, result); err != nil {
		return nil, err
	}
	return result, nil
}

// UndoDay clears every corrected duration of the local calendar day in one
// transaction. Derived durations are never touched; repeating the call is a
// no-op.
func UndoDay(store *storage.SQLiteStore, day time.Time) (int, error) {
	cleared, err := store.ClearCorrectionsForDay(day)
	if err != nil {
		return 0, fmt.Errorf("undo balanced durations: %w", err)
	}
	return cleared, nil
}
