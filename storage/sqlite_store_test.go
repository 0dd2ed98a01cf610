package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"daytally/entry"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := OpenSQLite(filepath.Join(t.TempDir(), "daytally_test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestStartStopEntry(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

	id, err := store.StartEntry("P-100", start)
	if err != nil {
		t.Fatalf("start entry: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive entry id, got %d", id)
	}

	if _, err := store.StartEntry("P-200", start.Add(time.Minute)); !errors.Is(err, ErrTimerRunning) {
		t.Fatalf("expected ErrTimerRunning, got %v", err)
	}

	running, err := store.RunningEntry()
	if err != nil {
		t.Fatalf("running entry: %v", err)
	}
	if running == nil || running.ID != id || !running.Running() {
		t.Fatalf("unexpected running entry: %+v", running)
	}

	stopped, err := store.StopEntry(start.Add(90 * time.Minute))
	if err != nil {
		t.Fatalf("stop entry: %v", err)
	}
	if stopped.DurationSeconds() != 5400 {
		t.Fatalf("expected 5400s duration, got %d", stopped.DurationSeconds())
	}

	if _, err := store.StopEntry(start.Add(2 * time.Hour)); !errors.Is(err, ErrNoTimer) {
		t.Fatalf("expected ErrNoTimer, got %v", err)
	}
}

func TestListCompletedForDay_FiltersRunningAndOtherDays(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

	inserted, err := store.InsertEntries([]entry.Entry{
		{
			ProjectNumber: "P-100",
			StartDateTime: day.Add(9 * time.Hour),
			EndDateTime:   day.Add(10 * time.Hour),
		},
		{
			ProjectNumber: "P-200",
			StartDateTime: day.Add(11 * time.Hour),
			EndDateTime:   day.Add(12 * time.Hour),
		},
		{
			// Previous day.
			ProjectNumber: "P-100",
			StartDateTime: day.Add(-15 * time.Hour),
			EndDateTime:   day.Add(-14 * time.Hour),
		},
		{
			// Running, must be excluded from balancing input.
			ProjectNumber: "P-300",
			StartDateTime: day.Add(14 * time.Hour),
		},
	})
	if err != nil {
		t.Fatalf("insert entries: %v", err)
	}
	if inserted != 4 {
		t.Fatalf("expected 4 inserted rows, got %d", inserted)
	}

	completed, err := store.ListCompletedForDay(day)
	if err != nil {
		t.Fatalf("list completed for day: %v", err)
	}
	if len(completed) != 2 {
		t.Fatalf("expected 2 completed entries, got %d", len(completed))
	}
	for _, e := range completed {
		if e.Running() {
			t.Fatalf("running entry leaked into day list: %+v", e)
		}
	}
}

func TestApplyAndClearCorrections(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

	if _, err := store.InsertEntries([]entry.Entry{
		{ProjectNumber: "P-100", StartDateTime: day.Add(9 * time.Hour), EndDateTime: day.Add(12 * time.Hour)},
		{ProjectNumber: "P-200", StartDateTime: day.Add(13 * time.Hour), EndDateTime: day.Add(14 * time.Hour)},
	}); err != nil {
		t.Fatalf("insert entries: %v", err)
	}

	entries, err := store.ListCompletedForDay(day)
	if err != nil {
		t.Fatalf("list completed for day: %v", err)
	}

	corrections := map[int64]int64{
		entries[0].ID: 20700,
		entries[1].ID: 7200,
	}
	updated, err := store.ApplyCorrections(corrections)
	if err != nil {
		t.Fatalf("apply corrections: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 updated rows, got %d", updated)
	}

	entries, err = store.ListCompletedForDay(day)
	if err != nil {
		t.Fatalf("list completed for day: %v", err)
	}
	for _, e := range entries {
		if e.CorrectedDuration == nil {
			t.Fatalf("expected corrected duration on entry %d", e.ID)
		}
		if *e.CorrectedDuration != corrections[e.ID] {
			t.Fatalf("entry %d: expected corrected duration %d, got %d", e.ID, corrections[e.ID], *e.CorrectedDuration)
		}
		if e.DurationSeconds() == *e.CorrectedDuration {
			t.Fatalf("entry %d: derived duration must stay untouched", e.ID)
		}
	}

	// Undo twice; the second run must be a no-op with the same final state.
	cleared, err := store.ClearCorrectionsForDay(day)
	if err != nil {
		t.Fatalf("clear corrections: %v", err)
	}
	if cleared != 2 {
		t.Fatalf("expected 2 cleared rows, got %d", cleared)
	}

	cleared, err = store.ClearCorrectionsForDay(day)
	if err != nil {
		t.Fatalf("clear corrections again: %v", err)
	}
	if cleared != 0 {
		t.Fatalf("expected idempotent undo, got %d cleared rows", cleared)
	}

	entries, err = store.ListCompletedForDay(day)
	if err != nil {
		t.Fatalf("list completed for day: %v", err)
	}
	for _, e := range entries {
		if e.CorrectedDuration != nil {
			t.Fatalf("entry %d: expected corrected duration cleared", e.ID)
		}
	}
}

func TestApplyCorrections_UnknownEntryRollsBack(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

	if _, err := store.InsertEntries([]entry.Entry{
		{ProjectNumber: "P-100", StartDateTime: day.Add(9 * time.Hour), EndDateTime: day.Add(10 * time.Hour)},
	}); err != nil {
		t.Fatalf("insert entries: %v", err)
	}

	entries, err := store.ListCompletedForDay(day)
	if err != nil {
		t.Fatalf("list completed for day: %v", err)
	}

	_, err = store.ApplyCorrections(map[int64]int64{
		entries[0].ID: 3600,
		99999:         900,
	})
	if !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}

	// The valid correction must not have been committed.
	refetched, _, err := store.GetEntryByID(entries[0].ID)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if refetched.CorrectedDuration != nil {
		t.Fatalf("expected rollback to leave corrected duration nil")
	}
}

func TestUpdateEntry_DropsCorrection(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

	if _, err := store.InsertEntries([]entry.Entry{
		{ProjectNumber: "P-100", StartDateTime: day.Add(9 * time.Hour), EndDateTime: day.Add(10 * time.Hour)},
	}); err != nil {
		t.Fatalf("insert entries: %v", err)
	}
	entries, err := store.ListEntries()
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}

	if _, err := store.ApplyCorrections(map[int64]int64{entries[0].ID: 7200}); err != nil {
		t.Fatalf("apply corrections: %v", err)
	}

	updated := entries[0]
	updated.EndDateTime = day.Add(11 * time.Hour)
	if err := store.UpdateEntry(updated); err != nil {
		t.Fatalf("update entry: %v", err)
	}

	refetched, found, err := store.GetEntryByID(updated.ID)
	if err != nil || !found {
		t.Fatalf("get entry: found=%v err=%v", found, err)
	}
	if refetched.CorrectedDuration != nil {
		t.Fatalf("expected correction dropped after time edit")
	}
	if refetched.DurationSeconds() != 7200 {
		t.Fatalf("expected 7200s duration after edit, got %d", refetched.DurationSeconds())
	}
}

func TestDeleteEntry(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

	if _, err := store.InsertEntries([]entry.Entry{
		{ProjectNumber: "P-100", StartDateTime: day.Add(9 * time.Hour), EndDateTime: day.Add(10 * time.Hour)},
	}); err != nil {
		t.Fatalf("insert entries: %v", err)
	}
	entries, err := store.ListEntries()
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}

	deleted, err := store.DeleteEntry(entries[0].ID)
	if err != nil {
		t.Fatalf("delete entry: %v", err)
	}
	if !deleted {
		t.Fatalf("expected entry to be deleted")
	}

	deleted, err = store.DeleteEntry(entries[0].ID)
	if err != nil {
		t.Fatalf("delete entry again: %v", err)
	}
	if deleted {
		t.Fatalf("expected second delete to report not found")
	}
}
