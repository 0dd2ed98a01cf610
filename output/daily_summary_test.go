package output

import (
	"testing"
	"time"

	"daytally/balance"
	"daytally/entry"
)

var testSchedule = balance.Schedule{
	WorkStart:         "08:00",
	WorkEnd:           "17:00",
	LunchBreakMinutes: 60,
	OtherBreakMinutes: 15,
}

func TestBuildDailySummaries_UsesCorrectedDurations(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	corrected := int64(27900)

	summaries, err := BuildDailySummaries([]entry.Entry{
		{
			ProjectNumber:     "P-100",
			StartDateTime:     day.Add(9 * time.Hour),
			EndDateTime:       day.Add(12 * time.Hour),
			CorrectedDuration: &corrected,
		},
	}, testSchedule)
	if err != nil {
		t.Fatalf("build daily summaries: %v", err)
	}

	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	summary := summaries[0]
	if summary.Date != "2026-03-02" {
		t.Fatalf("unexpected date: %s", summary.Date)
	}
	if summary.OriginalHours != 3 {
		t.Fatalf("expected 3 original hours, got %v", summary.OriginalHours)
	}
	if summary.EffectiveHours != 7.75 {
		t.Fatalf("expected 7.75 effective hours, got %v", summary.EffectiveHours)
	}
	if summary.TargetHours != 7.75 || summary.DeltaHours != 0 {
		t.Fatalf("unexpected target/delta: %v/%v", summary.TargetHours, summary.DeltaHours)
	}
	if !summary.Balanced {
		t.Fatalf("expected balanced day")
	}
}

func TestBuildDailySummaries_GroupsByLocalDayAndSkipsRunning(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	nextDay := day.AddDate(0, 0, 1)

	summaries, err := BuildDailySummaries([]entry.Entry{
		{StartDateTime: day.Add(9 * time.Hour), EndDateTime: day.Add(10 * time.Hour)},
		{StartDateTime: day.Add(11 * time.Hour), EndDateTime: day.Add(12 * time.Hour)},
		{StartDateTime: nextDay.Add(9 * time.Hour), EndDateTime: nextDay.Add(13 * time.Hour)},
		{StartDateTime: nextDay.Add(14 * time.Hour)}, // running
	}, testSchedule)
	if err != nil {
		t.Fatalf("build daily summaries: %v", err)
	}

	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].EntryCount != 2 || summaries[0].OriginalHours != 2 {
		t.Fatalf("unexpected first day: %+v", summaries[0])
	}
	if summaries[1].EntryCount != 1 || summaries[1].OriginalHours != 4 {
		t.Fatalf("unexpected second day: %+v", summaries[1])
	}
	if summaries[1].DeltaHours != -3.75 {
		t.Fatalf("expected delta -3.75, got %v", summaries[1].DeltaHours)
	}
	if summaries[0].Balanced || summaries[1].Balanced {
		t.Fatalf("expected unbalanced days")
	}
}

func TestBuildDailySummaries_RejectsInvalidSchedule(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	_, err := BuildDailySummaries([]entry.Entry{
		{StartDateTime: day.Add(9 * time.Hour), EndDateTime: day.Add(10 * time.Hour)},
	}, balance.Schedule{WorkStart: "17:00", WorkEnd: "08:00"})
	if err == nil {
		t.Fatalf("expected error for invalid schedule")
	}
}
