package output

import (
	"fmt"
	"math"
	"sort"
	"time"

	"daytally/balance"
	"daytally/entry"
)

type DailySummary struct {
	Date           string
	OriginalHours  float64
	EffectiveHours float64 // corrected durations where present
	TargetHours    float64
	DeltaHours     float64 // effective minus target
	Balanced       bool    // at least one entry carries a corrected duration
	EntryCount     int
}

// BuildDailySummaries aggregates completed entries per local calendar day and
// compares them against the schedule's target hours. Running entries are
// excluded.
func BuildDailySummaries(entries []entry.Entry, schedule balance.Schedule) ([]DailySummary, error) {
	targetHours, err := schedule.EffectiveHours()
	if err != nil {
		return nil, fmt.Errorf("resolve target hours: %w", err)
	}

	byDay := make(map[string][]entry.Entry)
	for _, e := range entries {
		if e.Running() {
			continue
		}
		day := e.StartDateTime.In(time.Local).Format("2006-01-02")
		byDay[day] = append(byDay[day], e)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	summaries := make([]DailySummary, 0, len(days))
	for _, day := range days {
		summaries = append(summaries, summarizeDay(day, byDay[day], targetHours))
	}

	return summaries, nil
}

func summarizeDay(day string, entries []entry.Entry, targetHours float64) DailySummary {
	originalSeconds := int64(0)
	effectiveSeconds := int64(0)
	balanced := false

	for _, e := range entries {
		originalSeconds += e.DurationSeconds()
		effectiveSeconds += e.EffectiveDurationSeconds()
		if e.CorrectedDuration != nil {
			balanced = true
		}
	}

	effectiveHours := float64(effectiveSeconds) / 3600.0
	return DailySummary{
		Date:           day,
		OriginalHours:  roundHours(float64(originalSeconds) / 3600.0),
		EffectiveHours: roundHours(effectiveHours),
		TargetHours:    roundHours(targetHours),
		DeltaHours:     roundHours(effectiveHours - targetHours),
		Balanced:       balanced,
		EntryCount:     len(entries),
	}
}

func roundHours(value float64) float64 {
	return math.Round(value*100) / 100
}

func WriteDailySummaries(path, format string, summaries []DailySummary) error {
	switch normalizeFormat(format) {
	case "csv":
		return writeDailySummariesCSV(path, summaries)
	case "excel", "xlsx":
		return writeDailySummariesExcel(path, summaries)
	default:
		return fmt.Errorf("unsupported output format for daily summaries: %s", format)
	}
}
