package web

import (
	"sort"
	"time"

	"daytally/balance"
	"daytally/entry"
	"daytally/internal/timeutil"
)

type EntryRow struct {
	ID             int64   `json:"id"`
	ProjectNumber  string  `json:"projectNumber"`
	Start          string  `json:"start"`
	End            string  `json:"end"`
	Running        bool    `json:"running"`
	DurationMins   int64   `json:"durationMins"`
	CorrectedMins  *int64  `json:"correctedMins,omitempty"`
	EffectiveHours float64 `json:"effectiveHours"`
}

type DayRow struct {
	Date           time.Time
	OriginalHours  float64
	EffectiveHours float64
	TargetHours    float64
	DeltaHours     float64
	Balanced       bool
	Entries        []EntryRow
}

type MonthSummary struct {
	Days                []DayRow
	TotalOriginalHours  float64
	TotalEffectiveHours float64
	TotalDeltaHours     float64
}

// BuildDayRow aggregates one local calendar day's entries against the
// schedule target. Running entries are listed but contribute no hours.
func BuildDayRow(day time.Time, entries []entry.Entry, schedule balance.Schedule) DayRow {
	targetHours := 0.0
	if hours, err := schedule.EffectiveHours(); err == nil {
		targetHours = hours
	}

	sorted := append([]entry.Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StartDateTime.Equal(sorted[j].StartDateTime) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].StartDateTime.Before(sorted[j].StartDateTime)
	})

	rows := make([]EntryRow, 0, len(sorted))
	originalSeconds := int64(0)
	effectiveSeconds := int64(0)
	balanced := false

	for _, e := range sorted {
		rows = append(rows, buildEntryRow(e))
		if e.Running() {
			continue
		}
		originalSeconds += e.DurationSeconds()
		effectiveSeconds += e.EffectiveDurationSeconds()
		if e.CorrectedDuration != nil {
			balanced = true
		}
	}

	effectiveHours := float64(effectiveSeconds) / 3600.0
	return DayRow{
		Date:           timeutil.StartOfDay(day),
		OriginalHours:  float64(originalSeconds) / 3600.0,
		EffectiveHours: effectiveHours,
		TargetHours:    targetHours,
		DeltaHours:     effectiveHours - targetHours,
		Balanced:       balanced,
		Entries:        rows,
	}
}

// BuildMonthSummary returns one row per day of the month that has entries.
func BuildMonthSummary(monthStart time.Time, entries []entry.Entry, schedule balance.Schedule) MonthSummary {
	byDay := make(map[string][]entry.Entry)
	days := make(map[string]time.Time)
	for _, e := range entries {
		day := timeutil.StartOfDay(e.StartDateTime.In(time.Local))
		if day.Year() != monthStart.Year() || day.Month() != monthStart.Month() {
			continue
		}
		key := day.Format("2006-01-02")
		byDay[key] = append(byDay[key], e)
		days[key] = day
	}

	keys := make([]string, 0, len(days))
	for key := range days {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	summary := MonthSummary{Days: make([]DayRow, 0, len(keys))}
	for _, key := range keys {
		row := BuildDayRow(days[key], byDay[key], schedule)
		summary.Days = append(summary.Days, row)
		summary.TotalOriginalHours += row.OriginalHours
		summary.TotalEffectiveHours += row.EffectiveHours
		summary.TotalDeltaHours += row.DeltaHours
	}
	return summary
}

func buildEntryRow(e entry.Entry) EntryRow {
	end := ""
	if !e.Running() {
		end = e.EndDateTime.Format("15:04")
	}

	var correctedMins *int64
	if e.CorrectedDuration != nil {
		mins := *e.CorrectedDuration / 60
		correctedMins = &mins
	}

	return EntryRow{
		ID:             e.ID,
		ProjectNumber:  e.ProjectNumber,
		Start:          e.StartDateTime.Format("15:04"),
		End:            end,
		Running:        e.Running(),
		DurationMins:   e.DurationSeconds() / 60,
		CorrectedMins:  correctedMins,
		EffectiveHours: float64(e.EffectiveDurationSeconds()) / 3600.0,
	}
}
