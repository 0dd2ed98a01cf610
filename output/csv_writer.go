package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"daytally/entry"
)

type CSVWriter struct{}

func (w *CSVWriter) Write(path string, entries []entry.Entry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{"ProjectNumber", "StartDateTime", "EndDateTime", "DurationSeconds", "CorrectedDurationSeconds", "EffectiveDurationSeconds"}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, e := range entries {
		if err := writer.Write(rawRow(e)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}

	return nil
}

func rawRow(e entry.Entry) []string {
	end := ""
	if !e.Running() {
		end = e.EndDateTime.Format(time.RFC3339)
	}
	corrected := ""
	if e.CorrectedDuration != nil {
		corrected = strconv.FormatInt(*e.CorrectedDuration, 10)
	}
	return []string{
		e.ProjectNumber,
		e.StartDateTime.Format(time.RFC3339),
		end,
		strconv.FormatInt(e.DurationSeconds(), 10),
		corrected,
		strconv.FormatInt(e.EffectiveDurationSeconds(), 10),
	}
}
