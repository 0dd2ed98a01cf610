package importer

import (
	"fmt"
	"strings"

	"daytally/entry"
)

type GenericMapper struct{}

func (m *GenericMapper) Name() string {
	return "generic"
}

func (m *GenericMapper) Map(record Record) (*entry.Entry, bool, error) {
	startRaw := record.Get("startdatetime", "start", "von")
	endRaw := record.Get("enddatetime", "end", "bis")
	if startRaw == "" && endRaw == "" {
		return nil, false, nil
	}

	start, err := parseDateTime(startRaw)
	if err != nil {
		return nil, false, fmt.Errorf("row %d: parse start datetime: %w", record.RowNumber, err)
	}

	end, err := parseDateTime(endRaw)
	if err != nil {
		return nil, false, fmt.Errorf("row %d: parse end datetime: %w", record.RowNumber, err)
	}
	if !end.After(start) {
		return nil, false, fmt.Errorf("row %d: end datetime must be after start datetime", record.RowNumber)
	}

	mapped := &entry.Entry{
		ProjectNumber: strings.TrimSpace(record.Get("projectnumber", "project", "projekt")),
		StartDateTime: start,
		EndDateTime:   end,
	}

	return mapped, true, nil
}
