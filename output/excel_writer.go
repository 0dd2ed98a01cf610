package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"daytally/entry"
)

type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, entries []entry.Entry) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	headers := []string{"ProjectNumber", "StartDateTime", "EndDateTime", "DurationSeconds", "CorrectedDurationSeconds", "EffectiveDurationSeconds"}

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, e := range entries {
		row := i + 2
		for col, value := range rawRow(e) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}

	return nil
}
