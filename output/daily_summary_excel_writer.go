package output

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

func writeDailySummariesExcel(path string, summaries []DailySummary) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	for col, header := range dailySummaryHeaders() {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, summary := range summaries {
		row := i + 2
		for col, value := range dailySummaryRow(summary) {
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

func dailySummaryHeaders() []string {
	return []string{"Date", "OriginalHours", "EffectiveHours", "TargetHours", "DeltaHours", "Balanced", "EntryCount"}
}

func dailySummaryRow(summary DailySummary) []string {
	return []string{
		summary.Date,
		fmt.Sprintf("%.2f", summary.OriginalHours),
		fmt.Sprintf("%.2f", summary.EffectiveHours),
		fmt.Sprintf("%.2f", summary.TargetHours),
		fmt.Sprintf("%.2f", summary.DeltaHours),
		strconv.FormatBool(summary.Balanced),
		strconv.Itoa(summary.EntryCount),
	}
}
