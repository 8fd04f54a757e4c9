package export

import (
	"fmt"

	"github.com/granafy/reports/pkg/models/domain"
	"github.com/xuri/excelize/v2"
)

// writeXLSX renders the report as a workbook with a data sheet and a summary
// sheet.
func writeXLSX(path string, report *domain.GeneratedReport) error {
	f := excelize.NewFile()
	defer f.Close()

	const dataSheet = "Report"
	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headers, records := table(report)
	if err := setRow(f, dataSheet, 1, headers); err != nil {
		return err
	}
	for i, record := range records {
		if err := setRow(f, dataSheet, i+2, record); err != nil {
			return err
		}
	}

	const summarySheet = "Summary"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	if err := setRow(f, summarySheet, 1, []string{report.Metadata.ReportLabel}); err != nil {
		return err
	}
	if err := setRow(f, summarySheet, 2, []string{
		"Generated at", report.Metadata.GeneratedAt.Format("2006-01-02 15:04:05"),
	}); err != nil {
		return err
	}
	for i, line := range summaryLines(report) {
		if err := setRow(f, summarySheet, i+4, line); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}
