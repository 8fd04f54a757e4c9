package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/granafy/reports/pkg/models/domain"
)

// writeCSV renders the report as UTF-8 CSV with a BOM prefix so spreadsheet
// applications pick up the encoding.
func writeCSV(path string, report *domain.GeneratedReport) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	writer := csv.NewWriter(file)

	headers, records := table(report)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	if err := writer.Write([]string{}); err != nil {
		return fmt.Errorf("write separator: %w", err)
	}
	for _, line := range summaryLines(report) {
		if err := writer.Write(line); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
