package export

import (
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/granafy/reports/pkg/models/domain"
)

// writePDF renders the report as a single-table A4 document.
func writePDF(path string, report *domain.GeneratedReport) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, report.Metadata.ReportLabel, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6,
		fmt.Sprintf("Generated at %s", report.Metadata.GeneratedAt.Format("2006-01-02 15:04:05")),
		"", 1, "L", false, 0, "")
	pdf.Ln(4)

	headers, records := table(report)
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(headers))

	pdf.SetFont("Helvetica", "B", 9)
	for _, h := range headers {
		pdf.CellFormat(colWidth, 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, record := range records {
		for _, value := range record {
			pdf.CellFormat(colWidth, 6, value, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 9)
	for _, line := range summaryLines(report) {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(colWidth, 6, line[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(colWidth, 6, line[1], "", 1, "L", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
