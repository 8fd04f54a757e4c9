package export

import (
	"fmt"
	"slices"

	"github.com/granafy/reports/pkg/models/domain"
)

// table flattens a generated report into headers and string records, shaped
// per report type. Every renderer draws from this one projection.
func table(report *domain.GeneratedReport) (headers []string, records [][]string) {
	switch report.Metadata.ReportType {
	case domain.ReportExpensesEvolution:
		headers = []string{"Period", "Total", "Transactions", "Variation (%)"}
		for _, row := range report.Data {
			variation := ""
			if row.Variation != nil {
				variation = row.Variation.StringFixed(2)
			}
			records = append(records, []string{
				row.Period,
				row.Value.StringFixed(2),
				fmt.Sprintf("%d", row.Count),
				variation,
			})
		}
	case domain.ReportCashflow:
		headers = []string{"Period", "Incomes", "Expenses", "Balance", "Transactions"}
		for _, row := range report.Data {
			records = append(records, []string{
				row.Period,
				row.Incomes.StringFixed(2),
				row.Expenses.StringFixed(2),
				row.Value.StringFixed(2),
				fmt.Sprintf("%d", row.Count),
			})
		}
	case domain.ReportTopExpenses:
		headers = []string{"Description", "Amount", "Date", "Category", "Wallet", "Account", "Installment"}
		for _, row := range report.Data {
			records = append(records, []string{
				row.Name,
				row.Value.StringFixed(2),
				row.Period,
				row.Details["category"],
				row.Details["wallet"],
				row.Details["account"],
				row.Details["installment"],
			})
		}
	default:
		headers = []string{"Name", "Total", "Transactions", "Percentage (%)"}
		for _, row := range report.Data {
			records = append(records, []string{
				row.Name,
				row.Value.StringFixed(2),
				fmt.Sprintf("%d", row.Count),
				row.Percentage.StringFixed(2),
			})
		}
	}
	return headers, records
}

// summaryLines renders the summary map as "key: value" pairs in sorted key
// order.
func summaryLines(report *domain.GeneratedReport) [][]string {
	keys := make([]string, 0, len(report.Summary))
	for k := range report.Summary {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	lines := make([][]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, []string{k, fmt.Sprintf("%v", report.Summary[k])})
	}
	return lines
}
