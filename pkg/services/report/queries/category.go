package queries

import (
	"context"
	"fmt"

	"github.com/granafy/reports/pkg/adapters"
	"github.com/granafy/reports/pkg/models/domain"
	"github.com/granafy/reports/pkg/store/duckdb/transactions"
)

// ExpensesByCategory groups the user's expenses by category, honoring every
// filter field, and annotates each category with its share of the filtered
// total.
type ExpensesByCategory struct {
	store transactions.Store
}

func NewExpensesByCategory(store transactions.Store) *ExpensesByCategory {
	return &ExpensesByCategory{store: store}
}

func (q *ExpensesByCategory) Execute(ctx context.Context, userID string, f domain.ReportFilters) (*domain.ReportResult, error) {
	groups, err := q.store.SumExpensesByCategory(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("expenses by category: %w", err)
	}

	var totalCents, txCount int64
	for _, g := range groups {
		totalCents += g.TotalCents
		txCount += g.Count
	}

	rows := make([]domain.ReportRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, domain.ReportRow{
			ID:         g.ID,
			Name:       g.Name,
			Value:      adapters.Major(g.TotalCents),
			Count:      g.Count,
			Percentage: adapters.Percentage(g.TotalCents, totalCents),
		})
	}

	return &domain.ReportResult{
		Rows: rows,
		Summary: map[string]any{
			"total":              adapters.Major(totalCents),
			"transactions_count": txCount,
			"categories_count":   int64(len(groups)),
			"average":            average(totalCents, txCount),
		},
	}, nil
}
