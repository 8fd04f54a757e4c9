package queries

import (
	"context"
	"fmt"

	"github.com/granafy/reports/pkg/adapters"
	"github.com/granafy/reports/pkg/models/domain"
	"github.com/granafy/reports/pkg/store/duckdb/transactions"
)

// ExpensesByWallet groups paid expenses by wallet. Unlike the category
// report, the status filter field is not consulted: the report is always
// scoped to paid transactions.
type ExpensesByWallet struct {
	store transactions.Store
}

func NewExpensesByWallet(store transactions.Store) *ExpensesByWallet {
	return &ExpensesByWallet{store: store}
}

func (q *ExpensesByWallet) Execute(ctx context.Context, userID string, f domain.ReportFilters) (*domain.ReportResult, error) {
	groups, err := q.store.SumPaidExpensesByWallet(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("expenses by wallet: %w", err)
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
			"wallets_count":      int64(len(groups)),
			"average":            average(totalCents, txCount),
		},
	}, nil
}
