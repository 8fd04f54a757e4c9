package queries

import (
	"context"
	"fmt"

	"github.com/granafy/reports/pkg/adapters"
	"github.com/granafy/reports/pkg/models/domain"
	"github.com/granafy/reports/pkg/models/store"
	"github.com/granafy/reports/pkg/store/duckdb/transactions"
)

// ExpensesEvolution buckets paid expenses into calendar periods and reports
// per-period totals with period-over-period variation. The first period, or
// one following a zero-total period, carries no variation.
type ExpensesEvolution struct {
	store transactions.Store
}

func NewExpensesEvolution(store transactions.Store) *ExpensesEvolution {
	return &ExpensesEvolution{store: store}
}

func (q *ExpensesEvolution) Execute(ctx context.Context, userID string, f domain.ReportFilters) (*domain.ReportResult, error) {
	totals, err := q.store.SumByPeriod(ctx, userID, store.EntryExpense, string(domain.StatusPaid), f)
	if err != nil {
		return nil, fmt.Errorf("expenses evolution: %w", err)
	}

	var totalCents, txCount int64
	rows := make([]domain.ReportRow, 0, len(totals))
	var prev *int64
	for _, t := range totals {
		totalCents += t.TotalCents
		txCount += t.Count

		rows = append(rows, domain.ReportRow{
			Name:      t.Period,
			Period:    t.Period,
			Value:     adapters.Major(t.TotalCents),
			Count:     t.Count,
			Variation: variation(prev, t.TotalCents),
		})

		current := t.TotalCents
		prev = &current
	}

	return &domain.ReportResult{
		Rows: rows,
		Summary: map[string]any{
			"total":              adapters.Major(totalCents),
			"transactions_count": txCount,
			"periods_count":      int64(len(totals)),
			"average":            average(totalCents, int64(len(totals))),
		},
	}, nil
}
