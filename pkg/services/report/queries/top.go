package queries

import (
	"context"
	"fmt"

	"github.com/granafy/reports/pkg/adapters"
	"github.com/granafy/reports/pkg/models/domain"
	"github.com/granafy/reports/pkg/store/duckdb/transactions"
)

// TopExpenses returns the filter limit's highest-amount individual
// transactions, not an aggregation. The summary reflects only the returned
// subset, never the full filtered population.
type TopExpenses struct {
	store transactions.Store
}

func NewTopExpenses(store transactions.Store) *TopExpenses {
	return &TopExpenses{store: store}
}

func (q *TopExpenses) Execute(ctx context.Context, userID string, f domain.ReportFilters) (*domain.ReportResult, error) {
	details, err := q.store.TopExpenses(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("top expenses: %w", err)
	}

	var totalCents int64
	rows := make([]domain.ReportRow, 0, len(details))
	for _, d := range details {
		totalCents += d.AmountCents
		rows = append(rows, adapters.MapTransactionDetailToDomainRow(d))
	}

	return &domain.ReportResult{
		Rows: rows,
		Summary: map[string]any{
			"total_amount":   adapters.Major(totalCents),
			"expenses_count": int64(len(rows)),
			"average":        average(totalCents, int64(len(rows))),
		},
	}, nil
}
