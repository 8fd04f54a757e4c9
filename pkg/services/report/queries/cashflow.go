package queries

import (
	"context"
	"fmt"
	"slices"

	"github.com/granafy/reports/pkg/adapters"
	"github.com/granafy/reports/pkg/models/domain"
	"github.com/granafy/reports/pkg/models/store"
	"github.com/granafy/reports/pkg/store/duckdb/transactions"
)

// Cashflow aggregates paid expenses and received incomes into the same
// calendar buckets and reports per-period expense, income, and balance.
// Period keys are the union of both sides, sorted ascending.
type Cashflow struct {
	store transactions.Store
}

func NewCashflow(store transactions.Store) *Cashflow {
	return &Cashflow{store: store}
}

func (q *Cashflow) Execute(ctx context.Context, userID string, f domain.ReportFilters) (*domain.ReportResult, error) {
	expenses, err := q.store.SumByPeriod(ctx, userID, store.EntryExpense, string(domain.StatusPaid), f)
	if err != nil {
		return nil, fmt.Errorf("cashflow expenses: %w", err)
	}
	incomes, err := q.store.SumByPeriod(ctx, userID, store.EntryIncome, string(domain.StatusReceived), f)
	if err != nil {
		return nil, fmt.Errorf("cashflow incomes: %w", err)
	}

	type bucket struct {
		expenseCents int64
		incomeCents  int64
		count        int64
	}
	buckets := make(map[string]*bucket)
	ensure := func(period string) *bucket {
		b, ok := buckets[period]
		if !ok {
			b = &bucket{}
			buckets[period] = b
		}
		return b
	}
	for _, e := range expenses {
		b := ensure(e.Period)
		b.expenseCents += e.TotalCents
		b.count += e.Count
	}
	for _, i := range incomes {
		b := ensure(i.Period)
		b.incomeCents += i.TotalCents
		b.count += i.Count
	}

	periods := make([]string, 0, len(buckets))
	for period := range buckets {
		periods = append(periods, period)
	}
	slices.Sort(periods)

	var totalExpenseCents, totalIncomeCents int64
	rows := make([]domain.ReportRow, 0, len(periods))
	for _, period := range periods {
		b := buckets[period]
		totalExpenseCents += b.expenseCents
		totalIncomeCents += b.incomeCents

		rows = append(rows, domain.ReportRow{
			Name:     period,
			Period:   period,
			Count:    b.count,
			Expenses: adapters.Major(b.expenseCents),
			Incomes:  adapters.Major(b.incomeCents),
			Value:    adapters.Major(b.incomeCents - b.expenseCents),
		})
	}

	return &domain.ReportResult{
		Rows: rows,
		Summary: map[string]any{
			"total_expenses": adapters.Major(totalExpenseCents),
			"total_incomes":  adapters.Major(totalIncomeCents),
			"balance":        adapters.Major(totalIncomeCents - totalExpenseCents),
			"periods_count":  int64(len(periods)),
		},
	}, nil
}
