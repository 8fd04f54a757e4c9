package queries

import (
	"context"

	"github.com/granafy/reports/pkg/adapters"
	"github.com/granafy/reports/pkg/models/domain"
	"github.com/shopspring/decimal"
)

// Strategy is the common contract of every report query: consume the filter
// set, query the transactional store, produce a normalized result.
type Strategy interface {
	Execute(ctx context.Context, userID string, f domain.ReportFilters) (*domain.ReportResult, error)
}

// average returns totalCents/count in major units rounded to 2 places, zero
// for an empty population.
func average(totalCents, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return adapters.Major(totalCents).Div(decimal.NewFromInt(count)).Round(2)
}

// variation computes the period-over-period change (curr-prev)/prev*100
// rounded to 2 places; nil when there is no previous period or its total is
// zero.
func variation(prevCents *int64, currCents int64) *decimal.Decimal {
	if prevCents == nil || *prevCents == 0 {
		return nil
	}
	v := decimal.New(currCents-*prevCents, 0).
		Div(decimal.New(*prevCents, 0)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	return &v
}
