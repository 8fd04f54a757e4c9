package domain

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrInvalidFilter marks malformed or out-of-range filter input. Callers are
// expected to surface it to the end user; it is always wrapped with detail.
var ErrInvalidFilter = errors.New("invalid report filter")

const DefaultTopLimit = 10

// RawFilters carries filter parameters as received from the outside world,
// before any validation. All fields are optional.
type RawFilters struct {
	StartDate  string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	PeriodType string   `json:"period_type" validate:"omitempty,oneof=daily weekly monthly"`
	Categories []string `json:"category_ids" validate:"omitempty,dive,required"`
	Wallets    []string `json:"wallet_ids" validate:"omitempty,dive,required"`
	Status     string   `json:"status" validate:"omitempty,oneof=all paid received pending"`
	MinAmount  string   `json:"min_amount" validate:"omitempty"`
	MaxAmount  string   `json:"max_amount" validate:"omitempty"`
	Limit      int      `json:"limit" validate:"omitempty,gt=0"`
}

// ReportFilters is the validated, normalized filter set consumed by every
// query strategy. Nil/empty fields impose no constraint. Amount bounds are
// held in minor units (cents) because that is how the store keeps money.
type ReportFilters struct {
	StartDate      *time.Time        `json:"start_date,omitempty"`
	EndDate        *time.Time        `json:"end_date,omitempty"`
	PeriodType     PeriodType        `json:"period_type"`
	CategoryIDs    []string          `json:"category_ids,omitempty"`
	WalletIDs      []string          `json:"wallet_ids,omitempty"`
	Status         TransactionStatus `json:"status,omitempty"`
	MinAmountCents *int64            `json:"min_amount_cents,omitempty"`
	MaxAmountCents *int64            `json:"max_amount_cents,omitempty"`
	Limit          int               `json:"limit"`
}

var filterValidate = validator.New(validator.WithRequiredStructEnabled())

// ParseFilters validates raw filter input and produces the normalized value
// object. ID sets are sorted so that equal filter sets serialize to the same
// bytes regardless of input order, which the cache key relies on.
func ParseFilters(raw RawFilters) (ReportFilters, error) {
	var f ReportFilters

	if err := filterValidate.Struct(raw); err != nil {
		return f, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}

	if raw.StartDate != "" {
		d, err := time.Parse("2006-01-02", raw.StartDate)
		if err != nil {
			return f, fmt.Errorf("%w: start_date: %v", ErrInvalidFilter, err)
		}
		f.StartDate = &d
	}
	if raw.EndDate != "" {
		d, err := time.Parse("2006-01-02", raw.EndDate)
		if err != nil {
			return f, fmt.Errorf("%w: end_date: %v", ErrInvalidFilter, err)
		}
		f.EndDate = &d
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return f, fmt.Errorf("%w: end_date %s precedes start_date %s",
			ErrInvalidFilter, raw.EndDate, raw.StartDate)
	}

	f.PeriodType = PeriodMonthly
	if raw.PeriodType != "" {
		f.PeriodType = PeriodType(raw.PeriodType)
	}

	f.Status = StatusAll
	if raw.Status != "" {
		f.Status = TransactionStatus(raw.Status)
	}

	f.CategoryIDs = slices.Clone(raw.Categories)
	slices.Sort(f.CategoryIDs)
	f.WalletIDs = slices.Clone(raw.Wallets)
	slices.Sort(f.WalletIDs)

	var err error
	if f.MinAmountCents, err = parseAmount("min_amount", raw.MinAmount); err != nil {
		return f, err
	}
	if f.MaxAmountCents, err = parseAmount("max_amount", raw.MaxAmount); err != nil {
		return f, err
	}
	if f.MinAmountCents != nil && f.MaxAmountCents != nil && *f.MaxAmountCents < *f.MinAmountCents {
		return f, fmt.Errorf("%w: max_amount below min_amount", ErrInvalidFilter)
	}

	f.Limit = DefaultTopLimit
	if raw.Limit > 0 {
		f.Limit = raw.Limit
	}

	return f, nil
}

// parseAmount converts a major-unit decimal string ("25.90") to minor units.
func parseAmount(field, value string) (*int64, error) {
	if value == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFilter, field, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %s must not be negative", ErrInvalidFilter, field)
	}
	cents := d.Mul(decimal.NewFromInt(100)).IntPart()
	return &cents, nil
}
