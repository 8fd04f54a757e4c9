package adapters

import (
	"encoding/json"
	"fmt"

	"github.com/granafy/reports/pkg/models/api"
	"github.com/granafy/reports/pkg/models/domain"
	"github.com/granafy/reports/pkg/models/store"
	"github.com/shopspring/decimal"
)

// Major converts an integer minor-unit amount to a major-unit decimal,
// e.g. 2590 -> 25.90.
func Major(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Percentage computes part/whole*100 rounded to 2 places; zero when the whole
// is zero.
func Percentage(partCents, wholeCents int64) decimal.Decimal {
	if wholeCents == 0 {
		return decimal.Zero
	}
	return decimal.New(partCents, 0).
		Div(decimal.New(wholeCents, 0)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

func MapTransactionDetailToDomainRow(d store.TransactionDetail) domain.ReportRow {
	details := map[string]string{
		"category": d.CategoryName,
		"wallet":   d.WalletName,
		"account":  d.AccountName,
	}
	if d.InstallmentTotal > 0 {
		details["installment"] = fmt.Sprintf("%d/%d", d.InstallmentNumber, d.InstallmentTotal)
	}
	return domain.ReportRow{
		ID:      d.ID,
		Name:    d.Description,
		Value:   Major(d.AmountCents),
		Period:  d.OccurredAt.Format("2006-01-02"),
		Details: details,
	}
}

func MapSavedReportDomainToStore(r domain.SavedReport) (store.SavedReportRecord, error) {
	filters, err := json.Marshal(r.Filters)
	if err != nil {
		return store.SavedReportRecord{}, fmt.Errorf("marshal filters: %w", err)
	}
	return store.SavedReportRecord{
		ID:            r.ID,
		UserID:        r.UserID,
		Name:          r.Name,
		Description:   r.Description,
		ReportType:    string(r.ReportType),
		FiltersJSON:   filters,
		Visualization: string(r.Visualization),
		IsTemplate:    r.IsTemplate,
		IsFavorite:    r.IsFavorite,
		LastRunAt:     r.LastRunAt,
		RunCount:      r.RunCount,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

func MapSavedReportStoreToDomain(rec store.SavedReportRecord) (domain.SavedReport, error) {
	var filters domain.ReportFilters
	if len(rec.FiltersJSON) > 0 {
		if err := json.Unmarshal(rec.FiltersJSON, &filters); err != nil {
			return domain.SavedReport{}, fmt.Errorf("unmarshal filters: %w", err)
		}
	}
	return domain.SavedReport{
		ID:            rec.ID,
		UserID:        rec.UserID,
		Name:          rec.Name,
		Description:   rec.Description,
		ReportType:    domain.ReportType(rec.ReportType),
		Filters:       filters,
		Visualization: domain.VisualizationType(rec.Visualization),
		IsTemplate:    rec.IsTemplate,
		IsFavorite:    rec.IsFavorite,
		LastRunAt:     rec.LastRunAt,
		RunCount:      rec.RunCount,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}, nil
}

func MapSavedReportDomainToApi(r domain.SavedReport) api.SavedReport {
	return api.SavedReport{
		ID:                r.ID,
		Name:              r.Name,
		Description:       r.Description,
		ReportType:        string(r.ReportType),
		Filters:           MapFiltersDomainToRaw(r.Filters),
		VisualizationType: string(r.Visualization),
		IsTemplate:        r.IsTemplate,
		IsFavorite:        r.IsFavorite,
		LastRunAt:         r.LastRunAt,
		RunCount:          r.RunCount,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func MapFiltersDomainToRaw(f domain.ReportFilters) domain.RawFilters {
	raw := domain.RawFilters{
		PeriodType: string(f.PeriodType),
		Categories: f.CategoryIDs,
		Wallets:    f.WalletIDs,
		Status:     string(f.Status),
		Limit:      f.Limit,
	}
	if f.StartDate != nil {
		raw.StartDate = f.StartDate.Format("2006-01-02")
	}
	if f.EndDate != nil {
		raw.EndDate = f.EndDate.Format("2006-01-02")
	}
	if f.MinAmountCents != nil {
		raw.MinAmount = Major(*f.MinAmountCents).String()
	}
	if f.MaxAmountCents != nil {
		raw.MaxAmount = Major(*f.MaxAmountCents).String()
	}
	return raw
}
