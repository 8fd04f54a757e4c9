package store

import "time"

type EntryKind string

const (
	EntryExpense EntryKind = "expense"
	EntryIncome  EntryKind = "income"
)

// Transaction is a row of the transactional store. Amounts are integer minor
// units (cents); conversion to major units happens at the domain boundary.
type Transaction struct {
	ID                string
	UserID            string
	Kind              EntryKind
	Status            string
	Description       string
	AmountCents       int64
	CategoryID        string
	WalletID          string
	AccountID         string
	InstallmentNumber int
	InstallmentTotal  int
	OccurredAt        time.Time
}

// GroupTotal is one aggregation bucket of a grouped sum (by category or by
// wallet).
type GroupTotal struct {
	ID         string
	Name       string
	TotalCents int64
	Count      int64
}

// PeriodTotal is one calendar bucket of a time-series sum. Period carries the
// bucket label as produced by the store ("2024-01", "2024-W03", "2024-01-15").
type PeriodTotal struct {
	Period     string
	TotalCents int64
	Count      int64
}

// TransactionDetail is a single transaction joined with its display names,
// as returned by the top-N query.
type TransactionDetail struct {
	ID                string
	Description       string
	AmountCents       int64
	OccurredAt        time.Time
	CategoryName      string
	WalletName        string
	AccountName       string
	InstallmentNumber int
	InstallmentTotal  int
}

// SavedReportRecord is the persistence shape of a saved report definition;
// filters are held as serialized JSON.
type SavedReportRecord struct {
	ID            string
	UserID        string
	Name          string
	Description   string
	ReportType    string
	FiltersJSON   []byte
	Visualization string
	IsTemplate    bool
	IsFavorite    bool
	LastRunAt     *time.Time
	RunCount      int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
