package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReportType string

const (
	ReportExpensesByCategory ReportType = "expenses_by_category"
	ReportExpensesByWallet   ReportType = "expenses_by_wallet"
	ReportExpensesEvolution  ReportType = "expenses_evolution"
	ReportTopExpenses        ReportType = "top_expenses"
	ReportCashflow           ReportType = "cashflow"

	// Declared in the shared vocabulary but not backed by a query strategy;
	// the builder rejects them until one exists.
	ReportIncomeByCategory ReportType = "income_by_category"
	ReportIncomeByWallet   ReportType = "income_by_wallet"
	ReportIncomeEvolution  ReportType = "income_evolution"
)

type VisualizationType string

const (
	VisualizationTable VisualizationType = "table"
	VisualizationPie   VisualizationType = "pie"
	VisualizationBar   VisualizationType = "bar"
	VisualizationLine  VisualizationType = "line"
)

type PeriodType string

const (
	PeriodDaily   PeriodType = "daily"
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"
)

type TransactionStatus string

const (
	StatusAll      TransactionStatus = "all"
	StatusPaid     TransactionStatus = "paid"
	StatusReceived TransactionStatus = "received"
	StatusPending  TransactionStatus = "pending"
)

// ReportRow is one record of a generated report. Name and Value are always
// set; the remaining fields depend on the report type: Percentage for the
// category/wallet breakdowns, Period and Variation for time-series reports,
// Expenses/Incomes for the cashflow report, Details for top-N rows.
type ReportRow struct {
	ID         string            `json:"id,omitempty"`
	Name       string            `json:"name"`
	Value      decimal.Decimal   `json:"value"`
	Count      int64             `json:"count,omitempty"`
	Percentage decimal.Decimal   `json:"percentage"`
	Period     string            `json:"period,omitempty"`
	Variation  *decimal.Decimal  `json:"variation,omitempty"`
	Expenses   decimal.Decimal   `json:"expenses"`
	Incomes    decimal.Decimal   `json:"incomes"`
	Details    map[string]string `json:"details,omitempty"`
}

// ReportResult is the normalized output of a query strategy: ordered rows
// plus aggregate scalars over them. Summary keys are type-specific
// ("total", "transactions_count", "categories_count", ...); money values are
// decimal.Decimal in major units, counters are int64.
type ReportResult struct {
	Rows    []ReportRow    `json:"rows"`
	Summary map[string]any `json:"summary"`
}

type ReportMetadata struct {
	ReportType    ReportType        `json:"report_type"`
	ReportLabel   string            `json:"report_label"`
	Visualization VisualizationType `json:"visualization_type"`
	GeneratedAt   time.Time         `json:"generated_at"`
	CacheTTL      int               `json:"cache_ttl"` // seconds
}

// GeneratedReport is what the service hands back to callers: the query
// result decorated with metadata and the cache-hit flag.
type GeneratedReport struct {
	Data      []ReportRow    `json:"data"`
	Summary   map[string]any `json:"summary"`
	Metadata  ReportMetadata `json:"metadata"`
	FromCache bool           `json:"from_cache"`
}

type GenerateReportRequest struct {
	UserID        string
	ReportType    ReportType
	Filters       ReportFilters
	Visualization VisualizationType
}

// ReportLabels maps every implemented report type to its display label.
var ReportLabels = map[ReportType]string{
	ReportExpensesByCategory: "Expenses by Category",
	ReportExpensesByWallet:   "Expenses by Wallet",
	ReportExpensesEvolution:  "Expenses Evolution",
	ReportTopExpenses:        "Top Expenses",
	ReportCashflow:           "Cashflow",
}
