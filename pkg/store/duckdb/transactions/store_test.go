package transactions

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/granafy/reports/pkg/models/domain"
	"github.com/granafy/reports/pkg/models/store"
	"github.com/granafy/reports/pkg/store/duckdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)

	s, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{db: db, store: s}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// seedScenario loads the canonical dataset: user u1 with categories A and B,
// expenses of 10.00, 20.00, 30.00 in A and 40.00 in B, all paid in Jan 2024.
func seedScenario(t *testing.T, f *fixture) {
	ctx := context.Background()

	require.NoError(t, f.store.AddCategory(ctx, "cat-a", "u1", "A"))
	require.NoError(t, f.store.AddCategory(ctx, "cat-b", "u1", "B"))
	require.NoError(t, f.store.AddWallet(ctx, "w1", "u1", "Checking"))
	require.NoError(t, f.store.AddWallet(ctx, "w2", "u1", "Savings"))
	require.NoError(t, f.store.AddAccount(ctx, "acc1", "u1", "Main"))

	require.NoError(t, f.store.Add(ctx, []store.Transaction{
		{ID: "t1", UserID: "u1", Kind: store.EntryExpense, Status: "paid", Description: "groceries",
			AmountCents: 1000, CategoryID: "cat-a", WalletID: "w1", AccountID: "acc1", OccurredAt: date(2024, 1, 5)},
		{ID: "t2", UserID: "u1", Kind: store.EntryExpense, Status: "paid", Description: "fuel",
			AmountCents: 2000, CategoryID: "cat-a", WalletID: "w1", AccountID: "acc1", OccurredAt: date(2024, 1, 15)},
		{ID: "t3", UserID: "u1", Kind: store.EntryExpense, Status: "paid", Description: "pharmacy",
			AmountCents: 3000, CategoryID: "cat-a", WalletID: "w2", AccountID: "acc1", OccurredAt: date(2024, 1, 20)},
		{ID: "t4", UserID: "u1", Kind: store.EntryExpense, Status: "paid", Description: "dinner",
			AmountCents: 4000, CategoryID: "cat-b", WalletID: "w2", AccountID: "acc1", OccurredAt: date(2024, 1, 25)},
	}))
}

func TestSumExpensesByCategory(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	seedScenario(t, f)

	groups, err := f.store.SumExpensesByCategory(ctx, "u1", domain.ReportFilters{})
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// Descending by total: A (6000) before B (4000).
	assert.Equal(t, "A", groups[0].Name)
	assert.Equal(t, int64(6000), groups[0].TotalCents)
	assert.Equal(t, int64(3), groups[0].Count)
	assert.Equal(t, "B", groups[1].Name)
	assert.Equal(t, int64(4000), groups[1].TotalCents)
	assert.Equal(t, int64(1), groups[1].Count)
}

func TestSumExpensesByCategory_Filters(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	seedScenario(t, f)

	// Unpaid expense must be excluded when a paid status filter is set.
	require.NoError(t, f.store.Add(ctx, []store.Transaction{
		{ID: "t5", UserID: "u1", Kind: store.EntryExpense, Status: "pending", Description: "rent",
			AmountCents: 9000, CategoryID: "cat-a", WalletID: "w1", AccountID: "acc1", OccurredAt: date(2024, 1, 28)},
	}))

	groups, err := f.store.SumExpensesByCategory(ctx, "u1", domain.ReportFilters{Status: domain.StatusPaid})
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, int64(6000), groups[0].TotalCents)

	// Category set scoping.
	groups, err = f.store.SumExpensesByCategory(ctx, "u1", domain.ReportFilters{
		CategoryIDs: []string{"cat-b"},
	})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "B", groups[0].Name)

	// Amount range in minor units.
	minAmount := int64(2500)
	groups, err = f.store.SumExpensesByCategory(ctx, "u1", domain.ReportFilters{
		MinAmountCents: &minAmount,
	})
	require.NoError(t, err)
	require.Len(t, groups, 2)
	for _, g := range groups {
		assert.GreaterOrEqual(t, g.TotalCents, int64(2500))
	}

	// Date window.
	start := date(2024, 1, 10)
	end := date(2024, 1, 21)
	groups, err = f.store.SumExpensesByCategory(ctx, "u1", domain.ReportFilters{
		StartDate: &start,
		EndDate:   &end,
	})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, int64(5000), groups[0].TotalCents)
}

func TestSumPaidExpensesByWallet_IgnoresStatusFilter(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	seedScenario(t, f)

	require.NoError(t, f.store.Add(ctx, []store.Transaction{
		{ID: "t6", UserID: "u1", Kind: store.EntryExpense, Status: "pending", Description: "rent",
			AmountCents: 5000, CategoryID: "cat-a", WalletID: "w1", AccountID: "acc1", OccurredAt: date(2024, 1, 28)},
	}))

	// A pending status filter does not widen the report beyond paid rows;
	// the wallet report is hard-scoped and deliberately ignores the field.
	groups, err := f.store.SumPaidExpensesByWallet(ctx, "u1", domain.ReportFilters{
		Status: domain.StatusPending,
	})
	require.NoError(t, err)
	require.Len(t, groups, 2)

	var total int64
	for _, g := range groups {
		total += g.TotalCents
	}
	assert.Equal(t, int64(10000), total)
}

func TestSumByPeriod_MonthlyBuckets(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Add(ctx, []store.Transaction{
		{ID: "p1", UserID: "u1", Kind: store.EntryExpense, Status: "paid",
			AmountCents: 1000, OccurredAt: date(2024, 1, 15)},
		{ID: "p2", UserID: "u1", Kind: store.EntryExpense, Status: "paid",
			AmountCents: 1000, OccurredAt: date(2024, 1, 20)},
	}))

	totals, err := f.store.SumByPeriod(ctx, "u1", store.EntryExpense, "paid", domain.ReportFilters{
		PeriodType: domain.PeriodMonthly,
	})
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, "2024-01", totals[0].Period)
	assert.Equal(t, int64(2000), totals[0].TotalCents)
	assert.Equal(t, int64(2), totals[0].Count)
}

func TestSumByPeriod_DailyAndWeekly(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Add(ctx, []store.Transaction{
		{ID: "p1", UserID: "u1", Kind: store.EntryExpense, Status: "paid",
			AmountCents: 1500, OccurredAt: date(2024, 1, 15)}, // ISO week 3
		{ID: "p2", UserID: "u1", Kind: store.EntryExpense, Status: "paid",
			AmountCents: 2500, OccurredAt: date(2024, 1, 16)}, // ISO week 3
	}))

	daily, err := f.store.SumByPeriod(ctx, "u1", store.EntryExpense, "paid", domain.ReportFilters{
		PeriodType: domain.PeriodDaily,
	})
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.Equal(t, "2024-01-15", daily[0].Period)
	assert.Equal(t, "2024-01-16", daily[1].Period)

	weekly, err := f.store.SumByPeriod(ctx, "u1", store.EntryExpense, "paid", domain.ReportFilters{
		PeriodType: domain.PeriodWeekly,
	})
	require.NoError(t, err)
	require.Len(t, weekly, 1)
	assert.Equal(t, "2024-W03", weekly[0].Period)
	assert.Equal(t, int64(4000), weekly[0].TotalCents)
}

func TestTopExpenses(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	seedScenario(t, f)

	details, err := f.store.TopExpenses(ctx, "u1", domain.ReportFilters{Limit: 2})
	require.NoError(t, err)
	require.Len(t, details, 2)

	assert.Equal(t, "dinner", details[0].Description)
	assert.Equal(t, int64(4000), details[0].AmountCents)
	assert.Equal(t, "B", details[0].CategoryName)
	assert.Equal(t, "Savings", details[0].WalletName)
	assert.Equal(t, "Main", details[0].AccountName)

	assert.Equal(t, "pharmacy", details[1].Description)
	assert.GreaterOrEqual(t, details[0].AmountCents, details[1].AmountCents)
}

func TestTopExpenses_DefaultLimit(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	seedScenario(t, f)

	details, err := f.store.TopExpenses(ctx, "u1", domain.ReportFilters{})
	require.NoError(t, err)
	assert.Len(t, details, 4)
}

func TestQueries_OtherUserIsInvisible(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	seedScenario(t, f)

	groups, err := f.store.SumExpensesByCategory(ctx, "u2", domain.ReportFilters{})
	require.NoError(t, err)
	assert.Empty(t, groups)
}
