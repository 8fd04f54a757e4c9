package transactions

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/granafy/reports/pkg/models/domain"
	"github.com/granafy/reports/pkg/models/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumExpensesByCategory_QueryShape(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	minAmount := int64(500)

	mock.ExpectQuery(regexp.QuoteMeta("SUM(t.amount_cents)")).
		WithArgs("u1", "expense", start, "cat-a", "cat-b", "paid", minAmount).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "total", "cnt"}).
			AddRow("cat-a", "A", int64(6000), int64(3)).
			AddRow("cat-b", "B", int64(4000), int64(1)))

	groups, err := s.SumExpensesByCategory(context.Background(), "u1", domain.ReportFilters{
		StartDate:      &start,
		Status:         domain.StatusPaid,
		MinAmountCents: &minAmount,
		CategoryIDs:    []string{"cat-a", "cat-b"},
	})
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, int64(6000), groups[0].TotalCents)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSumPaidExpensesByWallet_AlwaysBindsPaidStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	// The status filter is not an argument here; "paid" is appended
	// unconditionally even when the caller asked for pending.
	mock.ExpectQuery(regexp.QuoteMeta("JOIN wallets w")).
		WithArgs("u1", "expense", "paid").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "total", "cnt"}))

	_, err = s.SumPaidExpensesByWallet(context.Background(), "u1", domain.ReportFilters{
		Status: domain.StatusPending,
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSumByPeriod_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	queryErr := errors.New("connection reset")
	mock.ExpectQuery("GROUP BY period").WillReturnError(queryErr)

	_, err = s.SumByPeriod(context.Background(), "u1", store.EntryExpense, "paid", domain.ReportFilters{})
	assert.ErrorIs(t, err, queryErr)
}

func TestTopExpenses_LimitIsLastArg(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY t.amount_cents DESC, t.id ASC")).
		WithArgs("u1", "expense", 5).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "description", "amount_cents", "occurred_at",
			"category_name", "wallet_name", "account_name",
			"installment_number", "installment_total",
		}).AddRow("t1", "dinner", int64(4000), time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC), "B", "Savings", "Main", 0, 0))

	details, err := s.TopExpenses(context.Background(), "u1", domain.ReportFilters{Limit: 5})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "dinner", details[0].Description)

	assert.NoError(t, mock.ExpectationsWereMet())
}
