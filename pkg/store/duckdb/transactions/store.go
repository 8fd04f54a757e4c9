package transactions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/granafy/reports/pkg/models/domain"
	"github.com/granafy/reports/pkg/models/store"
	"github.com/granafy/reports/pkg/store/duckdb"
	"github.com/rs/zerolog"
)

// Store exposes the filtered aggregations the report queries are built on.
// All sums are returned in integer minor units.
type Store interface {
	Add(ctx context.Context, records []store.Transaction) error
	AddCategory(ctx context.Context, id, userID, name string) error
	AddWallet(ctx context.Context, id, userID, name string) error
	AddAccount(ctx context.Context, id, userID, name string) error

	SumExpensesByCategory(ctx context.Context, userID string, f domain.ReportFilters) ([]store.GroupTotal, error)
	SumPaidExpensesByWallet(ctx context.Context, userID string, f domain.ReportFilters) ([]store.GroupTotal, error)
	SumByPeriod(ctx context.Context, userID string, kind store.EntryKind, status string, f domain.ReportFilters) ([]store.PeriodTotal, error)
	TopExpenses(ctx context.Context, userID string, f domain.ReportFilters) ([]store.TransactionDetail, error)
}

type txStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &txStore{db: db}, nil
}

func (s *txStore) Add(ctx context.Context, records []store.Transaction) error {
	if len(records) == 0 {
		return nil
	}

	tx := duckdb.GetTransaction(ctx)
	query := `
		INSERT INTO transactions (
			id, user_id, kind, status, description, amount_cents,
			category_id, wallet_id, account_id,
			installment_number, installment_total, occurred_at
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)`

	var stmt *sql.Stmt
	var err error
	if tx == nil {
		stmt, err = s.db.PrepareContext(ctx, query)
	} else {
		stmt, err = tx.PrepareContext(ctx, query)
	}
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err = stmt.ExecContext(ctx,
			r.ID,
			r.UserID,
			string(r.Kind),
			r.Status,
			r.Description,
			r.AmountCents,
			r.CategoryID,
			r.WalletID,
			r.AccountID,
			r.InstallmentNumber,
			r.InstallmentTotal,
			r.OccurredAt,
		)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}

	return nil
}

func (s *txStore) AddCategory(ctx context.Context, id, userID, name string) error {
	return s.addLookup(ctx, "categories", id, userID, name)
}

func (s *txStore) AddWallet(ctx context.Context, id, userID, name string) error {
	return s.addLookup(ctx, "wallets", id, userID, name)
}

func (s *txStore) AddAccount(ctx context.Context, id, userID, name string) error {
	return s.addLookup(ctx, "accounts", id, userID, name)
}

func (s *txStore) addLookup(ctx context.Context, table, id, userID, name string) error {
	query := fmt.Sprintf(`INSERT INTO %s (id, user_id, name) VALUES (?, ?, ?)`, table)
	if _, err := s.db.ExecContext(ctx, query, id, userID, name); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// SumExpensesByCategory groups the user's expenses by category. It honors
// every filter field including status. Equal totals tie-break on category id
// ascending for deterministic ordering.
func (s *txStore) SumExpensesByCategory(ctx context.Context, userID string, f domain.ReportFilters) ([]store.GroupTotal, error) {
	p := filterPredicate(userID, store.EntryExpense, f, true)
	query := fmt.Sprintf(`
		SELECT c.id, c.name, SUM(t.amount_cents) AS total, COUNT(*) AS cnt
		FROM transactions t
		JOIN categories c ON t.category_id = c.id
		%s
		GROUP BY c.id, c.name
		ORDER BY total DESC, c.id ASC`, p.where())

	return s.queryGroups(ctx, query, p.args)
}

// SumPaidExpensesByWallet groups by wallet and is hard-scoped to paid
// expenses; the status filter field is deliberately not consulted here.
func (s *txStore) SumPaidExpensesByWallet(ctx context.Context, userID string, f domain.ReportFilters) ([]store.GroupTotal, error) {
	p := filterPredicate(userID, store.EntryExpense, f, false)
	p.add("t.status = ?", string(domain.StatusPaid))
	query := fmt.Sprintf(`
		SELECT w.id, w.name, SUM(t.amount_cents) AS total, COUNT(*) AS cnt
		FROM transactions t
		JOIN wallets w ON t.wallet_id = w.id
		%s
		GROUP BY w.id, w.name
		ORDER BY total DESC, w.id ASC`, p.where())

	return s.queryGroups(ctx, query, p.args)
}

func (s *txStore) queryGroups(ctx context.Context, query string, args []any) ([]store.GroupTotal, error) {
	logger := zerolog.Ctx(ctx)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("grouped sum query failed: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close grouped sum rows")
		}
	}(rows)

	var groups []store.GroupTotal
	for rows.Next() {
		var g store.GroupTotal
		if err := rows.Scan(&g.ID, &g.Name, &g.TotalCents, &g.Count); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// periodExpr renders the SQL expression producing the calendar bucket label
// for a period type: "2024-01-15" daily, "2024-W03" ISO-weekly, "2024-01"
// monthly.
func periodExpr(periodType domain.PeriodType) string {
	switch periodType {
	case domain.PeriodDaily:
		return `strftime(t.occurred_at, '%Y-%m-%d')`
	case domain.PeriodWeekly:
		return `CAST(isoyear(t.occurred_at) AS VARCHAR) || '-W' ||
			lpad(CAST(weekofyear(t.occurred_at) AS VARCHAR), 2, '0')`
	default:
		return `strftime(t.occurred_at, '%Y-%m')`
	}
}

// SumByPeriod buckets transactions of the given kind and status into calendar
// periods per the filter's period type. Buckets come back in ascending period
// order; the label format sorts lexicographically.
func (s *txStore) SumByPeriod(ctx context.Context, userID string, kind store.EntryKind, status string, f domain.ReportFilters) ([]store.PeriodTotal, error) {
	logger := zerolog.Ctx(ctx)

	p := filterPredicate(userID, kind, f, false)
	p.add("t.status = ?", status)
	query := fmt.Sprintf(`
		SELECT %s AS period, SUM(t.amount_cents) AS total, COUNT(*) AS cnt
		FROM transactions t
		%s
		GROUP BY period
		ORDER BY period ASC`, periodExpr(f.PeriodType), p.where())

	rows, err := s.db.QueryContext(ctx, query, p.args...)
	if err != nil {
		return nil, fmt.Errorf("period sum query failed: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close period sum rows")
		}
	}(rows)

	var totals []store.PeriodTotal
	for rows.Next() {
		var t store.PeriodTotal
		if err := rows.Scan(&t.Period, &t.TotalCents, &t.Count); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// TopExpenses returns the filter limit's highest-amount individual expenses
// with their display names joined in. Equal amounts tie-break on transaction
// id ascending.
func (s *txStore) TopExpenses(ctx context.Context, userID string, f domain.ReportFilters) ([]store.TransactionDetail, error) {
	logger := zerolog.Ctx(ctx)

	limit := f.Limit
	if limit <= 0 {
		limit = domain.DefaultTopLimit
	}

	p := filterPredicate(userID, store.EntryExpense, f, true)
	query := fmt.Sprintf(`
		SELECT
			t.id,
			t.description,
			t.amount_cents,
			t.occurred_at,
			COALESCE(c.name, '') AS category_name,
			COALESCE(w.name, '') AS wallet_name,
			COALESCE(a.name, '') AS account_name,
			t.installment_number,
			t.installment_total
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id
		LEFT JOIN wallets w ON t.wallet_id = w.id
		LEFT JOIN accounts a ON t.account_id = a.id
		%s
		ORDER BY t.amount_cents DESC, t.id ASC
		LIMIT ?`, p.where())
	args := append(p.args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("top expenses query failed: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close top expenses rows")
		}
	}(rows)

	var details []store.TransactionDetail
	for rows.Next() {
		var d store.TransactionDetail
		if err := rows.Scan(
			&d.ID,
			&d.Description,
			&d.AmountCents,
			&d.OccurredAt,
			&d.CategoryName,
			&d.WalletName,
			&d.AccountName,
			&d.InstallmentNumber,
			&d.InstallmentTotal,
		); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
