package savedreports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/granafy/reports/pkg/models/store"
	"github.com/granafy/reports/pkg/store/duckdb"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a saved report does not exist for the given
// owner.
var ErrNotFound = errors.New("saved report not found")

type Store interface {
	Create(ctx context.Context, rec store.SavedReportRecord) error
	Get(ctx context.Context, userID, id string) (*store.SavedReportRecord, error)
	ListByUser(ctx context.Context, userID string) ([]store.SavedReportRecord, error)
	ListFavorites(ctx context.Context, userID string) ([]store.SavedReportRecord, error)
	ListTemplates(ctx context.Context, userID string) ([]store.SavedReportRecord, error)
	Update(ctx context.Context, rec store.SavedReportRecord) error
	Delete(ctx context.Context, userID, id string) error
	SetFavorite(ctx context.Context, userID, id string, favorite bool) error
	RecordRun(ctx context.Context, userID, id string, at time.Time) error
}

type reportStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &reportStore{db: db}, nil
}

const columns = `id, user_id, name, description, report_type, filters,
		visualization, is_template, is_favorite, last_run_at, run_count,
		created_at, updated_at`

func (s *reportStore) Create(ctx context.Context, rec store.SavedReportRecord) error {
	query := `
		INSERT INTO saved_reports (
			id, user_id, name, description, report_type, filters,
			visualization, is_template, is_favorite, run_count,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.exec(ctx, query,
		rec.ID,
		rec.UserID,
		rec.Name,
		rec.Description,
		rec.ReportType,
		string(rec.FiltersJSON),
		rec.Visualization,
		rec.IsTemplate,
		rec.IsFavorite,
		rec.RunCount,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert saved report: %w", err)
	}
	return nil
}

func (s *reportStore) Get(ctx context.Context, userID, id string) (*store.SavedReportRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM saved_reports
		WHERE user_id = ? AND id = ?`, columns)

	rec, err := scanSavedReport(s.db.QueryRowContext(ctx, query, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query saved report: %w", err)
	}
	return rec, nil
}

func (s *reportStore) ListByUser(ctx context.Context, userID string) ([]store.SavedReportRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM saved_reports
		WHERE user_id = ?
		ORDER BY updated_at DESC, id ASC`, columns)
	return s.list(ctx, query, userID)
}

func (s *reportStore) ListFavorites(ctx context.Context, userID string) ([]store.SavedReportRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM saved_reports
		WHERE user_id = ? AND is_favorite
		ORDER BY updated_at DESC, id ASC`, columns)
	return s.list(ctx, query, userID)
}

func (s *reportStore) ListTemplates(ctx context.Context, userID string) ([]store.SavedReportRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM saved_reports
		WHERE user_id = ? AND is_template
		ORDER BY updated_at DESC, id ASC`, columns)
	return s.list(ctx, query, userID)
}

func (s *reportStore) Update(ctx context.Context, rec store.SavedReportRecord) error {
	query := `
		UPDATE saved_reports
		SET name = ?, description = ?, report_type = ?, filters = ?,
			visualization = ?, is_template = ?, updated_at = ?
		WHERE user_id = ? AND id = ?`

	res, err := s.exec(ctx, query,
		rec.Name,
		rec.Description,
		rec.ReportType,
		string(rec.FiltersJSON),
		rec.Visualization,
		rec.IsTemplate,
		rec.UpdatedAt,
		rec.UserID,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update saved report: %w", err)
	}
	return requireRow(res, rec.ID)
}

func (s *reportStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.exec(ctx, `DELETE FROM saved_reports WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete saved report: %w", err)
	}
	return requireRow(res, id)
}

func (s *reportStore) SetFavorite(ctx context.Context, userID, id string, favorite bool) error {
	res, err := s.exec(ctx, `
		UPDATE saved_reports SET is_favorite = ?, updated_at = ?
		WHERE user_id = ? AND id = ?`, favorite, time.Now().UTC(), userID, id)
	if err != nil {
		return fmt.Errorf("set favorite: %w", err)
	}
	return requireRow(res, id)
}

func (s *reportStore) RecordRun(ctx context.Context, userID, id string, at time.Time) error {
	res, err := s.exec(ctx, `
		UPDATE saved_reports SET run_count = run_count + 1, last_run_at = ?
		WHERE user_id = ? AND id = ?`, at, userID, id)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return requireRow(res, id)
}

// exec routes through the context transaction when one is present.
func (s *reportStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return s.db.ExecContext(ctx, query, args...)
}

func requireRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *reportStore) list(ctx context.Context, query string, args ...any) ([]store.SavedReportRecord, error) {
	logger := zerolog.Ctx(ctx)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list saved reports: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close saved report rows")
		}
	}(rows)

	var records []store.SavedReportRecord
	for rows.Next() {
		rec, err := scanSavedReport(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSavedReport(row rowScanner) (*store.SavedReportRecord, error) {
	var rec store.SavedReportRecord
	var filters string
	var lastRun sql.NullTime

	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Name,
		&rec.Description,
		&rec.ReportType,
		&filters,
		&rec.Visualization,
		&rec.IsTemplate,
		&rec.IsFavorite,
		&lastRun,
		&rec.RunCount,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.FiltersJSON = []byte(filters)
	if lastRun.Valid {
		rec.LastRunAt = &lastRun.Time
	}
	return &rec, nil
}
