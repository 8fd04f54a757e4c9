package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/granafy/reports/pkg/adapters"
	"github.com/granafy/reports/pkg/cache"
	"github.com/granafy/reports/pkg/models/domain"
	"github.com/granafy/reports/pkg/models/store"
	"github.com/granafy/reports/pkg/store/duckdb"
	"github.com/granafy/reports/pkg/store/duckdb/savedreports"
	"github.com/rs/zerolog"
)

// Service is the single entry point callers use for report generation and
// saved report configurations.
type Service interface {
	GenerateReport(ctx context.Context, req domain.GenerateReportRequest) (*domain.GeneratedReport, error)
	SaveReportConfig(ctx context.Context, r domain.SavedReport) (*domain.SavedReport, error)
	GetUserReports(ctx context.Context, userID string) ([]domain.SavedReport, error)
	GetUserFavorites(ctx context.Context, userID string) ([]domain.SavedReport, error)
	GetTemplates(ctx context.Context, userID string) ([]domain.SavedReport, error)
	RunSavedReport(ctx context.Context, userID, id string) (*domain.GeneratedReport, error)
	UpdateSavedReport(ctx context.Context, r domain.SavedReport) (*domain.SavedReport, error)
	DeleteSavedReport(ctx context.Context, userID, id string) error
	ToggleFavorite(ctx context.Context, userID, id string) (bool, error)
	ClearCache() error
}

type service struct {
	builder *Builder
	cache   *cache.ReportCache
	saved   savedreports.Store
	db      *sql.DB
	now     func() time.Time
}

func NewService(builder *Builder, reportCache *cache.ReportCache, saved savedreports.Store, db *sql.DB) Service {
	return &service{
		builder: builder,
		cache:   reportCache,
		saved:   saved,
		db:      db,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GenerateReport serves from cache when it can, otherwise dispatches the
// query and writes the result through. A failing cache never fails the
// request: reads and write-backs degrade to recomputation.
func (s *service) GenerateReport(ctx context.Context, req domain.GenerateReportRequest) (*domain.GeneratedReport, error) {
	logger := zerolog.Ctx(ctx)

	if !s.builder.IsSupported(req.ReportType) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedReportType, req.ReportType)
	}

	key, err := s.cache.Key(req.UserID, string(req.ReportType), req.Filters, string(req.Visualization))
	if err != nil {
		return nil, fmt.Errorf("cache key: %w", err)
	}

	if cached, ok, cacheErr := s.cache.Get(key); cacheErr != nil {
		logger.Warn().Err(cacheErr).Msg("report cache read failed, recomputing")
	} else if ok {
		if hit, valid := cached.(*domain.GeneratedReport); valid {
			out := *hit
			out.FromCache = true
			return &out, nil
		}
	}

	result, err := s.builder.ExecuteQuery(ctx, req.ReportType, req.UserID, req.Filters)
	if err != nil {
		return nil, err
	}

	generated := &domain.GeneratedReport{
		Data:    result.Rows,
		Summary: result.Summary,
		Metadata: domain.ReportMetadata{
			ReportType:    req.ReportType,
			ReportLabel:   domain.ReportLabels[req.ReportType],
			Visualization: req.Visualization,
			GeneratedAt:   s.now(),
			CacheTTL:      int(s.cache.TTL().Seconds()),
		},
	}

	if cacheErr := s.cache.Put(req.UserID, key, generated); cacheErr != nil {
		logger.Warn().Err(cacheErr).Msg("report cache write failed, skipping write-back")
	}

	return generated, nil
}

func (s *service) SaveReportConfig(ctx context.Context, r domain.SavedReport) (*domain.SavedReport, error) {
	if !s.builder.IsSupported(r.ReportType) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedReportType, r.ReportType)
	}

	now := s.now()
	r.ID = uuid.NewString()
	r.RunCount = 0
	r.LastRunAt = nil
	r.CreatedAt = now
	r.UpdatedAt = now

	rec, err := adapters.MapSavedReportDomainToStore(r)
	if err != nil {
		return nil, err
	}
	if err := s.saved.Create(ctx, rec); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *service) GetUserReports(ctx context.Context, userID string) ([]domain.SavedReport, error) {
	records, err := s.saved.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mapRecords(records)
}

func (s *service) GetUserFavorites(ctx context.Context, userID string) ([]domain.SavedReport, error) {
	records, err := s.saved.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mapRecords(records)
}

func (s *service) GetTemplates(ctx context.Context, userID string) ([]domain.SavedReport, error) {
	records, err := s.saved.ListTemplates(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mapRecords(records)
}

// RunSavedReport regenerates a saved configuration and bumps its run
// bookkeeping.
func (s *service) RunSavedReport(ctx context.Context, userID, id string) (*domain.GeneratedReport, error) {
	rec, err := s.saved.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	saved, err := adapters.MapSavedReportStoreToDomain(*rec)
	if err != nil {
		return nil, err
	}

	generated, err := s.GenerateReport(ctx, domain.GenerateReportRequest{
		UserID:        userID,
		ReportType:    saved.ReportType,
		Filters:       saved.Filters,
		Visualization: saved.Visualization,
	})
	if err != nil {
		return nil, err
	}

	if err := s.saved.RecordRun(ctx, userID, id, s.now()); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	return generated, nil
}

// UpdateSavedReport mutates the configuration and then invalidates the
// user's cached reports. Invalidation happens strictly after the store write
// commits so a concurrent generate cannot re-cache pre-update results that
// outlive the edit.
func (s *service) UpdateSavedReport(ctx context.Context, r domain.SavedReport) (*domain.SavedReport, error) {
	logger := zerolog.Ctx(ctx)

	if !s.builder.IsSupported(r.ReportType) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedReportType, r.ReportType)
	}

	r.UpdatedAt = s.now()
	rec, err := adapters.MapSavedReportDomainToStore(r)
	if err != nil {
		return nil, err
	}

	err = duckdb.RunInTransaction(ctx, s.db, func(ctx context.Context) error {
		return s.saved.Update(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.InvalidateUser(r.UserID); cacheErr != nil {
		logger.Warn().Err(cacheErr).Str("user_id", r.UserID).Msg("cache invalidation failed")
	}

	updated, err := s.saved.Get(ctx, r.UserID, r.ID)
	if err != nil {
		return nil, err
	}
	out, err := adapters.MapSavedReportStoreToDomain(*updated)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) DeleteSavedReport(ctx context.Context, userID, id string) error {
	logger := zerolog.Ctx(ctx)

	err := duckdb.RunInTransaction(ctx, s.db, func(ctx context.Context) error {
		return s.saved.Delete(ctx, userID, id)
	})
	if err != nil {
		return err
	}

	if cacheErr := s.cache.InvalidateUser(userID); cacheErr != nil {
		logger.Warn().Err(cacheErr).Str("user_id", userID).Msg("cache invalidation failed")
	}
	return nil
}

func (s *service) ToggleFavorite(ctx context.Context, userID, id string) (bool, error) {
	rec, err := s.saved.Get(ctx, userID, id)
	if err != nil {
		return false, err
	}
	next := !rec.IsFavorite
	if err := s.saved.SetFavorite(ctx, userID, id, next); err != nil {
		return false, err
	}
	return next, nil
}

// ClearCache drops every cached report system-wide. Administrative.
func (s *service) ClearCache() error {
	return s.cache.InvalidateAll()
}

func mapRecords(records []store.SavedReportRecord) ([]domain.SavedReport, error) {
	out := make([]domain.SavedReport, 0, len(records))
	for _, rec := range records {
		r, err := adapters.MapSavedReportStoreToDomain(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
