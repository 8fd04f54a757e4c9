package report

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/granafy/reports/pkg/cache"
	"github.com/granafy/reports/pkg/models/domain"
	"github.com/granafy/reports/pkg/models/store"
	"github.com/granafy/reports/pkg/store/duckdb"
	"github.com/granafy/reports/pkg/store/duckdb/savedreports"
	"github.com/granafy/reports/pkg/store/duckdb/transactions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	service Service
	txs     transactions.Store
	saved   savedreports.Store
	db      *sql.DB
}

func setupService(t *testing.T, backend cache.Backend) *serviceFixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	txs, err := transactions.NewStore(db)
	require.NoError(t, err)
	saved, err := savedreports.NewStore(db)
	require.NoError(t, err)

	if backend == nil {
		backend = cache.NewMemoryBackend()
	}

	return &serviceFixture{
		service: NewService(NewBuilder(txs), cache.New(backend, cache.DefaultTTL), saved, db),
		txs:     txs,
		saved:   saved,
		db:      db,
	}
}

func seedExpenses(t *testing.T, txs transactions.Store) {
	ctx := context.Background()
	require.NoError(t, txs.AddCategory(ctx, "cat-a", "u1", "A"))
	require.NoError(t, txs.AddWallet(ctx, "w1", "u1", "Checking"))
	require.NoError(t, txs.AddAccount(ctx, "acc1", "u1", "Main"))
	require.NoError(t, txs.Add(ctx, []store.Transaction{
		{ID: "t1", UserID: "u1", Kind: store.EntryExpense, Status: "paid", Description: "groceries",
			AmountCents: 1000, CategoryID: "cat-a", WalletID: "w1", AccountID: "acc1",
			OccurredAt: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
	}))
}

func categoryRequest() domain.GenerateReportRequest {
	return domain.GenerateReportRequest{
		UserID:        "u1",
		ReportType:    domain.ReportExpensesByCategory,
		Visualization: domain.VisualizationTable,
	}
}

func sampleSaved(userID string) domain.SavedReport {
	return domain.SavedReport{
		UserID:        userID,
		Name:          "Monthly spend",
		ReportType:    domain.ReportExpensesByCategory,
		Filters:       domain.ReportFilters{PeriodType: domain.PeriodMonthly},
		Visualization: domain.VisualizationPie,
	}
}

func TestGenerateReport_CachesSecondCall(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()
	seedExpenses(t, f.txs)

	first, err := f.service.GenerateReport(ctx, categoryRequest())
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	require.Len(t, first.Data, 1)
	assert.Equal(t, "A", first.Data[0].Name)
	assert.Equal(t, domain.ReportExpensesByCategory, first.Metadata.ReportType)
	assert.Equal(t, "Expenses by Category", first.Metadata.ReportLabel)
	assert.Equal(t, 600, first.Metadata.CacheTTL)

	second, err := f.service.GenerateReport(ctx, categoryRequest())
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, first.Metadata.GeneratedAt, second.Metadata.GeneratedAt)
}

func TestGenerateReport_UnsupportedType(t *testing.T) {
	f := setupService(t, nil)

	req := categoryRequest()
	req.ReportType = domain.ReportIncomeByCategory
	_, err := f.service.GenerateReport(context.Background(), req)
	assert.ErrorIs(t, err, ErrUnsupportedReportType)
}

type failingBackend struct{}

func (failingBackend) Get(string) (any, bool, error)             { return nil, false, errors.New("backend down") }
func (failingBackend) Set(string, any, time.Duration) error      { return errors.New("backend down") }
func (failingBackend) Delete(string) error                       { return errors.New("backend down") }
func (failingBackend) Flush() error                              { return errors.New("backend down") }

func TestGenerateReport_DegradesWhenCacheFails(t *testing.T) {
	f := setupService(t, failingBackend{})
	ctx := context.Background()
	seedExpenses(t, f.txs)

	for range 2 {
		generated, err := f.service.GenerateReport(ctx, categoryRequest())
		require.NoError(t, err)
		assert.False(t, generated.FromCache)
		require.Len(t, generated.Data, 1)
	}
}

func TestSaveReportConfig(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()

	created, err := f.service.SaveReportConfig(ctx, sampleSaved("u1"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, int64(0), created.RunCount)
	assert.Nil(t, created.LastRunAt)

	reports, err := f.service.GetUserReports(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, created.ID, reports[0].ID)
	assert.Equal(t, domain.PeriodMonthly, reports[0].Filters.PeriodType)
}

func TestSaveReportConfig_UnsupportedType(t *testing.T) {
	f := setupService(t, nil)

	saved := sampleSaved("u1")
	saved.ReportType = domain.ReportIncomeEvolution
	_, err := f.service.SaveReportConfig(context.Background(), saved)
	assert.ErrorIs(t, err, ErrUnsupportedReportType)
}

func TestRunSavedReport(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()
	seedExpenses(t, f.txs)

	created, err := f.service.SaveReportConfig(ctx, sampleSaved("u1"))
	require.NoError(t, err)

	generated, err := f.service.RunSavedReport(ctx, "u1", created.ID)
	require.NoError(t, err)
	require.Len(t, generated.Data, 1)

	rec, err := f.saved.Get(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.RunCount)
	assert.NotNil(t, rec.LastRunAt)
}

func TestRunSavedReport_NotFound(t *testing.T) {
	f := setupService(t, nil)

	_, err := f.service.RunSavedReport(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, savedreports.ErrNotFound)
}

func TestUpdateSavedReport_InvalidatesUserCache(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()
	seedExpenses(t, f.txs)

	created, err := f.service.SaveReportConfig(ctx, sampleSaved("u1"))
	require.NoError(t, err)

	warm, err := f.service.GenerateReport(ctx, categoryRequest())
	require.NoError(t, err)
	assert.False(t, warm.FromCache)

	created.Name = "Renamed"
	updated, err := f.service.UpdateSavedReport(ctx, *created)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	// The edit evicts the user's cached reports, so the next generation
	// recomputes instead of serving the pre-update entry.
	regenerated, err := f.service.GenerateReport(ctx, categoryRequest())
	require.NoError(t, err)
	assert.False(t, regenerated.FromCache)
}

func TestDeleteSavedReport(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()

	created, err := f.service.SaveReportConfig(ctx, sampleSaved("u1"))
	require.NoError(t, err)
	require.NoError(t, f.service.DeleteSavedReport(ctx, "u1", created.ID))

	assert.ErrorIs(t, f.service.DeleteSavedReport(ctx, "u1", created.ID), savedreports.ErrNotFound)
}

func TestToggleFavorite(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()

	created, err := f.service.SaveReportConfig(ctx, sampleSaved("u1"))
	require.NoError(t, err)

	on, err := f.service.ToggleFavorite(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.True(t, on)

	favorites, err := f.service.GetUserFavorites(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, favorites, 1)

	off, err := f.service.ToggleFavorite(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.False(t, off)
}

func TestClearCache(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()
	seedExpenses(t, f.txs)

	_, err := f.service.GenerateReport(ctx, categoryRequest())
	require.NoError(t, err)
	require.NoError(t, f.service.ClearCache())

	regenerated, err := f.service.GenerateReport(ctx, categoryRequest())
	require.NoError(t, err)
	assert.False(t, regenerated.FromCache)
}
