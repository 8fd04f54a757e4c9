package export

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/granafy/reports/pkg/models/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newExporter(t *testing.T) *Exporter {
	e, err := NewExporter(t.TempDir(), DefaultMaxAge)
	require.NoError(t, err)
	return e
}

func sampleReport() *domain.GeneratedReport {
	return &domain.GeneratedReport{
		Data: []domain.ReportRow{
			{ID: "cat-a", Name: "A", Value: decimal.New(6000, -2), Count: 3,
				Percentage: decimal.NewFromInt(60)},
			{ID: "cat-b", Name: "B", Value: decimal.New(4000, -2), Count: 1,
				Percentage: decimal.NewFromInt(40)},
		},
		Summary: map[string]any{
			"total":              decimal.New(10000, -2),
			"transactions_count": int64(4),
		},
		Metadata: domain.ReportMetadata{
			ReportType:  domain.ReportExpensesByCategory,
			ReportLabel: "Expenses by Category",
		},
	}
}

func TestExport_CSV(t *testing.T) {
	e := newExporter(t)

	file, err := e.Export(context.Background(), "u1", sampleReport(), FormatCSV)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^expenses-by-category_u1_\d{14}\.csv$`), file.Name)

	raw, err := os.ReadFile(file.Path)
	require.NoError(t, err)

	content := string(raw)
	assert.True(t, strings.HasPrefix(content, "\xef\xbb\xbf"), "csv starts with a UTF-8 BOM")
	assert.Contains(t, content, "Name,Total,Transactions,Percentage (%)")
	assert.Contains(t, content, "A,60.00,3,60.00")
	assert.Contains(t, content, "B,40.00,1,40.00")
	assert.Contains(t, content, "total,100")
}

func TestExport_XLSX(t *testing.T) {
	e := newExporter(t)

	file, err := e.Export(context.Background(), "u1", sampleReport(), FormatXLSX)
	require.NoError(t, err)

	wb, err := excelize.OpenFile(file.Path)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Report")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"Name", "Total", "Transactions", "Percentage (%)"}, rows[0])
	require.Len(t, rows, 3)
	assert.Equal(t, "A", rows[1][0])

	summary, err := wb.GetRows("Summary")
	require.NoError(t, err)
	assert.NotEmpty(t, summary)
}

func TestExport_PDF(t *testing.T) {
	e := newExporter(t)

	file, err := e.Export(context.Background(), "u1", sampleReport(), FormatPDF)
	require.NoError(t, err)

	raw, err := os.ReadFile(file.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "%PDF-"))
}

func TestExport_UnsupportedFormatLeavesNoFile(t *testing.T) {
	e := newExporter(t)

	_, err := e.Export(context.Background(), "u1", sampleReport(), "docx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	entries, err := os.ReadDir(e.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResolve(t *testing.T) {
	e := newExporter(t)

	path, err := e.Resolve("report_u1_20240101120000.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(e.Dir(), "report_u1_20240101120000.csv"), path)

	for _, name := range []string{"", "../escape.csv", "/etc/passwd", ".hidden"} {
		_, err := e.Resolve(name)
		assert.ErrorIs(t, err, ErrInvalidReference, name)
	}
}

func TestDelete(t *testing.T) {
	e := newExporter(t)

	file, err := e.Export(context.Background(), "u1", sampleReport(), FormatCSV)
	require.NoError(t, err)

	require.NoError(t, e.Delete(file.Name))
	_, err = os.Stat(file.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestCleanOldExports(t *testing.T) {
	e := newExporter(t)
	ctx := context.Background()

	old, err := e.Export(ctx, "u1", sampleReport(), FormatCSV)
	require.NoError(t, err)
	stale := time.Now().Add(-25 * time.Hour)
	require.NoError(t, os.Chtimes(old.Path, stale, stale))

	fresh, err := e.Export(ctx, "u2", sampleReport(), FormatCSV)
	require.NoError(t, err)

	deleted, err := e.CleanOldExports(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = os.Stat(old.Path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh.Path)
	assert.NoError(t, err)
}
