package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/granafy/reports/pkg/models/domain"
	"github.com/rs/zerolog"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrInvalidReference  = errors.New("invalid export reference")
)

// DefaultMaxAge is how long an exported file is kept before the cleanup
// sweep removes it.
const DefaultMaxAge = 24 * time.Hour

// File is the download reference handed back to callers.
type File struct {
	Name      string    `json:"name"`
	Path      string    `json:"-"`
	Format    Format    `json:"format"`
	CreatedAt time.Time `json:"created_at"`
}

// Exporter renders already-generated reports to files in a single directory.
// It has no report-generation logic of its own.
type Exporter struct {
	dir    string
	maxAge time.Duration
	now    func() time.Time
}

func NewExporter(dir string, maxAge time.Duration) (*Exporter, error) {
	if dir == "" {
		return nil, fmt.Errorf("export directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Exporter{
		dir:    dir,
		maxAge: maxAge,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (e *Exporter) Dir() string {
	return e.dir
}

// Export renders the report in the requested format. The file is written to
// a temporary path and moved into place only when rendering succeeds, so a
// failed export leaves nothing behind.
func (e *Exporter) Export(ctx context.Context, userID string, report *domain.GeneratedReport, format Format) (*File, error) {
	logger := zerolog.Ctx(ctx)

	now := e.now()
	name := fmt.Sprintf("%s_%s_%s.%s",
		slug(string(report.Metadata.ReportType)),
		userID,
		now.Format("20060102150405"),
		format)
	final := filepath.Join(e.dir, name)
	tmp := final + ".tmp"

	var err error
	switch format {
	case FormatCSV:
		err = writeCSV(tmp, report)
	case FormatXLSX:
		err = writeXLSX(tmp, report)
	case FormatPDF:
		err = writePDF(tmp, report)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Warn().Err(rmErr).Str("path", tmp).Msg("failed to remove partial export")
		}
		return nil, fmt.Errorf("render %s export: %w", format, err)
	}

	if err := os.Rename(tmp, final); err != nil {
		return nil, fmt.Errorf("finalize export: %w", err)
	}

	logger.Info().
		Str("file", name).
		Str("format", string(format)).
		Msg("report exported")

	return &File{Name: name, Path: final, Format: format, CreatedAt: now}, nil
}

// Resolve maps a download reference back to its path inside the export
// directory, rejecting anything that is not a bare file name.
func (e *Exporter) Resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidReference, name)
	}
	return filepath.Join(e.dir, name), nil
}

func (e *Exporter) Delete(name string) error {
	path, err := e.Resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete export: %w", err)
	}
	return nil
}

// CleanOldExports removes exported files older than the retention window and
// reports how many were deleted. Concurrent export writes are safe: names
// embed a timestamp, and anything younger than the window is left alone.
func (e *Exporter) CleanOldExports(ctx context.Context) (int, error) {
	logger := zerolog.Ctx(ctx)

	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return 0, fmt.Errorf("read export directory: %w", err)
	}

	cutoff := e.now().Add(-e.maxAge)
	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(e.dir, entry.Name())); err != nil {
			logger.Warn().Err(err).Str("file", entry.Name()).Msg("failed to remove old export")
			continue
		}
		deleted++
	}
	return deleted, nil
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	s = slugPattern.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}
