package commands

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/granafy/reports/pkg/cache"
	"github.com/granafy/reports/pkg/models/domain"
	"github.com/granafy/reports/pkg/runtime/terminal"
	reportsvc "github.com/granafy/reports/pkg/services/report"
	"github.com/granafy/reports/pkg/store/duckdb"
	"github.com/granafy/reports/pkg/store/duckdb/savedreports"
	"github.com/granafy/reports/pkg/store/duckdb/transactions"
	"github.com/spf13/cobra"
)

// reportFlags are the filter parameters shared by the run and export
// commands.
type reportFlags struct {
	dbPath     string
	userID     string
	reportType string
	viz        string
	startDate  string
	endDate    string
	periodType string
	status     string
	categories []string
	wallets    []string
	minAmount  string
	maxAmount  string
	limit      int
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dbPath, "db", "granafy-reports.db", "Path to the transactions database")
	cmd.Flags().StringVar(&f.userID, "user", "", "User the report is generated for")
	cmd.Flags().StringVar(&f.reportType, "type", "", "Report type (e.g. expenses_by_category)")
	cmd.Flags().StringVar(&f.viz, "visualization", "table", "Visualization type")
	cmd.Flags().StringVar(&f.startDate, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.endDate, "to", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.periodType, "period", "", "Period bucket: daily, weekly or monthly")
	cmd.Flags().StringVar(&f.status, "status", "", "Status filter: all, paid, received or pending")
	cmd.Flags().StringSliceVar(&f.categories, "category", nil, "Category ids to include")
	cmd.Flags().StringSliceVar(&f.wallets, "wallet", nil, "Wallet ids to include")
	cmd.Flags().StringVar(&f.minAmount, "min-amount", "", "Minimum amount in major units")
	cmd.Flags().StringVar(&f.maxAmount, "max-amount", "", "Maximum amount in major units")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Row limit for top_expenses")

	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("type")
}

func (f *reportFlags) request() (domain.GenerateReportRequest, error) {
	filters, err := domain.ParseFilters(domain.RawFilters{
		StartDate:  f.startDate,
		EndDate:    f.endDate,
		PeriodType: f.periodType,
		Categories: f.categories,
		Wallets:    f.wallets,
		Status:     f.status,
		MinAmount:  f.minAmount,
		MaxAmount:  f.maxAmount,
		Limit:      f.limit,
	})
	if err != nil {
		return domain.GenerateReportRequest{}, err
	}
	return domain.GenerateReportRequest{
		UserID:        f.userID,
		ReportType:    domain.ReportType(f.reportType),
		Filters:       filters,
		Visualization: domain.VisualizationType(f.viz),
	}, nil
}

// openService wires a report service over a database file. Callers own
// closing the returned handle.
func openService(dbPath string) (reportsvc.Service, *sql.DB, error) {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: dbPath})
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	txStore, err := transactions.NewStore(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	savedStore, err := savedreports.NewStore(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	builder := reportsvc.NewBuilder(txStore)
	reportCache := cache.New(cache.NewMemoryBackend(), cache.DefaultTTL)
	return reportsvc.NewService(builder, reportCache, savedStore, db), db, nil
}

type RunCmd struct {
	flags    reportFlags
	reporter *terminal.Reporter
}

func NewRunCmd(reporter *terminal.Reporter) *cobra.Command {
	rc := &RunCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate a report and print it",
		RunE:  rc.run,
	}
	rc.flags.register(cmd)
	return cmd
}

func (rc *RunCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	req, err := rc.flags.request()
	if err != nil {
		return err
	}

	service, db, err := openService(rc.flags.dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	generated, err := service.GenerateReport(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	return rc.reporter.Handle(generated)
}
