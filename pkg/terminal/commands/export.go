package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/granafy/reports/pkg/export"
	"github.com/spf13/cobra"
)

type ExportCmd struct {
	flags  reportFlags
	format string
	outDir string
}

func NewExportCmd() *cobra.Command {
	ec := &ExportCmd{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Generate a report and write it to a file",
		RunE:  ec.run,
	}
	ec.flags.register(cmd)
	cmd.Flags().StringVar(&ec.format, "format", "csv", "Export format: csv, xlsx or pdf")
	cmd.Flags().StringVar(&ec.outDir, "out", "exports", "Directory exported files are written to")
	return cmd
}

func (ec *ExportCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	req, err := ec.flags.request()
	if err != nil {
		return err
	}

	service, db, err := openService(ec.flags.dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	generated, err := service.GenerateReport(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	exporter, err := export.NewExporter(ec.outDir, export.DefaultMaxAge)
	if err != nil {
		return err
	}

	file, err := exporter.Export(ctx, ec.flags.userID, generated, export.Format(ec.format))
	if err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}

	cmd.Printf("exported to %s\n", file.Path)
	return nil
}
