package commands

import (
	"time"

	"github.com/granafy/reports/pkg/export"
	"github.com/spf13/cobra"
)

type CleanExportsCmd struct {
	outDir      string
	maxAgeHours int
}

func NewCleanExportsCmd() *cobra.Command {
	cc := &CleanExportsCmd{}
	cmd := &cobra.Command{
		Use:   "clean-exports",
		Short: "Remove exported files older than the retention window",
		RunE:  cc.run,
	}
	cmd.Flags().StringVar(&cc.outDir, "out", "exports", "Directory exported files are written to")
	cmd.Flags().IntVar(&cc.maxAgeHours, "max-age", 24, "Retention window in hours")
	return cmd
}

func (cc *CleanExportsCmd) run(cmd *cobra.Command, _ []string) error {
	exporter, err := export.NewExporter(cc.outDir, time.Duration(cc.maxAgeHours)*time.Hour)
	if err != nil {
		return err
	}

	deleted, err := exporter.CleanOldExports(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("removed %d expired export(s)\n", deleted)
	return nil
}
