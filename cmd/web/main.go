package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/granafy/reports/pkg/cache"
	"github.com/granafy/reports/pkg/config"
	"github.com/granafy/reports/pkg/export"
	"github.com/granafy/reports/pkg/server"
	reportsvc "github.com/granafy/reports/pkg/services/report"
	"github.com/granafy/reports/pkg/store/duckdb"
	"github.com/granafy/reports/pkg/store/duckdb/savedreports"
	"github.com/granafy/reports/pkg/store/duckdb/transactions"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the report API server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "config.yaml",
		"Path to the YAML configuration file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file loaded: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: cfg.Database.Path})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	txStore, err := transactions.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create transaction store: %w", err)
	}
	savedStore, err := savedreports.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create saved report store: %w", err)
	}

	builder := reportsvc.NewBuilder(txStore)
	reportCache := cache.New(cache.NewMemoryBackend(), cfg.Cache.TTL())
	service := reportsvc.NewService(builder, reportCache, savedStore, db)

	exporter, err := export.NewExporter(cfg.Export.Dir, cfg.Export.MaxAge())
	if err != nil {
		return fmt.Errorf("failed to create exporter: %w", err)
	}

	go cleanupLoop(ctx, exporter, &logger)

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	api := server.NewWebAPI(logger, server.Config{
		Addr: addr,
		Dependencies: server.Dependencies{
			Reports:  service,
			Exporter: exporter,
		},
	})

	return api.Start()
}

// cleanupLoop sweeps expired export files once an hour until the context is
// cancelled.
func cleanupLoop(ctx context.Context, exporter *export.Exporter, logger *zerolog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := exporter.CleanOldExports(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("export cleanup failed")
				continue
			}
			if deleted > 0 {
				logger.Info().Int("deleted", deleted).Msg("removed expired exports")
			}
		}
	}
}
