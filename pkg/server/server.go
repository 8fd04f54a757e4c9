package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/granafy/reports/pkg/export"
	handlers "github.com/granafy/reports/pkg/handlers/report"
	granafymiddleware "github.com/granafy/reports/pkg/server/middleware"
	reportsvc "github.com/granafy/reports/pkg/services/report"
	"github.com/rs/zerolog"
)

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Reports  reportsvc.Service
	Exporter *export.Exporter
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	handler := handlers.NewHandler(config.Dependencies.Reports, config.Dependencies.Exporter)

	router := chi.NewRouter()

	router.Use(granafymiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/reports/generate", handler.GenerateReport)
		r.Get("/reports/types", handler.ListReportTypes)

		r.Post("/reports/export", handler.ExportReport)
		r.Get("/exports/{file}", handler.DownloadExport)
		r.Delete("/exports/{file}", handler.DeleteExport)

		r.Route("/saved-reports", func(r chi.Router) {
			r.Get("/", handler.ListSavedReports)
			r.Post("/", handler.SaveReport)
			r.Get("/favorites", handler.ListFavorites)
			r.Get("/templates", handler.ListTemplates)
			r.Get("/{id}", handler.GetSavedReport)
			r.Put("/{id}", handler.UpdateSavedReport)
			r.Delete("/{id}", handler.DeleteSavedReport)
			r.Post("/{id}/run", handler.RunSavedReport)
			r.Post("/{id}/favorite", handler.ToggleFavorite)
		})
	})

	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
		shutdownTimeout: shutdownTimeout,
	}
}

// Router exposes the configured mux, mainly for tests.
func (w *WebAPI) Router() http.Handler {
	return w.router
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
