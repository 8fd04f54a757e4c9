package report

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/granafy/reports/pkg/adapters"
	"github.com/granafy/reports/pkg/export"
	"github.com/granafy/reports/pkg/models/api"
	"github.com/granafy/reports/pkg/models/domain"
	reportsvc "github.com/granafy/reports/pkg/services/report"
	"github.com/granafy/reports/pkg/store/duckdb/savedreports"
	"github.com/rs/zerolog"
)

// userHeader carries the authenticated user's identifier; authentication
// itself happens upstream of this service.
const userHeader = "X-User-ID"

type Handler struct {
	service  reportsvc.Service
	exporter *export.Exporter
}

func NewHandler(service reportsvc.Service, exporter *export.Exporter) *Handler {
	return &Handler{service: service, exporter: exporter}
}

func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body api.GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	req, err := buildRequest(userID, body)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	generated, err := h.service.GenerateReport(ctx, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, generated)
}

func (h *Handler) ListReportTypes(w http.ResponseWriter, r *http.Request) {
	types := make([]api.ReportTypeInfo, 0, len(domain.ReportLabels))
	for _, t := range []domain.ReportType{
		domain.ReportExpensesByCategory,
		domain.ReportExpensesByWallet,
		domain.ReportExpensesEvolution,
		domain.ReportTopExpenses,
		domain.ReportCashflow,
	} {
		info := api.ReportTypeInfo{Type: string(t), Label: domain.ReportLabels[t]}
		for _, v := range reportsvc.SupportedVisualizations(t) {
			info.Visualizations = append(info.Visualizations, string(v))
		}
		types = append(types, info)
	}
	writeJSON(w, r, http.StatusOK, types)
}

func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body api.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	req, err := buildRequest(userID, body.Report)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	generated, err := h.service.GenerateReport(ctx, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	file, err := h.exporter.Export(ctx, userID, generated, export.Format(body.Format))
	if err != nil {
		if errors.Is(err, export.ErrUnsupportedFormat) {
			writeError(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, r, http.StatusInternalServerError, "export failed")
		return
	}

	writeJSON(w, r, http.StatusCreated, api.ExportResponse{
		File:      file.Name,
		Format:    string(file.Format),
		CreatedAt: file.CreatedAt,
	})
}

func (h *Handler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "file")
	path, err := h.exporter.Resolve(name)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid export reference")
		return
	}
	http.ServeFile(w, r, path)
}

func (h *Handler) DeleteExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "file")
	if err := h.exporter.Delete(name); err != nil {
		if errors.Is(err, export.ErrInvalidReference) {
			writeError(w, r, http.StatusBadRequest, "invalid export reference")
			return
		}
		writeError(w, r, http.StatusNotFound, "export not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SaveReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body api.SaveReportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	if body.Name == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "name is required")
		return
	}

	filters, err := domain.ParseFilters(body.Filters)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	saved, err := h.service.SaveReportConfig(ctx, domain.SavedReport{
		UserID:        userID,
		Name:          body.Name,
		Description:   body.Description,
		ReportType:    domain.ReportType(body.ReportType),
		Filters:       filters,
		Visualization: domain.VisualizationType(body.VisualizationType),
		IsTemplate:    body.IsTemplate,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, adapters.MapSavedReportDomainToApi(*saved))
}

func (h *Handler) ListSavedReports(w http.ResponseWriter, r *http.Request) {
	h.listSaved(w, r, h.service.GetUserReports)
}

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	h.listSaved(w, r, h.service.GetUserFavorites)
}

func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	h.listSaved(w, r, h.service.GetTemplates)
}

func (h *Handler) GetSavedReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	reports, err := h.service.GetUserReports(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	for _, saved := range reports {
		if saved.ID == id {
			writeJSON(w, r, http.StatusOK, adapters.MapSavedReportDomainToApi(saved))
			return
		}
	}
	writeError(w, r, http.StatusNotFound, "saved report not found")
}

func (h *Handler) RunSavedReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	generated, err := h.service.RunSavedReport(ctx, userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, generated)
}

func (h *Handler) UpdateSavedReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body api.SaveReportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	filters, err := domain.ParseFilters(body.Filters)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	updated, err := h.service.UpdateSavedReport(ctx, domain.SavedReport{
		ID:            chi.URLParam(r, "id"),
		UserID:        userID,
		Name:          body.Name,
		Description:   body.Description,
		ReportType:    domain.ReportType(body.ReportType),
		Filters:       filters,
		Visualization: domain.VisualizationType(body.VisualizationType),
		IsTemplate:    body.IsTemplate,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapSavedReportDomainToApi(*updated))
}

func (h *Handler) DeleteSavedReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteSavedReport(ctx, userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	favorite, err := h.service.ToggleFavorite(ctx, userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]bool{"is_favorite": favorite})
}

func (h *Handler) listSaved(
	w http.ResponseWriter,
	r *http.Request,
	list func(ctx context.Context, userID string) ([]domain.SavedReport, error),
) {
	ctx := r.Context()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	reports, err := list(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]api.SavedReport, 0, len(reports))
	for _, saved := range reports {
		out = append(out, adapters.MapSavedReportDomainToApi(saved))
	}
	writeJSON(w, r, http.StatusOK, out)
}

func buildRequest(userID string, body api.GenerateReportRequest) (domain.GenerateReportRequest, error) {
	filters, err := domain.ParseFilters(body.Filters)
	if err != nil {
		return domain.GenerateReportRequest{}, err
	}
	visualization := domain.VisualizationType(body.VisualizationType)
	if visualization == "" {
		visualization = domain.VisualizationTable
	}
	return domain.GenerateReportRequest{
		UserID:        userID,
		ReportType:    domain.ReportType(body.ReportType),
		Filters:       filters,
		Visualization: visualization,
	}, nil
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get(userHeader)
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "missing "+userHeader+" header")
		return "", false
	}
	return userID, true
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, reportsvc.ErrUnsupportedReportType):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, savedreports.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "saved report not found")
	case errors.Is(err, domain.ErrInvalidFilter):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, api.ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	logger := zerolog.Ctx(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}
