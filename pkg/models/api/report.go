package api

import (
	"time"

	"github.com/granafy/reports/pkg/models/domain"
)

// GenerateReportRequest is the JSON body of POST /reports/generate.
type GenerateReportRequest struct {
	ReportType        string            `json:"report_type"`
	Filters           domain.RawFilters `json:"filters"`
	VisualizationType string            `json:"visualization_type"`
}

type ReportTypeInfo struct {
	Type           string   `json:"type"`
	Label          string   `json:"label"`
	Visualizations []string `json:"visualizations"`
}

type SaveReportRequest struct {
	Name              string            `json:"name"`
	Description       string            `json:"description,omitempty"`
	ReportType        string            `json:"report_type"`
	Filters           domain.RawFilters `json:"filters"`
	VisualizationType string            `json:"visualization_type"`
	IsTemplate        bool              `json:"is_template"`
}

type SavedReport struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Description       string            `json:"description,omitempty"`
	ReportType        string            `json:"report_type"`
	Filters           domain.RawFilters `json:"filters"`
	VisualizationType string            `json:"visualization_type"`
	IsTemplate        bool              `json:"is_template"`
	IsFavorite        bool              `json:"is_favorite"`
	LastRunAt         *time.Time        `json:"last_run_at,omitempty"`
	RunCount          int64             `json:"run_count"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

type ExportRequest struct {
	Report GenerateReportRequest `json:"report"`
	Format string                `json:"format"`
}

type ExportResponse struct {
	File      string    `json:"file"`
	Format    string    `json:"format"`
	CreatedAt time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
