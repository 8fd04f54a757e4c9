package domain

import "time"

// SavedReport is a user-persisted report definition that can be re-run on
// demand. Exclusively owned by one user; no sharing.
type SavedReport struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	ReportType    ReportType        `json:"report_type"`
	Filters       ReportFilters     `json:"filters"`
	Visualization VisualizationType `json:"visualization_type"`
	IsTemplate    bool              `json:"is_template"`
	IsFavorite    bool              `json:"is_favorite"`
	LastRunAt     *time.Time        `json:"last_run_at,omitempty"`
	RunCount      int64             `json:"run_count"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
