package models

import (
	"time"

	"techvisit-backend/internal/report"
)

// Report is a persisted report row. Rows are insert-only: a report is frozen
// at send time and never mutated afterwards; removal is a soft delete.
type Report struct {
	ID        string         `json:"id"`
	ClientID  string         `json:"clientId"`
	Month     string         `json:"month"` // display label, e.g. "يناير 2026"
	Type      report.Type    `json:"type"`
	Content   report.Content `json:"content"`
	IsDeleted bool           `json:"isDeleted"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ReportWithClient includes the client name for console listings.
type ReportWithClient struct {
	Report
	ClientName string `json:"clientName"`
}

// CreateReportRequest is the send action: the built (and possibly hand-edited)
// content document is persisted verbatim.
type CreateReportRequest struct {
	ClientID string         `json:"clientId"`
	Month    string         `json:"month"`
	Type     report.Type    `json:"type"`
	Content  report.Content `json:"content"`
}

// Validate blocks the send before any remote call when required selections
// are missing.
func (r *CreateReportRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.ClientID == "" {
		errors["clientId"] = "Client is required"
	}
	if !r.Type.Valid() {
		errors["type"] = "Type must be 'visit_log', 'monthly_technical', or 'incident'"
	}

	return errors
}

// PreviewReportRequest asks the server to run the content builder against the
// current snapshot without persisting anything. The console calls this on
// every type/client/visit selection change.
type PreviewReportRequest struct {
	ClientID       string      `json:"clientId"`
	Type           report.Type `json:"type"`
	BookingID      *string     `json:"bookingId,omitempty"`
	TechnicianName string      `json:"technicianName,omitempty"`
}

// Validate checks the preview selections.
func (r *PreviewReportRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.ClientID == "" {
		errors["clientId"] = "Client is required"
	}
	if !r.Type.Valid() {
		errors["type"] = "Type must be 'visit_log', 'monthly_technical', or 'incident'"
	}

	return errors
}
