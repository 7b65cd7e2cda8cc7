package dto

import "github.com/canteen-central/canteen-api/internal/models"

// StatusChangeRequest is the transition command accepted by the status
// endpoints.
type StatusChangeRequest struct {
	NewStatus models.ReportStatus `json:"new_status" validate:"required"`
	Comments  *string             `json:"comments,omitempty"`
}

// StatusOptionsResponse feeds the UI transition affordances for a report.
type StatusOptionsResponse struct {
	CurrentStatus    string   `json:"current_status"`
	ValidTransitions []string `json:"valid_transitions"`
	UserRole         string   `json:"user_role"`
}

// CreateMonthlyReportRequest creates the aggregate root for one period.
type CreateMonthlyReportRequest struct {
	Name    string  `json:"name"`
	NotedBy *string `json:"noted_by,omitempty"`
}

// ReportRef addresses one report variant instance.
type ReportRef struct {
	Kind     models.ReportKind
	SchoolID int64
	Year     int
	Month    int
	Category models.LiquidationCategory
}
