package workflow

import (
	"time"

	"github.com/canteen-central/canteen-api/internal/models"
)

// ApplyStatusTimestamps stamps the lifecycle timestamp fields implied by a
// transition into newStatus. Every transition refreshes lastModified;
// APPROVED additionally stamps dateApproved and RECEIVED stamps dateReceived.
// Re-stamping overwrites an earlier value, it never errors.
func ApplyStatusTimestamps(report models.StatusBearing, newStatus models.ReportStatus, now time.Time) {
	switch newStatus {
	case models.StatusApproved:
		report.SetDateApproved(now)
	case models.StatusReceived:
		report.SetDateReceived(now)
	}
	report.SetLastModified(now)
}

// CascadeStatuses is the allow-list of statuses that propagate from a monthly
// report to its children. DRAFT never cascades: pulling a monthly report back
// to draft must not touch already-submitted child reports.
var CascadeStatuses = map[models.ReportStatus]struct{}{
	models.StatusReview:   {},
	models.StatusApproved: {},
	models.StatusRejected: {},
	models.StatusReceived: {},
	models.StatusArchived: {},
}

// ShouldCascade reports whether a monthly transition into newStatus
// propagates to child reports.
func ShouldCascade(newStatus models.ReportStatus) bool {
	_, ok := CascadeStatuses[newStatus]
	return ok
}
