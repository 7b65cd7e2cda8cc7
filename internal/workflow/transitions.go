// Package workflow holds the pure report lifecycle policy: the role-gated
// transition table, the timestamp stamping rules, and the notification
// routing rules. Nothing here touches storage or transports.
package workflow

import (
	"github.com/canteen-central/canteen-api/internal/models"
)

// Transitions answers whether a role may move a report between two lifecycle
// states. The table is explicit policy configuration so error messages can
// enumerate the permitted targets.
type Transitions struct {
	table map[models.UserRole]map[models.ReportStatus][]models.ReportStatus
}

// TransitionsConfig tunes policy knobs left open by the approval hierarchy.
type TransitionsConfig struct {
	// ArchiveFromAny lets district roles archive reports from any state
	// instead of only from RECEIVED.
	ArchiveFromAny bool
}

// NewTransitions builds the role-based transition table.
//
// Approval hierarchy: the canteen manager prepares and submits, the principal
// reviews, the district office receives and archives.
func NewTransitions(cfg TransitionsConfig) *Transitions {
	districtTable := map[models.ReportStatus][]models.ReportStatus{
		models.StatusApproved: {models.StatusReceived},
		models.StatusReceived: {models.StatusArchived},
	}
	if cfg.ArchiveFromAny {
		districtTable = map[models.ReportStatus][]models.ReportStatus{
			models.StatusDraft:    {models.StatusArchived},
			models.StatusReview:   {models.StatusArchived},
			models.StatusApproved: {models.StatusReceived, models.StatusArchived},
			models.StatusRejected: {models.StatusArchived},
			models.StatusReceived: {models.StatusArchived},
		}
	}

	return &Transitions{
		table: map[models.UserRole]map[models.ReportStatus][]models.ReportStatus{
			models.RoleCanteenManager: {
				models.StatusDraft:    {models.StatusReview},
				models.StatusRejected: {models.StatusDraft, models.StatusReview},
			},
			models.RolePrincipal: {
				models.StatusReview: {models.StatusApproved, models.StatusRejected},
			},
			models.RoleAdministrator:  districtTable,
			models.RoleSuperintendent: districtTable,
		},
	}
}

// IsTransitionValid reports whether role may move a report from current to
// requested.
func (t *Transitions) IsTransitionValid(role models.UserRole, current, requested models.ReportStatus) bool {
	for _, allowed := range t.ValidTransitions(role, current) {
		if allowed == requested {
			return true
		}
	}
	return false
}

// ValidTransitions returns the permitted target statuses for (role, current),
// in table order. The result is empty when the role may not leave current at
// all.
func (t *Transitions) ValidTransitions(role models.UserRole, current models.ReportStatus) []models.ReportStatus {
	byStatus, ok := t.table[role]
	if !ok {
		return nil
	}
	return byStatus[current]
}

// RoleDescription returns the human readable role name used in error
// messages and notifications.
func RoleDescription(role models.UserRole) string {
	switch role {
	case models.RoleSuperintendent:
		return "Superintendent"
	case models.RoleAdministrator:
		return "Administrator"
	case models.RolePrincipal:
		return "Principal"
	case models.RoleCanteenManager:
		return "Canteen Manager"
	default:
		return string(role)
	}
}

// ViewableStatuses returns the statuses a role may see. Drafts stay private
// to the preparer; the district office only sees reports that cleared review.
func (t *Transitions) ViewableStatuses(role models.UserRole) []models.ReportStatus {
	switch role {
	case models.RoleCanteenManager:
		return []models.ReportStatus{
			models.StatusDraft, models.StatusReview, models.StatusApproved,
			models.StatusRejected, models.StatusReceived, models.StatusArchived,
		}
	case models.RolePrincipal:
		return []models.ReportStatus{
			models.StatusReview, models.StatusApproved, models.StatusRejected,
			models.StatusReceived, models.StatusArchived,
		}
	case models.RoleAdministrator, models.RoleSuperintendent:
		return []models.ReportStatus{
			models.StatusApproved, models.StatusReceived, models.StatusArchived,
		}
	default:
		return nil
	}
}

// CanViewReport reports whether the role may see a report in the given state.
func (t *Transitions) CanViewReport(role models.UserRole, status models.ReportStatus) bool {
	for _, viewable := range t.ViewableStatuses(role) {
		if viewable == status {
			return true
		}
	}
	return false
}

// CanCreateReport reports whether the role may create new reports.
func (t *Transitions) CanCreateReport(role models.UserRole) bool {
	return role == models.RoleCanteenManager
}
