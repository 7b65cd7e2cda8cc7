package workflow

import (
	"fmt"
	"strings"

	"github.com/canteen-central/canteen-api/internal/models"
)

// Role labels used for notification targeting. "preparedBy" is the legacy
// fallback label kept for transitions outside the main approval path.
const (
	LabelCanteenManager = "canteen_manager"
	LabelPrincipal      = "principal"
	LabelPreparedBy     = "preparedBy"
)

// Recipient is one notification target computed for a transition.
type Recipient struct {
	RoleLabel string
	UserID    string
}

// Recipients computes the ordered notification targets for a status
// transition. Rules:
//   - DRAFT→REVIEW notifies the preparer, and for monthly reports also the
//     noting principal;
//   - REVIEW→APPROVED/REJECTED notifies the preparer;
//   - APPROVED→RECEIVED notifies the principal then the preparer;
//   - anything else falls back to the preparer under the legacy label.
//
// Absent user references are silently skipped; the result may be empty.
func Recipients(old, new models.ReportStatus, kind models.ReportKind, preparedBy string, notedBy *string) []Recipient {
	var recipients []Recipient

	appendRecipient := func(label, userID string) {
		if userID != "" {
			recipients = append(recipients, Recipient{RoleLabel: label, UserID: userID})
		}
	}

	switch {
	case old == models.StatusDraft && new == models.StatusReview:
		appendRecipient(LabelCanteenManager, preparedBy)
		if kind == models.KindMonthly && notedBy != nil {
			appendRecipient(LabelPrincipal, *notedBy)
		}
	case old == models.StatusReview && (new == models.StatusApproved || new == models.StatusRejected):
		appendRecipient(LabelCanteenManager, preparedBy)
	case old == models.StatusApproved && new == models.StatusReceived:
		if notedBy != nil {
			appendRecipient(LabelPrincipal, *notedBy)
		}
		appendRecipient(LabelCanteenManager, preparedBy)
	default:
		appendRecipient(LabelPreparedBy, preparedBy)
	}

	return recipients
}

// Message is a rendered notification ready for delivery.
type Message struct {
	Title     string
	Content   string
	Type      models.NotificationType
	Important bool
}

// ReportDescription renders the human readable report name, e.g.
// "Monthly Report" or "Operating Expenses Liquidation Report".
func ReportDescription(kind models.ReportKind, category models.LiquidationCategory) string {
	description := titleCase(string(kind)) + " Report"
	if category != "" {
		description = titleCase(strings.ReplaceAll(string(category), "_", " ")) + " " + description
	}
	return description
}

// PeriodContext renders the period suffix, e.g. "for 2025-01".
func PeriodContext(year, month int) string {
	return fmt.Sprintf("for %d-%02d", year, month)
}

// BuildMessage renders the role-appropriate notification for a transition.
// The trailing status block is mandatory; the comments block is appended only
// when comments are present.
func BuildMessage(roleLabel, description, periodContext string, old, new models.ReportStatus, comments *string) Message {
	var title, content string

	switch roleLabel {
	case LabelCanteenManager:
		switch new {
		case models.StatusReview:
			title = "Report Submitted: " + description
			content = fmt.Sprintf("Your %s %s has been successfully submitted for review and is now pending approval.", description, periodContext)
		case models.StatusApproved:
			title = "Report Approved: " + description
			content = fmt.Sprintf("Great news! Your %s %s has been approved.", description, periodContext)
		case models.StatusRejected:
			title = "Report Needs Changes: " + description
			content = fmt.Sprintf("Your %s %s has been rejected and needs changes before resubmission.", description, periodContext)
		case models.StatusReceived:
			title = "Report Received: " + description
			content = fmt.Sprintf("Your %s %s has been successfully received by the division office.", description, periodContext)
		default:
			title = "Report Status Update: " + description
			content = fmt.Sprintf("Your %s %s status has been updated to %s.", description, periodContext, new)
		}
	case LabelPrincipal:
		switch new {
		case models.StatusReview:
			title = "Report Ready for Review: " + description
			content = fmt.Sprintf("A %s %s has been submitted and is ready for your review and approval.", description, periodContext)
		case models.StatusReceived:
			title = "Report Received: " + description
			content = fmt.Sprintf("The %s %s you approved has been successfully received by the division office.", description, periodContext)
		default:
			title = "Report Status Update: " + description
			content = fmt.Sprintf("The %s %s status has been updated to %s.", description, periodContext, new)
		}
	default:
		action := statusAction(new)
		title = fmt.Sprintf("Report Status Update: %s %s", description, action)
		content = fmt.Sprintf("The %s %s has been %s.", description, periodContext, action)
	}

	content += fmt.Sprintf("\n\nPrevious status: %s\nCurrent status: %s", old, new)
	if comments != nil && *comments != "" {
		content += "\n\nComments: " + *comments
	}

	return Message{
		Title:     title,
		Content:   content,
		Type:      notificationType(new),
		Important: false,
	}
}

// CascadeComment renders the comment attached to cascaded child transitions.
func CascadeComment(newStatus models.ReportStatus) string {
	if newStatus == models.StatusReview {
		return "Automatically submitted for review when monthly report was submitted for review"
	}
	return fmt.Sprintf("Status cascaded from monthly report status change to %s", newStatus)
}

func statusAction(status models.ReportStatus) string {
	switch status {
	case models.StatusReview:
		return "submitted for review"
	case models.StatusApproved:
		return "approved"
	case models.StatusRejected:
		return "rejected"
	case models.StatusReceived:
		return "received"
	case models.StatusArchived:
		return "archived"
	default:
		return fmt.Sprintf("changed to %s", status)
	}
}

func notificationType(status models.ReportStatus) models.NotificationType {
	switch status {
	case models.StatusApproved, models.StatusReceived:
		return models.NotificationSuccess
	case models.StatusRejected:
		return models.NotificationWarning
	default:
		return models.NotificationInfo
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
