package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canteen-central/canteen-api/internal/models"
)

func strPtr(s string) *string { return &s }

func TestRecipientsDraftToReviewDaily(t *testing.T) {
	got := Recipients(models.StatusDraft, models.StatusReview, models.KindDailyFinancial, "U1", strPtr("U2"))

	require.Len(t, got, 1)
	assert.Equal(t, Recipient{RoleLabel: LabelCanteenManager, UserID: "U1"}, got[0])
}

func TestRecipientsDraftToReviewMonthly(t *testing.T) {
	got := Recipients(models.StatusDraft, models.StatusReview, models.KindMonthly, "U1", strPtr("U2"))

	require.Equal(t, []Recipient{
		{RoleLabel: LabelCanteenManager, UserID: "U1"},
		{RoleLabel: LabelPrincipal, UserID: "U2"},
	}, got)
}

func TestRecipientsReviewOutcomes(t *testing.T) {
	for _, outcome := range []models.ReportStatus{models.StatusApproved, models.StatusRejected} {
		got := Recipients(models.StatusReview, outcome, models.KindMonthly, "U1", strPtr("U2"))
		require.Equal(t, []Recipient{{RoleLabel: LabelCanteenManager, UserID: "U1"}}, got, string(outcome))
	}
}

func TestRecipientsApprovedToReceived(t *testing.T) {
	got := Recipients(models.StatusApproved, models.StatusReceived, models.KindPayroll, "U1", strPtr("U2"))

	require.Equal(t, []Recipient{
		{RoleLabel: LabelPrincipal, UserID: "U2"},
		{RoleLabel: LabelCanteenManager, UserID: "U1"},
	}, got)
}

func TestRecipientsLegacyFallback(t *testing.T) {
	got := Recipients(models.StatusReceived, models.StatusArchived, models.KindMonthly, "U1", nil)

	require.Equal(t, []Recipient{{RoleLabel: LabelPreparedBy, UserID: "U1"}}, got)
}

func TestRecipientsSkipsAbsentTargets(t *testing.T) {
	got := Recipients(models.StatusDraft, models.StatusReview, models.KindMonthly, "U1", nil)
	require.Equal(t, []Recipient{{RoleLabel: LabelCanteenManager, UserID: "U1"}}, got)

	got = Recipients(models.StatusDraft, models.StatusReview, models.KindDailyFinancial, "", nil)
	assert.Empty(t, got)
}

func TestReportDescription(t *testing.T) {
	assert.Equal(t, "Monthly Report", ReportDescription(models.KindMonthly, ""))
	assert.Equal(t, "Daily Financial Report", ReportDescription(models.KindDailyFinancial, ""))
	assert.Equal(t, "Operating Expenses Liquidation Report",
		ReportDescription(models.KindLiquidation, models.CategoryOperatingExpenses))
	assert.Equal(t, "Clinic Fund Liquidation Report",
		ReportDescription(models.KindLiquidation, models.CategoryClinicFund))
}

func TestBuildMessageCanteenManagerApproved(t *testing.T) {
	msg := BuildMessage(LabelCanteenManager, "Monthly Report", "for 2025-01",
		models.StatusReview, models.StatusApproved, nil)

	assert.Equal(t, "Report Approved: Monthly Report", msg.Title)
	assert.Contains(t, msg.Content, "Great news! Your Monthly Report for 2025-01 has been approved.")
	assert.Contains(t, msg.Content, "Previous status: REVIEW\nCurrent status: APPROVED")
	assert.NotContains(t, msg.Content, "Comments:")
	assert.Equal(t, models.NotificationSuccess, msg.Type)
	assert.False(t, msg.Important)
}

func TestBuildMessagePrincipalReview(t *testing.T) {
	msg := BuildMessage(LabelPrincipal, "Monthly Report", "for 2025-02",
		models.StatusDraft, models.StatusReview, nil)

	assert.Equal(t, "Report Ready for Review: Monthly Report", msg.Title)
	assert.Contains(t, msg.Content, "ready for your review and approval")
	assert.Equal(t, models.NotificationInfo, msg.Type)
}

func TestBuildMessageRejectedWithComments(t *testing.T) {
	msg := BuildMessage(LabelCanteenManager, "Payroll Report", "for 2025-03",
		models.StatusReview, models.StatusRejected, strPtr("missing receipts"))

	assert.Equal(t, "Report Needs Changes: Payroll Report", msg.Title)
	assert.Contains(t, msg.Content, "rejected and needs changes before resubmission")
	assert.Contains(t, msg.Content, "\n\nComments: missing receipts")
	assert.Equal(t, models.NotificationWarning, msg.Type)
}

func TestBuildMessageLegacyLabel(t *testing.T) {
	msg := BuildMessage(LabelPreparedBy, "Monthly Report", "for 2025-04",
		models.StatusReceived, models.StatusArchived, nil)

	assert.Equal(t, "Report Status Update: Monthly Report archived", msg.Title)
	assert.Contains(t, msg.Content, "The Monthly Report for 2025-04 has been archived.")
}

func TestCascadeComment(t *testing.T) {
	assert.Equal(t,
		"Automatically submitted for review when monthly report was submitted for review",
		CascadeComment(models.StatusReview))
	assert.Equal(t,
		"Status cascaded from monthly report status change to APPROVED",
		CascadeComment(models.StatusApproved))
}

func TestPeriodContext(t *testing.T) {
	assert.Equal(t, "for 2025-01", PeriodContext(2025, 1))
	assert.Equal(t, "for 2024-12", PeriodContext(2024, 12))
}
