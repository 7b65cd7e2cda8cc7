package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canteen-central/canteen-api/internal/models"
)

func TestApplyStatusTimestampsApproved(t *testing.T) {
	report := &models.PayrollReport{}
	now := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

	ApplyStatusTimestamps(report, models.StatusApproved, now)

	require.NotNil(t, report.DateApproved)
	assert.Equal(t, now, *report.DateApproved)
	require.NotNil(t, report.LastModified)
	assert.Equal(t, now, *report.LastModified)
	assert.Nil(t, report.DateReceived)
}

func TestApplyStatusTimestampsReceived(t *testing.T) {
	report := &models.MonthlyReport{}
	now := time.Now().UTC()

	ApplyStatusTimestamps(report, models.StatusReceived, now)

	require.NotNil(t, report.DateReceived)
	assert.Equal(t, now, *report.DateReceived)
	assert.Nil(t, report.DateApproved)
	require.NotNil(t, report.LastModified)
}

func TestApplyStatusTimestampsAlwaysStampsModified(t *testing.T) {
	for _, status := range []models.ReportStatus{
		models.StatusDraft, models.StatusReview, models.StatusRejected, models.StatusArchived,
	} {
		report := &models.DailyFinancialReport{}
		now := time.Now().UTC()
		ApplyStatusTimestamps(report, status, now)
		require.NotNil(t, report.LastModified, string(status))
		assert.Nil(t, report.DateApproved, string(status))
		assert.Nil(t, report.DateReceived, string(status))
	}
}

func TestReapprovalOverwritesTimestamp(t *testing.T) {
	report := &models.LiquidationReport{}
	first := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	second := first.Add(48 * time.Hour)

	ApplyStatusTimestamps(report, models.StatusApproved, first)
	ApplyStatusTimestamps(report, models.StatusApproved, second)

	require.NotNil(t, report.DateApproved)
	assert.Equal(t, second, *report.DateApproved)
}

func TestShouldCascade(t *testing.T) {
	assert.False(t, ShouldCascade(models.StatusDraft))
	for _, status := range []models.ReportStatus{
		models.StatusReview, models.StatusApproved, models.StatusRejected,
		models.StatusReceived, models.StatusArchived,
	} {
		assert.True(t, ShouldCascade(status), string(status))
	}
}
