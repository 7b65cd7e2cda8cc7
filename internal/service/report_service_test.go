package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canteen-central/canteen-api/internal/dto"
	"github.com/canteen-central/canteen-api/internal/models"
	"github.com/canteen-central/canteen-api/internal/workflow"
	appErrors "github.com/canteen-central/canteen-api/pkg/errors"
)

type stubMonthlyStore struct {
	monthly *models.MonthlyReport
	entries []models.DailyFinancialEntry
	summary *models.FinancialSummary

	created *models.MonthlyReport
}

func (s *stubMonthlyStore) GetMonthlyReport(ctx context.Context, schoolID int64, year, month int) (*models.MonthlyReport, error) {
	if s.monthly == nil {
		return nil, sql.ErrNoRows
	}
	return s.monthly, nil
}

func (s *stubMonthlyStore) CreateMonthlyReport(ctx context.Context, report *models.MonthlyReport) error {
	s.created = report
	return nil
}

func (s *stubMonthlyStore) ListDailyEntries(ctx context.Context, schoolID int64, year, month int) ([]models.DailyFinancialEntry, error) {
	return s.entries, nil
}

func (s *stubMonthlyStore) FinancialSummary(ctx context.Context, schoolID int64, year, month int) (*models.FinancialSummary, error) {
	return s.summary, nil
}

type stubAuditLogger struct {
	logs []*models.AuditLog
}

func (s *stubAuditLogger) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

func TestGetMonthlyReportViewPolicy(t *testing.T) {
	monthly := monthlyFixture(models.StatusDraft)
	store := &stubMonthlyStore{monthly: monthly}
	svc := NewReportService(store, nil, workflow.NewTransitions(workflow.TransitionsConfig{}), nil)

	// the preparing manager sees drafts
	report, err := svc.GetMonthlyReport(context.Background(), managerClaims(7), 7, 2025, 1)
	require.NoError(t, err)
	assert.Equal(t, "January 2025", report.Name)

	// the principal does not see drafts
	_, err = svc.GetMonthlyReport(context.Background(), principalClaims(7), 7, 2025, 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// district roles only see approved and later
	admin := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdministrator}
	_, err = svc.GetMonthlyReport(context.Background(), admin, 7, 2025, 1)
	require.Error(t, err)

	monthly.SetStatus(models.StatusApproved)
	_, err = svc.GetMonthlyReport(context.Background(), admin, 7, 2025, 1)
	require.NoError(t, err)
}

func TestCreateMonthlyReportManagerOnly(t *testing.T) {
	store := &stubMonthlyStore{}
	audit := &stubAuditLogger{}
	svc := NewReportService(store, audit, workflow.NewTransitions(workflow.TransitionsConfig{}), nil)

	_, err := svc.CreateMonthlyReport(context.Background(), principalClaims(7), 7, 2025, 3, dto.CreateMonthlyReportRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	report, err := svc.CreateMonthlyReport(context.Background(), managerClaims(7), 7, 2025, 3, dto.CreateMonthlyReportRequest{})
	require.NoError(t, err)
	assert.Equal(t, "March 2025", report.Name)
	assert.Equal(t, "manager-1", report.PreparedBy)
	require.NotNil(t, store.created)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionReportCreate, audit.logs[0].Action)
}

func TestCreateMonthlyReportDuplicateConflicts(t *testing.T) {
	store := &stubMonthlyStore{monthly: monthlyFixture(models.StatusDraft)}
	svc := NewReportService(store, nil, workflow.NewTransitions(workflow.TransitionsConfig{}), nil)

	_, err := svc.CreateMonthlyReport(context.Background(), managerClaims(7), 7, 2025, 1, dto.CreateMonthlyReportRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestExportCSV(t *testing.T) {
	monthly := monthlyFixture(models.StatusApproved)
	store := &stubMonthlyStore{
		monthly: monthly,
		entries: []models.DailyFinancialEntry{
			{Day: 2, Sales: decimal.RequireFromString("150.50"), Purchases: decimal.RequireFromString("80.25")},
			{Day: 3, Sales: decimal.RequireFromString("200.00"), Purchases: decimal.RequireFromString("90.00")},
		},
	}
	svc := NewReportService(store, nil, workflow.NewTransitions(workflow.TransitionsConfig{}), nil)

	result, err := svc.Export(context.Background(), managerClaims(7), 7, 2025, 1, "csv")
	require.NoError(t, err)
	assert.Equal(t, "monthly-report-7-2025-01.csv", result.FileName)
	assert.Equal(t, "text/csv", result.ContentType)

	lines := strings.Split(strings.TrimSpace(string(result.Data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Day,Sales,Purchases,Net", lines[0])
	assert.Equal(t, "2025-01-02,150.50,80.25,70.25", lines[1])
	assert.Equal(t, "Total,350.50,170.25,180.25", lines[3])
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	store := &stubMonthlyStore{monthly: monthlyFixture(models.StatusApproved)}
	svc := NewReportService(store, nil, workflow.NewTransitions(workflow.TransitionsConfig{}), nil)

	_, err := svc.Export(context.Background(), managerClaims(7), 7, 2025, 1, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportPDFProducesDocument(t *testing.T) {
	store := &stubMonthlyStore{
		monthly: monthlyFixture(models.StatusApproved),
		entries: []models.DailyFinancialEntry{
			{Day: 5, Sales: decimal.RequireFromString("99.99"), Purchases: decimal.RequireFromString("10.00")},
		},
	}
	svc := NewReportService(store, nil, workflow.NewTransitions(workflow.TransitionsConfig{}), nil)

	result, err := svc.Export(context.Background(), managerClaims(7), 7, 2025, 1, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Data), "%PDF"))
}
