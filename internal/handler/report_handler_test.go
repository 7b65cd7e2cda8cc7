package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/canteen-central/canteen-api/internal/dto"
	"github.com/canteen-central/canteen-api/internal/middleware"
	"github.com/canteen-central/canteen-api/internal/models"
	"github.com/canteen-central/canteen-api/internal/service"
	"github.com/canteen-central/canteen-api/internal/workflow"
)

type reportStoreMock struct {
	monthly *models.MonthlyReport
	entries []models.DailyFinancialEntry
	summary *models.FinancialSummary

	saved   []models.StatusBearing
	created *models.MonthlyReport
}

func (m *reportStoreMock) GetMonthlyReport(ctx context.Context, schoolID int64, year, month int) (*models.MonthlyReport, error) {
	if m.monthly == nil {
		return nil, sql.ErrNoRows
	}
	return m.monthly, nil
}

func (m *reportStoreMock) GetDailyFinancialReport(ctx context.Context, schoolID int64, year, month int) (*models.DailyFinancialReport, error) {
	if m.monthly == nil || m.monthly.DailyFinancial == nil {
		return nil, sql.ErrNoRows
	}
	return m.monthly.DailyFinancial, nil
}

func (m *reportStoreMock) GetPayrollReport(ctx context.Context, schoolID int64, year, month int) (*models.PayrollReport, error) {
	return nil, sql.ErrNoRows
}

func (m *reportStoreMock) GetLiquidationReport(ctx context.Context, schoolID int64, year, month int, category models.LiquidationCategory) (*models.LiquidationReport, error) {
	return nil, sql.ErrNoRows
}

func (m *reportStoreMock) GetDisbursementVoucher(ctx context.Context, schoolID int64, year, month int) (*models.DisbursementVoucher, error) {
	return nil, sql.ErrNoRows
}

func (m *reportStoreMock) SaveStatusChange(ctx context.Context, reports []models.StatusBearing, audit *models.AuditLog) error {
	m.saved = append(m.saved, reports...)
	return nil
}

func (m *reportStoreMock) CreateMonthlyReport(ctx context.Context, report *models.MonthlyReport) error {
	m.created = report
	return nil
}

func (m *reportStoreMock) ListDailyEntries(ctx context.Context, schoolID int64, year, month int) ([]models.DailyFinancialEntry, error) {
	return m.entries, nil
}

func (m *reportStoreMock) FinancialSummary(ctx context.Context, schoolID int64, year, month int) (*models.FinancialSummary, error) {
	return m.summary, nil
}

func (m *reportStoreMock) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return nil
}

func newReportHandler(store *reportStoreMock) *ReportHandler {
	transitions := workflow.NewTransitions(workflow.TransitionsConfig{})
	reports := service.NewReportService(store, store, transitions, nil)
	status := service.NewReportStatusService(store, transitions, nil)
	return NewReportHandler(reports, status)
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func periodCtxParams() gin.Params {
	return gin.Params{
		{Key: "schoolId", Value: "7"},
		{Key: "year", Value: "2025"},
		{Key: "month", Value: "1"},
	}
}

func draftMonthly() *models.MonthlyReport {
	report := &models.MonthlyReport{
		ID:       models.PeriodDate(2025, 1),
		SchoolID: 7,
		Name:     "January 2025",
	}
	report.SetStatus(models.StatusDraft)
	report.PreparedBy = "manager-1"
	return report
}

func managerContext(c *gin.Context) {
	schoolID := int64(7)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID:   "manager-1",
		Role:     models.RoleCanteenManager,
		SchoolID: &schoolID,
	})
}

func TestReportHandlerGetMonthly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &reportStoreMock{monthly: draftMonthly()}
	h := newReportHandler(store)

	c, w := newGinContext(http.MethodGet, "/reports/monthly/7/2025/1", nil)
	c.Params = periodCtxParams()
	managerContext(c)

	h.GetMonthly(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"report_status":"DRAFT"`)
}

func TestReportHandlerGetMonthlyBadPeriod(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newReportHandler(&reportStoreMock{})

	c, w := newGinContext(http.MethodGet, "/reports/monthly/x/2025/1", nil)
	c.Params = gin.Params{
		{Key: "schoolId", Value: "x"},
		{Key: "year", Value: "2025"},
		{Key: "month", Value: "1"},
	}
	managerContext(c)

	h.GetMonthly(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandlerChangeStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &reportStoreMock{monthly: draftMonthly()}
	h := newReportHandler(store)

	payload, _ := json.Marshal(dto.StatusChangeRequest{NewStatus: models.StatusReview})
	c, w := newGinContext(http.MethodPatch, "/reports/monthly/7/2025/1/status", payload)
	c.Params = periodCtxParams()
	managerContext(c)

	h.ChangeStatus(models.KindMonthly)(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, store.saved, 1)
	require.Contains(t, w.Body.String(), `"report_status":"REVIEW"`)
}

func TestReportHandlerChangeStatusForbiddenRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &reportStoreMock{monthly: draftMonthly()}
	h := newReportHandler(store)

	payload, _ := json.Marshal(dto.StatusChangeRequest{NewStatus: models.StatusApproved})
	c, w := newGinContext(http.MethodPatch, "/reports/monthly/7/2025/1/status", payload)
	c.Params = periodCtxParams()
	schoolID := int64(7)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID:   "principal-1",
		Role:     models.RolePrincipal,
		SchoolID: &schoolID,
	})

	h.ChangeStatus(models.KindMonthly)(c)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Empty(t, store.saved)
}

func TestReportHandlerChangeStatusUnknownCategory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newReportHandler(&reportStoreMock{})

	payload, _ := json.Marshal(dto.StatusChangeRequest{NewStatus: models.StatusReview})
	c, w := newGinContext(http.MethodPatch, "/reports/liquidation/7/2025/1/petty_cash/status", payload)
	c.Params = append(periodCtxParams(), gin.Param{Key: "category", Value: "petty_cash"})
	managerContext(c)

	h.ChangeStatus(models.KindLiquidation)(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandlerCreateMonthly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &reportStoreMock{}
	h := newReportHandler(store)

	payload, _ := json.Marshal(dto.CreateMonthlyReportRequest{Name: "January 2025"})
	c, w := newGinContext(http.MethodPost, "/reports/monthly/7/2025/1", payload)
	c.Params = periodCtxParams()
	managerContext(c)

	h.CreateMonthly(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, store.created)
	require.Equal(t, int64(7), store.created.SchoolID)
}

func TestReportHandlerStatusOptions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &reportStoreMock{monthly: draftMonthly()}
	h := newReportHandler(store)

	c, w := newGinContext(http.MethodGet, "/reports/monthly/7/2025/1/status-options", nil)
	c.Params = periodCtxParams()
	managerContext(c)

	h.StatusOptions(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"current_status":"DRAFT"`)
	require.Contains(t, w.Body.String(), `"REVIEW"`)
}

func TestReportHandlerExportCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &reportStoreMock{
		monthly: draftMonthly(),
		entries: []models.DailyFinancialEntry{
			{Day: 2, Sales: decimal.NewFromFloat(150.50), Purchases: decimal.NewFromFloat(80.25)},
		},
	}
	h := newReportHandler(store)

	c, w := newGinContext(http.MethodGet, "/reports/monthly/7/2025/1/export?format=csv", nil)
	c.Params = periodCtxParams()
	managerContext(c)

	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "monthly-report-7-2025-01.csv")
	require.True(t, strings.Contains(w.Body.String(), "Day,Sales,Purchases,Net"))
}
