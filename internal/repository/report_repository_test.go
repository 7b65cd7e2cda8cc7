package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canteen-central/canteen-api/internal/models"
)

func newReportMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func reportRows(status models.ReportStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"parent", "school_id", "report_status", "prepared_by", "noted_by", "date_approved", "date_received", "last_modified"}).
		AddRow(models.PeriodDate(2025, 1), int64(7), status, "manager-1", nil, nil, nil, now)
}

func TestReportRepositoryGetMonthlyReportLoadsChildren(t *testing.T) {
	db, mock, cleanup := newReportMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	period := models.PeriodDate(2025, 1)
	now := time.Now()

	mock.ExpectQuery("SELECT .* FROM monthly_reports WHERE id = \\$1 AND school_id = \\$2").
		WithArgs(period, int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "school_id", "name", "report_status", "prepared_by", "noted_by", "date_approved", "date_received", "last_modified"}).
			AddRow(period, int64(7), "January 2025", models.StatusDraft, "manager-1", nil, nil, nil, now))
	mock.ExpectQuery("SELECT .* FROM daily_financial_reports WHERE parent = \\$1 AND school_id = \\$2").
		WithArgs(period, int64(7)).
		WillReturnRows(reportRows(models.StatusDraft))
	mock.ExpectQuery("SELECT .* FROM payroll_reports WHERE parent = \\$1 AND school_id = \\$2").
		WithArgs(period, int64(7)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT .*, category FROM liquidation_reports WHERE parent = \\$1 AND school_id = \\$2 ORDER BY category").
		WithArgs(period, int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"parent", "school_id", "report_status", "prepared_by", "noted_by", "date_approved", "date_received", "last_modified", "category"}).
			AddRow(period, int64(7), models.StatusDraft, "manager-1", nil, nil, nil, now, models.CategoryOperatingExpenses))
	mock.ExpectQuery("SELECT .* FROM disbursement_vouchers WHERE parent = \\$1 AND school_id = \\$2").
		WithArgs(period, int64(7)).
		WillReturnError(sql.ErrNoRows)

	report, err := repo.GetMonthlyReport(context.Background(), 7, 2025, 1)
	require.NoError(t, err)
	assert.Equal(t, "January 2025", report.Name)
	require.NotNil(t, report.DailyFinancial)
	assert.Nil(t, report.Payroll)
	require.Len(t, report.Liquidations, 1)
	assert.Equal(t, models.CategoryOperatingExpenses, report.Liquidations[0].Category)
	assert.Nil(t, report.DisbursementVoucher)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryGetMonthlyReportNotFound(t *testing.T) {
	db, mock, cleanup := newReportMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectQuery("SELECT .* FROM monthly_reports").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetMonthlyReport(context.Background(), 7, 2025, 1)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositorySaveStatusChangeCommitsAllRows(t *testing.T) {
	db, mock, cleanup := newReportMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	period := models.PeriodDate(2025, 1)
	review := models.StatusReview
	monthly := &models.MonthlyReport{ID: period, SchoolID: 7}
	monthly.SetStatus(review)
	daily := &models.DailyFinancialReport{Parent: period, SchoolID: 7}
	daily.SetStatus(review)
	liquidation := &models.LiquidationReport{Parent: period, SchoolID: 7, Category: models.CategoryHEFund}
	liquidation.SetStatus(review)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE monthly_reports SET").
		WithArgs(review, nil, nil, nil, period, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE daily_financial_reports SET").
		WithArgs(review, nil, nil, nil, period, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE liquidation_reports SET").
		WithArgs(review, nil, nil, nil, period, int64(7), models.CategoryHEFund).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), models.AuditActionStatusChange, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	userID := "manager-1"
	audit := &models.AuditLog{UserID: &userID, Action: models.AuditActionStatusChange, Resource: "monthly_report"}
	err := repo.SaveStatusChange(context.Background(), []models.StatusBearing{monthly, daily, liquidation}, audit)
	require.NoError(t, err)
	assert.NotEmpty(t, audit.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositorySaveStatusChangeRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newReportMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	period := models.PeriodDate(2025, 1)
	approved := models.StatusApproved
	monthly := &models.MonthlyReport{ID: period, SchoolID: 7}
	monthly.SetStatus(approved)
	payroll := &models.PayrollReport{Parent: period, SchoolID: 7}
	payroll.SetStatus(approved)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE monthly_reports SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE payroll_reports SET").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.SaveStatusChange(context.Background(), []models.StatusBearing{monthly, payroll}, nil)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryCreateMonthlyReport(t *testing.T) {
	db, mock, cleanup := newReportMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectExec("INSERT INTO monthly_reports").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	report := &models.MonthlyReport{ID: models.PeriodDate(2025, 2), SchoolID: 7, Name: "February 2025"}
	report.PreparedBy = "manager-1"
	err := repo.CreateMonthlyReport(context.Background(), report)
	require.NoError(t, err)
	require.NotNil(t, report.ReportStatus)
	assert.Equal(t, models.StatusDraft, *report.ReportStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryFinancialSummary(t *testing.T) {
	db, mock, cleanup := newReportMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	period := models.PeriodDate(2025, 1)
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(sales\\), 0\\)").
		WithArgs(period, int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"sales", "purchases", "entries"}).AddRow("1500.50", "800.25", 20))
	mock.ExpectQuery("SELECT report_status FROM monthly_reports").
		WithArgs(period, int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"report_status"}).AddRow(models.StatusApproved))
	mock.ExpectQuery("SELECT category, COALESCE\\(SUM\\(amount\\), 0\\)").
		WithArgs(period, int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"category", "total"}).
			AddRow(models.CategoryOperatingExpenses, "300.00").
			AddRow(models.CategorySupplementaryFeedingFund, "120.00"))

	summary, err := repo.FinancialSummary(context.Background(), 7, 2025, 1)
	require.NoError(t, err)
	assert.Equal(t, "1500.5", summary.Sales.String())
	assert.Equal(t, 20, summary.EntriesCount)
	assert.Equal(t, string(models.StatusApproved), summary.ReportStatus)
	assert.Equal(t, "420", summary.LiquidationTotal.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
