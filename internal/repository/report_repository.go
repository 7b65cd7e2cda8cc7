package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/canteen-central/canteen-api/internal/models"
)

const monthlyColumns = `id, school_id, name, report_status, prepared_by, noted_by, date_approved, date_received, last_modified`
const childColumns = `parent, school_id, report_status, prepared_by, noted_by, date_approved, date_received, last_modified`

// ReportRepository persists the report aggregates and their lifecycle state.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// GetMonthlyReport loads the aggregate root for (school, year, month) with
// all currently existing child reports attached. Children are sparse: absent
// rows load as nil, they are never created implicitly.
func (r *ReportRepository) GetMonthlyReport(ctx context.Context, schoolID int64, year, month int) (*models.MonthlyReport, error) {
	period := models.PeriodDate(year, month)

	query := fmt.Sprintf(`SELECT %s FROM monthly_reports WHERE id = $1 AND school_id = $2`, monthlyColumns)
	var report models.MonthlyReport
	if err := r.db.GetContext(ctx, &report, query, period, schoolID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get monthly report: %w", err)
	}

	if err := r.loadChildren(ctx, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) loadChildren(ctx context.Context, report *models.MonthlyReport) error {
	daily, err := r.GetDailyFinancialReport(ctx, report.SchoolID, report.ID.Year(), int(report.ID.Month()))
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	report.DailyFinancial = daily

	payroll, err := r.GetPayrollReport(ctx, report.SchoolID, report.ID.Year(), int(report.ID.Month()))
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	report.Payroll = payroll

	query := fmt.Sprintf(`SELECT %s, category FROM liquidation_reports WHERE parent = $1 AND school_id = $2 ORDER BY category`, childColumns)
	var liquidations []*models.LiquidationReport
	if err := r.db.SelectContext(ctx, &liquidations, query, report.ID, report.SchoolID); err != nil {
		return fmt.Errorf("list liquidation reports: %w", err)
	}
	report.Liquidations = liquidations

	voucher, err := r.GetDisbursementVoucher(ctx, report.SchoolID, report.ID.Year(), int(report.ID.Month()))
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	report.DisbursementVoucher = voucher

	return nil
}

// GetDailyFinancialReport loads one daily sales and purchases report.
func (r *ReportRepository) GetDailyFinancialReport(ctx context.Context, schoolID int64, year, month int) (*models.DailyFinancialReport, error) {
	query := fmt.Sprintf(`SELECT %s FROM daily_financial_reports WHERE parent = $1 AND school_id = $2`, childColumns)
	var report models.DailyFinancialReport
	if err := r.db.GetContext(ctx, &report, query, models.PeriodDate(year, month), schoolID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get daily financial report: %w", err)
	}
	return &report, nil
}

// GetPayrollReport loads one payroll report.
func (r *ReportRepository) GetPayrollReport(ctx context.Context, schoolID int64, year, month int) (*models.PayrollReport, error) {
	query := fmt.Sprintf(`SELECT %s FROM payroll_reports WHERE parent = $1 AND school_id = $2`, childColumns)
	var report models.PayrollReport
	if err := r.db.GetContext(ctx, &report, query, models.PeriodDate(year, month), schoolID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get payroll report: %w", err)
	}
	return &report, nil
}

// GetLiquidationReport loads one fund-specific liquidation report.
func (r *ReportRepository) GetLiquidationReport(ctx context.Context, schoolID int64, year, month int, category models.LiquidationCategory) (*models.LiquidationReport, error) {
	query := fmt.Sprintf(`SELECT %s, category FROM liquidation_reports WHERE parent = $1 AND school_id = $2 AND category = $3`, childColumns)
	var report models.LiquidationReport
	if err := r.db.GetContext(ctx, &report, query, models.PeriodDate(year, month), schoolID, category); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get liquidation report: %w", err)
	}
	return &report, nil
}

// GetDisbursementVoucher loads one disbursement voucher.
func (r *ReportRepository) GetDisbursementVoucher(ctx context.Context, schoolID int64, year, month int) (*models.DisbursementVoucher, error) {
	query := fmt.Sprintf(`SELECT %s FROM disbursement_vouchers WHERE parent = $1 AND school_id = $2`, childColumns)
	var voucher models.DisbursementVoucher
	if err := r.db.GetContext(ctx, &voucher, query, models.PeriodDate(year, month), schoolID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get disbursement voucher: %w", err)
	}
	return &voucher, nil
}

// CreateMonthlyReport inserts a new aggregate root in DRAFT state.
func (r *ReportRepository) CreateMonthlyReport(ctx context.Context, report *models.MonthlyReport) error {
	if report.ReportStatus == nil {
		report.SetStatus(models.StatusDraft)
	}
	now := time.Now().UTC()
	report.SetLastModified(now)

	const query = `INSERT INTO monthly_reports (id, school_id, name, report_status, prepared_by, noted_by, last_modified)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		report.ID, report.SchoolID, report.Name, report.ReportStatus,
		report.PreparedBy, report.NotedBy, report.LastModified,
	); err != nil {
		return fmt.Errorf("create monthly report: %w", err)
	}
	return nil
}

// SaveStatusChange persists a validated transition: the target report, every
// cascaded child, and the audit record commit as a single transaction.
// Any failure rolls back all of it.
func (r *ReportRepository) SaveStatusChange(ctx context.Context, reports []models.StatusBearing, audit *models.AuditLog) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin status transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, report := range reports {
		if err := updateReportRow(ctx, tx, report); err != nil {
			return err
		}
	}

	if audit != nil {
		if audit.ID == "" {
			audit.ID = uuid.NewString()
		}
		if audit.CreatedAt.IsZero() {
			audit.CreatedAt = time.Now().UTC()
		}
		const query = `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, old_values, new_values, ip_address, user_agent, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
		if _, err := tx.ExecContext(ctx, query,
			audit.ID, audit.UserID, audit.Action, audit.Resource, audit.ResourceID,
			audit.OldValues, audit.NewValues, audit.IPAddress, audit.UserAgent, audit.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert status audit log: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit status transaction: %w", err)
	}
	return nil
}

// updateReportRow writes the lifecycle columns of one report variant. The
// type switch keeps the variant set closed: adding a report type without a
// persistence arm fails here instead of silently skipping rows.
func updateReportRow(ctx context.Context, tx *sqlx.Tx, report models.StatusBearing) error {
	switch rep := report.(type) {
	case *models.MonthlyReport:
		const query = `UPDATE monthly_reports SET report_status = $1, date_approved = $2, date_received = $3, last_modified = $4
WHERE id = $5 AND school_id = $6`
		if _, err := tx.ExecContext(ctx, query,
			rep.ReportStatus, rep.DateApproved, rep.DateReceived, rep.LastModified,
			rep.ID, rep.SchoolID,
		); err != nil {
			return fmt.Errorf("update monthly report status: %w", err)
		}
	case *models.DailyFinancialReport:
		const query = `UPDATE daily_financial_reports SET report_status = $1, date_approved = $2, date_received = $3, last_modified = $4
WHERE parent = $5 AND school_id = $6`
		if _, err := tx.ExecContext(ctx, query,
			rep.ReportStatus, rep.DateApproved, rep.DateReceived, rep.LastModified,
			rep.Parent, rep.SchoolID,
		); err != nil {
			return fmt.Errorf("update daily financial report status: %w", err)
		}
	case *models.PayrollReport:
		const query = `UPDATE payroll_reports SET report_status = $1, date_approved = $2, date_received = $3, last_modified = $4
WHERE parent = $5 AND school_id = $6`
		if _, err := tx.ExecContext(ctx, query,
			rep.ReportStatus, rep.DateApproved, rep.DateReceived, rep.LastModified,
			rep.Parent, rep.SchoolID,
		); err != nil {
			return fmt.Errorf("update payroll report status: %w", err)
		}
	case *models.LiquidationReport:
		const query = `UPDATE liquidation_reports SET report_status = $1, date_approved = $2, date_received = $3, last_modified = $4
WHERE parent = $5 AND school_id = $6 AND category = $7`
		if _, err := tx.ExecContext(ctx, query,
			rep.ReportStatus, rep.DateApproved, rep.DateReceived, rep.LastModified,
			rep.Parent, rep.SchoolID, rep.Category,
		); err != nil {
			return fmt.Errorf("update liquidation report status: %w", err)
		}
	case *models.DisbursementVoucher:
		const query = `UPDATE disbursement_vouchers SET report_status = $1, date_approved = $2, date_received = $3, last_modified = $4
WHERE parent = $5 AND school_id = $6`
		if _, err := tx.ExecContext(ctx, query,
			rep.ReportStatus, rep.DateApproved, rep.DateReceived, rep.LastModified,
			rep.Parent, rep.SchoolID,
		); err != nil {
			return fmt.Errorf("update disbursement voucher status: %w", err)
		}
	default:
		return fmt.Errorf("unsupported report type %T", report)
	}
	return nil
}

// ListDailyEntries loads the daily sales and purchases lines for one month.
func (r *ReportRepository) ListDailyEntries(ctx context.Context, schoolID int64, year, month int) ([]models.DailyFinancialEntry, error) {
	const query = `SELECT parent, school_id, day, sales, purchases FROM daily_financial_report_entries
WHERE parent = $1 AND school_id = $2 ORDER BY day`
	var entries []models.DailyFinancialEntry
	if err := r.db.SelectContext(ctx, &entries, query, models.PeriodDate(year, month), schoolID); err != nil {
		return nil, fmt.Errorf("list daily entries: %w", err)
	}
	return entries, nil
}

// FinancialSummary aggregates sales, purchases and liquidation expenses for
// one school-month.
func (r *ReportRepository) FinancialSummary(ctx context.Context, schoolID int64, year, month int) (*models.FinancialSummary, error) {
	period := models.PeriodDate(year, month)
	summary := &models.FinancialSummary{
		LiquidationByCategory: make(map[models.LiquidationCategory]decimal.Decimal),
	}

	const totalsQuery = `SELECT COALESCE(SUM(sales), 0) AS sales, COALESCE(SUM(purchases), 0) AS purchases, COUNT(*) AS entries
FROM daily_financial_report_entries WHERE parent = $1 AND school_id = $2`
	var totals struct {
		Sales     decimal.Decimal `db:"sales"`
		Purchases decimal.Decimal `db:"purchases"`
		Entries   int             `db:"entries"`
	}
	if err := r.db.GetContext(ctx, &totals, totalsQuery, period, schoolID); err != nil {
		return nil, fmt.Errorf("sum daily entries: %w", err)
	}
	summary.Sales = totals.Sales
	summary.Purchases = totals.Purchases
	summary.EntriesCount = totals.Entries

	const statusQuery = `SELECT report_status FROM monthly_reports WHERE id = $1 AND school_id = $2`
	var status *models.ReportStatus
	if err := r.db.GetContext(ctx, &status, statusQuery, period, schoolID); err != nil {
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("get monthly report status: %w", err)
		}
		summary.ReportStatus = "not_found"
	} else if status != nil {
		summary.ReportStatus = string(*status)
	}

	const liquidationQuery = `SELECT category, COALESCE(SUM(amount), 0) AS total FROM liquidation_report_entries
WHERE parent = $1 AND school_id = $2 GROUP BY category`
	var rows []struct {
		Category models.LiquidationCategory `db:"category"`
		Total    decimal.Decimal            `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, liquidationQuery, period, schoolID); err != nil {
		return nil, fmt.Errorf("sum liquidation entries: %w", err)
	}
	for _, row := range rows {
		summary.LiquidationByCategory[row.Category] = row.Total
		summary.LiquidationTotal = summary.LiquidationTotal.Add(row.Total)
	}

	return summary, nil
}
