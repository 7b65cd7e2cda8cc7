package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/canteen-central/canteen-api/internal/dto"
	"github.com/canteen-central/canteen-api/internal/models"
	"github.com/canteen-central/canteen-api/internal/workflow"
	appErrors "github.com/canteen-central/canteen-api/pkg/errors"
	"github.com/canteen-central/canteen-api/pkg/export"
)

type monthlyReportStore interface {
	GetMonthlyReport(ctx context.Context, schoolID int64, year, month int) (*models.MonthlyReport, error)
	CreateMonthlyReport(ctx context.Context, report *models.MonthlyReport) error
	ListDailyEntries(ctx context.Context, schoolID int64, year, month int) ([]models.DailyFinancialEntry, error)
	FinancialSummary(ctx context.Context, schoolID int64, year, month int) (*models.FinancialSummary, error)
}

type reportAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ReportService serves the monthly aggregate: retrieval under the role view
// policy, creation, and tabular exports.
type ReportService struct {
	repo        monthlyReportStore
	audit       reportAuditLogger
	transitions *workflow.Transitions
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(repo monthlyReportStore, audit reportAuditLogger, transitions *workflow.Transitions, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:        repo,
		audit:       audit,
		transitions: transitions,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// GetMonthlyReport returns the aggregate when the actor's role may see its
// current status.
func (s *ReportService) GetMonthlyReport(ctx context.Context, actor *models.JWTClaims, schoolID int64, year, month int) (*models.MonthlyReport, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.SchoolID != nil && *actor.SchoolID != schoolID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report belongs to another school")
	}

	report, err := s.repo.GetMonthlyReport(ctx, schoolID, year, month)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "monthly report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load monthly report")
	}

	status := models.StatusDraft
	if report.ReportStatus != nil {
		status = *report.ReportStatus
	}
	if !s.transitions.CanViewReport(actor.Role, status) {
		return nil, appErrors.Clone(appErrors.ErrForbidden,
			fmt.Sprintf("As a %s, you cannot view reports with '%s' status.", workflow.RoleDescription(actor.Role), status))
	}
	return report, nil
}

// CreateMonthlyReport creates the aggregate root in DRAFT for one period.
// Canteen managers only; duplicate periods conflict.
func (s *ReportService) CreateMonthlyReport(ctx context.Context, actor *models.JWTClaims, schoolID int64, year, month int, req dto.CreateMonthlyReportRequest) (*models.MonthlyReport, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !s.transitions.CanCreateReport(actor.Role) {
		return nil, appErrors.Clone(appErrors.ErrForbidden,
			fmt.Sprintf("As a %s, you cannot create reports.", workflow.RoleDescription(actor.Role)))
	}
	if actor.SchoolID == nil || *actor.SchoolID != schoolID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report belongs to another school")
	}
	if month < 1 || month > 12 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid month: %d", month))
	}

	if _, err := s.repo.GetMonthlyReport(ctx, schoolID, year, month); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("monthly report for %d-%02d already exists", year, month))
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing report")
	}

	name := req.Name
	if name == "" {
		name = models.PeriodDate(year, month).Format("January 2006")
	}
	report := &models.MonthlyReport{
		ID:       models.PeriodDate(year, month),
		SchoolID: schoolID,
		Name:     name,
	}
	report.PreparedBy = actor.UserID
	report.NotedBy = req.NotedBy

	if err := s.repo.CreateMonthlyReport(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create monthly report")
	}

	if s.audit != nil {
		userID := actor.UserID
		resourceID := fmt.Sprintf("%d/%04d-%02d", schoolID, year, month)
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &userID,
			Action:     models.AuditActionReportCreate,
			Resource:   "monthly_report",
			ResourceID: &resourceID,
		}); err != nil {
			s.logger.Warn("report creation audit failed", zap.Error(err))
		}
	}

	return report, nil
}

// FinancialSummary returns the aggregated figures for one school-month.
func (s *ReportService) FinancialSummary(ctx context.Context, actor *models.JWTClaims, schoolID int64, year, month int) (*models.FinancialSummary, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.SchoolID != nil && *actor.SchoolID != schoolID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report belongs to another school")
	}
	summary, err := s.repo.FinancialSummary(ctx, schoolID, year, month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute financial summary")
	}
	return summary, nil
}

// ExportResult is a rendered export document.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Export renders the month's daily entries as CSV or PDF.
func (s *ReportService) Export(ctx context.Context, actor *models.JWTClaims, schoolID int64, year, month int, format string) (*ExportResult, error) {
	report, err := s.GetMonthlyReport(ctx, actor, schoolID, year, month)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.ListDailyEntries(ctx, schoolID, year, month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report entries")
	}

	dataset := export.Dataset{
		Headers: []string{"Day", "Sales", "Purchases", "Net"},
	}
	var totalSales, totalPurchases decimal.Decimal
	for _, entry := range entries {
		day := time.Date(year, time.Month(month), entry.Day, 0, 0, 0, 0, time.UTC)
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Day":       day.Format("2006-01-02"),
			"Sales":     entry.Sales.StringFixed(2),
			"Purchases": entry.Purchases.StringFixed(2),
			"Net":       entry.Sales.Sub(entry.Purchases).StringFixed(2),
		})
		totalSales = totalSales.Add(entry.Sales)
		totalPurchases = totalPurchases.Add(entry.Purchases)
	}
	if len(dataset.Rows) > 0 {
		dataset.Totals = map[string]string{
			"Day":       "Total",
			"Sales":     totalSales.StringFixed(2),
			"Purchases": totalPurchases.StringFixed(2),
			"Net":       totalSales.Sub(totalPurchases).StringFixed(2),
		}
	}

	base := fmt.Sprintf("monthly-report-%d-%04d-%02d", schoolID, year, month)
	switch format {
	case "csv":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{FileName: base + ".csv", ContentType: "text/csv", Data: data}, nil
	case "pdf":
		title := fmt.Sprintf("%s %s", report.Name, workflow.PeriodContext(year, month))
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{FileName: base + ".pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format: %s", format))
	}
}
