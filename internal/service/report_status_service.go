package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/canteen-central/canteen-api/internal/dto"
	"github.com/canteen-central/canteen-api/internal/models"
	"github.com/canteen-central/canteen-api/internal/workflow"
	appErrors "github.com/canteen-central/canteen-api/pkg/errors"
)

type reportStore interface {
	GetMonthlyReport(ctx context.Context, schoolID int64, year, month int) (*models.MonthlyReport, error)
	GetDailyFinancialReport(ctx context.Context, schoolID int64, year, month int) (*models.DailyFinancialReport, error)
	GetPayrollReport(ctx context.Context, schoolID int64, year, month int) (*models.PayrollReport, error)
	GetLiquidationReport(ctx context.Context, schoolID int64, year, month int, category models.LiquidationCategory) (*models.LiquidationReport, error)
	GetDisbursementVoucher(ctx context.Context, schoolID int64, year, month int) (*models.DisbursementVoucher, error)
	SaveStatusChange(ctx context.Context, reports []models.StatusBearing, audit *models.AuditLog) error
}

type statusNotifier interface {
	Dispatch(ctx context.Context, ownerID string, msg workflow.Message) error
}

type transitionObserver interface {
	ObserveStatusTransition(kind models.ReportKind, old, new models.ReportStatus)
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ReportStatusService drives the report approval lifecycle: role-gated
// transitions, timestamp stamping, the monthly cascade, and the resulting
// notifications.
type ReportStatusService struct {
	repo        reportStore
	transitions *workflow.Transitions
	notifier    statusNotifier
	observer    transitionObserver
	cache       cacheInvalidator
	logger      *zap.Logger
	now         func() time.Time
}

// ReportStatusServiceOption configures the service.
type ReportStatusServiceOption func(*ReportStatusService)

// WithStatusNotifier attaches the notification dispatcher.
func WithStatusNotifier(n statusNotifier) ReportStatusServiceOption {
	return func(s *ReportStatusService) { s.notifier = n }
}

// WithTransitionObserver attaches a metrics observer.
func WithTransitionObserver(o transitionObserver) ReportStatusServiceOption {
	return func(s *ReportStatusService) { s.observer = o }
}

// WithInsightCacheInvalidator attaches the cache holding AI insight
// responses; the school's entries are dropped after every status change.
func WithInsightCacheInvalidator(c cacheInvalidator) ReportStatusServiceOption {
	return func(s *ReportStatusService) { s.cache = c }
}

// NewReportStatusService constructs the service with defaults.
func NewReportStatusService(repo reportStore, transitions *workflow.Transitions, logger *zap.Logger, opts ...ReportStatusServiceOption) *ReportStatusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReportStatusService{
		repo:        repo,
		transitions: transitions,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type cascadedChild struct {
	report    models.StatusBearing
	oldStatus models.ReportStatus
}

// ChangeStatus applies one validated transition to the addressed report.
// Monthly transitions in the cascade set also move every existing child
// report; the parent, children, and audit record commit atomically, after
// which notifications go out best-effort.
func (s *ReportStatusService) ChangeStatus(ctx context.Context, actor *models.JWTClaims, ref dto.ReportRef, req dto.StatusChangeRequest) (models.StatusBearing, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !req.NewStatus.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report status: %s", req.NewStatus))
	}
	if err := s.checkSchoolScope(actor, ref.SchoolID); err != nil {
		return nil, err
	}

	report, err := s.loadReport(ctx, ref)
	if err != nil {
		return nil, err
	}

	oldStatus := currentOrDraft(report)
	if err := s.validateTransition(actor.Role, oldStatus, req.NewStatus); err != nil {
		return nil, err
	}

	now := s.now()
	report.SetStatus(req.NewStatus)
	workflow.ApplyStatusTimestamps(report, req.NewStatus, now)

	updated := []models.StatusBearing{report}
	var cascaded []cascadedChild
	if monthly, ok := report.(*models.MonthlyReport); ok && workflow.ShouldCascade(req.NewStatus) {
		for _, child := range monthly.Children() {
			if child.CurrentStatus() == nil {
				continue
			}
			childOld := *child.CurrentStatus()
			child.SetStatus(req.NewStatus)
			workflow.ApplyStatusTimestamps(child, req.NewStatus, now)
			updated = append(updated, child)
			cascaded = append(cascaded, cascadedChild{report: child, oldStatus: childOld})
		}
	}

	audit, err := s.buildAudit(actor, ref, oldStatus, req.NewStatus, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build audit record")
	}

	if err := s.repo.SaveStatusChange(ctx, updated, audit); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist status change")
	}

	if s.observer != nil {
		s.observer.ObserveStatusTransition(ref.Kind, oldStatus, req.NewStatus)
	}

	s.dispatchNotifications(ctx, ref, report, oldStatus, req.NewStatus, req.Comments, cascaded)

	// Cached insights embed the report status; drop them for this school.
	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, insightsCachePattern(ref.SchoolID)); err != nil {
			s.logger.Warn("insight cache invalidation failed",
				zap.Int64("school_id", ref.SchoolID), zap.Error(err))
		}
	}

	s.logger.Info("report status changed",
		zap.String("kind", string(ref.Kind)),
		zap.Int64("school_id", ref.SchoolID),
		zap.Int("year", ref.Year),
		zap.Int("month", ref.Month),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(req.NewStatus)),
		zap.Int("cascaded", len(cascaded)),
	)

	return report, nil
}

// StatusOptions reports the transitions available to the actor for the
// addressed report.
func (s *ReportStatusService) StatusOptions(ctx context.Context, actor *models.JWTClaims, ref dto.ReportRef) (*dto.StatusOptionsResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.checkSchoolScope(actor, ref.SchoolID); err != nil {
		return nil, err
	}

	report, err := s.loadReport(ctx, ref)
	if err != nil {
		return nil, err
	}

	current := currentOrDraft(report)
	valid := s.transitions.ValidTransitions(actor.Role, current)
	transitions := make([]string, 0, len(valid))
	for _, status := range valid {
		transitions = append(transitions, string(status))
	}

	return &dto.StatusOptionsResponse{
		CurrentStatus:    string(current),
		ValidTransitions: transitions,
		UserRole:         workflow.RoleDescription(actor.Role),
	}, nil
}

func (s *ReportStatusService) checkSchoolScope(actor *models.JWTClaims, schoolID int64) error {
	if actor.SchoolID != nil && *actor.SchoolID != schoolID {
		return appErrors.Clone(appErrors.ErrForbidden, "report belongs to another school")
	}
	return nil
}

func (s *ReportStatusService) loadReport(ctx context.Context, ref dto.ReportRef) (models.StatusBearing, error) {
	var (
		report models.StatusBearing
		err    error
	)
	switch ref.Kind {
	case models.KindMonthly:
		report, err = s.repo.GetMonthlyReport(ctx, ref.SchoolID, ref.Year, ref.Month)
	case models.KindDailyFinancial:
		report, err = s.repo.GetDailyFinancialReport(ctx, ref.SchoolID, ref.Year, ref.Month)
	case models.KindPayroll:
		report, err = s.repo.GetPayrollReport(ctx, ref.SchoolID, ref.Year, ref.Month)
	case models.KindLiquidation:
		if !ref.Category.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown liquidation category: %s", ref.Category))
		}
		report, err = s.repo.GetLiquidationReport(ctx, ref.SchoolID, ref.Year, ref.Month, ref.Category)
	case models.KindDisbursementVoucher:
		report, err = s.repo.GetDisbursementVoucher(ctx, ref.SchoolID, ref.Year, ref.Month)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report kind: %s", ref.Kind))
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", workflow.ReportDescription(ref.Kind, ref.Category)))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	return report, nil
}

func (s *ReportStatusService) validateTransition(role models.UserRole, current, requested models.ReportStatus) error {
	if s.transitions.IsTransitionValid(role, current, requested) {
		return nil
	}
	roleDescription := workflow.RoleDescription(role)
	valid := s.transitions.ValidTransitions(role, current)
	if len(valid) == 0 {
		return appErrors.Clone(appErrors.ErrForbidden,
			fmt.Sprintf("As a %s, you cannot change reports with '%s' status.", roleDescription, current))
	}
	statuses := make([]string, 0, len(valid))
	for _, status := range valid {
		statuses = append(statuses, string(status))
	}
	return appErrors.Clone(appErrors.ErrForbidden,
		fmt.Sprintf("As a %s, you can only change reports from '%s' to: %s.", roleDescription, current, strings.Join(statuses, ", ")))
}

func (s *ReportStatusService) buildAudit(actor *models.JWTClaims, ref dto.ReportRef, old, new models.ReportStatus, now time.Time) (*models.AuditLog, error) {
	oldValues, err := json.Marshal(map[string]string{"report_status": string(old)})
	if err != nil {
		return nil, err
	}
	newValues, err := json.Marshal(map[string]string{"report_status": string(new)})
	if err != nil {
		return nil, err
	}
	resourceID := fmt.Sprintf("%d/%04d-%02d", ref.SchoolID, ref.Year, ref.Month)
	if ref.Category != "" {
		resourceID += "/" + string(ref.Category)
	}
	userID := actor.UserID
	return &models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionStatusChange,
		Resource:   strings.ReplaceAll(string(ref.Kind), " ", "_") + "_report",
		ResourceID: &resourceID,
		OldValues:  oldValues,
		NewValues:  newValues,
		CreatedAt:  now,
	}, nil
}

// dispatchNotifications delivers the primary transition notification plus one
// per cascaded child. Delivery failures are logged and swallowed: the status
// change is already committed.
func (s *ReportStatusService) dispatchNotifications(ctx context.Context, ref dto.ReportRef, report models.StatusBearing, old, new models.ReportStatus, comments *string, cascaded []cascadedChild) {
	if s.notifier == nil {
		return
	}

	period := workflow.PeriodContext(ref.Year, ref.Month)
	s.deliver(ctx, report.Kind(), ref.Category, period, old, new, comments, report)

	for _, child := range cascaded {
		comment := workflow.CascadeComment(new)
		category := models.LiquidationCategory("")
		if liq, ok := child.report.(*models.LiquidationReport); ok {
			category = liq.Category
		}
		s.deliver(ctx, child.report.Kind(), category, period, child.oldStatus, new, &comment, child.report)
	}
}

func (s *ReportStatusService) deliver(ctx context.Context, kind models.ReportKind, category models.LiquidationCategory, period string, old, new models.ReportStatus, comments *string, report models.StatusBearing) {
	description := workflow.ReportDescription(kind, category)
	for _, recipient := range workflow.Recipients(old, new, kind, report.PreparedByID(), report.NotedByID()) {
		msg := workflow.BuildMessage(recipient.RoleLabel, description, period, old, new, comments)
		if err := s.notifier.Dispatch(ctx, recipient.UserID, msg); err != nil {
			s.logger.Warn("status notification delivery failed",
				zap.String("recipient", recipient.UserID),
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
		}
	}
}

func currentOrDraft(report models.StatusBearing) models.ReportStatus {
	if status := report.CurrentStatus(); status != nil {
		return *status
	}
	return models.StatusDraft
}
