package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/canteen-central/canteen-api/internal/dto"
	"github.com/canteen-central/canteen-api/internal/models"
	"github.com/canteen-central/canteen-api/internal/service"
	appErrors "github.com/canteen-central/canteen-api/pkg/errors"
	"github.com/canteen-central/canteen-api/pkg/response"
)

// ReportHandler exposes the monthly report aggregate and its status
// lifecycle endpoints.
type ReportHandler struct {
	reports *service.ReportService
	status  *service.ReportStatusService
}

// NewReportHandler constructs the handler.
func NewReportHandler(reports *service.ReportService, status *service.ReportStatusService) *ReportHandler {
	return &ReportHandler{reports: reports, status: status}
}

// GetMonthly godoc
// @Summary Get monthly report with children
// @Tags Reports
// @Produce json
// @Param schoolId path int true "School ID"
// @Param year path int true "Year"
// @Param month path int true "Month"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/monthly/{schoolId}/{year}/{month} [get]
func (h *ReportHandler) GetMonthly(c *gin.Context) {
	schoolID, year, month, err := periodParams(c)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid school, year, or month"))
		return
	}
	report, err := h.reports.GetMonthlyReport(c.Request.Context(), claimsFromContext(c), schoolID, year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// CreateMonthly godoc
// @Summary Create a monthly report in DRAFT
// @Tags Reports
// @Accept json
// @Produce json
// @Param schoolId path int true "School ID"
// @Param year path int true "Year"
// @Param month path int true "Month"
// @Param payload body dto.CreateMonthlyReportRequest true "Report metadata"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reports/monthly/{schoolId}/{year}/{month} [post]
func (h *ReportHandler) CreateMonthly(c *gin.Context) {
	schoolID, year, month, err := periodParams(c)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid school, year, or month"))
		return
	}
	var req dto.CreateMonthlyReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
		return
	}
	report, err := h.reports.CreateMonthlyReport(c.Request.Context(), claimsFromContext(c), schoolID, year, month, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, report)
}

// ChangeStatus returns a handler that transitions the addressed report kind.
// Liquidation routes carry a :category path segment.
func (h *ReportHandler) ChangeStatus(kind models.ReportKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, ok := h.reportRef(c, kind)
		if !ok {
			return
		}
		var req dto.StatusChangeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
			return
		}
		report, err := h.status.ChangeStatus(c.Request.Context(), claimsFromContext(c), ref, req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, report, nil)
	}
}

// StatusOptions godoc
// @Summary Valid status transitions for the caller
// @Tags Reports
// @Produce json
// @Param schoolId path int true "School ID"
// @Param year path int true "Year"
// @Param month path int true "Month"
// @Success 200 {object} response.Envelope
// @Router /reports/monthly/{schoolId}/{year}/{month}/status-options [get]
func (h *ReportHandler) StatusOptions(c *gin.Context) {
	ref, ok := h.reportRef(c, models.KindMonthly)
	if !ok {
		return
	}
	options, err := h.status.StatusOptions(c.Request.Context(), claimsFromContext(c), ref)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}

// Export godoc
// @Summary Export monthly report entries
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param schoolId path int true "School ID"
// @Param year path int true "Year"
// @Param month path int true "Month"
// @Param format query string true "csv or pdf"
// @Success 200 {file} file
// @Router /reports/monthly/{schoolId}/{year}/{month}/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	schoolID, year, month, err := periodParams(c)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid school, year, or month"))
		return
	}
	format := c.DefaultQuery("format", "csv")
	result, err := h.reports.Export(c.Request.Context(), claimsFromContext(c), schoolID, year, month, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// FinancialSummary godoc
// @Summary Aggregated finances for one school-month
// @Tags Reports
// @Produce json
// @Param schoolId path int true "School ID"
// @Param year path int true "Year"
// @Param month path int true "Month"
// @Success 200 {object} response.Envelope
// @Router /reports/monthly/{schoolId}/{year}/{month}/summary [get]
func (h *ReportHandler) FinancialSummary(c *gin.Context) {
	schoolID, year, month, err := periodParams(c)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid school, year, or month"))
		return
	}
	summary, err := h.reports.FinancialSummary(c.Request.Context(), claimsFromContext(c), schoolID, year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

func (h *ReportHandler) reportRef(c *gin.Context, kind models.ReportKind) (dto.ReportRef, bool) {
	schoolID, year, month, err := periodParams(c)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid school, year, or month"))
		return dto.ReportRef{}, false
	}
	ref := dto.ReportRef{Kind: kind, SchoolID: schoolID, Year: year, Month: month}
	if kind == models.KindLiquidation {
		ref.Category = models.LiquidationCategory(c.Param("category"))
		if !ref.Category.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown liquidation category"))
			return dto.ReportRef{}, false
		}
	}
	return ref, true
}
