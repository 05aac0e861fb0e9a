package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/propdesk-cashbook/internal/platform/spreadsheet"
	"github.com/propdesk-cashbook/internal/reconciler/service"
)

// ReportHandler handles HTTP requests for range, monthly and yearly reports
type ReportHandler struct {
	reconciliationService service.ReconciliationService
	logger                *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(logger *slog.Logger, reconciliationService service.ReconciliationService) *ReportHandler {
	return &ReportHandler{
		reconciliationService: reconciliationService,
		logger:                logger,
	}
}

// Range returns the summary of an inclusive date range
func (h *ReportHandler) Range(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, "start and end query parameters are required")
		return
	}

	start, end, err := q.parse()
	if err != nil {
		respondError(c, h.logger, "get range summary", err)
		return
	}

	summary, err := h.reconciliationService.GetRangeSummary(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, h.logger, "get range summary", err)
		return
	}

	RespondOK(c, summary)
}

// Monthly returns the summary of one calendar month
func (h *ReportHandler) Monthly(c *gin.Context) {
	year, err := intQuery(c, "year")
	if err != nil {
		respondError(c, h.logger, "get monthly summary", err)
		return
	}
	month, err := intQuery(c, "month")
	if err != nil {
		respondError(c, h.logger, "get monthly summary", err)
		return
	}

	summary, err := h.reconciliationService.GetMonthlySummary(c.Request.Context(), year, time.Month(month))
	if err != nil {
		respondError(c, h.logger, "get monthly summary", err)
		return
	}

	RespondOK(c, summary)
}

// Yearly returns the summary of one calendar year
func (h *ReportHandler) Yearly(c *gin.Context) {
	year, err := intQuery(c, "year")
	if err != nil {
		respondError(c, h.logger, "get yearly summary", err)
		return
	}

	summary, err := h.reconciliationService.GetYearlySummary(c.Request.Context(), year)
	if err != nil {
		respondError(c, h.logger, "get yearly summary", err)
		return
	}

	RespondOK(c, summary)
}

// Export streams the range summary as an xlsx attachment
func (h *ReportHandler) Export(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, "start and end query parameters are required")
		return
	}

	start, end, err := q.parse()
	if err != nil {
		respondError(c, h.logger, "export report", err)
		return
	}

	summary, err := h.reconciliationService.GetRangeSummary(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, h.logger, "export report", err)
		return
	}

	var buf bytes.Buffer
	if err := spreadsheet.WriteRangeSummary(&buf, summary); err != nil {
		respondError(c, h.logger, "export report", err)
		return
	}

	fileName := fmt.Sprintf("cashbook_%s_%s.xlsx", shared.FormatDate(start), shared.FormatDate(end))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, spreadsheet.ContentType, buf.Bytes())
}

func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, shared.ValidationError{Field: name, Message: "is required"}
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, shared.ValidationError{Field: name, Message: "must be a whole number"}
	}
	return v, nil
}
