package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/propdesk-cashbook/internal/reconciler/service"
)

// DailyBalanceHandler handles HTTP requests for daily balance rows
type DailyBalanceHandler struct {
	reconciliationService service.ReconciliationService
	logger                *slog.Logger
}

// NewDailyBalanceHandler creates a new daily balance handler
func NewDailyBalanceHandler(logger *slog.Logger, reconciliationService service.ReconciliationService) *DailyBalanceHandler {
	return &DailyBalanceHandler{
		reconciliationService: reconciliationService,
		logger:                logger,
	}
}

// Get returns the summary of one date, computing the row when none is stored
func (h *DailyBalanceHandler) Get(c *gin.Context) {
	date, err := shared.ParseDate("date", c.Param("date"))
	if err != nil {
		respondError(c, h.logger, "get daily summary", err)
		return
	}

	summary, err := h.reconciliationService.GetDailySummary(c.Request.Context(), date)
	if err != nil {
		respondError(c, h.logger, "get daily summary", err)
		return
	}

	RespondOK(c, summary)
}

// SetOpening records a manual opening balance
func (h *DailyBalanceHandler) SetOpening(c *gin.Context) {
	date, err := shared.ParseDate("date", c.Param("date"))
	if err != nil {
		respondError(c, h.logger, "set opening balance", err)
		return
	}

	var req SetOpeningBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestLogger(c, h.logger).Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	row, err := h.reconciliationService.SetOpeningBalance(c.Request.Context(), date, *req.Amount)
	if err != nil {
		respondError(c, h.logger, "set opening balance", err)
		return
	}

	RespondOK(c, row)
}

// SetAccounts records the bank and mobile banking balances of a date
func (h *DailyBalanceHandler) SetAccounts(c *gin.Context) {
	date, err := shared.ParseDate("date", c.Param("date"))
	if err != nil {
		respondError(c, h.logger, "set account balances", err)
		return
	}

	var req SetAccountBalancesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestLogger(c, h.logger).Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	row, err := h.reconciliationService.SetAccountBalances(c.Request.Context(), date, *req.BankBalance, *req.MobileBankingBalance)
	if err != nil {
		respondError(c, h.logger, "set account balances", err)
		return
	}

	RespondOK(c, row)
}
