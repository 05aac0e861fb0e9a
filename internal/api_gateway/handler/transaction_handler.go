package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/propdesk-cashbook/internal/domain/voucher"
	"github.com/propdesk-cashbook/internal/reconciler/service"
)

// TransactionHandler handles HTTP requests for cash book entries
type TransactionHandler struct {
	reconciliationService service.ReconciliationService
	logger                *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, reconciliationService service.ReconciliationService) *TransactionHandler {
	return &TransactionHandler{
		reconciliationService: reconciliationService,
		logger:                logger,
	}
}

// Create records an entry and returns it with the reconciled daily balance
func (h *TransactionHandler) Create(c *gin.Context) {
	var req RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestLogger(c, h.logger).Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondError(c, h.logger, "record transaction", err)
		return
	}

	result, err := h.reconciliationService.RecordTransaction(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, "record transaction", err)
		return
	}

	RespondCreated(c, result)
}

// GetByVoucher looks an entry up by its voucher number
func (h *TransactionHandler) GetByVoucher(c *gin.Context) {
	code := c.Param("voucher")
	if _, err := voucher.Parse(code); err != nil {
		respondError(c, h.logger, "get transaction", err)
		return
	}

	txn, err := h.reconciliationService.FindByVoucher(c.Request.Context(), code)
	if err != nil {
		respondError(c, h.logger, "get transaction", err)
		return
	}

	RespondOK(c, txn)
}
