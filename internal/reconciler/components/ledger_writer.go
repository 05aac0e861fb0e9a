package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/propdesk-cashbook/internal/domain/ledger"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/propdesk-cashbook/internal/platform/amountwords"
	"github.com/propdesk-cashbook/internal/reconciler/service"
)

// VoucherIssuer draws candidate voucher numbers
type VoucherIssuer interface {
	Next(t shared.TransactionType) string
}

type LedgerWriterImpl struct {
	transactionRepo ledger.Repository
	vouchers        VoucherIssuer
	maxAttempts     int
	logger          *slog.Logger
}

func NewLedgerWriter(transactionRepo ledger.Repository, vouchers VoucherIssuer, maxAttempts int, logger *slog.Logger) service.LedgerWriter {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &LedgerWriterImpl{
		transactionRepo: transactionRepo,
		vouchers:        vouchers,
		maxAttempts:     maxAttempts,
		logger:          logger,
	}
}

// Persist stores txn, drawing a new voucher number whenever the previous one is taken
func (w *LedgerWriterImpl) Persist(ctx context.Context, tx pgx.Tx, txn *ledger.Transaction) error {
	logger := w.logger
	if id := shared.CorrelationIDFrom(ctx); id != "" {
		logger = w.logger.With("correlation_id", id)
	}

	repo := w.transactionRepo.WithTx(tx)
	txn.AmountInWords = amountwords.Bangla(txn.Amount)

	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		txn.VoucherNumber = w.vouchers.Next(txn.Type)

		err := repo.Create(ctx, txn)
		if err == nil {
			logger.Debug("Transaction stored", "voucher_number", txn.VoucherNumber, "attempt", attempt)
			return nil
		}
		if !errors.Is(err, ledger.ErrDuplicateVoucher{}) {
			return fmt.Errorf("failed to create transaction: %w", err)
		}

		logger.Warn("Voucher number already taken, drawing another",
			"voucher_number", txn.VoucherNumber,
			"attempt", attempt,
		)
	}

	return shared.ConcurrencyError{
		Key:    "voucher_number",
		Reason: fmt.Sprintf("no free voucher number after %d attempts", w.maxAttempts),
	}
}
