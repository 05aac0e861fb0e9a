package components

import (
	"fmt"
	"log/slog"

	"github.com/propdesk-cashbook/internal/config"
	"github.com/propdesk-cashbook/internal/domain/balance"
	"github.com/propdesk-cashbook/internal/domain/ledger"
	"github.com/propdesk-cashbook/internal/domain/outbox"
	"github.com/propdesk-cashbook/internal/domain/voucher"
	"github.com/propdesk-cashbook/internal/platform/datelock"
	"github.com/propdesk-cashbook/internal/reconciler/service"
)

// CreateReconciliationService wires the reconciliation engine and its collaborators.
func CreateReconciliationService(
	txRunner service.TxRunner,
	transactionRepo ledger.Repository,
	balanceRepo balance.Repository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
	cfg *config.Config,
) (service.ReconciliationService, error) {
	loc, err := cfg.Cashbook.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve business time zone: %w", err)
	}

	engineLogger := logger.With("component", "reconciler")

	validator := NewTransactionValidator(engineLogger)
	ledgerWriter := NewLedgerWriter(transactionRepo, voucher.NewGenerator(loc), cfg.Cashbook.VoucherMaxAttempts, engineLogger)
	balanceManager := NewBalanceManager(balanceRepo, transactionRepo, engineLogger)
	outboxManager := NewOutboxManager(outboxRepo, engineLogger)

	svc := service.NewReconciliationService(
		txRunner,
		datelock.NewLocker(cfg.Cashbook.LockTimeout),
		validator,
		ledgerWriter,
		balanceManager,
		outboxManager,
		transactionRepo,
		balanceRepo,
		loc,
		engineLogger,
	)

	logger.Info("Created reconciliation service",
		"timezone", loc.String(),
		"lock_timeout", cfg.Cashbook.LockTimeout.String(),
		"voucher_max_attempts", cfg.Cashbook.VoucherMaxAttempts,
	)
	return svc, nil
}
