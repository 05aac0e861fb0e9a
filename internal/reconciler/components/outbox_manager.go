package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/propdesk-cashbook/internal/domain/balance"
	"github.com/propdesk-cashbook/internal/domain/ledger"
	"github.com/propdesk-cashbook/internal/domain/outbox"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/propdesk-cashbook/internal/reconciler/service"
)

type OutboxManagerImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewOutboxManager(outboxRepo outbox.Repository, logger *slog.Logger) service.OutboxManager {
	return &OutboxManagerImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// CreateOutboxEntry stores the event describing the committed row
func (m *OutboxManagerImpl) CreateOutboxEntry(ctx context.Context, tx pgx.Tx, eventType shared.EventType, txn *ledger.Transaction, row *balance.DailyBalance) error {
	correlationID := shared.CorrelationIDFrom(ctx)
	logger := m.logger
	if correlationID != "" {
		logger = m.logger.With("correlation_id", correlationID)
	}

	event := outbox.NewEvent(eventType, correlationID, txn, row)
	msg, err := outbox.NewMessage(event)
	if err != nil {
		logger.Error("Failed to create outbox message", "event_type", eventType, "error", err)
		return fmt.Errorf("failed to create outbox message: %w", err)
	}

	if err := m.outboxRepo.WithTx(tx).Create(ctx, msg); err != nil {
		logger.Error("Failed to store outbox message", "event_type", eventType, "date", event.Key(), "error", err)
		return fmt.Errorf("failed to store outbox message: %w", err)
	}

	logger.Debug("Outbox message created successfully",
		"event_id", event.ID.String(),
		"event_type", eventType,
		"date", event.Key(),
	)
	return nil
}
