// Package service applies cash book events to the report read model.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/propdesk-cashbook/internal/domain/outbox"
	"github.com/propdesk-cashbook/internal/domain/report"
	"github.com/propdesk-cashbook/internal/domain/shared"
)

// ProjectionService applies one event to the read model
type ProjectionService interface {
	Apply(ctx context.Context, event *outbox.Event) error
}

type ProjectionServiceImpl struct {
	readModel report.ReadModel
	logger    *slog.Logger
}

func NewProjectionService(readModel report.ReadModel, logger *slog.Logger) ProjectionService {
	return &ProjectionServiceImpl{
		readModel: readModel,
		logger:    logger,
	}
}

// Apply upserts the event's entry, if any, then its daily balance row.
// Replays are harmless: entries are keyed by voucher and older rows are ignored.
func (s *ProjectionServiceImpl) Apply(ctx context.Context, event *outbox.Event) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	if event.DailyBalance == nil {
		return shared.ValidationError{Field: "daily_balance", Message: "event carries no daily balance"}
	}

	if event.Transaction != nil {
		if err := s.readModel.UpsertTransaction(ctx, event.Transaction); err != nil {
			logger.Error("Failed to project transaction", "voucher_number", event.Transaction.VoucherNumber, "error", err)
			return fmt.Errorf("failed to project transaction %s: %w", event.Transaction.VoucherNumber, err)
		}
	}

	if err := s.readModel.UpsertDailyBalance(ctx, event.DailyBalance); err != nil {
		logger.Error("Failed to project daily balance", "date", event.Key(), "error", err)
		return fmt.Errorf("failed to project daily balance %s: %w", event.Key(), err)
	}

	logger.Info("Projected cash book event",
		"event_id", event.ID.String(),
		"event_type", event.Type,
		"date", event.Key(),
		"version", event.DailyBalance.Version,
	)
	return nil
}
