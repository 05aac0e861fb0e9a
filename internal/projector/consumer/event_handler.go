// Package consumer turns Kafka messages from the event topic into projections.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/propdesk-cashbook/internal/domain/outbox"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/propdesk-cashbook/internal/platform/messaging/producers"
	"github.com/propdesk-cashbook/internal/projector/service"
)

// CashbookEventHandler handles cash book events consumed from Kafka
type CashbookEventHandler struct {
	projectionService service.ProjectionService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewCashbookEventHandler creates a new handler
func NewCashbookEventHandler(
	logger *slog.Logger,
	projectionService service.ProjectionService,
	producer producers.DeadLetterPublisher,
) *CashbookEventHandler {
	return &CashbookEventHandler{
		projectionService: projectionService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage decodes and applies one event. Messages that can never be applied
// go to the DLQ and are acknowledged; other failures are returned so the offset stays uncommitted.
func (h *CashbookEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event outbox.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return h.deadLetter(ctx, key, value, "Failed to unmarshal cash book event from Kafka message", err)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Debug("Received cash book event",
		"event_id", event.ID.String(),
		"event_type", event.Type,
		"message_key", string(key),
	)

	if err := h.projectionService.Apply(ctx, &event); err != nil {
		if shared.KindOf(err) == shared.KindValidation {
			return h.deadLetter(ctx, key, value, "Cash book event cannot be projected", err)
		}
		logger.Error("Failed to project cash book event", "event_id", event.ID.String(), "error", err)
		return fmt.Errorf("projecting event %s failed: %w", event.ID.String(), err)
	}

	return nil
}

func (h *CashbookEventHandler) deadLetter(ctx context.Context, key, value []byte, reason string, cause error) error {
	h.logger.Error(reason, "error", cause, "message_key", string(key))

	if h.producer != nil {
		dlqReason := fmt.Sprintf("%s: %s", reason, cause.Error())
		if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
			h.logger.Error("Failed to publish message to DLQ",
				"dlq_error", dlqErr,
				"original_error", cause,
				"message_key", string(key),
			)
		} else {
			h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
			return nil
		}
	}
	return fmt.Errorf("%s: %w", reason, cause)
}
