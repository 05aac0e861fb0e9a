package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/propdesk-cashbook/internal/domain/outbox"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/propdesk-cashbook/internal/platform/messaging/producers"
	"github.com/segmentio/kafka-go"
)

const (
	HeaderEventType = "event-type"
	HeaderEventID   = "event-id"
)

// EventPublisher publishes outbox messages to the event topic
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// EventPublisherImpl implements EventPublisher
type EventPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewEventPublisher creates a new publisher
func NewEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) EventPublisher {
	return &EventPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent writes the stored payload keyed by business date, then marks the message processed
func (p *EventPublisherImpl) PublishEvent(ctx context.Context, message *outbox.Message) error {
	logger := p.logger.With("outbox_id", message.ID, "event_id", message.EventID.String())

	headers := []kafka.Header{
		{Key: HeaderEventType, Value: []byte(message.EventType)},
		{Key: HeaderEventID, Value: []byte(message.EventID.String())},
	}

	if err := p.producer.Publish(ctx, message.Key(), message.Payload, headers...); err != nil {
		return fmt.Errorf("failed to publish outbox message %d: %w", message.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED", "error", err)
		return fmt.Errorf("event %s published, but failed to mark outbox %d as PROCESSED: %w", message.EventID, message.ID, err)
	}

	logger.Debug("Outbox message published and marked as PROCESSED", "event_type", message.EventType, "date", message.Key())
	return nil
}
