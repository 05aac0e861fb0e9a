// Package outbox_poller moves committed cash book events from the outbox table to Kafka.
package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/propdesk-cashbook/internal/config"
	"github.com/propdesk-cashbook/internal/domain/outbox"
	"github.com/propdesk-cashbook/internal/domain/shared"
)

// Poller processes pending outbox messages
type Poller struct {
	outboxRepo       outbox.Repository
	publisher        EventPublisher
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
	retention        time.Duration
}

func NewPoller(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	publisher EventPublisher,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		outboxRepo:       outboxRepo,
		publisher:        publisher,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
		retention:        cfg.Retention,
	}
}

// Start begins polling until context is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting Outbox Poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox Poller stopping due to context cancellation.")
			return
		case <-ticker.C:
			if err := p.processPendingMessages(ctx); err != nil {
				p.logger.Error("Error during batch processing of pending outbox messages", "error", err)
			}
		}
	}
}

// processPendingMessages publishes one batch in creation order. Once a message
// of a date fails, later messages of that date wait for the next tick.
func (p *Poller) processPendingMessages(ctx context.Context) error {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending outbox messages: %w", err)
	}

	if len(messages) == 0 {
		p.logger.Debug("No pending outbox messages found.")
		return nil
	}

	p.logger.Debug("Fetched pending outbox messages", "count", len(messages))

	blocked := make(map[string]bool)
	for _, msg := range messages {
		logger := p.logger.With("outbox_id", msg.ID, "date", msg.Key())
		if event, err := msg.GetEvent(); err == nil && event.CorrelationID != "" {
			logger = logger.With("correlation_id", event.CorrelationID)
		}

		if blocked[msg.Key()] {
			logger.Debug("Holding back outbox message behind a failed one of the same date")
			continue
		}

		if err := p.publisher.PublishEvent(ctx, msg); err != nil {
			blocked[msg.Key()] = true
			logger.Error("Failed to publish outbox message",
				"current_attempts", msg.Attempts, "error", err,
			)

			if errInc := p.outboxRepo.IncrementAttempts(ctx, msg.ID); errInc != nil {
				logger.Error("Failed to increment attempts for outbox message", "error", errInc)
				continue
			}

			if msg.Attempts+1 >= p.maxRetryAttempts {
				logger.Warn("Max retry attempts reached for outbox message, marking as FAILED_TO_PUBLISH",
					"attempts_made", msg.Attempts+1,
				)
				if errUpdate := p.outboxRepo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish); errUpdate != nil {
					logger.Error("Failed to update outbox status to FAILED_TO_PUBLISH after max retries", "error", errUpdate)
				}
			}
			continue
		}
		logger.Info("Published outbox message", "event_type", msg.EventType)
	}
	return nil
}

// PurgeProcessed deletes published messages older than the retention window
func (p *Poller) PurgeProcessed(ctx context.Context) error {
	cutoff := time.Now().Add(-p.retention)
	deleted, err := p.outboxRepo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge processed outbox messages: %w", err)
	}

	p.logger.Info("Purged processed outbox messages", "deleted", deleted, "cutoff", cutoff.Format(time.RFC3339))
	return nil
}
