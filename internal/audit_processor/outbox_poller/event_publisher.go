package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gym-coin-ledger/internal/domain/outbox"
	"github.com/gym-coin-ledger/internal/domain/shared"
	"github.com/gym-coin-ledger/internal/platform/messaging/producers"
)

// EventPublisher moves one outbox message onto the coin events topic
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// ErrUndecodablePayload marks a message that can never be published
type ErrUndecodablePayload struct {
	OutboxID int64
	Cause    error
}

func (e ErrUndecodablePayload) Error() string {
	return fmt.Sprintf("outbox message %d has an undecodable payload: %v", e.OutboxID, e.Cause)
}

func (e ErrUndecodablePayload) Unwrap() error {
	return e.Cause
}

// KafkaEventPublisher publishes outbox payloads keyed by account so events
// of one member or venue stay ordered
type KafkaEventPublisher struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

func NewKafkaEventPublisher(outboxRepo outbox.Repository, producer producers.MessagePublisher, logger *slog.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent publishes the message and marks it PROCESSED. A payload that
// does not decode is marked FAILED_TO_PUBLISH straight away.
func (p *KafkaEventPublisher) PublishEvent(ctx context.Context, message *outbox.Message) error {
	event, err := message.Event()
	if err != nil {
		p.logger.Error("Failed to decode coin event from outbox payload",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to mark outbox message FAILED_TO_PUBLISH", "outbox_id", message.ID, "update_error", updateErr)
		}
		return ErrUndecodablePayload{OutboxID: message.ID, Cause: err}
	}

	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	if err := p.producer.Publish(ctx, event.PartitionKey(), message.Payload); err != nil {
		logger.Error("Failed to publish coin event",
			"outbox_id", message.ID, "transaction_id", event.TransactionID, "kind", event.Kind, "error", err)
		return fmt.Errorf("failed to publish coin event %s: %w", event.TransactionID, err)
	}

	// The event is out; a failed status update means it may be published
	// again, which the projector tolerates.
	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Published coin event but failed to mark outbox message PROCESSED",
			"outbox_id", message.ID, "transaction_id", event.TransactionID, "error", err)
		return fmt.Errorf("failed to mark outbox message %d as PROCESSED: %w", message.ID, err)
	}

	logger.Debug("Coin event published", "outbox_id", message.ID, "transaction_id", event.TransactionID, "kind", event.Kind)
	return nil
}
