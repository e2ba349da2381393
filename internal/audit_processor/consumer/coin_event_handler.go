package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/audit_processor/service"
	"github.com/gym-coin-ledger/internal/domain/shared"
	"github.com/gym-coin-ledger/internal/platform/messaging/producers"
)

var errMissingTransactionID = errors.New("coin event has no transaction id")

// CoinEventHandler projects messages from the coin events topic
type CoinEventHandler struct {
	projectionService service.ProjectionService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

func NewCoinEventHandler(logger *slog.Logger, projectionService service.ProjectionService, producer producers.DeadLetterPublisher) *CoinEventHandler {
	return &CoinEventHandler{
		projectionService: projectionService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage decodes and projects one message. Undecodable messages are
// parked on the dead letter topic and acknowledged.
func (h *CoinEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	event, err := decodeEvent(value)
	if err != nil {
		h.logger.Error("Failed to decode coin event", "error", err, "message_key", string(key))
		return h.deadLetter(ctx, key, value, err)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	if err := h.projectionService.Project(ctx, event); err != nil {
		logger.Error("Failed to project coin event", "transaction_id", event.TransactionID.String(), "error", err)
		return fmt.Errorf("projecting coin event %s failed: %w", event.TransactionID, err)
	}
	return nil
}

func decodeEvent(value []byte) (*shared.CoinEvent, error) {
	var event shared.CoinEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return nil, err
	}
	if event.TransactionID == uuid.Nil {
		return nil, errMissingTransactionID
	}
	return &event, nil
}

func (h *CoinEventHandler) deadLetter(ctx context.Context, key, value []byte, cause error) error {
	if h.producer == nil {
		return fmt.Errorf("failed to decode coin event: %w", cause)
	}

	letter := producers.DeadLetter{Key: key, Payload: value, Stage: "decode", Reason: cause.Error()}
	if err := h.producer.Park(ctx, letter); err != nil {
		h.logger.Error("Failed to publish message to DLQ", "dlq_error", err, "original_error", cause, "message_key", string(key))
		return fmt.Errorf("failed to decode coin event: %w", cause)
	}

	h.logger.Info("Parked undecodable message on DLQ", "message_key", string(key))
	return nil
}
