package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gym-coin-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// CoinEventProducer publishes committed coin events. Writes are synchronous
// with all-replica acks so the outbox only marks a message processed once
// Kafka owns it.
type CoinEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

func NewCoinEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*CoinEventProducer, error) {
	if cfg.CoinEventsTopic == "" {
		return nil, fmt.Errorf("kafka coin events topic is not configured")
	}

	if err := ensureTopic(cfg, cfg.CoinEventsTopic, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure coin events topic %s exists: %w", cfg.CoinEventsTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.CoinEventsTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return NewCoinEventProducerWithWriter(logger, writer, cfg.CoinEventsTopic), nil
}

// NewCoinEventProducerWithWriter builds a producer over an existing writer
func NewCoinEventProducerWithWriter(logger *slog.Logger, writer KafkaWriter, topic string) *CoinEventProducer {
	return &CoinEventProducer{
		logger: logger,
		writer: writer,
		topic:  topic,
	}
}

// Publish writes value as JSON; messages with the same key land on the same partition
func (p *CoinEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	var payload []byte
	switch v := value.(type) {
	case []byte:
		payload = v
	case json.RawMessage:
		payload = v
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal coin event: %w", err)
		}
		payload = encoded
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish coin event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish coin event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published coin event", "topic", p.topic, "key", key)
	return nil
}

func (p *CoinEventProducer) Close() error {
	p.logger.Info("Closing coin event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close coin event writer for topic %s: %w", p.topic, err)
	}
	return nil
}
