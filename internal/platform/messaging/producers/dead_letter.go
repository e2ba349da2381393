package producers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/gym-coin-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

const (
	headerStage  = "dead-letter-stage"
	headerReason = "dead-letter-reason"
)

var ErrDeadLetterDisabled = errors.New("dead letter topic is not configured")

// ParkedMessage is the JSON body written to the dead letter topic. Payload
// holds the original bytes verbatim when they are valid JSON, otherwise
// PayloadText carries them as a string.
type ParkedMessage struct {
	Key         string          `json:"key"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	PayloadText string          `json:"payload_text,omitempty"`
	Stage       string          `json:"stage"`
	Reason      string          `json:"reason"`
	ParkedAt    time.Time       `json:"parked_at"`
}

func newParkedMessage(letter DeadLetter, at time.Time) ParkedMessage {
	parked := ParkedMessage{
		Key:      string(letter.Key),
		Stage:    letter.Stage,
		Reason:   letter.Reason,
		ParkedAt: at.UTC(),
	}
	if json.Valid(letter.Payload) {
		parked.Payload = letter.Payload
	} else if utf8.Valid(letter.Payload) {
		parked.PayloadText = string(letter.Payload)
	} else {
		parked.PayloadText = fmt.Sprintf("%x", letter.Payload)
	}
	return parked
}

// DLQProducer writes parked messages to the dead letter topic
type DLQProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
	now    func() time.Time
}

// NewDLQProducer returns a nil producer when no dead letter topic is configured
func NewDLQProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*DLQProducer, error) {
	if cfg.DLQTopic == "" {
		logger.Info("Dead letter topic not configured, rejected coin events will be retried only")
		return nil, nil
	}

	if err := ensureTopic(cfg, cfg.DLQTopic, logger); err != nil {
		return nil, fmt.Errorf("ensuring dead letter topic %s: %w", cfg.DLQTopic, err)
	}

	return newDLQProducer(logger, &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.DLQTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: cfg.MaxWait,
	}, cfg.DLQTopic), nil
}

func newDLQProducer(logger *slog.Logger, writer KafkaWriter, topic string) *DLQProducer {
	return &DLQProducer{logger: logger, writer: writer, topic: topic, now: time.Now}
}

// Park writes letter to the dead letter topic under its original key
func (p *DLQProducer) Park(ctx context.Context, letter DeadLetter) error {
	if p == nil || p.writer == nil {
		return ErrDeadLetterDisabled
	}

	body, err := json.Marshal(newParkedMessage(letter, p.now()))
	if err != nil {
		return fmt.Errorf("encoding parked message: %w", err)
	}

	msg := kafka.Message{
		Key:   letter.Key,
		Value: body,
		Headers: []kafka.Header{
			{Key: headerStage, Value: []byte(letter.Stage)},
			{Key: headerReason, Value: []byte(letter.Reason)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("parking message on %s: %w", p.topic, err)
	}

	p.logger.Warn("Coin event parked",
		"topic", p.topic,
		"key", string(letter.Key),
		"stage", letter.Stage,
		"reason", letter.Reason,
	)
	return nil
}

func (p *DLQProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("closing dead letter writer for %s: %w", p.topic, err)
	}
	return nil
}
