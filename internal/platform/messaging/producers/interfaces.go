package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// MessagePublisher writes keyed messages to the coin events topic
type MessagePublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// DeadLetter is a message the audit pipeline gave up on
type DeadLetter struct {
	Key     []byte
	Payload []byte
	// Stage names the pipeline step that rejected the message, e.g. "decode"
	Stage  string
	Reason string
}

// DeadLetterPublisher parks rejected messages for manual inspection
type DeadLetterPublisher interface {
	Park(ctx context.Context, letter DeadLetter) error
	Close() error
}

// KafkaWriter is the subset of *kafka.Writer the producers depend on
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
