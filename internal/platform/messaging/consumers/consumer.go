package consumers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gym-coin-ledger/internal/config"
	"github.com/gym-coin-ledger/internal/platform/messaging/producers"
	"github.com/segmentio/kafka-go"
)

const (
	defaultHandlerAttempts = 3
	defaultRetryBackoff    = 500 * time.Millisecond
	fetchErrorBackoff      = time.Second
	parkErrorBackoff       = 5 * time.Second

	// StageProjection marks messages parked after the handler kept failing
	StageProjection = "projection"
)

type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer defines the message queue consumer interface
type Consumer interface {
	Subscribe(ctx context.Context, topic string, groupID string, handler MessageHandler) error
	Close() error
}

// KafkaReader wraps kafka.Reader methods for testing
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer implements Consumer using Kafka. A message whose handler keeps
// failing is retried a bounded number of times and then parked on the dead
// letter topic. Its offset is committed only once it has been handled or
// parked; until then the partition does not advance.
type KafkaConsumer struct {
	reader       KafkaReader
	deadLetter   producers.DeadLetterPublisher
	logger       *slog.Logger
	attempts     int
	retryBackoff time.Duration
	parkBackoff  time.Duration
}

func NewKafkaConsumer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig) *KafkaConsumer {
	startOffset := cfg.StartOffset
	if startOffset == 0 {
		startOffset = kafka.FirstOffset
	}
	return NewKafkaConsumerWithReader(logger, kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{cfg.Brokers},
		Topic:       cfg.CoinEventsTopic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: startOffset,
	}))
}

func NewKafkaConsumerWithReader(logger *slog.Logger, reader KafkaReader) *KafkaConsumer {
	return &KafkaConsumer{
		reader:       reader,
		logger:       logger,
		attempts:     defaultHandlerAttempts,
		retryBackoff: defaultRetryBackoff,
		parkBackoff:  parkErrorBackoff,
	}
}

// WithDeadLetter sets where messages go once their handler retries are spent
func (c *KafkaConsumer) WithDeadLetter(p producers.DeadLetterPublisher) *KafkaConsumer {
	c.deadLetter = p
	return c
}

// Subscribe starts consuming in the background until ctx is cancelled
func (c *KafkaConsumer) Subscribe(ctx context.Context, topic string, groupID string, handler MessageHandler) error {
	if c.reader == nil {
		return errors.New("kafka reader is not initialized")
	}

	c.logger.Info("Subscribed to Kafka topic",
		"topic", topic,
		"group_id", groupID,
	)

	go c.consume(ctx, handler)
	return nil
}

// consume blocks until ctx is done
func (c *KafkaConsumer) consume(ctx context.Context, handler MessageHandler) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Context canceled, stopping consumer")
				return
			}
			c.logger.Error("Failed to fetch message from Kafka", "error", err)
			if !sleepCtx(ctx, fetchErrorBackoff) {
				return
			}
			continue
		}

		c.logger.Debug("Received message from Kafka",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
		)

		if !c.settle(ctx, handler, msg) {
			return
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("Failed to commit message",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

// settle returns true once msg is handled or parked and may be committed. It
// returns false only when ctx ends first, leaving the offset uncommitted.
func (c *KafkaConsumer) settle(ctx context.Context, handler MessageHandler, msg kafka.Message) bool {
	for {
		err := c.handle(ctx, handler, msg)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}

		parkErr := c.park(ctx, msg, err)
		if parkErr == nil {
			return true
		}
		c.logger.Error("Message could not be handled or parked, holding offset",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
			"error", err,
			"park_error", parkErr,
		)
		if !sleepCtx(ctx, c.parkBackoff) {
			return false
		}
	}
}

func (c *KafkaConsumer) park(ctx context.Context, msg kafka.Message, cause error) error {
	if c.deadLetter == nil {
		return producers.ErrDeadLetterDisabled
	}
	err := c.deadLetter.Park(ctx, producers.DeadLetter{
		Key:     msg.Key,
		Payload: msg.Value,
		Stage:   StageProjection,
		Reason:  cause.Error(),
	})
	if err != nil {
		return err
	}
	c.logger.Warn("Parked message after handler retries",
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
		"key", string(msg.Key),
		"error", cause,
	)
	return nil
}

func (c *KafkaConsumer) handle(ctx context.Context, handler MessageHandler, msg kafka.Message) error {
	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err = handler(ctx, msg.Key, msg.Value); err == nil {
			return nil
		}
		c.logger.Warn("Message handler failed",
			"offset", msg.Offset,
			"attempt", attempt,
			"error", err,
		)
		if attempt < c.attempts && !sleepCtx(ctx, c.retryBackoff*time.Duration(attempt)) {
			return ctx.Err()
		}
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
