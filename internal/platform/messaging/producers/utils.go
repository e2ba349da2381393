package producers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gym-coin-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

const (
	partitionReadAttempts = 5
	partitionReadBackoff  = 2 * time.Second
)

// ensureTopic dials the first broker and creates the topic when it is missing
func ensureTopic(cfg *config.KafkaConfig, topic string, log *slog.Logger) error {
	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return fmt.Errorf("failed to dial kafka: %w", err)
	}
	defer conn.Close()

	return createKafkaTopicIfNotExists(conn, topicConfig(topic, cfg.NumPartitions, cfg.ReplicationFactor), log)
}

func topicConfig(topic string, numPartitions, replicationFactor int) kafka.TopicConfig {
	tc := kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     numPartitions,
		ReplicationFactor: replicationFactor,
	}
	if tc.NumPartitions <= 0 {
		tc.NumPartitions = 1
	}
	if tc.ReplicationFactor <= 0 {
		tc.ReplicationFactor = 1
	}
	return tc
}

// createKafkaTopicIfNotExists creates the topic if no partitions can be read for it
func createKafkaTopicIfNotExists(conn *kafka.Conn, tc kafka.TopicConfig, log *slog.Logger) error {
	var partitions []kafka.Partition
	var err error

	log.Info("Checking if Kafka topic exists", "topic", tc.Topic)
	for i := 0; i < partitionReadAttempts; i++ {
		partitions, err = conn.ReadPartitions(tc.Topic)
		if err == nil {
			break
		}
		log.Warn("Failed to read partitions, retrying...", "topic", tc.Topic, "attempt", i+1, "error", err)
		time.Sleep(partitionReadBackoff)
	}

	if len(partitions) > 0 {
		log.Info("Kafka topic already exists", "topic", tc.Topic, "partitions", len(partitions))
		return nil
	}

	log.Info("Creating Kafka topic", "topic", tc.Topic, "partitions", tc.NumPartitions, "last_read_error", err)
	if err := conn.CreateTopics(tc); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", tc.Topic, err)
	}
	log.Info("Successfully created Kafka topic", "topic", tc.Topic)
	return nil
}
