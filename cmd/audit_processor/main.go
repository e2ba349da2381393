package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gym-coin-ledger/internal/audit_processor/consumer"
	"github.com/gym-coin-ledger/internal/audit_processor/outbox_poller"
	"github.com/gym-coin-ledger/internal/audit_processor/service"
	"github.com/gym-coin-ledger/internal/config"
	"github.com/gym-coin-ledger/internal/data/mongo"
	"github.com/gym-coin-ledger/internal/data/postgres"
	"github.com/gym-coin-ledger/internal/logger"
	"github.com/gym-coin-ledger/internal/platform/messaging/consumers"
	"github.com/gym-coin-ledger/internal/platform/messaging/producers"
	"github.com/gym-coin-ledger/internal/platform/persistence"
)

func main() {
	cfg, err := config.LoadConfig("audit_processor")
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	log.Info("Starting Audit Processor", "app_name", cfg.Application.Name, "env", cfg.Application.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error("Audit Processor stopped with errors", "error", err)
		os.Exit(1)
	}
	log.Info("Audit Processor shutdown completed")
}

// run relays the outbox to Kafka and projects coin events into the audit
// store until ctx is cancelled. Resources are released in reverse order of
// acquisition.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	postgresDB, err := persistence.NewPostgresDB(ctx, log, &cfg.Postgres)
	if err != nil {
		return fmt.Errorf("initializing postgres: %w", err)
	}
	defer postgresDB.Close()

	mongoDB, err := persistence.NewMongoDB(ctx, log, &cfg.MongoDB)
	if err != nil {
		return fmt.Errorf("initializing audit store: %w", err)
	}
	defer withTimeout(cfg.Server.ShutdownTimeout, func(c context.Context) {
		if err := mongoDB.Close(c); err != nil {
			log.Error("Error closing audit store", "error", err)
		}
	})

	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	auditRepo := mongo.NewAuditRepository(log, mongoDB.Database(), cfg.MongoDB.AuditCollection)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensuring audit indexes: %w", err)
	}

	eventProducer, err := producers.NewCoinEventProducer(ctx, log, &cfg.Kafka)
	if err != nil {
		return fmt.Errorf("initializing coin event producer: %w", err)
	}
	defer closeLogged(log, "coin event producer", eventProducer.Close)

	dlqProducer, err := producers.NewDLQProducer(ctx, log, &cfg.Kafka)
	if err != nil {
		return fmt.Errorf("initializing dead letter producer: %w", err)
	}
	defer closeLogged(log, "dead letter producer", dlqProducer.Close)

	projectionService, err := service.CreateProjectionService(auditRepo, cfg, log)
	if err != nil {
		return fmt.Errorf("initializing projection service: %w", err)
	}
	defer projectionService.Shutdown()

	kafkaConsumer := consumers.NewKafkaConsumer(ctx, log, &cfg.Kafka).WithDeadLetter(dlqProducer)
	defer closeLogged(log, "kafka consumer", kafkaConsumer.Close)

	eventHandler := consumer.NewCoinEventHandler(log, projectionService, dlqProducer)
	if err := kafkaConsumer.Subscribe(ctx, cfg.Kafka.CoinEventsTopic, cfg.Kafka.ConsumerGroup, eventHandler.HandleMessage); err != nil {
		return fmt.Errorf("subscribing to %s: %w", cfg.Kafka.CoinEventsTopic, err)
	}

	publisher := outbox_poller.NewKafkaEventPublisher(outboxRepo, eventProducer, log)
	poller := outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, publisher, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(ctx)
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received, draining outbox poller")

	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		log.Info("Outbox poller stopped")
	case <-time.After(cfg.Server.ShutdownTimeout):
		log.Warn("Outbox poller did not stop within the shutdown timeout")
	}
	return nil
}

func closeLogged(log *slog.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		log.Error("Error closing "+name, "error", err)
	}
}

func withTimeout(d time.Duration, fn func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	fn(ctx)
}
