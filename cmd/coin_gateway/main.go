package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gym-coin-ledger/internal/coin_gateway"
	"github.com/gym-coin-ledger/internal/coin_gateway/components"
	"github.com/gym-coin-ledger/internal/config"
	"github.com/gym-coin-ledger/internal/data/mongo"
	"github.com/gym-coin-ledger/internal/data/postgres"
	"github.com/gym-coin-ledger/internal/logger"
	"github.com/gym-coin-ledger/internal/platform/persistence"
)

func main() {
	cfg, err := config.LoadConfig("coin_gateway")
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	log.Info("Starting Coin Gateway",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"timezone", cfg.Coin.Location().String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error("Coin Gateway stopped with errors", "error", err)
		os.Exit(1)
	}
	log.Info("Coin Gateway shutdown completed")
}

// run serves the coin API until ctx is cancelled or the listener fails. The
// HTTP server is drained before the pools it uses are closed.
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
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := mongoDB.Close(closeCtx); err != nil {
			log.Error("Error closing audit store", "error", err)
		}
	}()

	auditRepo := mongo.NewAuditRepository(log, mongoDB.Database(), cfg.MongoDB.AuditCollection)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensuring audit indexes: %w", err)
	}

	repos := components.Repositories{
		Balances:     postgres.NewBalanceRepository(log, postgresDB),
		Transactions: postgres.NewTransactionRepository(log, postgresDB),
		Purchases:    postgres.NewPurchaseRepository(log, postgresDB),
		Reports:      postgres.NewReportRepository(log, postgresDB),
		Visits:       postgres.NewVisitRepository(log, postgresDB),
		Outbox:       postgres.NewOutboxRepository(log, postgresDB),
		Directory:    postgres.NewDirectoryRepository(log, postgresDB),
		Audit:        auditRepo,
	}

	server := coin_gateway.NewServer(log, cfg, components.CreateServices(postgresDB, repos, log, cfg),
		map[string]coin_gateway.HealthCheck{
			"postgres": postgresDB.Ping,
			"mongodb":  mongoDB.Ping,
		})

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Start() }()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case runErr = <-serveErr:
		if runErr == nil {
			return nil
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}
	return runErr
}
