package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gym-coin-ledger/internal/coin_gateway/service"
	"github.com/gym-coin-ledger/internal/domain/coin"
	"github.com/gym-coin-ledger/internal/domain/outbox"
	"github.com/jackc/pgx/v5"
)

type OutboxManagerImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewOutboxManager(outboxRepo outbox.Repository, logger *slog.Logger) service.OutboxManager {
	return &OutboxManagerImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// CreateOutboxEntry stages the coin event in the same transaction as the ledger write
func (m *OutboxManagerImpl) CreateOutboxEntry(ctx context.Context, tx pgx.Tx, t *coin.Transaction) error {
	message, err := outbox.NewMessage(t.Event())
	if err != nil {
		return fmt.Errorf("failed to create outbox message payload for tx %s: %w", t.ID, err)
	}

	if err := m.outboxRepo.WithTx(tx).Create(ctx, message); err != nil {
		return fmt.Errorf("failed to create outbox message for tx %s: %w", t.ID, err)
	}

	m.logger.Debug("Outbox message created", "transaction_id", t.ID.String(), "outbox_id", message.ID)
	return nil
}
