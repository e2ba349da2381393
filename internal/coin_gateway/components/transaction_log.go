package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gym-coin-ledger/internal/coin_gateway/service"
	"github.com/gym-coin-ledger/internal/domain/coin"
	"github.com/jackc/pgx/v5"
)

type TransactionLogImpl struct {
	transactionRepo coin.TransactionRepository
	purchaseRepo    coin.PurchaseRepository
	logger          *slog.Logger
}

func NewTransactionLog(transactionRepo coin.TransactionRepository, purchaseRepo coin.PurchaseRepository, logger *slog.Logger) service.TransactionLog {
	return &TransactionLogImpl{
		transactionRepo: transactionRepo,
		purchaseRepo:    purchaseRepo,
		logger:          logger,
	}
}

// AppendPurchase writes the transaction before its purchase record, which references it
func (l *TransactionLogImpl) AppendPurchase(ctx context.Context, tx pgx.Tx, purchase *coin.Transaction, record *coin.PurchaseRecord) error {
	if err := l.Append(ctx, tx, purchase); err != nil {
		return err
	}
	if err := l.purchaseRepo.WithTx(tx).Create(ctx, record); err != nil {
		return fmt.Errorf("failed to create purchase record for %s: %w", purchase.ID, err)
	}
	return nil
}

func (l *TransactionLogImpl) Append(ctx context.Context, tx pgx.Tx, t *coin.Transaction) error {
	if err := l.transactionRepo.WithTx(tx).Append(ctx, t); err != nil {
		return fmt.Errorf("failed to append %s transaction %s: %w", t.Kind, t.ID, err)
	}
	l.logger.Debug("Transaction appended", "transaction_id", t.ID.String(), "kind", string(t.Kind))
	return nil
}
