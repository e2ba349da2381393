package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/coin_gateway/service"
	"github.com/gym-coin-ledger/internal/domain/coin"
	"github.com/gym-coin-ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5"
)

type BalanceManagerImpl struct {
	balanceRepo coin.BalanceRepository
	logger      *slog.Logger
}

func NewBalanceManager(balanceRepo coin.BalanceRepository, logger *slog.Logger) service.BalanceManager {
	return &BalanceManagerImpl{
		balanceRepo: balanceRepo,
		logger:      logger,
	}
}

func (m *BalanceManagerImpl) Credit(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, kind shared.OwnerKind, coins int64) (int64, error) {
	balance, err := m.balanceRepo.WithTx(tx).Credit(ctx, ownerID, kind, coins)
	if err != nil {
		return 0, fmt.Errorf("failed to credit %s %s: %w", kind, ownerID, err)
	}
	return balance, nil
}

// Debit maps a refused conditional debit onto the owner's domain error
func (m *BalanceManagerImpl) Debit(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, kind shared.OwnerKind, coins int64) (int64, error) {
	balance, err := m.balanceRepo.WithTx(tx).Debit(ctx, ownerID, kind, coins)
	if err == nil {
		return balance, nil
	}
	if errors.Is(err, coin.ErrBalanceTooLow) {
		m.logger.Info("Debit refused", "owner_id", ownerID.String(), "owner_kind", string(kind), "coins", coins)
		if kind == shared.OwnerKindVenue {
			return 0, coin.ErrInsufficientVenueBalance
		}
		return 0, coin.ErrInsufficientBalance
	}
	return 0, fmt.Errorf("failed to debit %s %s: %w", kind, ownerID, err)
}
