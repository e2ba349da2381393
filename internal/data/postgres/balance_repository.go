package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/domain/coin"
	"github.com/gym-coin-ledger/internal/domain/shared"
	"github.com/gym-coin-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// BalanceRepository implements coin.BalanceRepository for PostgreSQL.
// Balances are created lazily on first credit; the CHECK constraint on
// coin_balances keeps them non-negative.
type BalanceRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewBalanceRepository(logger *slog.Logger, db *persistence.PostgresDB) coin.BalanceRepository {
	return &BalanceRepository{
		querier: db.Querier(),
		logger:  logger,
	}
}

func (r *BalanceRepository) WithTx(tx pgx.Tx) coin.BalanceRepository {
	return &BalanceRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Credit adds coins in a single upsert and returns the resulting balance
func (r *BalanceRepository) Credit(ctx context.Context, ownerID uuid.UUID, kind shared.OwnerKind, coins int64) (int64, error) {
	query := `
		INSERT INTO coin_balances (owner_id, owner_kind, balance, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (owner_id, owner_kind)
		DO UPDATE SET balance = coin_balances.balance + EXCLUDED.balance, updated_at = NOW()
		RETURNING balance
	`

	var balance int64
	if err := r.querier.QueryRow(ctx, query, ownerID, kind, coins).Scan(&balance); err != nil {
		r.logger.Error("Failed to credit balance",
			"owner_id", ownerID.String(),
			"owner_kind", string(kind),
			"coins", coins,
			"error", err,
		)
		return 0, fmt.Errorf("failed to credit balance: %w", err)
	}

	return balance, nil
}

// Debit subtracts coins only when the balance covers them. The check and the
// write are one statement, so concurrent debits cannot overdraw.
func (r *BalanceRepository) Debit(ctx context.Context, ownerID uuid.UUID, kind shared.OwnerKind, coins int64) (int64, error) {
	query := `
		UPDATE coin_balances
		SET balance = balance - $3, updated_at = NOW()
		WHERE owner_id = $1 AND owner_kind = $2 AND balance >= $3
		RETURNING balance
	`

	var balance int64
	err := r.querier.QueryRow(ctx, query, ownerID, kind, coins).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, coin.ErrBalanceTooLow
		}
		r.logger.Error("Failed to debit balance",
			"owner_id", ownerID.String(),
			"owner_kind", string(kind),
			"coins", coins,
			"error", err,
		)
		return 0, fmt.Errorf("failed to debit balance: %w", err)
	}

	return balance, nil
}

// Get returns the balance, or a zero balance when the owner never held coins
func (r *BalanceRepository) Get(ctx context.Context, ownerID uuid.UUID, kind shared.OwnerKind) (*coin.Balance, error) {
	query := `
		SELECT owner_id, owner_kind, balance, created_at, updated_at
		FROM coin_balances
		WHERE owner_id = $1 AND owner_kind = $2
	`

	var b coin.Balance
	err := r.querier.QueryRow(ctx, query, ownerID, kind).Scan(
		&b.OwnerID,
		&b.OwnerKind,
		&b.Balance,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return coin.EmptyBalance(ownerID, kind), nil
		}
		r.logger.Error("Failed to get balance",
			"owner_id", ownerID.String(),
			"owner_kind", string(kind),
			"error", err,
		)
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	return &b, nil
}
