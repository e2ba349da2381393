package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gym-coin-ledger/internal/coin_gateway/service"
	"github.com/gym-coin-ledger/internal/domain/coin"
	"github.com/jackc/pgx/v5"
)

// RedemptionGuardImpl lets the unique daily-redemption index arbitrate
// concurrent check-ins: the insert either claims the slot or affects no rows.
type RedemptionGuardImpl struct {
	transactionRepo coin.TransactionRepository
	logger          *slog.Logger
}

func NewRedemptionGuard(transactionRepo coin.TransactionRepository, logger *slog.Logger) service.RedemptionGuard {
	return &RedemptionGuardImpl{
		transactionRepo: transactionRepo,
		logger:          logger,
	}
}

func (g *RedemptionGuardImpl) Claim(ctx context.Context, tx pgx.Tx, redemption *coin.Transaction) error {
	claimed, err := g.transactionRepo.WithTx(tx).AppendRedemption(ctx, redemption)
	if err != nil {
		return fmt.Errorf("failed to claim redemption slot: %w", err)
	}
	if !claimed {
		g.logger.Info("Redemption slot already taken",
			"transaction_id", redemption.ID.String(),
			"member_id", redemption.MemberID.String(),
			"venue_id", redemption.VenueID.String(),
			"day", redemption.RedemptionDay.Format("2006-01-02"),
		)
		return coin.ErrAlreadyRedeemedToday
	}
	return nil
}
