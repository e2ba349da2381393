package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gym-coin-ledger/internal/domain/coin"
	"github.com/gym-coin-ledger/internal/domain/shared"
	"github.com/gym-coin-ledger/internal/domain/visit"
	"github.com/jackc/pgx/v5"
)

// LedgerComponents groups the collaborators of the ledger service
type LedgerComponents struct {
	Eligibility EligibilityChecker
	Guard       RedemptionGuard
	Balances    BalanceManager
	Log         TransactionLog
	Visits      VisitTracker
	Outbox      OutboxManager
	Failures    FailureRecorder
}

type LedgerServiceImpl struct {
	txExecutor TxExecutor
	components LedgerComponents
	location   *time.Location
	now        func() time.Time
	logger     *slog.Logger
}

func NewLedgerService(
	txExecutor TxExecutor,
	components LedgerComponents,
	location *time.Location,
	logger *slog.Logger,
) *LedgerServiceImpl {
	if location == nil {
		location = time.UTC
	}
	return &LedgerServiceImpl{
		txExecutor: txExecutor,
		components: components,
		location:   location,
		now:        time.Now,
		logger:     logger,
	}
}

func (s *LedgerServiceImpl) loggerFor(origin coin.Origin) *slog.Logger {
	if origin.CorrelationID != "" {
		return s.logger.With("correlation_id", origin.CorrelationID)
	}
	return s.logger
}

// Purchase credits the member and records the purchase in one transaction
func (s *LedgerServiceImpl) Purchase(ctx context.Context, cmd PurchaseCommand) (*PurchaseResult, error) {
	logger := s.loggerFor(cmd.Origin)

	if err := coin.ValidatePurchase(cmd.Coins, cmd.Amount); err != nil {
		logger.Warn("Rejected purchase", "member_id", cmd.MemberID.String(), "coins", cmd.Coins, "amount", cmd.Amount.String())
		return nil, err
	}

	if _, err := s.components.Eligibility.CheckMember(ctx, cmd.MemberID); err != nil {
		return nil, classify(err)
	}

	purchase, err := coin.NewPurchase(cmd.MemberID, cmd.Coins, cmd.Origin, s.now())
	if err != nil {
		return nil, err
	}
	record := coin.NewPurchaseRecord(purchase, cmd.Amount)

	var balance int64
	err = s.txExecutor.ExecuteTx(ctx, func(tx pgx.Tx) error {
		newBalance, err := s.components.Balances.Credit(ctx, tx, cmd.MemberID, shared.OwnerKindMember, cmd.Coins)
		if err != nil {
			return err
		}
		if err := s.components.Log.AppendPurchase(ctx, tx, purchase, record); err != nil {
			return err
		}
		if err := s.components.Outbox.CreateOutboxEntry(ctx, tx, purchase); err != nil {
			return err
		}
		balance = newBalance
		return nil
	})
	if err != nil {
		logger.Error("Purchase failed", "transaction_id", purchase.ID.String(), "error", err)
		return nil, classify(err)
	}

	logger.Info("Purchase committed",
		"transaction_id", purchase.ID.String(),
		"member_id", cmd.MemberID.String(),
		"coins", cmd.Coins,
		"balance", balance,
	)
	return &PurchaseResult{Transaction: purchase, Record: record, Balance: balance}, nil
}

// Redeem moves one coin from the member to the venue. The daily slot claim,
// the conditional debit, the venue credit and the visit history update
// commit together or not at all.
func (s *LedgerServiceImpl) Redeem(ctx context.Context, cmd RedeemCommand) (*RedemptionResult, error) {
	logger := s.loggerFor(cmd.Origin)
	redemption := coin.NewRedemption(cmd.MemberID, cmd.VenueID, cmd.Origin, s.now(), s.location)

	if _, err := s.components.Eligibility.CheckMember(ctx, cmd.MemberID); err != nil {
		if errors.Is(err, coin.ErrNotEligible) {
			s.recordFailure(ctx, logger, redemption, shared.FailureReasonNotEligible)
		}
		return nil, classify(err)
	}
	if _, err := s.components.Eligibility.CheckVenue(ctx, cmd.VenueID); err != nil {
		return nil, classify(err)
	}

	result := &RedemptionResult{Transaction: redemption}
	err := s.txExecutor.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.components.Guard.Claim(ctx, tx, redemption); err != nil {
			return err
		}

		memberBalance, err := s.components.Balances.Debit(ctx, tx, cmd.MemberID, shared.OwnerKindMember, redemption.Coins)
		if err != nil {
			return err
		}
		venueBalance, err := s.components.Balances.Credit(ctx, tx, cmd.VenueID, shared.OwnerKindVenue, redemption.Coins)
		if err != nil {
			return err
		}

		var history *visit.History
		history, err = s.components.Visits.RecordVisit(ctx, tx, cmd.MemberID, cmd.VenueID, redemption.OccurredAt)
		if err != nil {
			return err
		}

		if err := s.components.Outbox.CreateOutboxEntry(ctx, tx, redemption); err != nil {
			return err
		}

		result.MemberBalance = memberBalance
		result.VenueBalance = venueBalance
		result.History = history
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, coin.ErrAlreadyRedeemedToday):
			s.recordFailure(ctx, logger, redemption, shared.FailureReasonAlreadyRedeemedToday)
		case errors.Is(err, coin.ErrInsufficientBalance):
			s.recordFailure(ctx, logger, redemption, shared.FailureReasonInsufficientBalance)
		default:
			logger.Error("Redemption failed", "transaction_id", redemption.ID.String(), "error", err)
		}
		return nil, classify(err)
	}

	logger.Info("Redemption committed",
		"transaction_id", redemption.ID.String(),
		"member_id", cmd.MemberID.String(),
		"venue_id", cmd.VenueID.String(),
		"member_balance", result.MemberBalance,
		"venue_balance", result.VenueBalance,
	)
	return result, nil
}

// Payout settles coins held by a venue and appends a PAYOUT transaction
func (s *LedgerServiceImpl) Payout(ctx context.Context, cmd PayoutCommand) (*PayoutResult, error) {
	logger := s.loggerFor(cmd.Origin)

	payout, err := coin.NewPayout(cmd.VenueID, cmd.Coins, cmd.Origin, s.now())
	if err != nil {
		return nil, err
	}

	if _, err := s.components.Eligibility.CheckVenue(ctx, cmd.VenueID); err != nil {
		return nil, classify(err)
	}

	var venueBalance int64
	err = s.txExecutor.ExecuteTx(ctx, func(tx pgx.Tx) error {
		newBalance, err := s.components.Balances.Debit(ctx, tx, cmd.VenueID, shared.OwnerKindVenue, cmd.Coins)
		if err != nil {
			return err
		}
		if err := s.components.Log.Append(ctx, tx, payout); err != nil {
			return err
		}
		if err := s.components.Outbox.CreateOutboxEntry(ctx, tx, payout); err != nil {
			return err
		}
		venueBalance = newBalance
		return nil
	})
	if err != nil {
		if errors.Is(err, coin.ErrInsufficientVenueBalance) {
			s.recordFailure(ctx, logger, payout, shared.FailureReasonInsufficientVenueBalance)
		} else {
			logger.Error("Payout failed", "transaction_id", payout.ID.String(), "error", err)
		}
		return nil, classify(err)
	}

	logger.Info("Payout committed",
		"transaction_id", payout.ID.String(),
		"venue_id", cmd.VenueID.String(),
		"coins", cmd.Coins,
		"venue_balance", venueBalance,
	)
	return &PayoutResult{Transaction: payout, VenueBalance: venueBalance}, nil
}

// recordFailure never fails the request; the attempt was already rejected
func (s *LedgerServiceImpl) recordFailure(ctx context.Context, logger *slog.Logger, attempt *coin.Transaction, reason shared.FailureReason) {
	failed := *attempt
	failed.MarkFailed()

	logger.Warn("Rejected coin operation",
		"transaction_id", failed.ID.String(),
		"kind", string(failed.Kind),
		"reason", string(reason),
	)
	if err := s.components.Failures.RecordFailure(ctx, &failed, reason); err != nil {
		logger.Error("Failed to record rejected attempt", "transaction_id", failed.ID.String(), "error", err)
	}
}
