package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/domain/coin"
	"github.com/gym-coin-ledger/internal/domain/membership"
	"github.com/gym-coin-ledger/internal/domain/shared"
	"github.com/gym-coin-ledger/internal/domain/visit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ledgerFixture struct {
	service     *LedgerServiceImpl
	txExecutor  *fakeTxExecutor
	eligibility *MockEligibilityChecker
	guard       *MockRedemptionGuard
	balances    *MockBalanceManager
	log         *MockTransactionLog
	visits      *MockVisitTracker
	outbox      *MockOutboxManager
	failures    *MockFailureRecorder
}

func newLedgerFixture(now time.Time, loc *time.Location) *ledgerFixture {
	f := &ledgerFixture{
		txExecutor:  &fakeTxExecutor{},
		eligibility: new(MockEligibilityChecker),
		guard:       new(MockRedemptionGuard),
		balances:    new(MockBalanceManager),
		log:         new(MockTransactionLog),
		visits:      new(MockVisitTracker),
		outbox:      new(MockOutboxManager),
		failures:    new(MockFailureRecorder),
	}
	f.service = NewLedgerService(f.txExecutor, LedgerComponents{
		Eligibility: f.eligibility,
		Guard:       f.guard,
		Balances:    f.balances,
		Log:         f.log,
		Visits:      f.visits,
		Outbox:      f.outbox,
		Failures:    f.failures,
	}, loc, newTestLogger())
	f.service.now = func() time.Time { return now }
	return f
}

func (f *ledgerFixture) assertExpectations(t *testing.T) {
	f.eligibility.AssertExpectations(t)
	f.guard.AssertExpectations(t)
	f.balances.AssertExpectations(t)
	f.log.AssertExpectations(t)
	f.visits.AssertExpectations(t)
	f.outbox.AssertExpectations(t)
	f.failures.AssertExpectations(t)
}

var premium = &membership.Member{DisplayName: "Ana", Premium: true}

func TestLedgerService_Purchase(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)
	memberID := uuid.New()
	amount := decimal.RequireFromString("9.99")

	t.Run("CreditsMemberAndRecordsPurchase", func(t *testing.T) {
		f := newLedgerFixture(now, nil)
		f.eligibility.On("CheckMember", ctx, memberID).Return(premium, nil).Once()
		f.balances.On("Credit", ctx, mock.Anything, memberID, shared.OwnerKindMember, int64(50)).Return(int64(55), nil).Once()
		f.log.On("AppendPurchase", ctx, mock.Anything,
			mock.MatchedBy(func(p *coin.Transaction) bool {
				return p.Kind == shared.TransactionKindPurchase && p.Coins == 50 && *p.MemberID == memberID
			}),
			mock.MatchedBy(func(r *coin.PurchaseRecord) bool {
				return r.Coins == 50 && r.AmountCharged.Equal(amount) && r.MemberID == memberID
			}),
		).Return(nil).Once()
		f.outbox.On("CreateOutboxEntry", ctx, mock.Anything, mock.AnythingOfType("*coin.Transaction")).Return(nil).Once()

		result, err := f.service.Purchase(ctx, PurchaseCommand{MemberID: memberID, Coins: 50, Amount: amount})

		require.NoError(t, err)
		assert.Equal(t, int64(55), result.Balance)
		assert.Equal(t, result.Transaction.ID, result.Record.TransactionID)
		assert.Equal(t, now, result.Transaction.OccurredAt)
		assert.Equal(t, 1, f.txExecutor.writes)
		f.assertExpectations(t)
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		tests := []struct {
			name   string
			coins  int64
			amount decimal.Decimal
		}{
			{name: "ZeroCoins", coins: 0, amount: amount},
			{name: "NegativeCoins", coins: -3, amount: amount},
			{name: "ZeroCharge", coins: 5, amount: decimal.Zero},
			{name: "SubCentCharge", coins: 50, amount: decimal.RequireFromString("0.004")},
			{name: "ChargeBeyondCents", coins: 50, amount: decimal.RequireFromString("9.999")},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newLedgerFixture(now, nil)

				_, err := f.service.Purchase(ctx, PurchaseCommand{MemberID: memberID, Coins: tt.coins, Amount: tt.amount})

				assert.ErrorIs(t, err, coin.ErrInvalidAmount)
				assert.Zero(t, f.txExecutor.writes)
				f.assertExpectations(t)
			})
		}
	})

	t.Run("NotEligible", func(t *testing.T) {
		f := newLedgerFixture(now, nil)
		f.eligibility.On("CheckMember", ctx, memberID).Return(nil, coin.ErrNotEligible).Once()

		_, err := f.service.Purchase(ctx, PurchaseCommand{MemberID: memberID, Coins: 5, Amount: amount})

		assert.ErrorIs(t, err, coin.ErrNotEligible)
		assert.Zero(t, f.txExecutor.writes)
		f.assertExpectations(t)
	})

	t.Run("StoreFailureIsTransient", func(t *testing.T) {
		f := newLedgerFixture(now, nil)
		dbErr := errors.New("connection reset")
		f.eligibility.On("CheckMember", ctx, memberID).Return(premium, nil).Once()
		f.balances.On("Credit", ctx, mock.Anything, memberID, shared.OwnerKindMember, int64(5)).Return(int64(0), dbErr).Once()

		_, err := f.service.Purchase(ctx, PurchaseCommand{MemberID: memberID, Coins: 5, Amount: amount})

		assert.ErrorIs(t, err, coin.ErrTransient)
		assert.ErrorIs(t, err, dbErr)
		f.log.AssertNotCalled(t, "AppendPurchase", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})
}

func TestLedgerService_Redeem(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)
	memberID := uuid.New()
	venueID := uuid.New()
	venue := &membership.Venue{ID: venueID, DisplayName: "Iron Temple"}
	cmd := RedeemCommand{MemberID: memberID, VenueID: venueID, Origin: coin.Origin{ClientIP: "10.0.0.1", CorrelationID: "corr-1"}}

	t.Run("MovesOneCoinAndTracksVisit", func(t *testing.T) {
		f := newLedgerFixture(now, nil)
		history := visit.NewHistory(memberID)
		history.Record(venueID, now, visit.DefaultCapacity)

		f.eligibility.On("CheckMember", ctx, memberID).Return(premium, nil).Once()
		f.eligibility.On("CheckVenue", ctx, venueID).Return(venue, nil).Once()
		f.guard.On("Claim", ctx, mock.Anything, mock.MatchedBy(func(r *coin.Transaction) bool {
			return r.Kind == shared.TransactionKindRedemption && r.Coins == 1 && r.Origin.ClientIP == "10.0.0.1"
		})).Return(nil).Once()
		f.balances.On("Debit", ctx, mock.Anything, memberID, shared.OwnerKindMember, coin.RedemptionCost).Return(int64(4), nil).Once()
		f.balances.On("Credit", ctx, mock.Anything, venueID, shared.OwnerKindVenue, coin.RedemptionCost).Return(int64(1), nil).Once()
		f.visits.On("RecordVisit", ctx, mock.Anything, memberID, venueID, now).Return(history, nil).Once()
		f.outbox.On("CreateOutboxEntry", ctx, mock.Anything, mock.AnythingOfType("*coin.Transaction")).Return(nil).Once()

		result, err := f.service.Redeem(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, int64(4), result.MemberBalance)
		assert.Equal(t, int64(1), result.VenueBalance)
		assert.Equal(t, 1, result.History.DistinctVenueCount)
		require.NotNil(t, result.Transaction.RedemptionDay)
		assert.Equal(t, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), *result.Transaction.RedemptionDay)
		f.assertExpectations(t)
	})

	t.Run("AlreadyRedeemedTodayRecordsFailure", func(t *testing.T) {
		f := newLedgerFixture(now, nil)
		f.eligibility.On("CheckMember", ctx, memberID).Return(premium, nil).Once()
		f.eligibility.On("CheckVenue", ctx, venueID).Return(venue, nil).Once()
		f.guard.On("Claim", ctx, mock.Anything, mock.Anything).Return(coin.ErrAlreadyRedeemedToday).Once()
		f.failures.On("RecordFailure", ctx, mock.MatchedBy(func(a *coin.Transaction) bool {
			return a.Status == shared.TransactionStatusFailed && a.Origin.CorrelationID == "corr-1"
		}), shared.FailureReasonAlreadyRedeemedToday).Return(nil).Once()

		_, err := f.service.Redeem(ctx, cmd)

		assert.ErrorIs(t, err, coin.ErrAlreadyRedeemedToday)
		assert.NotErrorIs(t, err, coin.ErrTransient)
		f.balances.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.visits.AssertNotCalled(t, "RecordVisit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("InsufficientBalanceRecordsFailure", func(t *testing.T) {
		f := newLedgerFixture(now, nil)
		f.eligibility.On("CheckMember", ctx, memberID).Return(premium, nil).Once()
		f.eligibility.On("CheckVenue", ctx, venueID).Return(venue, nil).Once()
		f.guard.On("Claim", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		f.balances.On("Debit", ctx, mock.Anything, memberID, shared.OwnerKindMember, coin.RedemptionCost).Return(int64(0), coin.ErrInsufficientBalance).Once()
		f.failures.On("RecordFailure", ctx, mock.Anything, shared.FailureReasonInsufficientBalance).Return(nil).Once()

		_, err := f.service.Redeem(ctx, cmd)

		assert.ErrorIs(t, err, coin.ErrInsufficientBalance)
		f.visits.AssertNotCalled(t, "RecordVisit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.outbox.AssertNotCalled(t, "CreateOutboxEntry", mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("NotEligibleRecordsFailure", func(t *testing.T) {
		f := newLedgerFixture(now, nil)
		f.eligibility.On("CheckMember", ctx, memberID).Return(nil, coin.ErrNotEligible).Once()
		f.failures.On("RecordFailure", ctx, mock.Anything, shared.FailureReasonNotEligible).Return(errors.New("mongo down")).Once()

		_, err := f.service.Redeem(ctx, cmd)

		assert.ErrorIs(t, err, coin.ErrNotEligible)
		assert.Zero(t, f.txExecutor.writes)
		f.assertExpectations(t)
	})

	t.Run("UnknownVenue", func(t *testing.T) {
		f := newLedgerFixture(now, nil)
		f.eligibility.On("CheckMember", ctx, memberID).Return(premium, nil).Once()
		f.eligibility.On("CheckVenue", ctx, venueID).Return(nil, coin.ErrVenueNotFound{VenueID: venueID}).Once()

		_, err := f.service.Redeem(ctx, cmd)

		assert.ErrorIs(t, err, coin.ErrNotFound)
		assert.Zero(t, f.txExecutor.writes)
		f.assertExpectations(t)
	})

	t.Run("VisitFailureIsTransient", func(t *testing.T) {
		f := newLedgerFixture(now, nil)
		f.eligibility.On("CheckMember", ctx, memberID).Return(premium, nil).Once()
		f.eligibility.On("CheckVenue", ctx, venueID).Return(venue, nil).Once()
		f.guard.On("Claim", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		f.balances.On("Debit", ctx, mock.Anything, memberID, shared.OwnerKindMember, coin.RedemptionCost).Return(int64(2), nil).Once()
		f.balances.On("Credit", ctx, mock.Anything, venueID, shared.OwnerKindVenue, coin.RedemptionCost).Return(int64(9), nil).Once()
		f.visits.On("RecordVisit", ctx, mock.Anything, memberID, venueID, now).Return(nil, errors.New("deadlock detected")).Once()

		_, err := f.service.Redeem(ctx, cmd)

		assert.ErrorIs(t, err, coin.ErrTransient)
		f.failures.AssertNotCalled(t, "RecordFailure", mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("RedemptionDayFollowsLocation", func(t *testing.T) {
		loc := time.FixedZone("UTC+3", 3*60*60)
		late := time.Date(2024, 5, 3, 22, 30, 0, 0, time.UTC)
		f := newLedgerFixture(late, loc)
		f.eligibility.On("CheckMember", ctx, memberID).Return(premium, nil).Once()
		f.eligibility.On("CheckVenue", ctx, venueID).Return(venue, nil).Once()
		f.guard.On("Claim", ctx, mock.Anything, mock.MatchedBy(func(r *coin.Transaction) bool {
			return r.RedemptionDay != nil && r.RedemptionDay.Equal(time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC))
		})).Return(coin.ErrAlreadyRedeemedToday).Once()
		f.failures.On("RecordFailure", ctx, mock.Anything, shared.FailureReasonAlreadyRedeemedToday).Return(nil).Once()

		_, err := f.service.Redeem(ctx, cmd)

		assert.ErrorIs(t, err, coin.ErrAlreadyRedeemedToday)
		f.assertExpectations(t)
	})
}

func TestLedgerService_Payout(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)
	venueID := uuid.New()
	venue := &membership.Venue{ID: venueID}

	t.Run("DebitsVenueAndAppendsPayout", func(t *testing.T) {
		f := newLedgerFixture(now, nil)
		f.eligibility.On("CheckVenue", ctx, venueID).Return(venue, nil).Once()
		f.balances.On("Debit", ctx, mock.Anything, venueID, shared.OwnerKindVenue, int64(15)).Return(int64(5), nil).Once()
		f.log.On("Append", ctx, mock.Anything, mock.MatchedBy(func(p *coin.Transaction) bool {
			return p.Kind == shared.TransactionKindPayout && p.MemberID == nil && *p.VenueID == venueID
		})).Return(nil).Once()
		f.outbox.On("CreateOutboxEntry", ctx, mock.Anything, mock.Anything).Return(nil).Once()

		result, err := f.service.Payout(ctx, PayoutCommand{VenueID: venueID, Coins: 15})

		require.NoError(t, err)
		assert.Equal(t, int64(5), result.VenueBalance)
		assert.Equal(t, int64(15), result.Transaction.Coins)
		f.assertExpectations(t)
	})

	t.Run("InsufficientVenueBalance", func(t *testing.T) {
		f := newLedgerFixture(now, nil)
		f.eligibility.On("CheckVenue", ctx, venueID).Return(venue, nil).Once()
		f.balances.On("Debit", ctx, mock.Anything, venueID, shared.OwnerKindVenue, int64(25)).Return(int64(0), coin.ErrInsufficientVenueBalance).Once()
		f.failures.On("RecordFailure", ctx, mock.Anything, shared.FailureReasonInsufficientVenueBalance).Return(nil).Once()

		_, err := f.service.Payout(ctx, PayoutCommand{VenueID: venueID, Coins: 25})

		assert.ErrorIs(t, err, coin.ErrInsufficientVenueBalance)
		f.log.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		f := newLedgerFixture(now, nil)

		_, err := f.service.Payout(ctx, PayoutCommand{VenueID: venueID, Coins: 0})

		assert.ErrorIs(t, err, coin.ErrInvalidAmount)
		f.assertExpectations(t)
	})
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))
	assert.Equal(t, coin.ErrNotEligible, classify(coin.ErrNotEligible))

	wrapped := classify(errors.New("boom"))
	assert.ErrorIs(t, wrapped, coin.ErrTransient)
	assert.Contains(t, wrapped.Error(), "boom")
}
