package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/domain/audit"
	"github.com/gym-coin-ledger/internal/domain/coin"
	"github.com/gym-coin-ledger/internal/domain/membership"
	"github.com/gym-coin-ledger/internal/domain/shared"
	"github.com/gym-coin-ledger/internal/domain/visit"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// fakeTxExecutor runs fn without a real transaction
type fakeTxExecutor struct {
	writes int
	reads  int
}

func (f *fakeTxExecutor) ExecuteTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	f.writes++
	return fn(nil)
}

func (f *fakeTxExecutor) ExecuteReadTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	f.reads++
	return fn(nil)
}

type MockEligibilityChecker struct {
	mock.Mock
}

func (m *MockEligibilityChecker) CheckMember(ctx context.Context, memberID uuid.UUID) (*membership.Member, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Member), args.Error(1)
}

func (m *MockEligibilityChecker) CheckVenue(ctx context.Context, venueID uuid.UUID) (*membership.Venue, error) {
	args := m.Called(ctx, venueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Venue), args.Error(1)
}

type MockRedemptionGuard struct {
	mock.Mock
}

func (m *MockRedemptionGuard) Claim(ctx context.Context, tx pgx.Tx, redemption *coin.Transaction) error {
	args := m.Called(ctx, tx, redemption)
	return args.Error(0)
}

type MockBalanceManager struct {
	mock.Mock
}

func (m *MockBalanceManager) Credit(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, kind shared.OwnerKind, coins int64) (int64, error) {
	args := m.Called(ctx, tx, ownerID, kind, coins)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceManager) Debit(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, kind shared.OwnerKind, coins int64) (int64, error) {
	args := m.Called(ctx, tx, ownerID, kind, coins)
	return args.Get(0).(int64), args.Error(1)
}

type MockTransactionLog struct {
	mock.Mock
}

func (m *MockTransactionLog) AppendPurchase(ctx context.Context, tx pgx.Tx, purchase *coin.Transaction, record *coin.PurchaseRecord) error {
	args := m.Called(ctx, tx, purchase, record)
	return args.Error(0)
}

func (m *MockTransactionLog) Append(ctx context.Context, tx pgx.Tx, t *coin.Transaction) error {
	args := m.Called(ctx, tx, t)
	return args.Error(0)
}

type MockVisitTracker struct {
	mock.Mock
}

func (m *MockVisitTracker) RecordVisit(ctx context.Context, tx pgx.Tx, memberID, venueID uuid.UUID, at time.Time) (*visit.History, error) {
	args := m.Called(ctx, tx, memberID, venueID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*visit.History), args.Error(1)
}

type MockOutboxManager struct {
	mock.Mock
}

func (m *MockOutboxManager) CreateOutboxEntry(ctx context.Context, tx pgx.Tx, t *coin.Transaction) error {
	args := m.Called(ctx, tx, t)
	return args.Error(0)
}

type MockFailureRecorder struct {
	mock.Mock
}

func (m *MockFailureRecorder) RecordFailure(ctx context.Context, attempt *coin.Transaction, reason shared.FailureReason) error {
	args := m.Called(ctx, attempt, reason)
	return args.Error(0)
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetMember(ctx context.Context, id uuid.UUID) (*membership.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Member), args.Error(1)
}

func (m *MockDirectory) GetVenue(ctx context.Context, id uuid.UUID) (*membership.Venue, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Venue), args.Error(1)
}

func (m *MockDirectory) VenueNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]string), args.Error(1)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Record(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) Find(ctx context.Context, filter audit.Filter, limit, offset int) ([]*audit.Entry, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.Entry), args.Error(1)
}

func (m *MockAuditRepository) Count(ctx context.Context, filter audit.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditRepository) SumByVenue(ctx context.Context, kind shared.TransactionKind, from, to time.Time) ([]audit.VenueSum, error) {
	args := m.Called(ctx, kind, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.VenueSum), args.Error(1)
}

// MockReportRepository returns itself from WithTx
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) SumVenueRedemptions(ctx context.Context, venueID uuid.UUID, from, to time.Time) (int64, error) {
	args := m.Called(ctx, venueID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportRepository) MonthlyVenueRedemptions(ctx context.Context, venueID uuid.UUID, from, to time.Time, timezone string) ([]coin.MonthlyTotal, error) {
	args := m.Called(ctx, venueID, from, to, timezone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]coin.MonthlyTotal), args.Error(1)
}

func (m *MockReportRepository) SumBalances(ctx context.Context) (*coin.PlatformTotals, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coin.PlatformTotals), args.Error(1)
}

func (m *MockReportRepository) VenueBreakdown(ctx context.Context, from, to time.Time) ([]coin.VenueTotals, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]coin.VenueTotals), args.Error(1)
}

func (m *MockReportRepository) WithTx(pgx.Tx) coin.ReportRepository {
	return m
}

type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) Credit(ctx context.Context, ownerID uuid.UUID, kind shared.OwnerKind, coins int64) (int64, error) {
	args := m.Called(ctx, ownerID, kind, coins)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceRepository) Debit(ctx context.Context, ownerID uuid.UUID, kind shared.OwnerKind, coins int64) (int64, error) {
	args := m.Called(ctx, ownerID, kind, coins)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceRepository) Get(ctx context.Context, ownerID uuid.UUID, kind shared.OwnerKind) (*coin.Balance, error) {
	args := m.Called(ctx, ownerID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coin.Balance), args.Error(1)
}

func (m *MockBalanceRepository) WithTx(pgx.Tx) coin.BalanceRepository {
	return m
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Append(ctx context.Context, t *coin.Transaction) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTransactionRepository) AppendRedemption(ctx context.Context, t *coin.Transaction) (bool, error) {
	args := m.Called(ctx, t)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) ListByMember(ctx context.Context, memberID uuid.UUID, kind shared.TransactionKind, limit, offset int) ([]*coin.Transaction, error) {
	args := m.Called(ctx, memberID, kind, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*coin.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) CountByMember(ctx context.Context, memberID uuid.UUID, kind shared.TransactionKind) (int64, error) {
	args := m.Called(ctx, memberID, kind)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) ListByVenue(ctx context.Context, venueID uuid.UUID, kind shared.TransactionKind, limit, offset int) ([]*coin.Transaction, error) {
	args := m.Called(ctx, venueID, kind, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*coin.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) CountByVenue(ctx context.Context, venueID uuid.UUID, kind shared.TransactionKind) (int64, error) {
	args := m.Called(ctx, venueID, kind)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) WithTx(pgx.Tx) coin.TransactionRepository {
	return m
}

type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) Create(ctx context.Context, record *coin.PurchaseRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockPurchaseRepository) ListByMember(ctx context.Context, memberID uuid.UUID, limit, offset int) ([]*coin.PurchaseRecord, error) {
	args := m.Called(ctx, memberID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*coin.PurchaseRecord), args.Error(1)
}

func (m *MockPurchaseRepository) WithTx(pgx.Tx) coin.PurchaseRepository {
	return m
}

type MockVisitRepository struct {
	mock.Mock
}

func (m *MockVisitRepository) Get(ctx context.Context, memberID uuid.UUID) (*visit.History, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*visit.History), args.Error(1)
}

func (m *MockVisitRepository) LockForUpdate(ctx context.Context, memberID uuid.UUID) (*visit.History, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*visit.History), args.Error(1)
}

func (m *MockVisitRepository) Save(ctx context.Context, h *visit.History) error {
	return m.Called(ctx, h).Error(0)
}

func (m *MockVisitRepository) WithTx(pgx.Tx) visit.Repository {
	return m
}

type fakeRenderer struct {
	payloads []string
	err      error
}

func (r *fakeRenderer) Render(payload string) ([]byte, error) {
	r.payloads = append(r.payloads, payload)
	if r.err != nil {
		return nil, r.err
	}
	return []byte("png:" + payload), nil
}
