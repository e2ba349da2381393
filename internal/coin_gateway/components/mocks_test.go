package components

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/domain/audit"
	"github.com/gym-coin-ledger/internal/domain/coin"
	"github.com/gym-coin-ledger/internal/domain/membership"
	"github.com/gym-coin-ledger/internal/domain/outbox"
	"github.com/gym-coin-ledger/internal/domain/shared"
	"github.com/gym-coin-ledger/internal/domain/visit"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type MockBalanceRepo struct {
	mock.Mock
}

func (m *MockBalanceRepo) Credit(ctx context.Context, ownerID uuid.UUID, kind shared.OwnerKind, coins int64) (int64, error) {
	args := m.Called(ctx, ownerID, kind, coins)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceRepo) Debit(ctx context.Context, ownerID uuid.UUID, kind shared.OwnerKind, coins int64) (int64, error) {
	args := m.Called(ctx, ownerID, kind, coins)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceRepo) Get(ctx context.Context, ownerID uuid.UUID, kind shared.OwnerKind) (*coin.Balance, error) {
	args := m.Called(ctx, ownerID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coin.Balance), args.Error(1)
}

func (m *MockBalanceRepo) WithTx(tx pgx.Tx) coin.BalanceRepository {
	m.Called(tx)
	return m
}

type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Append(ctx context.Context, t *coin.Transaction) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTransactionRepo) AppendRedemption(ctx context.Context, t *coin.Transaction) (bool, error) {
	args := m.Called(ctx, t)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepo) ListByMember(ctx context.Context, memberID uuid.UUID, kind shared.TransactionKind, limit, offset int) ([]*coin.Transaction, error) {
	args := m.Called(ctx, memberID, kind, limit, offset)
	return args.Get(0).([]*coin.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) CountByMember(ctx context.Context, memberID uuid.UUID, kind shared.TransactionKind) (int64, error) {
	args := m.Called(ctx, memberID, kind)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepo) ListByVenue(ctx context.Context, venueID uuid.UUID, kind shared.TransactionKind, limit, offset int) ([]*coin.Transaction, error) {
	args := m.Called(ctx, venueID, kind, limit, offset)
	return args.Get(0).([]*coin.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) CountByVenue(ctx context.Context, venueID uuid.UUID, kind shared.TransactionKind) (int64, error) {
	args := m.Called(ctx, venueID, kind)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepo) WithTx(tx pgx.Tx) coin.TransactionRepository {
	m.Called(tx)
	return m
}

type MockPurchaseRepo struct {
	mock.Mock
}

func (m *MockPurchaseRepo) Create(ctx context.Context, record *coin.PurchaseRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockPurchaseRepo) ListByMember(ctx context.Context, memberID uuid.UUID, limit, offset int) ([]*coin.PurchaseRecord, error) {
	args := m.Called(ctx, memberID, limit, offset)
	return args.Get(0).([]*coin.PurchaseRecord), args.Error(1)
}

func (m *MockPurchaseRepo) WithTx(tx pgx.Tx) coin.PurchaseRepository {
	m.Called(tx)
	return m
}

type MockVisitRepo struct {
	mock.Mock
}

func (m *MockVisitRepo) Get(ctx context.Context, memberID uuid.UUID) (*visit.History, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*visit.History), args.Error(1)
}

func (m *MockVisitRepo) LockForUpdate(ctx context.Context, memberID uuid.UUID) (*visit.History, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*visit.History), args.Error(1)
}

func (m *MockVisitRepo) Save(ctx context.Context, h *visit.History) error {
	return m.Called(ctx, h).Error(0)
}

func (m *MockVisitRepo) WithTx(tx pgx.Tx) visit.Repository {
	m.Called(tx)
	return m
}

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepo) PurgeProcessed(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	m.Called(tx)
	return m
}

type MockAuditRepo struct {
	mock.Mock
}

func (m *MockAuditRepo) Record(ctx context.Context, entry *audit.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockAuditRepo) Find(ctx context.Context, filter audit.Filter, limit, offset int) ([]*audit.Entry, error) {
	args := m.Called(ctx, filter, limit, offset)
	return args.Get(0).([]*audit.Entry), args.Error(1)
}

func (m *MockAuditRepo) Count(ctx context.Context, filter audit.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditRepo) SumByVenue(ctx context.Context, kind shared.TransactionKind, from, to time.Time) ([]audit.VenueSum, error) {
	args := m.Called(ctx, kind, from, to)
	return args.Get(0).([]audit.VenueSum), args.Error(1)
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
	return args.Get(0).(map[uuid.UUID]string), args.Error(1)
}
