package outbox_poller

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/domain/outbox"
	"github.com/gym-coin-ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
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

type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *MockMessagePublisher) Close() error {
	return m.Called().Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishEvent(ctx context.Context, message *outbox.Message) error {
	return m.Called(ctx, message).Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func redemptionMessage(t *testing.T, id int64, attempts int) (*outbox.Message, *shared.CoinEvent) {
	t.Helper()
	memberID := uuid.New()
	venueID := uuid.New()
	event := &shared.CoinEvent{
		TransactionID: uuid.New(),
		MemberID:      &memberID,
		VenueID:       &venueID,
		Kind:          shared.TransactionKindRedemption,
		Coins:         1,
		Status:        shared.TransactionStatusCompleted,
		CorrelationID: "corr-" + uuid.NewString(),
		OccurredAt:    time.Now().UTC(),
	}
	msg, err := outbox.NewMessage(event)
	require.NoError(t, err)
	msg.ID = id
	msg.Attempts = attempts
	return msg, event
}

func jsonEqual(expected json.RawMessage) interface{} {
	return mock.MatchedBy(func(v interface{}) bool {
		raw, ok := v.(json.RawMessage)
		return ok && string(raw) == string(expected)
	})
}
