package coin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5"
)

// BalanceRepository stores member and venue coin balances
type BalanceRepository interface {
	// Credit adds coins, creating the balance on first use, and returns the new balance
	Credit(ctx context.Context, ownerID uuid.UUID, kind shared.OwnerKind, coins int64) (int64, error)

	// Debit subtracts coins only if enough are held; returns ErrBalanceTooLow otherwise
	Debit(ctx context.Context, ownerID uuid.UUID, kind shared.OwnerKind, coins int64) (int64, error)

	Get(ctx context.Context, ownerID uuid.UUID, kind shared.OwnerKind) (*Balance, error)
	WithTx(tx pgx.Tx) BalanceRepository
}

// TransactionRepository appends to and reads from the transaction log
type TransactionRepository interface {
	Append(ctx context.Context, t *Transaction) error

	// AppendRedemption reports false when the (member, venue, day) slot is already taken
	AppendRedemption(ctx context.Context, t *Transaction) (bool, error)

	ListByMember(ctx context.Context, memberID uuid.UUID, kind shared.TransactionKind, limit, offset int) ([]*Transaction, error)
	CountByMember(ctx context.Context, memberID uuid.UUID, kind shared.TransactionKind) (int64, error)
	ListByVenue(ctx context.Context, venueID uuid.UUID, kind shared.TransactionKind, limit, offset int) ([]*Transaction, error)
	CountByVenue(ctx context.Context, venueID uuid.UUID, kind shared.TransactionKind) (int64, error)
	WithTx(tx pgx.Tx) TransactionRepository
}

// PurchaseRepository stores purchase records
type PurchaseRepository interface {
	Create(ctx context.Context, record *PurchaseRecord) error
	ListByMember(ctx context.Context, memberID uuid.UUID, limit, offset int) ([]*PurchaseRecord, error)
	WithTx(tx pgx.Tx) PurchaseRepository
}

// ReportRepository runs aggregate queries over balances and the log
type ReportRepository interface {
	SumVenueRedemptions(ctx context.Context, venueID uuid.UUID, from, to time.Time) (int64, error)
	MonthlyVenueRedemptions(ctx context.Context, venueID uuid.UUID, from, to time.Time, timezone string) ([]MonthlyTotal, error)
	SumBalances(ctx context.Context) (*PlatformTotals, error)
	VenueBreakdown(ctx context.Context, from, to time.Time) ([]VenueTotals, error)
	WithTx(tx pgx.Tx) ReportRepository
}
