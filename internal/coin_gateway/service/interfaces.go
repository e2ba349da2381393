package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/domain/audit"
	"github.com/gym-coin-ledger/internal/domain/coin"
	"github.com/gym-coin-ledger/internal/domain/membership"
	"github.com/gym-coin-ledger/internal/domain/shared"
	"github.com/gym-coin-ledger/internal/domain/visit"
	"github.com/jackc/pgx/v5"
)

// LedgerService performs balance-affecting operations. Each call is one
// atomic unit: on error nothing was written to the ledger.
type LedgerService interface {
	Purchase(ctx context.Context, cmd PurchaseCommand) (*PurchaseResult, error)
	Redeem(ctx context.Context, cmd RedeemCommand) (*RedemptionResult, error)
	Payout(ctx context.Context, cmd PayoutCommand) (*PayoutResult, error)
}

// ReportService serves read-only statements and rollups
type ReportService interface {
	MemberStatement(ctx context.Context, memberID uuid.UUID, page, perPage int) (*MemberStatement, error)
	VenueStatement(ctx context.Context, venueID uuid.UUID, page, perPage int) (*VenueStatement, error)
	PlatformOverview(ctx context.Context) (*PlatformOverview, error)
}

// CodeService issues scannable codes and resolves scanned payloads
type CodeService interface {
	MemberCode(ctx context.Context, memberID uuid.UUID) (*IssuedCode, error)
	VenueCode(ctx context.Context, venueID uuid.UUID) (*IssuedCode, error)
	ResolveCodes(memberCode, venueCode string) (memberID, venueID uuid.UUID, err error)
}

// AuditService reads the audit trail
type AuditService interface {
	Trail(ctx context.Context, filter audit.Filter, page, perPage int) ([]*audit.Entry, int64, error)
	Reconcile(ctx context.Context) (*Reconciliation, error)
}

// TxExecutor runs fn inside a database transaction
type TxExecutor interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
	ExecuteReadTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// EligibilityChecker consults the membership directory
type EligibilityChecker interface {
	// CheckMember returns ErrNotEligible for members outside the premium tier
	CheckMember(ctx context.Context, memberID uuid.UUID) (*membership.Member, error)
	CheckVenue(ctx context.Context, venueID uuid.UUID) (*membership.Venue, error)
}

// RedemptionGuard claims the (member, venue, day) slot for a redemption
type RedemptionGuard interface {
	Claim(ctx context.Context, tx pgx.Tx, redemption *coin.Transaction) error
}

// BalanceManager applies atomic balance adjustments
type BalanceManager interface {
	Credit(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, kind shared.OwnerKind, coins int64) (int64, error)
	Debit(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, kind shared.OwnerKind, coins int64) (int64, error)
}

// TransactionLog appends purchase and payout entries
type TransactionLog interface {
	AppendPurchase(ctx context.Context, tx pgx.Tx, purchase *coin.Transaction, record *coin.PurchaseRecord) error
	Append(ctx context.Context, tx pgx.Tx, t *coin.Transaction) error
}

// VisitTracker updates the member's recent venues after a redemption
type VisitTracker interface {
	RecordVisit(ctx context.Context, tx pgx.Tx, memberID, venueID uuid.UUID, at time.Time) (*visit.History, error)
}

// OutboxManager stages committed transactions for publication
type OutboxManager interface {
	CreateOutboxEntry(ctx context.Context, tx pgx.Tx, t *coin.Transaction) error
}

// FailureRecorder writes rejected attempts to the audit trail
type FailureRecorder interface {
	RecordFailure(ctx context.Context, attempt *coin.Transaction, reason shared.FailureReason) error
}
