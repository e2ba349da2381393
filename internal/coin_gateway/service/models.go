package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/domain/coin"
	"github.com/gym-coin-ledger/internal/domain/visit"
	"github.com/shopspring/decimal"
)

type PurchaseCommand struct {
	MemberID uuid.UUID
	Coins    int64
	Amount   decimal.Decimal
	Origin   coin.Origin
}

type RedeemCommand struct {
	MemberID uuid.UUID
	VenueID  uuid.UUID
	Origin   coin.Origin
}

type PayoutCommand struct {
	VenueID uuid.UUID
	Coins   int64
	Origin  coin.Origin
}

type PurchaseResult struct {
	Transaction *coin.Transaction
	Record      *coin.PurchaseRecord
	Balance     int64
}

type RedemptionResult struct {
	Transaction   *coin.Transaction
	MemberBalance int64
	VenueBalance  int64
	History       *visit.History
}

type PayoutResult struct {
	Transaction  *coin.Transaction
	VenueBalance int64
}

// MemberStatement is the member-facing view of balance and history
type MemberStatement struct {
	MemberID         uuid.UUID
	DisplayName      string
	Balance          int64
	Purchases        []*coin.PurchaseRecord
	Redemptions      []*coin.Transaction
	TotalRedemptions int64
	VenueNames       map[uuid.UUID]string
	History          *visit.History
}

// VenueStatement is the venue-facing view of received redemptions
type VenueStatement struct {
	VenueID          uuid.UUID
	DisplayName      string
	Balance          int64
	Redemptions      []*coin.Transaction
	TotalRedemptions int64
	CurrentMonth     int64
	Monthly          []coin.MonthlyTotal
}

type VenueOverview struct {
	VenueID          uuid.UUID
	DisplayName      string
	Balance          int64
	MonthRedemptions int64
}

// PlatformOverview aggregates every balance on the platform
type PlatformOverview struct {
	CirculatingCoins int64
	VenueHeldCoins   int64
	MonthStart       time.Time
	Venues           []VenueOverview
}

type IssuedCode struct {
	Payload string
	PNG     []byte
}

// VenueReconciliation compares one venue's ledger and audited redemptions
type VenueReconciliation struct {
	VenueID      uuid.UUID
	LedgerCoins  int64
	AuditedCoins int64
}

func (v VenueReconciliation) Difference() int64 {
	return v.LedgerCoins - v.AuditedCoins
}

type Reconciliation struct {
	From       time.Time
	To         time.Time
	Venues     []VenueReconciliation
	Mismatches int
}
