package coin

import (
	"time"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/domain/shared"
)

// Balance is the coin count held by a member or a venue
type Balance struct {
	OwnerID   uuid.UUID        `json:"owner_id"`
	OwnerKind shared.OwnerKind `json:"owner_kind"`
	Balance   int64            `json:"balance"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// EmptyBalance is the implicit zero balance of an owner that never held coins
func EmptyBalance(ownerID uuid.UUID, kind shared.OwnerKind) *Balance {
	return &Balance{OwnerID: ownerID, OwnerKind: kind}
}

// MonthlyTotal is the sum of coins received by a venue in one calendar month
type MonthlyTotal struct {
	Month time.Time `json:"month"`
	Coins int64     `json:"coins"`
}

// VenueTotals is one row of the platform breakdown
type VenueTotals struct {
	VenueID          uuid.UUID `json:"venue_id"`
	Balance          int64     `json:"balance"`
	MonthRedemptions int64     `json:"month_redemptions"`
}

// PlatformTotals are the coin sums over all members and all venues
type PlatformTotals struct {
	MemberCoins int64 `json:"member_coins"`
	VenueCoins  int64 `json:"venue_coins"`
}
