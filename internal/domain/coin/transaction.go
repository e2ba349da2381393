package coin

import (
	"time"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RedemptionCost is the number of coins moved by one check-in
const RedemptionCost int64 = 1

// Origin carries request metadata recorded alongside each transaction
type Origin struct {
	ClientIP      string `json:"client_ip,omitempty"`
	Device        string `json:"device,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Transaction is one immutable entry of the coin transaction log
type Transaction struct {
	ID            uuid.UUID                `json:"id"`
	MemberID      *uuid.UUID               `json:"member_id,omitempty"`
	VenueID       *uuid.UUID               `json:"venue_id,omitempty"`
	Coins         int64                    `json:"coins"`
	Kind          shared.TransactionKind   `json:"kind"`
	Status        shared.TransactionStatus `json:"status"`
	OccurredAt    time.Time                `json:"occurred_at"`
	RedemptionDay *time.Time               `json:"redemption_day,omitempty"`
	Origin        Origin                   `json:"origin"`
}

// PurchaseRecord stores the money side of a coin purchase
type PurchaseRecord struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	MemberID      uuid.UUID       `json:"member_id"`
	Coins         int64           `json:"coins"`
	AmountCharged decimal.Decimal `json:"amount_charged"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// ChargeScale is the number of decimal places a charged amount may carry
const ChargeScale = 2

// ValidatePurchase rejects non-positive coin counts and charges. A charge
// with sub-cent precision is rejected rather than rounded so the stored
// purchase record always equals the requested amount.
func ValidatePurchase(coins int64, amount decimal.Decimal) error {
	if coins <= 0 {
		return ErrInvalidAmount
	}
	if !amount.IsPositive() || !amount.Equal(amount.Round(ChargeScale)) {
		return ErrInvalidAmount
	}
	return nil
}

// NewPurchase builds a completed PURCHASE transaction for a member
func NewPurchase(memberID uuid.UUID, coins int64, origin Origin, now time.Time) (*Transaction, error) {
	if coins <= 0 {
		return nil, ErrInvalidAmount
	}
	return &Transaction{
		ID:         uuid.New(),
		MemberID:   &memberID,
		Coins:      coins,
		Kind:       shared.TransactionKindPurchase,
		Status:     shared.TransactionStatusCompleted,
		OccurredAt: now.UTC(),
		Origin:     origin,
	}, nil
}

// NewRedemption builds a REDEMPTION transaction for one check-in. The
// redemption day is the calendar date of now in loc.
func NewRedemption(memberID, venueID uuid.UUID, origin Origin, now time.Time, loc *time.Location) *Transaction {
	day := CalendarDay(now, loc)
	return &Transaction{
		ID:            uuid.New(),
		MemberID:      &memberID,
		VenueID:       &venueID,
		Coins:         RedemptionCost,
		Kind:          shared.TransactionKindRedemption,
		Status:        shared.TransactionStatusCompleted,
		OccurredAt:    now.UTC(),
		RedemptionDay: &day,
		Origin:        origin,
	}
}

// NewPayout builds a PAYOUT transaction settling coins held by a venue
func NewPayout(venueID uuid.UUID, coins int64, origin Origin, now time.Time) (*Transaction, error) {
	if coins <= 0 {
		return nil, ErrInvalidAmount
	}
	return &Transaction{
		ID:         uuid.New(),
		VenueID:    &venueID,
		Coins:      coins,
		Kind:       shared.TransactionKindPayout,
		Status:     shared.TransactionStatusCompleted,
		OccurredAt: now.UTC(),
		Origin:     origin,
	}, nil
}

// MarkFailed turns the transaction into a FAILED attempt record
func (t *Transaction) MarkFailed() {
	t.Status = shared.TransactionStatusFailed
}

// NewPurchaseRecord pairs a purchase transaction with the amount charged.
// amount must already have passed ValidatePurchase.
func NewPurchaseRecord(t *Transaction, amount decimal.Decimal) *PurchaseRecord {
	record := &PurchaseRecord{
		TransactionID: t.ID,
		Coins:         t.Coins,
		AmountCharged: amount,
		OccurredAt:    t.OccurredAt,
	}
	if t.MemberID != nil {
		record.MemberID = *t.MemberID
	}
	return record
}

// Event converts the transaction into its published form
func (t *Transaction) Event() *shared.CoinEvent {
	return &shared.CoinEvent{
		TransactionID: t.ID,
		MemberID:      t.MemberID,
		VenueID:       t.VenueID,
		Kind:          t.Kind,
		Coins:         t.Coins,
		Status:        t.Status,
		ClientIP:      t.Origin.ClientIP,
		Device:        t.Origin.Device,
		CorrelationID: t.Origin.CorrelationID,
		OccurredAt:    t.OccurredAt,
	}
}

// CalendarDay returns midnight UTC of the date t falls on in loc. The
// result is suitable for DATE columns.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first instant of the month t falls on in loc
func MonthStart(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
}
