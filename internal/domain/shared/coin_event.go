package shared

import (
	"time"

	"github.com/google/uuid"
)

// CoinEvent is the wire form of a committed ledger transaction. It travels
// through the outbox and the coin events topic into the audit trail.
type CoinEvent struct {
	TransactionID uuid.UUID         `json:"transaction_id"`
	MemberID      *uuid.UUID        `json:"member_id,omitempty"`
	VenueID       *uuid.UUID        `json:"venue_id,omitempty"`
	Kind          TransactionKind   `json:"kind"`
	Coins         int64             `json:"coins"`
	Status        TransactionStatus `json:"status"`
	ClientIP      string            `json:"client_ip,omitempty"`
	Device        string            `json:"device,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

// PartitionKey keeps all events of one account on the same partition.
func (e *CoinEvent) PartitionKey() string {
	if e.MemberID != nil {
		return e.MemberID.String()
	}
	if e.VenueID != nil {
		return e.VenueID.String()
	}
	return e.TransactionID.String()
}
