package audit

import (
	"time"

	"github.com/gym-coin-ledger/internal/domain/shared"
)

// Entry is one document of the audit trail. Completed transactions arrive
// through the coin events topic, failed attempts are written directly.
type Entry struct {
	TransactionID string                   `json:"transaction_id" bson:"transaction_id"`
	MemberID      string                   `json:"member_id,omitempty" bson:"member_id,omitempty"`
	VenueID       string                   `json:"venue_id,omitempty" bson:"venue_id,omitempty"`
	Kind          shared.TransactionKind   `json:"kind" bson:"kind"`
	Coins         int64                    `json:"coins" bson:"coins"`
	Status        shared.TransactionStatus `json:"status" bson:"status"`
	FailureReason string                   `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	ClientIP      string                   `json:"client_ip,omitempty" bson:"client_ip,omitempty"`
	Device        string                   `json:"device,omitempty" bson:"device,omitempty"`
	CorrelationID string                   `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	OccurredAt    time.Time                `json:"occurred_at" bson:"occurred_at"`
	RecordedAt    time.Time                `json:"recorded_at" bson:"recorded_at"`
}

// FromEvent projects a coin event into an audit entry
func FromEvent(e *shared.CoinEvent) *Entry {
	entry := &Entry{
		TransactionID: e.TransactionID.String(),
		Kind:          e.Kind,
		Coins:         e.Coins,
		Status:        e.Status,
		ClientIP:      e.ClientIP,
		Device:        e.Device,
		CorrelationID: e.CorrelationID,
		OccurredAt:    e.OccurredAt.UTC(),
		RecordedAt:    time.Now().UTC(),
	}
	if e.MemberID != nil {
		entry.MemberID = e.MemberID.String()
	}
	if e.VenueID != nil {
		entry.VenueID = e.VenueID.String()
	}
	return entry
}

// VenueSum is the audited coin total of one venue over a period
type VenueSum struct {
	VenueID string `json:"venue_id" bson:"_id"`
	Coins   int64  `json:"coins" bson:"coins"`
	Events  int64  `json:"events" bson:"events"`
}
