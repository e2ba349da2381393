package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/domain/shared"
)

// Filter narrows audit trail queries; nil fields are ignored
type Filter struct {
	MemberID *uuid.UUID
	VenueID  *uuid.UUID
	Status   shared.TransactionStatus
}

// Repository manages the audit trail
type Repository interface {
	// Record stores an entry once; a repeated transaction id yields ErrDuplicateEntry
	Record(ctx context.Context, entry *Entry) error

	Find(ctx context.Context, filter Filter, limit, offset int) ([]*Entry, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	SumByVenue(ctx context.Context, kind shared.TransactionKind, from, to time.Time) ([]VenueSum, error)
}

// ErrDuplicateEntry indicates the transaction is already in the trail
type ErrDuplicateEntry struct {
	TransactionID string
}

func (e ErrDuplicateEntry) Error() string {
	return "duplicate audit entry: " + e.TransactionID
}

// Is implements the errors.Is interface for ErrDuplicateEntry
func (e ErrDuplicateEntry) Is(target error) bool {
	t, ok := target.(ErrDuplicateEntry)
	if !ok {
		return false
	}
	// An empty target id matches any duplicate
	if t.TransactionID == "" {
		return true
	}
	return e.TransactionID == t.TransactionID
}
