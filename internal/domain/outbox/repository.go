package outbox

import (
	"context"
	"strconv"
	"time"

	"github.com/gym-coin-ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5"
)

// Repository persists coin events between commit and publication. Create is
// called inside the ledger transaction via WithTx; the rest is driven by the
// outbox poller.
type Repository interface {
	Create(ctx context.Context, message *Message) error
	GetPending(ctx context.Context, limit int) ([]*Message, error)
	UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error
	IncrementAttempts(ctx context.Context, id int64) error
	// PurgeProcessed deletes PROCESSED messages last touched before cutoff
	PurgeProcessed(ctx context.Context, cutoff time.Time) (int64, error)
	WithTx(tx pgx.Tx) Repository
}

type ErrMessageNotFound struct {
	ID int64
}

func (e ErrMessageNotFound) Error() string {
	return "outbox message " + strconv.FormatInt(e.ID, 10) + " not found"
}
