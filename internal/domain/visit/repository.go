package visit

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository persists visit histories
type Repository interface {
	Get(ctx context.Context, memberID uuid.UUID) (*History, error)

	// LockForUpdate loads the history under a row lock, or an empty one if none exists
	LockForUpdate(ctx context.Context, memberID uuid.UUID) (*History, error)

	Save(ctx context.Context, history *History) error
	WithTx(tx pgx.Tx) Repository
}
