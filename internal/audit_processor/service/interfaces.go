package service

import (
	"context"

	"github.com/gym-coin-ledger/internal/domain/shared"
)

// ProjectionService writes committed coin events into the audit trail
type ProjectionService interface {
	Project(ctx context.Context, event *shared.CoinEvent) error
}
