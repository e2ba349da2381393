package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/coin_gateway/service"
	"github.com/gym-coin-ledger/internal/domain/visit"
	"github.com/jackc/pgx/v5"
)

type VisitTrackerImpl struct {
	visitRepo visit.Repository
	capacity  int
	logger    *slog.Logger
}

func NewVisitTracker(visitRepo visit.Repository, capacity int, logger *slog.Logger) service.VisitTracker {
	if capacity <= 0 {
		capacity = visit.DefaultCapacity
	}
	return &VisitTrackerImpl{
		visitRepo: visitRepo,
		capacity:  capacity,
		logger:    logger,
	}
}

// RecordVisit runs inside the redemption transaction so a rolled back
// redemption leaves the history untouched
func (t *VisitTrackerImpl) RecordVisit(ctx context.Context, tx pgx.Tx, memberID, venueID uuid.UUID, at time.Time) (*visit.History, error) {
	repo := t.visitRepo.WithTx(tx)

	history, err := repo.LockForUpdate(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock visit history: %w", err)
	}

	history.Record(venueID, at, t.capacity)

	if err := repo.Save(ctx, history); err != nil {
		return nil, fmt.Errorf("failed to save visit history: %w", err)
	}

	t.logger.Debug("Visit recorded",
		"member_id", memberID.String(),
		"venue_id", venueID.String(),
		"entries", len(history.Entries),
		"distinct_venues", history.DistinctVenueCount,
	)
	return history, nil
}
