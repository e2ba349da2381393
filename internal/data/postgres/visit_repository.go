package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/domain/visit"
	"github.com/gym-coin-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// VisitRepository implements visit.Repository with one JSONB row per member
type VisitRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewVisitRepository(logger *slog.Logger, db *persistence.PostgresDB) visit.Repository {
	return &VisitRepository{
		querier: db.Querier(),
		logger:  logger,
	}
}

func (r *VisitRepository) WithTx(tx pgx.Tx) visit.Repository {
	return &VisitRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func (r *VisitRepository) Get(ctx context.Context, memberID uuid.UUID) (*visit.History, error) {
	query := `
		SELECT member_id, entries, distinct_venue_count, updated_at
		FROM visit_histories
		WHERE member_id = $1
	`
	return r.load(ctx, query, memberID)
}

// LockForUpdate must run inside a transaction to hold the row lock
func (r *VisitRepository) LockForUpdate(ctx context.Context, memberID uuid.UUID) (*visit.History, error) {
	query := `
		SELECT member_id, entries, distinct_venue_count, updated_at
		FROM visit_histories
		WHERE member_id = $1
		FOR UPDATE
	`
	return r.load(ctx, query, memberID)
}

func (r *VisitRepository) load(ctx context.Context, query string, memberID uuid.UUID) (*visit.History, error) {
	var h visit.History
	var entries json.RawMessage
	err := r.querier.QueryRow(ctx, query, memberID).Scan(
		&h.MemberID,
		&entries,
		&h.DistinctVenueCount,
		&h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return visit.NewHistory(memberID), nil
		}
		r.logger.Error("Failed to load visit history", "member_id", memberID.String(), "error", err)
		return nil, fmt.Errorf("failed to load visit history: %w", err)
	}

	if err := json.Unmarshal(entries, &h.Entries); err != nil {
		r.logger.Error("Failed to decode visit history", "member_id", memberID.String(), "error", err)
		return nil, fmt.Errorf("failed to decode visit history: %w", err)
	}
	if h.Entries == nil {
		h.Entries = []visit.Entry{}
	}

	return &h, nil
}

func (r *VisitRepository) Save(ctx context.Context, h *visit.History) error {
	entries, err := json.Marshal(h.Entries)
	if err != nil {
		return fmt.Errorf("failed to encode visit history: %w", err)
	}

	query := `
		INSERT INTO visit_histories (member_id, entries, distinct_venue_count, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (member_id)
		DO UPDATE SET entries = EXCLUDED.entries,
			distinct_venue_count = EXCLUDED.distinct_venue_count,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.querier.Exec(ctx, query, h.MemberID, entries, h.DistinctVenueCount, h.UpdatedAt); err != nil {
		r.logger.Error("Failed to save visit history", "member_id", h.MemberID.String(), "error", err)
		return fmt.Errorf("failed to save visit history: %w", err)
	}

	return nil
}
