package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/domain/coin"
	"github.com/gym-coin-ledger/internal/domain/membership"
	"github.com/gym-coin-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// DirectoryRepository reads members and venues. The tables are owned by the
// membership system; the ledger only reads them.
type DirectoryRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewDirectoryRepository(logger *slog.Logger, db *persistence.PostgresDB) membership.Directory {
	return &DirectoryRepository{
		querier: db.Querier(),
		logger:  logger,
	}
}

func (r *DirectoryRepository) GetMember(ctx context.Context, id uuid.UUID) (*membership.Member, error) {
	query := `
		SELECT id, display_name, is_premium
		FROM members
		WHERE id = $1
	`

	var m membership.Member
	err := r.querier.QueryRow(ctx, query, id).Scan(&m.ID, &m.DisplayName, &m.Premium)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coin.ErrMemberNotFound{MemberID: id}
		}
		r.logger.Error("Failed to get member", "member_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return &m, nil
}

func (r *DirectoryRepository) GetVenue(ctx context.Context, id uuid.UUID) (*membership.Venue, error) {
	query := `
		SELECT id, display_name
		FROM venues
		WHERE id = $1
	`

	var v membership.Venue
	err := r.querier.QueryRow(ctx, query, id).Scan(&v.ID, &v.DisplayName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coin.ErrVenueNotFound{VenueID: id}
		}
		r.logger.Error("Failed to get venue", "venue_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}

	return &v, nil
}

// VenueNames resolves display names in one round trip; unknown ids are omitted
func (r *DirectoryRepository) VenueNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}

	query := `
		SELECT id, display_name
		FROM venues
		WHERE id = ANY($1::uuid[])
	`

	rows, err := r.querier.Query(ctx, query, raw)
	if err != nil {
		r.logger.Error("Failed to get venue names", "count", len(ids), "error", err)
		return nil, fmt.Errorf("failed to get venue names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan venue name: %w", err)
		}
		names[id] = name
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over venue names: %w", err)
	}

	return names, nil
}
