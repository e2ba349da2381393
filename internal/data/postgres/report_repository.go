package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/domain/coin"
	"github.com/gym-coin-ledger/internal/domain/shared"
	"github.com/gym-coin-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// ReportRepository implements coin.ReportRepository. Sums are computed in
// SQL so reports never load the full log into memory.
type ReportRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewReportRepository(logger *slog.Logger, db *persistence.PostgresDB) coin.ReportRepository {
	return &ReportRepository{
		querier: db.Querier(),
		logger:  logger,
	}
}

func (r *ReportRepository) WithTx(tx pgx.Tx) coin.ReportRepository {
	return &ReportRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// SumVenueRedemptions totals completed redemptions received in [from, to)
func (r *ReportRepository) SumVenueRedemptions(ctx context.Context, venueID uuid.UUID, from, to time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(coins), 0)::BIGINT
		FROM coin_transactions
		WHERE venue_id = $1 AND kind = $2 AND status = $3
			AND occurred_at >= $4 AND occurred_at < $5
	`

	var total int64
	err := r.querier.QueryRow(ctx, query,
		venueID,
		shared.TransactionKindRedemption,
		shared.TransactionStatusCompleted,
		from,
		to,
	).Scan(&total)
	if err != nil {
		r.logger.Error("Failed to sum venue redemptions", "venue_id", venueID.String(), "error", err)
		return 0, fmt.Errorf("failed to sum venue redemptions: %w", err)
	}

	return total, nil
}

// MonthlyVenueRedemptions groups completed redemptions in [from, to) by
// calendar month of the given zone, newest month first.
func (r *ReportRepository) MonthlyVenueRedemptions(ctx context.Context, venueID uuid.UUID, from, to time.Time, timezone string) ([]coin.MonthlyTotal, error) {
	query := `
		SELECT date_trunc('month', occurred_at AT TIME ZONE $2) AS month, SUM(coins)::BIGINT
		FROM coin_transactions
		WHERE venue_id = $1 AND kind = $3 AND status = $4
			AND occurred_at >= $5 AND occurred_at < $6
		GROUP BY month
		ORDER BY month DESC
	`

	rows, err := r.querier.Query(ctx, query,
		venueID,
		timezone,
		shared.TransactionKindRedemption,
		shared.TransactionStatusCompleted,
		from,
		to,
	)
	if err != nil {
		r.logger.Error("Failed to get monthly venue redemptions", "venue_id", venueID.String(), "error", err)
		return nil, fmt.Errorf("failed to get monthly venue redemptions: %w", err)
	}
	defer rows.Close()

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	totals := make([]coin.MonthlyTotal, 0)
	for rows.Next() {
		var month time.Time
		var coins int64
		if err := rows.Scan(&month, &coins); err != nil {
			r.logger.Error("Failed to scan monthly total", "error", err)
			return nil, fmt.Errorf("failed to scan monthly total: %w", err)
		}
		// date_trunc on a local timestamp yields wall-clock fields only
		totals = append(totals, coin.MonthlyTotal{
			Month: time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, loc),
			Coins: coins,
		})
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over monthly totals", "error", err)
		return nil, fmt.Errorf("error iterating over monthly totals: %w", err)
	}

	return totals, nil
}

// SumBalances totals member-held and venue-held coins
func (r *ReportRepository) SumBalances(ctx context.Context) (*coin.PlatformTotals, error) {
	query := `
		SELECT owner_kind, COALESCE(SUM(balance), 0)::BIGINT
		FROM coin_balances
		GROUP BY owner_kind
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to sum balances", "error", err)
		return nil, fmt.Errorf("failed to sum balances: %w", err)
	}
	defer rows.Close()

	totals := &coin.PlatformTotals{}
	for rows.Next() {
		var kind shared.OwnerKind
		var sum int64
		if err := rows.Scan(&kind, &sum); err != nil {
			r.logger.Error("Failed to scan balance sum", "error", err)
			return nil, fmt.Errorf("failed to scan balance sum: %w", err)
		}
		switch kind {
		case shared.OwnerKindMember:
			totals.MemberCoins = sum
		case shared.OwnerKindVenue:
			totals.VenueCoins = sum
		}
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over balance sums", "error", err)
		return nil, fmt.Errorf("error iterating over balance sums: %w", err)
	}

	return totals, nil
}

// VenueBreakdown lists every venue balance with redemptions received in [from, to)
func (r *ReportRepository) VenueBreakdown(ctx context.Context, from, to time.Time) ([]coin.VenueTotals, error) {
	query := `
		SELECT b.owner_id, b.balance, COALESCE(m.coins, 0)::BIGINT
		FROM coin_balances b
		LEFT JOIN (
			SELECT venue_id, SUM(coins) AS coins
			FROM coin_transactions
			WHERE kind = $1 AND status = $2 AND occurred_at >= $3 AND occurred_at < $4
			GROUP BY venue_id
		) m ON m.venue_id = b.owner_id
		WHERE b.owner_kind = $5
		ORDER BY b.balance DESC, b.owner_id
	`

	rows, err := r.querier.Query(ctx, query,
		shared.TransactionKindRedemption,
		shared.TransactionStatusCompleted,
		from,
		to,
		shared.OwnerKindVenue,
	)
	if err != nil {
		r.logger.Error("Failed to get venue breakdown", "error", err)
		return nil, fmt.Errorf("failed to get venue breakdown: %w", err)
	}
	defer rows.Close()

	breakdown := make([]coin.VenueTotals, 0)
	for rows.Next() {
		var v coin.VenueTotals
		if err := rows.Scan(&v.VenueID, &v.Balance, &v.MonthRedemptions); err != nil {
			r.logger.Error("Failed to scan venue totals", "error", err)
			return nil, fmt.Errorf("failed to scan venue totals: %w", err)
		}
		breakdown = append(breakdown, v)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over venue totals", "error", err)
		return nil, fmt.Errorf("error iterating over venue totals: %w", err)
	}

	return breakdown, nil
}
