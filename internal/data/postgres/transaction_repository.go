package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/domain/coin"
	"github.com/gym-coin-ledger/internal/domain/shared"
	"github.com/gym-coin-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, member_id, venue_id, coins, kind, status, occurred_at, redemption_day, client_ip, device, correlation_id`

// TransactionRepository implements coin.TransactionRepository for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) coin.TransactionRepository {
	return &TransactionRepository{
		querier: db.Querier(),
		logger:  logger,
	}
}

func (r *TransactionRepository) WithTx(tx pgx.Tx) coin.TransactionRepository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func transactionArgs(t *coin.Transaction) []interface{} {
	return []interface{}{
		t.ID,
		t.MemberID,
		t.VenueID,
		t.Coins,
		t.Kind,
		t.Status,
		t.OccurredAt,
		t.RedemptionDay,
		t.Origin.ClientIP,
		t.Origin.Device,
		t.Origin.CorrelationID,
	}
}

// Append inserts a transaction into the log
func (r *TransactionRepository) Append(ctx context.Context, t *coin.Transaction) error {
	query := `
		INSERT INTO coin_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	if _, err := r.querier.Exec(ctx, query, transactionArgs(t)...); err != nil {
		r.logger.Error("Failed to append transaction",
			"transaction_id", t.ID.String(),
			"kind", string(t.Kind),
			"error", err,
		)
		return fmt.Errorf("failed to append transaction: %w", err)
	}

	return nil
}

// AppendRedemption inserts a completed redemption unless one already exists
// for the same member, venue and day. The partial unique index decides, so
// two concurrent attempts cannot both succeed.
func (r *TransactionRepository) AppendRedemption(ctx context.Context, t *coin.Transaction) (bool, error) {
	query := `
		INSERT INTO coin_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (member_id, venue_id, redemption_day)
			WHERE kind = 'REDEMPTION' AND status = 'COMPLETED'
		DO NOTHING
	`

	result, err := r.querier.Exec(ctx, query, transactionArgs(t)...)
	if err != nil {
		r.logger.Error("Failed to append redemption",
			"transaction_id", t.ID.String(),
			"error", err,
		)
		return false, fmt.Errorf("failed to append redemption: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *TransactionRepository) ListByMember(ctx context.Context, memberID uuid.UUID, kind shared.TransactionKind, limit, offset int) ([]*coin.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM coin_transactions
		WHERE member_id = $1 AND kind = $2
		ORDER BY occurred_at DESC
		LIMIT $3 OFFSET $4
	`
	return r.list(ctx, query, memberID, kind, limit, offset)
}

func (r *TransactionRepository) CountByMember(ctx context.Context, memberID uuid.UUID, kind shared.TransactionKind) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM coin_transactions
		WHERE member_id = $1 AND kind = $2
	`
	return r.count(ctx, query, memberID, kind)
}

func (r *TransactionRepository) ListByVenue(ctx context.Context, venueID uuid.UUID, kind shared.TransactionKind, limit, offset int) ([]*coin.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM coin_transactions
		WHERE venue_id = $1 AND kind = $2
		ORDER BY occurred_at DESC
		LIMIT $3 OFFSET $4
	`
	return r.list(ctx, query, venueID, kind, limit, offset)
}

func (r *TransactionRepository) CountByVenue(ctx context.Context, venueID uuid.UUID, kind shared.TransactionKind) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM coin_transactions
		WHERE venue_id = $1 AND kind = $2
	`
	return r.count(ctx, query, venueID, kind)
}

func (r *TransactionRepository) list(ctx context.Context, query string, ownerID uuid.UUID, kind shared.TransactionKind, limit, offset int) ([]*coin.Transaction, error) {
	rows, err := r.querier.Query(ctx, query, ownerID, kind, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list transactions",
			"owner_id", ownerID.String(),
			"kind", string(kind),
			"error", err,
		)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]*coin.Transaction, 0)
	for rows.Next() {
		var t coin.Transaction
		var clientIP, device, correlationID *string
		err := rows.Scan(
			&t.ID,
			&t.MemberID,
			&t.VenueID,
			&t.Coins,
			&t.Kind,
			&t.Status,
			&t.OccurredAt,
			&t.RedemptionDay,
			&clientIP,
			&device,
			&correlationID,
		)
		if err != nil {
			r.logger.Error("Failed to scan transaction", "error", err)
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Origin = coin.Origin{
			ClientIP:      deref(clientIP),
			Device:        deref(device),
			CorrelationID: deref(correlationID),
		}
		transactions = append(transactions, &t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over transactions", "error", err)
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}

	return transactions, nil
}

func (r *TransactionRepository) count(ctx context.Context, query string, ownerID uuid.UUID, kind shared.TransactionKind) (int64, error) {
	var count int64
	if err := r.querier.QueryRow(ctx, query, ownerID, kind).Scan(&count); err != nil {
		r.logger.Error("Failed to count transactions",
			"owner_id", ownerID.String(),
			"kind", string(kind),
			"error", err,
		)
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
