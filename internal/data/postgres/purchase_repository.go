package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/domain/coin"
	"github.com/gym-coin-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// PurchaseRepository implements coin.PurchaseRepository for PostgreSQL
type PurchaseRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewPurchaseRepository(logger *slog.Logger, db *persistence.PostgresDB) coin.PurchaseRepository {
	return &PurchaseRepository{
		querier: db.Querier(),
		logger:  logger,
	}
}

func (r *PurchaseRepository) WithTx(tx pgx.Tx) coin.PurchaseRepository {
	return &PurchaseRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func (r *PurchaseRepository) Create(ctx context.Context, record *coin.PurchaseRecord) error {
	query := `
		INSERT INTO purchase_records (transaction_id, member_id, coins, amount_charged, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.querier.Exec(ctx, query,
		record.TransactionID,
		record.MemberID,
		record.Coins,
		record.AmountCharged,
		record.OccurredAt,
	)
	if err != nil {
		r.logger.Error("Failed to create purchase record",
			"transaction_id", record.TransactionID.String(),
			"member_id", record.MemberID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create purchase record: %w", err)
	}

	return nil
}

func (r *PurchaseRepository) ListByMember(ctx context.Context, memberID uuid.UUID, limit, offset int) ([]*coin.PurchaseRecord, error) {
	query := `
		SELECT transaction_id, member_id, coins, amount_charged, occurred_at
		FROM purchase_records
		WHERE member_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, memberID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list purchase records", "member_id", memberID.String(), "error", err)
		return nil, fmt.Errorf("failed to list purchase records: %w", err)
	}
	defer rows.Close()

	records := make([]*coin.PurchaseRecord, 0)
	for rows.Next() {
		var p coin.PurchaseRecord
		if err := rows.Scan(&p.TransactionID, &p.MemberID, &p.Coins, &p.AmountCharged, &p.OccurredAt); err != nil {
			r.logger.Error("Failed to scan purchase record", "error", err)
			return nil, fmt.Errorf("failed to scan purchase record: %w", err)
		}
		records = append(records, &p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over purchase records", "error", err)
		return nil, fmt.Errorf("error iterating over purchase records: %w", err)
	}

	return records, nil
}
