package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gym-coin-ledger/internal/domain/outbox"
	"github.com/gym-coin-ledger/internal/domain/shared"
	"github.com/gym-coin-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

const (
	insertOutboxSQL = `
		INSERT INTO coin_outbox (transaction_id, kind, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	// id is a serial, so ordering by it replays events in commit order
	selectPendingOutboxSQL = `
		SELECT id, transaction_id, kind, payload, status, attempts, created_at, last_attempt_at
		FROM coin_outbox
		WHERE status = $1
		ORDER BY id
		LIMIT $2`

	markOutboxSQL = `
		UPDATE coin_outbox
		SET status = $1, last_attempt_at = $2
		WHERE id = $3`

	bumpOutboxAttemptsSQL = `
		UPDATE coin_outbox
		SET attempts = attempts + 1, last_attempt_at = $1
		WHERE id = $2`

	purgeOutboxSQL = `
		DELETE FROM coin_outbox
		WHERE status = $1 AND last_attempt_at < $2`
)

// OutboxRepository stores coin events in coin_outbox until the audit
// processor has published them.
type OutboxRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewOutboxRepository(logger *slog.Logger, db *persistence.PostgresDB) outbox.Repository {
	return &OutboxRepository{
		querier: db.Querier(),
		logger:  logger,
	}
}

// WithTx binds the repository to a transaction so the message commits
// together with the balance changes it describes.
func (r *OutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return &OutboxRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func (r *OutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	err := r.querier.QueryRow(ctx, insertOutboxSQL,
		message.TransactionID,
		message.Kind,
		message.Payload,
		message.Status,
		message.Attempts,
		message.CreatedAt,
	).Scan(&message.ID)
	if err != nil {
		r.logger.Error("Outbox insert failed", "transaction_id", message.TransactionID.String(), "error", err)
		return fmt.Errorf("queueing coin event %s: %w", message.TransactionID, err)
	}
	return nil
}

func scanOutboxMessage(row pgx.CollectableRow) (*outbox.Message, error) {
	var m outbox.Message
	err := row.Scan(
		&m.ID,
		&m.TransactionID,
		&m.Kind,
		&m.Payload,
		&m.Status,
		&m.Attempts,
		&m.CreatedAt,
		&m.LastAttemptAt,
	)
	return &m, err
}

// GetPending returns up to limit unpublished messages, oldest first
func (r *OutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	rows, err := r.querier.Query(ctx, selectPendingOutboxSQL, shared.OutboxStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("loading pending coin events: %w", err)
	}

	messages, err := pgx.CollectRows(rows, scanOutboxMessage)
	if err != nil {
		return nil, fmt.Errorf("reading pending coin events: %w", err)
	}
	return messages, nil
}

func (r *OutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	return r.touch(ctx, id, "marking "+string(status), markOutboxSQL, status, time.Now(), id)
}

func (r *OutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	return r.touch(ctx, id, "counting publish attempt", bumpOutboxAttemptsSQL, time.Now(), id)
}

// touch runs a single-row update and reports a missing row as ErrMessageNotFound
func (r *OutboxRepository) touch(ctx context.Context, id int64, action, sql string, args ...any) error {
	result, err := r.querier.Exec(ctx, sql, args...)
	if err != nil {
		r.logger.Error("Outbox update failed", "id", id, "action", action, "error", err)
		return fmt.Errorf("%s for outbox message %d: %w", action, id, err)
	}
	if result.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: id}
	}
	return nil
}

// PurgeProcessed removes published messages older than cutoff. Pending and
// FAILED_TO_PUBLISH rows are kept for inspection.
func (r *OutboxRepository) PurgeProcessed(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.querier.Exec(ctx, purgeOutboxSQL, shared.OutboxStatusProcessed, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging processed coin events before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return result.RowsAffected(), nil
}
