package components

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gym-coin-ledger/internal/coin_gateway/service"
	"github.com/gym-coin-ledger/internal/domain/audit"
	"github.com/gym-coin-ledger/internal/domain/coin"
	"github.com/gym-coin-ledger/internal/domain/shared"
)

// FailureRecorderImpl writes rejected attempts straight to the audit trail.
// The transaction log only ever holds completed transactions.
type FailureRecorderImpl struct {
	auditRepo audit.Repository
	logger    *slog.Logger
}

func NewFailureRecorder(auditRepo audit.Repository, logger *slog.Logger) service.FailureRecorder {
	return &FailureRecorderImpl{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

func (r *FailureRecorderImpl) RecordFailure(ctx context.Context, attempt *coin.Transaction, reason shared.FailureReason) error {
	entry := audit.FromEvent(attempt.Event())
	entry.Status = shared.TransactionStatusFailed
	entry.FailureReason = string(reason)

	if err := r.auditRepo.Record(ctx, entry); err != nil {
		if errors.Is(err, audit.ErrDuplicateEntry{}) {
			r.logger.Info("Failed attempt already recorded", "transaction_id", entry.TransactionID)
			return nil
		}
		return err
	}

	r.logger.Info("Recorded failed attempt",
		"transaction_id", entry.TransactionID,
		"kind", string(entry.Kind),
		"reason", entry.FailureReason,
	)
	return nil
}
