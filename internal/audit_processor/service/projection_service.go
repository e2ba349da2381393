package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gym-coin-ledger/internal/domain/audit"
	"github.com/gym-coin-ledger/internal/domain/shared"
)

// AuditProjectionService records each event once; redelivered events are
// acknowledged without a second write
type AuditProjectionService struct {
	auditRepo audit.Repository
	logger    *slog.Logger
}

func NewAuditProjectionService(auditRepo audit.Repository, logger *slog.Logger) *AuditProjectionService {
	return &AuditProjectionService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

func (s *AuditProjectionService) Project(ctx context.Context, event *shared.CoinEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	entry := audit.FromEvent(event)
	if err := s.auditRepo.Record(ctx, entry); err != nil {
		if errors.Is(err, audit.ErrDuplicateEntry{}) {
			logger.Info("Coin event already in audit trail", "transaction_id", entry.TransactionID)
			return nil
		}
		logger.Error("Failed to record audit entry", "transaction_id", entry.TransactionID, "error", err)
		return fmt.Errorf("failed to record audit entry %s: %w", entry.TransactionID, err)
	}

	logger.Info("Coin event projected",
		"transaction_id", entry.TransactionID,
		"kind", entry.Kind,
		"coins", entry.Coins,
	)
	return nil
}
