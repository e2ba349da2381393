package service

import (
	"fmt"
	"log/slog"

	"github.com/gym-coin-ledger/internal/config"
	"github.com/gym-coin-ledger/internal/domain/audit"
)

// CreateProjectionService wires the audit projection behind a worker pool
func CreateProjectionService(auditRepo audit.Repository, cfg *config.Config, logger *slog.Logger) (*WorkerPoolProjectionService, error) {
	base := NewAuditProjectionService(auditRepo, logger)
	pooled, err := NewWorkerPoolProjectionService(base, WorkerPoolConfig{Size: cfg.WorkerPool.Size}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	return pooled, nil
}
