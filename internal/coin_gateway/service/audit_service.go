package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/domain/audit"
	"github.com/gym-coin-ledger/internal/domain/coin"
	"github.com/gym-coin-ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5"
)

type AuditServiceImpl struct {
	auditRepo  audit.Repository
	reportRepo coin.ReportRepository
	txExecutor TxExecutor
	location   *time.Location
	now        func() time.Time
	logger     *slog.Logger
}

func NewAuditService(auditRepo audit.Repository, reportRepo coin.ReportRepository, txExecutor TxExecutor, location *time.Location, logger *slog.Logger) *AuditServiceImpl {
	if location == nil {
		location = time.UTC
	}
	return &AuditServiceImpl{
		auditRepo:  auditRepo,
		reportRepo: reportRepo,
		txExecutor: txExecutor,
		location:   location,
		now:        time.Now,
		logger:     logger,
	}
}

// Trail pages through the audit trail newest first
func (s *AuditServiceImpl) Trail(ctx context.Context, filter audit.Filter, page, perPage int) ([]*audit.Entry, int64, error) {
	entries, err := s.auditRepo.Find(ctx, filter, perPage, pageOffset(page, perPage))
	if err != nil {
		return nil, 0, classify(err)
	}

	total, err := s.auditRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, classify(err)
	}

	return entries, total, nil
}

// Reconcile compares this month's redemptions per venue in the ledger with
// the audit trail. Differences are expected while the projector lags.
func (s *AuditServiceImpl) Reconcile(ctx context.Context) (*Reconciliation, error) {
	now := s.now()
	from := coin.MonthStart(now, s.location)

	var breakdown []coin.VenueTotals
	err := s.txExecutor.ExecuteReadTx(ctx, func(tx pgx.Tx) error {
		var err error
		breakdown, err = s.reportRepo.WithTx(tx).VenueBreakdown(ctx, from, now)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}

	audited, err := s.auditRepo.SumByVenue(ctx, shared.TransactionKindRedemption, from, now)
	if err != nil {
		return nil, classify(err)
	}

	rows := make(map[uuid.UUID]*VenueReconciliation)
	row := func(id uuid.UUID) *VenueReconciliation {
		r, ok := rows[id]
		if !ok {
			r = &VenueReconciliation{VenueID: id}
			rows[id] = r
		}
		return r
	}
	for _, v := range breakdown {
		row(v.VenueID).LedgerCoins = v.MonthRedemptions
	}
	for _, a := range audited {
		id, err := uuid.Parse(a.VenueID)
		if err != nil {
			s.logger.Warn("Skipping audit sum with malformed venue id", "venue_id", a.VenueID)
			continue
		}
		row(id).AuditedCoins = a.Coins
	}

	result := &Reconciliation{From: from, To: now, Venues: make([]VenueReconciliation, 0, len(rows))}
	for _, r := range rows {
		if r.LedgerCoins == 0 && r.AuditedCoins == 0 {
			continue
		}
		if r.Difference() != 0 {
			result.Mismatches++
		}
		result.Venues = append(result.Venues, *r)
	}
	sort.Slice(result.Venues, func(i, j int) bool {
		return result.Venues[i].VenueID.String() < result.Venues[j].VenueID.String()
	})

	if result.Mismatches > 0 {
		s.logger.Warn("Audit trail differs from ledger", "mismatches", result.Mismatches, "from", from)
	}
	return result, nil
}
