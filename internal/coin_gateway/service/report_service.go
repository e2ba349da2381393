package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/domain/coin"
	"github.com/gym-coin-ledger/internal/domain/membership"
	"github.com/gym-coin-ledger/internal/domain/shared"
	"github.com/gym-coin-ledger/internal/domain/visit"
	"github.com/jackc/pgx/v5"
)

// ReportRepositories groups the read-side stores used by the reporter
type ReportRepositories struct {
	Balances     coin.BalanceRepository
	Transactions coin.TransactionRepository
	Purchases    coin.PurchaseRepository
	Reports      coin.ReportRepository
	Visits       visit.Repository
	Directory    membership.Directory
}

// ReportServiceImpl reads inside snapshot transactions so totals computed in
// one call never mix states from concurrent ledger writes.
type ReportServiceImpl struct {
	txExecutor   TxExecutor
	repos        ReportRepositories
	location     *time.Location
	reportMonths int
	now          func() time.Time
	logger       *slog.Logger
}

func NewReportService(txExecutor TxExecutor, repos ReportRepositories, location *time.Location, reportMonths int, logger *slog.Logger) *ReportServiceImpl {
	if location == nil {
		location = time.UTC
	}
	if reportMonths <= 0 {
		reportMonths = 1
	}
	return &ReportServiceImpl{
		txExecutor:   txExecutor,
		repos:        repos,
		location:     location,
		reportMonths: reportMonths,
		now:          time.Now,
		logger:       logger,
	}
}

func (s *ReportServiceImpl) MemberStatement(ctx context.Context, memberID uuid.UUID, page, perPage int) (*MemberStatement, error) {
	member, err := s.repos.Directory.GetMember(ctx, memberID)
	if err != nil {
		return nil, classify(err)
	}

	statement := &MemberStatement{MemberID: memberID, DisplayName: member.DisplayName}
	offset := pageOffset(page, perPage)

	err = s.txExecutor.ExecuteReadTx(ctx, func(tx pgx.Tx) error {
		balance, err := s.repos.Balances.WithTx(tx).Get(ctx, memberID, shared.OwnerKindMember)
		if err != nil {
			return err
		}
		statement.Balance = balance.Balance

		if statement.Purchases, err = s.repos.Purchases.WithTx(tx).ListByMember(ctx, memberID, perPage, offset); err != nil {
			return err
		}

		transactions := s.repos.Transactions.WithTx(tx)
		if statement.Redemptions, err = transactions.ListByMember(ctx, memberID, shared.TransactionKindRedemption, perPage, offset); err != nil {
			return err
		}
		if statement.TotalRedemptions, err = transactions.CountByMember(ctx, memberID, shared.TransactionKindRedemption); err != nil {
			return err
		}

		statement.History, err = s.repos.Visits.WithTx(tx).Get(ctx, memberID)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to build member statement", "member_id", memberID.String(), "error", err)
		return nil, classify(err)
	}

	statement.VenueNames = s.venueNames(ctx, venueIDs(statement.Redemptions, statement.History))
	return statement, nil
}

func (s *ReportServiceImpl) VenueStatement(ctx context.Context, venueID uuid.UUID, page, perPage int) (*VenueStatement, error) {
	venue, err := s.repos.Directory.GetVenue(ctx, venueID)
	if err != nil {
		return nil, classify(err)
	}

	now := s.now()
	monthStart := coin.MonthStart(now, s.location)
	seriesStart := monthStart.AddDate(0, -(s.reportMonths - 1), 0)
	statement := &VenueStatement{VenueID: venueID, DisplayName: venue.DisplayName}

	err = s.txExecutor.ExecuteReadTx(ctx, func(tx pgx.Tx) error {
		balance, err := s.repos.Balances.WithTx(tx).Get(ctx, venueID, shared.OwnerKindVenue)
		if err != nil {
			return err
		}
		statement.Balance = balance.Balance

		transactions := s.repos.Transactions.WithTx(tx)
		if statement.Redemptions, err = transactions.ListByVenue(ctx, venueID, shared.TransactionKindRedemption, perPage, pageOffset(page, perPage)); err != nil {
			return err
		}
		if statement.TotalRedemptions, err = transactions.CountByVenue(ctx, venueID, shared.TransactionKindRedemption); err != nil {
			return err
		}

		reports := s.repos.Reports.WithTx(tx)
		if statement.CurrentMonth, err = reports.SumVenueRedemptions(ctx, venueID, monthStart, now); err != nil {
			return err
		}
		statement.Monthly, err = reports.MonthlyVenueRedemptions(ctx, venueID, seriesStart, now, s.location.String())
		return err
	})
	if err != nil {
		s.logger.Error("Failed to build venue statement", "venue_id", venueID.String(), "error", err)
		return nil, classify(err)
	}

	return statement, nil
}

func (s *ReportServiceImpl) PlatformOverview(ctx context.Context) (*PlatformOverview, error) {
	now := s.now()
	overview := &PlatformOverview{MonthStart: coin.MonthStart(now, s.location)}

	var breakdown []coin.VenueTotals
	err := s.txExecutor.ExecuteReadTx(ctx, func(tx pgx.Tx) error {
		reports := s.repos.Reports.WithTx(tx)
		totals, err := reports.SumBalances(ctx)
		if err != nil {
			return err
		}
		overview.CirculatingCoins = totals.MemberCoins
		overview.VenueHeldCoins = totals.VenueCoins

		breakdown, err = reports.VenueBreakdown(ctx, overview.MonthStart, now)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to build platform overview", "error", err)
		return nil, classify(err)
	}

	ids := make([]uuid.UUID, 0, len(breakdown))
	for _, v := range breakdown {
		ids = append(ids, v.VenueID)
	}
	names := s.venueNames(ctx, ids)

	overview.Venues = make([]VenueOverview, 0, len(breakdown))
	for _, v := range breakdown {
		overview.Venues = append(overview.Venues, VenueOverview{
			VenueID:          v.VenueID,
			DisplayName:      names[v.VenueID],
			Balance:          v.Balance,
			MonthRedemptions: v.MonthRedemptions,
		})
	}
	return overview, nil
}

// venueNames is best effort; statements are still served without names
func (s *ReportServiceImpl) venueNames(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]string {
	if len(ids) == 0 {
		return map[uuid.UUID]string{}
	}
	names, err := s.repos.Directory.VenueNames(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to resolve venue names", "count", len(ids), "error", err)
		return map[uuid.UUID]string{}
	}
	return names
}

func venueIDs(redemptions []*coin.Transaction, history *visit.History) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	add := func(id uuid.UUID) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, r := range redemptions {
		if r.VenueID != nil {
			add(*r.VenueID)
		}
	}
	if history != nil {
		for _, e := range history.Entries {
			add(e.VenueID)
		}
	}
	return ids
}
