package components

import (
	"log/slog"

	"github.com/gym-coin-ledger/internal/coin_gateway/service"
	"github.com/gym-coin-ledger/internal/config"
	"github.com/gym-coin-ledger/internal/domain/audit"
	"github.com/gym-coin-ledger/internal/domain/coin"
	"github.com/gym-coin-ledger/internal/domain/membership"
	"github.com/gym-coin-ledger/internal/domain/outbox"
	"github.com/gym-coin-ledger/internal/domain/visit"
)

// Repositories are the stores the gateway services are built from
type Repositories struct {
	Balances     coin.BalanceRepository
	Transactions coin.TransactionRepository
	Purchases    coin.PurchaseRepository
	Reports      coin.ReportRepository
	Visits       visit.Repository
	Outbox       outbox.Repository
	Directory    membership.Directory
	Audit        audit.Repository
}

// Services are the gateway's handler-facing services
type Services struct {
	Ledger service.LedgerService
	Report service.ReportService
	Code   service.CodeService
	Audit  service.AuditService
}

// CreateLedgerService wires the ledger service with its components
func CreateLedgerService(txExecutor service.TxExecutor, repos Repositories, logger *slog.Logger, cfg *config.Config) service.LedgerService {
	components := service.LedgerComponents{
		Eligibility: NewEligibilityChecker(repos.Directory, logger),
		Guard:       NewRedemptionGuard(repos.Transactions, logger),
		Balances:    NewBalanceManager(repos.Balances, logger),
		Log:         NewTransactionLog(repos.Transactions, repos.Purchases, logger),
		Visits:      NewVisitTracker(repos.Visits, cfg.Coin.HistoryCapacity, logger),
		Outbox:      NewOutboxManager(repos.Outbox, logger),
		Failures:    NewFailureRecorder(repos.Audit, logger),
	}

	return service.NewLedgerService(txExecutor, components, cfg.Coin.Location(), logger.With("component", "ledger"))
}

// CreateServices builds every service the gateway exposes
func CreateServices(txExecutor service.TxExecutor, repos Repositories, logger *slog.Logger, cfg *config.Config) Services {
	location := cfg.Coin.Location()

	return Services{
		Ledger: CreateLedgerService(txExecutor, repos, logger, cfg),
		Report: service.NewReportService(txExecutor, service.ReportRepositories{
			Balances:     repos.Balances,
			Transactions: repos.Transactions,
			Purchases:    repos.Purchases,
			Reports:      repos.Reports,
			Visits:       repos.Visits,
			Directory:    repos.Directory,
		}, location, cfg.Coin.ReportMonths, logger.With("component", "reporter")),
		Code:  service.NewCodeService(repos.Directory, NewQRRenderer(cfg.Coin.QRCodeSize), logger.With("component", "codes")),
		Audit: service.NewAuditService(repos.Audit, repos.Reports, txExecutor, location, logger.With("component", "audit")),
	}
}
