package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/coin_gateway/middleware"
	"github.com/gym-coin-ledger/internal/coin_gateway/service"
	"github.com/gym-coin-ledger/internal/domain/audit"
	"github.com/gym-coin-ledger/internal/domain/shared"
)

// AdminHandler serves the platform operator endpoints
type AdminHandler struct {
	ledgerService service.LedgerService
	reportService service.ReportService
	auditService  service.AuditService
	logger        *slog.Logger
}

func NewAdminHandler(logger *slog.Logger, ledgerService service.LedgerService, reportService service.ReportService, auditService service.AuditService) *AdminHandler {
	return &AdminHandler{
		ledgerService: ledgerService,
		reportService: reportService,
		auditService:  auditService,
		logger:        logger,
	}
}

// Overview returns circulating and venue-held totals with a per-venue breakdown
func (h *AdminHandler) Overview(c *gin.Context) {
	overview, err := h.reportService.PlatformOverview(c.Request.Context())
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}
	RespondOK(c, mapOverview(overview))
}

// Payout settles coins held by a venue
func (h *AdminHandler) Payout(c *gin.Context) {
	var req PayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid payout request", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	venueID, err := uuid.Parse(req.VenueID)
	if err != nil {
		RespondBadRequest(c, "Invalid venue ID")
		return
	}

	result, err := h.ledgerService.Payout(c.Request.Context(), service.PayoutCommand{
		VenueID: venueID,
		Coins:   req.Amount,
		Origin:  requestOrigin(c),
	})
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}

	h.logger.Info("Venue payout recorded",
		"venue_id", venueID,
		"coins", req.Amount,
		"admin", c.GetString(middleware.AdminSubjectKey),
		"correlation_id", middleware.GetCorrelationID(c))

	RespondOK(c, PayoutResponse{
		TransactionID: result.Transaction.ID.String(),
		VenueID:       venueID.String(),
		Coins:         result.Transaction.Coins,
		VenueBalance:  result.VenueBalance,
		OccurredAt:    formatTime(result.Transaction.OccurredAt),
	})
}

// Audit pages through the audit trail, newest first
func (h *AdminHandler) Audit(c *gin.Context) {
	var query AuditQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := audit.Filter{Status: shared.TransactionStatus(query.Status)}
	if query.MemberID != "" {
		id, err := uuid.Parse(query.MemberID)
		if err != nil {
			RespondBadRequest(c, "Invalid member ID")
			return
		}
		filter.MemberID = &id
	}
	if query.VenueID != "" {
		id, err := uuid.Parse(query.VenueID)
		if err != nil {
			RespondBadRequest(c, "Invalid venue ID")
			return
		}
		filter.VenueID = &id
	}

	entries, total, err := h.auditService.Trail(c.Request.Context(), filter, query.Page, query.PerPage)
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}

	RespondWithPaginatedData(c, mapAuditEntries(entries), query.Page, query.PerPage, int(total))
}

// Reconciliation compares this month's ledger redemptions per venue with the
// audit trail
func (h *AdminHandler) Reconciliation(c *gin.Context) {
	report, err := h.auditService.Reconcile(c.Request.Context())
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}
	if report.Mismatches > 0 {
		h.logger.Warn("Audit trail out of step with ledger", "mismatches", report.Mismatches)
	}
	RespondOK(c, mapReconciliation(report))
}
