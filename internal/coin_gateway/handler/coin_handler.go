package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/coin_gateway/service"
)

// CoinHandler serves member and venue facing coin endpoints
type CoinHandler struct {
	ledgerService service.LedgerService
	reportService service.ReportService
	codeService   service.CodeService
	logger        *slog.Logger
}

// NewCoinHandler creates a new coin handler
func NewCoinHandler(logger *slog.Logger, ledgerService service.LedgerService, reportService service.ReportService, codeService service.CodeService) *CoinHandler {
	return &CoinHandler{
		ledgerService: ledgerService,
		reportService: reportService,
		codeService:   codeService,
		logger:        logger,
	}
}

// Purchase credits coins bought by a member
func (h *CoinHandler) Purchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid purchase request", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		RespondBadRequest(c, "Invalid member ID")
		return
	}

	result, err := h.ledgerService.Purchase(c.Request.Context(), service.PurchaseCommand{
		MemberID: memberID,
		Coins:    req.Coins,
		Amount:   req.Amount,
		Origin:   requestOrigin(c),
	})
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapPurchaseResult(result))
}

// Use redeems one coin for a check-in. The pair is given either by id or by
// the payloads of the scanned member and venue codes.
func (h *CoinHandler) Use(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid redemption request", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	memberID, venueID, ok := h.resolvePair(c, req)
	if !ok {
		return
	}

	result, err := h.ledgerService.Redeem(c.Request.Context(), service.RedeemCommand{
		MemberID: memberID,
		VenueID:  venueID,
		Origin:   requestOrigin(c),
	})
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapRedemptionResult(result))
}

func (h *CoinHandler) resolvePair(c *gin.Context, req RedeemRequest) (uuid.UUID, uuid.UUID, bool) {
	switch {
	case req.MemberCode != "" && req.VenueCode != "":
		memberID, venueID, err := h.codeService.ResolveCodes(req.MemberCode, req.VenueCode)
		if err != nil {
			RespondServiceError(c, h.logger, err)
			return uuid.Nil, uuid.Nil, false
		}
		return memberID, venueID, true
	case req.MemberID != "" && req.VenueID != "":
		memberID, err := uuid.Parse(req.MemberID)
		if err != nil {
			RespondBadRequest(c, "Invalid member ID")
			return uuid.Nil, uuid.Nil, false
		}
		venueID, err := uuid.Parse(req.VenueID)
		if err != nil {
			RespondBadRequest(c, "Invalid venue ID")
			return uuid.Nil, uuid.Nil, false
		}
		return memberID, venueID, true
	default:
		RespondBadRequest(c, "Either memberId and venueId or memberCode and venueCode are required")
		return uuid.Nil, uuid.Nil, false
	}
}

// MemberStatement returns balance, purchases, redemptions and recent venues
func (h *CoinHandler) MemberStatement(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		RespondBadRequest(c, "Invalid member ID")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	statement, err := h.reportService.MemberStatement(c.Request.Context(), memberID, pagination.Page, pagination.PerPage)
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}

	RespondWithPaginatedData(c, mapMemberStatement(statement), pagination.Page, pagination.PerPage, int(statement.TotalRedemptions))
}

// VenueStatement returns balance, received redemptions and monthly totals
func (h *CoinHandler) VenueStatement(c *gin.Context) {
	venueID, err := uuid.Parse(c.Param("venueId"))
	if err != nil {
		RespondBadRequest(c, "Invalid venue ID")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	statement, err := h.reportService.VenueStatement(c.Request.Context(), venueID, pagination.Page, pagination.PerPage)
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}

	RespondWithPaginatedData(c, mapVenueStatement(statement), pagination.Page, pagination.PerPage, int(statement.TotalRedemptions))
}
