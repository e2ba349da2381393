package handler

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gym-coin-ledger/internal/coin_gateway/service"
)

// CodeHandler serves scannable member and venue codes
type CodeHandler struct {
	codeService service.CodeService
	logger      *slog.Logger
}

func NewCodeHandler(logger *slog.Logger, codeService service.CodeService) *CodeHandler {
	return &CodeHandler{codeService: codeService, logger: logger}
}

// MemberCode renders the code a member shows at the front desk
func (h *CodeHandler) MemberCode(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		RespondBadRequest(c, "Invalid member ID")
		return
	}

	issued, err := h.codeService.MemberCode(c.Request.Context(), memberID)
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}
	respondCode(c, issued)
}

// VenueCode renders the code displayed at a partner venue
func (h *CodeHandler) VenueCode(c *gin.Context) {
	venueID, err := uuid.Parse(c.Param("venueId"))
	if err != nil {
		RespondBadRequest(c, "Invalid venue ID")
		return
	}

	issued, err := h.codeService.VenueCode(c.Request.Context(), venueID)
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}
	respondCode(c, issued)
}

// respondCode writes the PNG, or a JSON envelope with the payload when
// format=json is requested.
func respondCode(c *gin.Context, issued *service.IssuedCode) {
	if c.Query("format") == "json" {
		RespondOK(c, CodeResponse{
			Payload: issued.Payload,
			Image:   base64.StdEncoding.EncodeToString(issued.PNG),
		})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", issued.PNG)
}
