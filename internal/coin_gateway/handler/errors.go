package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gym-coin-ledger/internal/coin_gateway/middleware"
	"github.com/gym-coin-ledger/internal/domain/code"
	"github.com/gym-coin-ledger/internal/domain/coin"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Order matters: transient wraps arbitrary causes and is checked after the
// more specific domain errors.
var errorMappings = []errorMapping{
	{coin.ErrNotEligible, http.StatusForbidden, "NOT_ELIGIBLE", "Member is not eligible for coins"},
	{coin.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be positive"},
	{coin.ErrInsufficientBalance, http.StatusConflict, "INSUFFICIENT_BALANCE", "Not enough coins"},
	{coin.ErrInsufficientVenueBalance, http.StatusConflict, "INSUFFICIENT_VENUE_BALANCE", "Venue does not hold enough coins"},
	{coin.ErrAlreadyRedeemedToday, http.StatusConflict, "ALREADY_REDEEMED_TODAY", "Coin already used at this venue today"},
	{coin.ErrNotFound, http.StatusNotFound, "NOT_FOUND", ""},
	{code.ErrInvalidPayload, http.StatusBadRequest, "INVALID_CODE", "Scanned code is not valid"},
	{coin.ErrTransient, http.StatusServiceUnavailable, "TRANSIENT_ERROR", "Temporary failure, please retry"},
}

// RespondServiceError maps a service error onto the API error taxonomy
func RespondServiceError(c *gin.Context, logger *slog.Logger, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		message := m.message
		if message == "" {
			message = err.Error()
		}
		if m.status >= http.StatusInternalServerError {
			logger.Error("Request failed", "code", m.code, "error", err, "correlation_id", middleware.GetCorrelationID(c))
		}
		RespondWithError(c, m.status, m.code, message)
		return
	}

	logger.Error("Unhandled error", "error", err, "correlation_id", middleware.GetCorrelationID(c))
	RespondInternalError(c)
}
