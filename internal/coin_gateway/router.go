package coin_gateway

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/gym-coin-ledger/internal/coin_gateway/handler"
	"github.com/gym-coin-ledger/internal/coin_gateway/middleware"
)

type handlers struct {
	coin  *handler.CoinHandler
	code  *handler.CodeHandler
	admin *handler.AdminHandler
}

// setupRouter configures coin routes and middleware
func setupRouter(logger *slog.Logger, r *gin.Engine, h handlers, adminAuth gin.HandlerFunc, checks map[string]HealthCheck) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	coins := r.Group("/coins")
	{
		coins.POST("/purchase", h.coin.Purchase)
		coins.POST("/use", h.coin.Use)

		coins.GET("/qr/member/:memberId", h.code.MemberCode)
		coins.GET("/qr/venue/:venueId", h.code.VenueCode)

		coins.GET("/member/:memberId", h.coin.MemberStatement)
		coins.GET("/venue/:venueId", h.coin.VenueStatement)

		admin := coins.Group("/admin", adminAuth)
		{
			admin.GET("/overview", h.admin.Overview)
			admin.POST("/payout", h.admin.Payout)
			admin.GET("/audit", h.admin.Audit)
			admin.GET("/audit/reconciliation", h.admin.Reconciliation)
		}
	}

	r.GET("/health", healthHandler(checks))
}
