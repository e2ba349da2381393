package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/gym-coin-ledger/internal/coin_gateway/middleware"
	"github.com/gym-coin-ledger/internal/domain/coin"
)

// DeviceHeader lets scanning apps name the device that made the request
const DeviceHeader = "X-Device"

const maxDeviceLength = 256

// requestOrigin collects the metadata stored with every transaction
func requestOrigin(c *gin.Context) coin.Origin {
	device := c.GetHeader(DeviceHeader)
	if device == "" {
		device = c.Request.UserAgent()
	}
	if len(device) > maxDeviceLength {
		device = device[:maxDeviceLength]
	}
	return coin.Origin{
		ClientIP:      c.ClientIP(),
		Device:        device,
		CorrelationID: middleware.GetCorrelationID(c),
	}
}
