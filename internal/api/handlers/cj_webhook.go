package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/service"
	"github.com/zahrastore/storeapi/pkg/response"
)

// HandleCJProductWebhook handles POST /webhooks/cj/product. The provider
// treats any non-200 as undelivered and retries, so every outcome is
// acknowledged with a success envelope.
func HandleCJProductWebhook(svc *service.WebhookService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var ev service.ProductUpdateEvent
		if err := c.ShouldBindJSON(&ev); err != nil {
			logger.Warn("Malformed product webhook payload", zap.Error(err))
			response.WebhookAck(c, "invalid payload: "+err.Error(), time.Since(start))
			return
		}

		msg := svc.ApplyProductUpdate(c.Request.Context(), ev)
		response.WebhookAck(c, msg, time.Since(start))
	}
}

// HandleCJStockWebhook handles POST /webhooks/cj/stock.
func HandleCJStockWebhook(svc *service.WebhookService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var ev service.StockUpdateEvent
		if err := c.ShouldBindJSON(&ev); err != nil {
			logger.Warn("Malformed stock webhook payload", zap.Error(err))
			response.WebhookAck(c, "invalid payload: "+err.Error(), time.Since(start))
			return
		}

		msg := svc.ApplyStockUpdate(c.Request.Context(), ev)
		response.WebhookAck(c, msg, time.Since(start))
	}
}
