package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/api/handlers"
	"github.com/zahrastore/storeapi/internal/api/middleware"
	"github.com/zahrastore/storeapi/internal/cj"
	"github.com/zahrastore/storeapi/internal/config"
	"github.com/zahrastore/storeapi/internal/repository"
	"github.com/zahrastore/storeapi/internal/service"
)

// Services bundles the service layer for route wiring.
type Services struct {
	Checkout      *service.CheckoutService
	Payment       *service.PaymentService
	Order         *service.OrderService
	Fulfillment   *service.FulfillmentService
	Webhook       *service.WebhookService
	PasswordReset *service.PasswordResetService
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, repos *repository.Repositories, svcs Services, cjClient *cj.Client, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Provider webhooks: unauthenticated, always acknowledged with 200
	router.POST("/webhooks/cj/product", handlers.HandleCJProductWebhook(svcs.Webhook, logger))
	router.POST("/webhooks/cj/stock", handlers.HandleCJStockWebhook(svcs.Webhook, logger))

	// API v1 routes
	v1 := router.Group("/v1")
	{
		// Public routes
		v1.POST("/password-reset/request", handlers.HandleRequestPasswordReset(svcs.PasswordReset, logger))
		v1.POST("/password-reset/confirm", handlers.HandleConfirmPasswordReset(svcs.PasswordReset, logger))

		// Customer routes (require authentication)
		customerRoutes := v1.Group("")
		customerRoutes.Use(middleware.AuthMiddleware(repos, logger))
		{
			customerRoutes.GET("/products", handlers.HandleListProducts(repos, logger))
			customerRoutes.GET("/products/:slug", handlers.HandleGetProduct(repos, logger))
			customerRoutes.POST("/orders", handlers.HandleCreateOrder(svcs.Order, logger))
			customerRoutes.GET("/orders", handlers.HandleListOrders(svcs.Order, logger))
			customerRoutes.GET("/orders/:id", handlers.HandleGetOrder(svcs.Order, logger))
			customerRoutes.POST("/checkout/session", handlers.HandleCreateCheckoutSession(svcs.Checkout, logger))
			customerRoutes.POST("/checkout/confirm", handlers.HandleConfirmPayment(svcs.Payment, logger))
		}

		// Admin routes (require admin role)
		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(middleware.AuthMiddleware(repos, logger))
		adminRoutes.Use(middleware.RequireAdmin())
		{
			adminRoutes.GET("/orders", handlers.HandleAdminListOrders(svcs.Order, logger))
			adminRoutes.GET("/orders/:id", handlers.HandleAdminGetOrder(svcs.Order, logger))
			adminRoutes.POST("/orders/:id/fulfill", handlers.HandleFulfillOrder(svcs.Fulfillment, logger))
			adminRoutes.PATCH("/orders/:id/status", handlers.HandleUpdateOrderStatus(svcs.Order, logger))
			adminRoutes.POST("/products", handlers.HandleCreateProduct(repos, logger))
			adminRoutes.PUT("/products/:id", handlers.HandleUpdateProduct(repos, logger))
			adminRoutes.DELETE("/products/:id", handlers.HandleDeleteProduct(repos, logger))
			adminRoutes.GET("/cj/search", handlers.HandleCJSearch(cjClient, logger))
			adminRoutes.GET("/cj/orders/:id", handlers.HandleCJGetOrder(cjClient, logger))
		}
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
