package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/api"
	"github.com/zahrastore/storeapi/internal/cj"
	"github.com/zahrastore/storeapi/internal/config"
	"github.com/zahrastore/storeapi/internal/payments"
	"github.com/zahrastore/storeapi/internal/repository"
	"github.com/zahrastore/storeapi/internal/repository/postgres"
	"github.com/zahrastore/storeapi/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("Starting store API server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
	)

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	repos := postgres.NewRepositories(db, logger)

	// Boot-time sweep of expired rows; failures are not fatal
	sweepCtx, sweepCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if n, err := repos.TokenCache.PurgeExpired(sweepCtx, repository.TokenCacheRetention); err != nil {
		logger.Warn("Failed to purge expired cached tokens", zap.Error(err))
	} else if n > 0 {
		logger.Info("Purged expired cached tokens", zap.Int64("count", n))
	}
	if n, err := repos.PasswordReset.DeleteExpired(sweepCtx); err != nil {
		logger.Warn("Failed to purge expired password resets", zap.Error(err))
	} else if n > 0 {
		logger.Info("Purged expired password resets", zap.Int64("count", n))
	}
	sweepCancel()

	// Initialize clients and services
	cjClient := cj.NewClient(cfg.CJ, repos.TokenCache, logger)
	stripeProvider := payments.NewStripeProvider(cfg.Stripe, logger)
	mailer := service.NewSMTPMailer(cfg.SMTP, logger)

	svcs := api.Services{
		Checkout:      service.NewCheckoutService(repos, stripeProvider, cfg.Checkout, logger),
		Payment:       service.NewPaymentService(repos, stripeProvider, mailer, logger),
		Order:         service.NewOrderService(repos, logger),
		Fulfillment:   service.NewFulfillmentService(repos, cjClient, logger),
		Webhook:       service.NewWebhookService(repos, cfg.CJ.PriceMarkup, logger),
		PasswordReset: service.NewPasswordResetService(repos, mailer, logger),
	}

	// Initialize router
	router := api.NewRouter(cfg, repos, svcs, cjClient, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
