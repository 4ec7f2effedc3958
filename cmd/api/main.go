package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coupon-day/internal/availability"
	"coupon-day/internal/config"
	"coupon-day/internal/database"
	"coupon-day/internal/discount"
	"coupon-day/internal/handler"
	"coupon-day/internal/repository"
	"coupon-day/internal/router"
	"coupon-day/internal/scheduler"
	"coupon-day/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A local .env is optional; real deployments set the environment.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting coupon-day API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Apply schema migrations
	if err := database.Migrate(cfg.Database, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize repositories
	couponRepo := repository.NewCouponRepository(pool, logger)
	savedCouponRepo := repository.NewSavedCouponRepository(pool, logger)
	redemptionRepo := repository.NewRedemptionRepository(pool, logger)
	customerRepo := repository.NewCustomerRepository(pool, logger)
	storeRepo := repository.NewStoreRepository(pool, logger)
	partnershipRepo := repository.NewPartnershipRepository(pool, logger)
	crossCouponRepo := repository.NewCrossCouponRepository(pool, logger)
	tokenRepo := repository.NewTokenRepository(pool, logger)
	settlementRepo := repository.NewSettlementRepository(pool, logger)

	// Initialize domain engines
	calculator := discount.NewCalculator()
	evaluator := availability.NewEvaluator(redemptionRepo, logger)

	// Initialize services
	couponService := service.NewCouponService(couponRepo, savedCouponRepo, storeRepo, evaluator, logger)
	redemptionService := service.NewRedemptionService(
		redemptionRepo, couponRepo, savedCouponRepo, customerRepo, evaluator, calculator, logger,
	)
	partnershipService := service.NewPartnershipService(partnershipRepo, storeRepo, logger)
	crossCouponService := service.NewCrossCouponService(crossCouponRepo, partnershipRepo, logger)
	tokenService := service.NewTokenService(
		tokenRepo, partnershipRepo, crossCouponRepo, storeRepo, logger,
	)
	settlementService := service.NewSettlementService(
		settlementRepo, partnershipRepo, tokenRepo, crossCouponRepo, logger,
	)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Coupon:      handler.NewCouponHandler(couponService, logger),
		Discount:    handler.NewDiscountHandler(calculator, logger),
		Redemption:  handler.NewRedemptionHandler(redemptionService, logger),
		Token:       handler.NewTokenHandler(tokenService, logger),
		Partnership: handler.NewPartnershipHandler(partnershipService, logger),
		CrossCoupon: handler.NewCrossCouponHandler(crossCouponService, logger),
		Settlement:  handler.NewSettlementHandler(settlementService, logger),
	}

	// Initialize router
	mux := router.New(handlers, cfg.Auth.APIKey, logger)

	// Start background jobs
	jobs, err := scheduler.New(tokenService, settlementService, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}
	jobs.Start()
	defer jobs.Stop()

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
