// Command seed loads a small demo dataset: two stores, a customer, an
// active coupon and an active partnership with one cross coupon.
// Useful for poking the API locally.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"coupon-day/internal/config"
	"coupon-day/internal/database"
	"coupon-day/internal/discount"
	"coupon-day/internal/model"
	"coupon-day/internal/repository"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(cfg.Database, logger); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	distributor := &model.Store{
		ID: uuid.New(), Name: "Kimbap Heaven", Category: "korean",
		Address: "12 Teheran-ro, Gangnam-gu", Latitude: 37.4979, Longitude: 127.0276,
		Status: model.StoreActive,
	}
	provider := &model.Store{
		ID: uuid.New(), Name: "Bean There", Category: "cafe",
		Address: "14 Teheran-ro, Gangnam-gu", Latitude: 37.4982, Longitude: 127.0279,
		Status: model.StoreActive,
	}
	for _, store := range []*model.Store{distributor, provider} {
		_, err := pool.Exec(ctx,
			`INSERT INTO stores (id, name, category, address, latitude, longitude, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			store.ID, store.Name, store.Category, store.Address,
			store.Latitude, store.Longitude, store.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to seed store %s: %w", store.Name, err)
		}
	}

	customerID := uuid.New()
	if _, err := pool.Exec(ctx,
		"INSERT INTO customers (id, nickname) VALUES ($1, $2)", customerID, "demo-customer",
	); err != nil {
		return fmt.Errorf("failed to seed customer: %w", err)
	}

	now := time.Now()
	couponRepo := repository.NewCouponRepository(pool, logger)
	coupon := &model.Coupon{
		ID:            uuid.New(),
		StoreID:       distributor.ID,
		Name:          "lunch 2000 off",
		DiscountType:  discount.TypeFixed,
		DiscountValue: 2000,
		ValidFrom:     now,
		ValidUntil:    now.AddDate(0, 1, 0),
		PerUserLimit:  1,
		Status:        model.CouponActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := couponRepo.Create(ctx, coupon); err != nil {
		return fmt.Errorf("failed to seed coupon: %w", err)
	}

	partnershipRepo := repository.NewPartnershipRepository(pool, logger)
	respondedAt := now
	partnership := &model.Partnership{
		ID:                      uuid.New(),
		DistributorStoreID:      distributor.ID,
		ProviderStoreID:         provider.ID,
		Status:                  model.PartnershipActive,
		CommissionPerRedemption: model.DefaultCommissionPerRedemption,
		RequestedBy:             distributor.ID,
		RequestedAt:             now,
		RespondedAt:             &respondedAt,
	}
	if err := partnershipRepo.Create(ctx, partnership); err != nil {
		return fmt.Errorf("failed to seed partnership: %w", err)
	}

	crossCouponRepo := repository.NewCrossCouponRepository(pool, logger)
	crossCoupon := &model.CrossCoupon{
		ID:               uuid.New(),
		PartnershipID:    partnership.ID,
		ProviderStoreID:  provider.ID,
		Name:             "americano 2000 off",
		DiscountType:     discount.TypeFixed,
		DiscountValue:    2000,
		RedemptionWindow: model.WindowNextDay,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := crossCouponRepo.Create(ctx, crossCoupon); err != nil {
		return fmt.Errorf("failed to seed cross coupon: %w", err)
	}

	fmt.Println("Demo data loaded:")
	fmt.Printf("  distributor store: %s\n", distributor.ID)
	fmt.Printf("  provider store:    %s\n", provider.ID)
	fmt.Printf("  customer:          %s\n", customerID)
	fmt.Printf("  coupon:            %s\n", coupon.ID)
	fmt.Printf("  partnership:       %s\n", partnership.ID)
	fmt.Printf("  cross coupon:      %s\n", crossCoupon.ID)
	return nil
}
