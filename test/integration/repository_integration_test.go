package integration

import (
	"context"
	"testing"
	"time"

	"coupon-day/internal/availability"
	"coupon-day/internal/discount"
	"coupon-day/internal/model"
	"coupon-day/internal/repository"
	"coupon-day/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedemptionWriteSet_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	ctx := context.Background()
	logger := zerolog.Nop()

	couponRepo := repository.NewCouponRepository(testDB.Pool, logger)
	savedRepo := repository.NewSavedCouponRepository(testDB.Pool, logger)
	redemptionRepo := repository.NewRedemptionRepository(testDB.Pool, logger)
	customerRepo := repository.NewCustomerRepository(testDB.Pool, logger)
	storeRepo := repository.NewStoreRepository(testDB.Pool, logger)

	evaluator := availability.NewEvaluator(redemptionRepo, logger)
	calculator := discount.NewCalculator()
	couponService := service.NewCouponService(couponRepo, savedRepo, storeRepo, evaluator, logger)
	redemptionService := service.NewRedemptionService(
		redemptionRepo, couponRepo, savedRepo, customerRepo, evaluator, calculator, logger,
	)

	t.Run("saved coupon redemption updates every counter atomically", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		store := SeedStore(t, testDB.Pool, "Kimbap Heaven", "korean")
		customer := SeedCustomer(t, testDB.Pool, "hungry-dev")

		coupon := ActiveFixedCoupon(store.ID, 3000)
		require.NoError(t, couponRepo.Create(ctx, coupon))

		saved, err := couponService.Save(ctx, customer.ID, coupon.ID)
		require.NoError(t, err)

		orderAmount := int64(10000)
		result, err := redemptionService.Redeem(ctx, store.ID, &model.RedemptionInput{
			SavedCouponID: &saved.ID,
			OrderAmount:   &orderAmount,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3000), result.DiscountAmount)
		require.NotNil(t, result.FinalAmount)
		assert.Equal(t, int64(7000), *result.FinalAmount)

		// Saved coupon flipped to USED and linked to the redemption.
		reloaded, err := savedRepo.GetByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, model.SavedCouponUsed, reloaded.Status)
		require.NotNil(t, reloaded.RedemptionID)
		assert.Equal(t, result.Redemption.ID, *reloaded.RedemptionID)

		// Coupon counters: one issued, one redeemed, rate 1.0.
		updatedCoupon, err := couponRepo.GetByID(ctx, coupon.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, updatedCoupon.StatsIssued)
		assert.Equal(t, 1, updatedCoupon.StatsRedeemed)
		assert.InDelta(t, 1.0, updatedCoupon.StatsRedemptionRate, 0.001)

		// Customer counters.
		updatedCustomer, err := customerRepo.GetByID(ctx, customer.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, updatedCustomer.StatsCouponsUsed)
		assert.Equal(t, int64(3000), updatedCustomer.StatsTotalSavedAmount)

		// Daily stats row upserted.
		var redeemedCount int
		var totalDiscount int64
		err = testDB.Pool.QueryRow(ctx,
			"SELECT redeemed_count, total_discount_amount FROM coupon_daily_stats WHERE coupon_id = $1",
			coupon.ID,
		).Scan(&redeemedCount, &totalDiscount)
		require.NoError(t, err)
		assert.Equal(t, 1, redeemedCount)
		assert.Equal(t, int64(3000), totalDiscount)
	})

	t.Run("second redemption of the same saved coupon fails", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		store := SeedStore(t, testDB.Pool, "Noodle Base", "chinese")
		customer := SeedCustomer(t, testDB.Pool, "regular")

		coupon := ActiveFixedCoupon(store.ID, 1000)
		require.NoError(t, couponRepo.Create(ctx, coupon))

		saved, err := couponService.Save(ctx, customer.ID, coupon.ID)
		require.NoError(t, err)

		_, err = redemptionService.Redeem(ctx, store.ID, &model.RedemptionInput{SavedCouponID: &saved.ID})
		require.NoError(t, err)

		_, err = redemptionService.Redeem(ctx, store.ID, &model.RedemptionInput{SavedCouponID: &saved.ID})
		assert.ErrorIs(t, err, model.ErrCouponAlreadyUsed)

		// Exactly one redemption row exists.
		var count int
		err = testDB.Pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM redemptions WHERE coupon_id = $1", coupon.ID,
		).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("walk-in redemption needs no saved coupon", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		store := SeedStore(t, testDB.Pool, "Snack Corner", "snack")
		coupon := ActiveFixedCoupon(store.ID, 500)
		require.NoError(t, couponRepo.Create(ctx, coupon))

		result, err := redemptionService.Redeem(ctx, store.ID, &model.RedemptionInput{CouponID: &coupon.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(500), result.DiscountAmount)
		assert.Nil(t, result.Redemption.CustomerID)
	})
}

func TestSettlementIdempotency_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	ctx := context.Background()
	logger := zerolog.Nop()

	partnershipRepo := repository.NewPartnershipRepository(testDB.Pool, logger)
	crossCouponRepo := repository.NewCrossCouponRepository(testDB.Pool, logger)
	tokenRepo := repository.NewTokenRepository(testDB.Pool, logger)
	settlementRepo := repository.NewSettlementRepository(testDB.Pool, logger)

	settlementService := service.NewSettlementService(
		settlementRepo, partnershipRepo, tokenRepo, crossCouponRepo, logger,
	)

	CleanupDB(t, testDB.Pool)

	distributor := SeedStore(t, testDB.Pool, "Rice Bowl", "korean")
	provider := SeedStore(t, testDB.Pool, "Sweet Treats", "dessert")

	now := time.Now()
	respondedAt := now
	partnership := &model.Partnership{
		ID:                      uuid.New(),
		DistributorStoreID:      distributor.ID,
		ProviderStoreID:         provider.ID,
		Status:                  model.PartnershipActive,
		CommissionPerRedemption: 500,
		RequestedBy:             distributor.ID,
		RequestedAt:             now,
		RespondedAt:             &respondedAt,
	}
	require.NoError(t, partnershipRepo.Create(ctx, partnership))

	crossCoupon := &model.CrossCoupon{
		ID:               uuid.New(),
		PartnershipID:    partnership.ID,
		ProviderStoreID:  provider.ID,
		Name:             "free americano",
		DiscountType:     discount.TypeFixed,
		DiscountValue:    2000,
		RedemptionWindow: model.WindowNextDay,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, crossCouponRepo.Create(ctx, crossCoupon))

	// Two tokens redeemed inside the period.
	period := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	for i := 0; i < 2; i++ {
		redeemedAt := period.AddDate(0, 0, 3+i)
		token := &model.MealToken{
			ID:                    uuid.New(),
			TokenCode:             uuid.New().String()[:8],
			PartnershipID:         partnership.ID,
			DistributorStoreID:    distributor.ID,
			SelectedCrossCouponID: &crossCoupon.ID,
			Status:                model.TokenRedeemed,
			IssuedAt:              redeemedAt.Add(-24 * time.Hour),
			ExpiresAt:             redeemedAt.Add(24 * time.Hour),
			RedeemedAt:            &redeemedAt,
		}
		require.NoError(t, tokenRepo.Create(ctx, token))
	}

	first, details, err := settlementService.GetOrCreate(ctx, partnership.ID, now.Year(), now.Month())
	require.NoError(t, err)
	assert.Equal(t, 2, first.TotalRedemptions)
	assert.Equal(t, int64(4000), first.TotalDiscountAmount)
	assert.Equal(t, int64(1000), first.TotalCommission)
	require.Len(t, details, 1)

	// A second call returns the same persisted row, never a duplicate.
	second, _, err := settlementService.GetOrCreate(ctx, partnership.ID, now.Year(), now.Month())
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int
	err = testDB.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM cross_coupon_settlements WHERE partnership_id = $1", partnership.ID,
	).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
