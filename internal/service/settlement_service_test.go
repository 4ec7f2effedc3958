package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"coupon-day/internal/discount"
	"coupon-day/internal/model"
	"coupon-day/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type settlementFixture struct {
	service         SettlementService
	settlementRepo  *MockSettlementRepository
	partnershipRepo *MockPartnershipRepository
	tokenRepo       *MockTokenRepository
	crossCouponRepo *MockCrossCouponRepository
}

func newSettlementFixture() *settlementFixture {
	f := &settlementFixture{
		settlementRepo:  new(MockSettlementRepository),
		partnershipRepo: new(MockPartnershipRepository),
		tokenRepo:       new(MockTokenRepository),
		crossCouponRepo: new(MockCrossCouponRepository),
	}
	f.service = NewSettlementService(
		f.settlementRepo, f.partnershipRepo, f.tokenRepo, f.crossCouponRepo, zerolog.Nop(),
	)
	return f
}

func redeemedTokens(partnershipID, crossCouponID uuid.UUID, count int) []model.MealToken {
	tokens := make([]model.MealToken, count)
	for i := range tokens {
		tokens[i] = model.MealToken{
			ID:                    uuid.New(),
			PartnershipID:         partnershipID,
			SelectedCrossCouponID: &crossCouponID,
			Status:                model.TokenRedeemed,
		}
	}
	return tokens
}

func TestGetOrCreate_ComputesAndPersists(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	partnership := activePartnership()
	fixed := activeCrossCoupon(partnership) // FIXED 2000
	pct := activeCrossCoupon(partnership)
	pct.DiscountType = discount.TypePercentage
	pct.DiscountValue = 10

	periodStart := time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)
	nextMonth := periodStart.AddDate(0, 1, 0)

	tokens := append(
		redeemedTokens(partnership.ID, fixed.ID, 3),
		redeemedTokens(partnership.ID, pct.ID, 2)...,
	)

	f.partnershipRepo.On("GetByID", ctx, partnership.ID).Return(partnership, nil)
	f.tokenRepo.On("ListRedeemedInPeriod", ctx, partnership.ID, periodStart, nextMonth).Return(tokens, nil)
	f.crossCouponRepo.On("GetByID", ctx, fixed.ID).Return(fixed, nil)
	f.crossCouponRepo.On("GetByID", ctx, pct.ID).Return(pct, nil)
	f.settlementRepo.On("FindByPeriod", ctx, partnership.ID, periodStart).Return(nil, nil)
	f.settlementRepo.On("Create", ctx, mock.AnythingOfType("*model.CrossCouponSettlement")).Return(nil)

	settlement, details, err := f.service.GetOrCreate(ctx, partnership.ID, 2026, time.August)

	require.NoError(t, err)
	assert.Equal(t, 5, settlement.TotalRedemptions)
	// Fixed coupons sum at face value; percentage contributes zero.
	assert.Equal(t, int64(3*2000), settlement.TotalDiscountAmount)
	assert.Equal(t, int64(5*500), settlement.TotalCommission)
	assert.Equal(t, model.SettlementPending, settlement.Status)
	assert.Equal(t, periodStart, settlement.PeriodStart)

	require.Len(t, details, 2)
	assert.Equal(t, 3, details[0].RedemptionCount)
	assert.Equal(t, int64(6000), details[0].DiscountAmount)
	assert.Equal(t, 2, details[1].RedemptionCount)
	assert.Equal(t, int64(0), details[1].DiscountAmount)
	assert.Equal(t, int64(1000), details[1].Commission)
}

func TestGetOrCreate_ReturnsExistingRow(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	partnership := activePartnership()
	periodStart := time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)
	existing := &model.CrossCouponSettlement{
		ID:            uuid.New(),
		PartnershipID: partnership.ID,
		PeriodStart:   periodStart,
		Status:        model.SettlementConfirmed,
	}

	f.partnershipRepo.On("GetByID", ctx, partnership.ID).Return(partnership, nil)
	f.tokenRepo.On("ListRedeemedInPeriod", ctx, partnership.ID, periodStart, periodStart.AddDate(0, 1, 0)).
		Return([]model.MealToken{}, nil)
	f.settlementRepo.On("FindByPeriod", ctx, partnership.ID, periodStart).Return(existing, nil)

	settlement, _, err := f.service.GetOrCreate(ctx, partnership.ID, 2026, time.August)

	require.NoError(t, err)
	assert.Equal(t, existing.ID, settlement.ID)
	f.settlementRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetOrCreate_LosingInsertRaceRefetches(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	partnership := activePartnership()
	periodStart := time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)
	winner := &model.CrossCouponSettlement{
		ID:            uuid.New(),
		PartnershipID: partnership.ID,
		PeriodStart:   periodStart,
		Status:        model.SettlementPending,
	}

	f.partnershipRepo.On("GetByID", ctx, partnership.ID).Return(partnership, nil)
	f.tokenRepo.On("ListRedeemedInPeriod", ctx, partnership.ID, periodStart, periodStart.AddDate(0, 1, 0)).
		Return([]model.MealToken{}, nil)
	// First lookup sees nothing; the insert loses the race; re-fetch wins.
	f.settlementRepo.On("FindByPeriod", ctx, partnership.ID, periodStart).Return(nil, nil).Once()
	f.settlementRepo.On("Create", ctx, mock.AnythingOfType("*model.CrossCouponSettlement")).
		Return(repository.ErrDuplicatePeriod)
	f.settlementRepo.On("FindByPeriod", ctx, partnership.ID, periodStart).Return(winner, nil).Once()

	settlement, _, err := f.service.GetOrCreate(ctx, partnership.ID, 2026, time.August)

	require.NoError(t, err)
	assert.Equal(t, winner.ID, settlement.ID)
}

func TestUpdateStatus_Transitions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		from    model.SettlementStatus
		to      model.SettlementStatus
		wantErr bool
	}{
		{"pending to confirmed", model.SettlementPending, model.SettlementConfirmed, false},
		{"confirmed to paid", model.SettlementConfirmed, model.SettlementPaid, false},
		{"pending straight to paid", model.SettlementPending, model.SettlementPaid, true},
		{"paid is terminal", model.SettlementPaid, model.SettlementConfirmed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSettlementFixture()
			settlement := &model.CrossCouponSettlement{ID: uuid.New(), Status: tt.from}
			f.settlementRepo.On("GetByID", ctx, settlement.ID).Return(settlement, nil)

			if !tt.wantErr {
				f.settlementRepo.On("UpdateStatus", ctx, settlement.ID, tt.to, mock.Anything).Return(nil)
			}

			updated, err := f.service.UpdateStatus(ctx, settlement.ID, tt.to)

			if tt.wantErr {
				var domainErr *model.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, model.ErrCodeInvalidStatus, domainErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, updated.Status)
			if tt.to == model.SettlementPaid {
				assert.NotNil(t, updated.PaidAt)
			}
		})
	}
}

func TestRunMonthly_FailureDoesNotAbortSiblings(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	good := activePartnership()
	bad := activePartnership()
	periodStart := time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)
	nextMonth := periodStart.AddDate(0, 1, 0)

	f.partnershipRepo.On("ListActive", ctx).Return([]model.Partnership{*bad, *good}, nil)

	// GetOrCreate re-fetches each partnership by id.
	f.partnershipRepo.On("GetByID", ctx, bad.ID).Return(bad, nil)
	f.tokenRepo.On("ListRedeemedInPeriod", ctx, bad.ID, periodStart, nextMonth).
		Return(nil, errors.New("connection reset"))

	f.partnershipRepo.On("GetByID", ctx, good.ID).Return(good, nil)
	f.tokenRepo.On("ListRedeemedInPeriod", ctx, good.ID, periodStart, nextMonth).
		Return([]model.MealToken{}, nil)
	f.settlementRepo.On("FindByPeriod", ctx, good.ID, periodStart).Return(nil, nil)
	f.settlementRepo.On("Create", ctx, mock.AnythingOfType("*model.CrossCouponSettlement")).Return(nil)

	results, err := f.service.RunMonthly(ctx, 2026, time.August)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.NotEmpty(t, results[0].Error)
	assert.True(t, results[1].Success)
	require.NotNil(t, results[1].Settlement)
	assert.Equal(t, 0, results[1].Settlement.TotalRedemptions)
}
