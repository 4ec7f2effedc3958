package service

import (
	"context"
	"fmt"
	"time"

	"coupon-day/internal/discount"
	"coupon-day/internal/model"
	"coupon-day/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// defaultCrossCouponDailyLimit applies when a cross coupon is created
// without an explicit cap.
const defaultCrossCouponDailyLimit = 30

// crossCouponService implements CrossCouponService.
type crossCouponService struct {
	crossCouponRepo repository.CrossCouponRepository
	partnershipRepo repository.PartnershipRepository
	logger          zerolog.Logger
}

// NewCrossCouponService creates a new cross-coupon service.
func NewCrossCouponService(
	crossCouponRepo repository.CrossCouponRepository,
	partnershipRepo repository.PartnershipRepository,
	logger zerolog.Logger,
) CrossCouponService {
	return &crossCouponService{
		crossCouponRepo: crossCouponRepo,
		partnershipRepo: partnershipRepo,
		logger:          logger.With().Str("service", "cross_coupon").Logger(),
	}
}

func validCrossCouponDiscount(t discount.Type) bool {
	return t == discount.TypeFixed || t == discount.TypePercentage
}

func validRedemptionWindow(w model.RedemptionWindow) bool {
	switch w {
	case model.WindowSameDay, model.WindowNextDay, model.WindowWithinWeek:
		return true
	}
	return false
}

// Create adds a cross coupon to an active partnership. Only the
// partnership's provider store may create one; the discount is the
// simplified fixed-or-percentage form.
func (s *crossCouponService) Create(ctx context.Context, input *model.CrossCouponInput) (*model.CrossCoupon, error) {
	if input == nil {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "request body is required")
	}
	if input.Name == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "cross coupon name is required")
	}
	if !validCrossCouponDiscount(input.DiscountType) {
		return nil, model.NewDomainError(model.ErrCodeInvalidCondition, "cross coupon discount must be fixed or percentage")
	}
	if input.DiscountValue < 0 {
		return nil, model.NewDomainError(model.ErrCodeInvalidCondition, "discount value must not be negative")
	}

	partnership, err := s.partnershipRepo.GetByID(ctx, input.PartnershipID)
	if err != nil {
		return nil, fmt.Errorf("failed to create cross coupon: %w", err)
	}
	if partnership == nil {
		return nil, model.ErrPartnershipNotFound
	}
	if partnership.Status != model.PartnershipActive {
		return nil, model.NewDomainError(model.ErrCodeInvalidStatus, "partnership is not active")
	}
	if input.StoreID != partnership.ProviderStoreID {
		return nil, model.ErrNotPartnershipParty
	}

	window := input.RedemptionWindow
	if window == "" {
		window = model.WindowNextDay
	}
	if !validRedemptionWindow(window) {
		return nil, model.NewDomainError(model.ErrCodeInvalidCondition, fmt.Sprintf("unknown redemption window %q", window))
	}

	dailyLimit := input.DailyLimit
	if dailyLimit == nil {
		v := defaultCrossCouponDailyLimit
		dailyLimit = &v
	}

	now := time.Now()
	coupon := &model.CrossCoupon{
		ID:                 uuid.New(),
		PartnershipID:      partnership.ID,
		ProviderStoreID:    partnership.ProviderStoreID,
		Name:               input.Name,
		Description:        input.Description,
		DiscountType:       input.DiscountType,
		DiscountValue:      input.DiscountValue,
		RedemptionWindow:   window,
		AvailableTimeStart: input.AvailableTimeStart,
		AvailableTimeEnd:   input.AvailableTimeEnd,
		DailyLimit:         dailyLimit,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.crossCouponRepo.Create(ctx, coupon); err != nil {
		return nil, fmt.Errorf("failed to create cross coupon: %w", err)
	}

	s.logger.Info().
		Str("cross_coupon_id", coupon.ID.String()).
		Str("partnership_id", partnership.ID.String()).
		Msg("cross coupon created")

	return coupon, nil
}

// Update edits a cross coupon's offer fields. Nil input fields are left
// unchanged.
func (s *crossCouponService) Update(ctx context.Context, id uuid.UUID, input *model.CrossCouponUpdateInput) (*model.CrossCoupon, error) {
	if input == nil {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "request body is required")
	}

	coupon, err := s.owned(ctx, id, input.StoreID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, model.NewDomainError(model.ErrCodeMissingField, "cross coupon name is required")
		}
		coupon.Name = *input.Name
	}
	if input.Description != nil {
		coupon.Description = input.Description
	}
	if input.DiscountType != nil {
		if !validCrossCouponDiscount(*input.DiscountType) {
			return nil, model.NewDomainError(model.ErrCodeInvalidCondition, "cross coupon discount must be fixed or percentage")
		}
		coupon.DiscountType = *input.DiscountType
	}
	if input.DiscountValue != nil {
		if *input.DiscountValue < 0 {
			return nil, model.NewDomainError(model.ErrCodeInvalidCondition, "discount value must not be negative")
		}
		coupon.DiscountValue = *input.DiscountValue
	}
	if input.RedemptionWindow != nil {
		if !validRedemptionWindow(*input.RedemptionWindow) {
			return nil, model.NewDomainError(model.ErrCodeInvalidCondition, fmt.Sprintf("unknown redemption window %q", *input.RedemptionWindow))
		}
		coupon.RedemptionWindow = *input.RedemptionWindow
	}
	if input.AvailableTimeStart != nil {
		coupon.AvailableTimeStart = input.AvailableTimeStart
	}
	if input.AvailableTimeEnd != nil {
		coupon.AvailableTimeEnd = input.AvailableTimeEnd
	}
	if input.DailyLimit != nil {
		coupon.DailyLimit = input.DailyLimit
	}
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
	}

	if err := s.crossCouponRepo.Update(ctx, coupon); err != nil {
		return nil, err
	}

	return coupon, nil
}

// Deactivate soft-deletes a cross coupon. Existing tokens that already
// selected it are unaffected.
func (s *crossCouponService) Deactivate(ctx context.Context, id, storeID uuid.UUID) error {
	coupon, err := s.owned(ctx, id, storeID)
	if err != nil {
		return err
	}

	coupon.IsActive = false
	if err := s.crossCouponRepo.Update(ctx, coupon); err != nil {
		return err
	}

	s.logger.Info().Str("cross_coupon_id", id.String()).Msg("cross coupon deactivated")
	return nil
}

// ListByPartnership lists a partnership's cross coupons.
func (s *crossCouponService) ListByPartnership(ctx context.Context, partnershipID uuid.UUID, activeOnly bool) ([]model.CrossCoupon, error) {
	coupons, err := s.crossCouponRepo.ListByPartnership(ctx, partnershipID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list cross coupons: %w", err)
	}
	return coupons, nil
}

// owned fetches a cross coupon and verifies the acting store is its provider.
func (s *crossCouponService) owned(ctx context.Context, id, storeID uuid.UUID) (*model.CrossCoupon, error) {
	coupon, err := s.crossCouponRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get cross coupon: %w", err)
	}
	if coupon == nil {
		return nil, model.ErrCrossCouponNotFound
	}
	if coupon.ProviderStoreID != storeID {
		return nil, model.ErrNotPartnershipParty
	}
	return coupon, nil
}
