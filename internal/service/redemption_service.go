package service

import (
	"context"
	"fmt"
	"time"

	"coupon-day/internal/availability"
	"coupon-day/internal/discount"
	"coupon-day/internal/model"
	"coupon-day/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// redemptionService implements RedemptionService.
type redemptionService struct {
	redemptionRepo repository.RedemptionRepository
	couponRepo     repository.CouponRepository
	savedRepo      repository.SavedCouponRepository
	customerRepo   repository.CustomerRepository
	evaluator      *availability.Evaluator
	calculator     *discount.Calculator
	logger         zerolog.Logger
}

// NewRedemptionService creates a new redemption service.
func NewRedemptionService(
	redemptionRepo repository.RedemptionRepository,
	couponRepo repository.CouponRepository,
	savedRepo repository.SavedCouponRepository,
	customerRepo repository.CustomerRepository,
	evaluator *availability.Evaluator,
	calculator *discount.Calculator,
	logger zerolog.Logger,
) RedemptionService {
	return &redemptionService{
		redemptionRepo: redemptionRepo,
		couponRepo:     couponRepo,
		savedRepo:      savedRepo,
		customerRepo:   customerRepo,
		evaluator:      evaluator,
		calculator:     calculator,
		logger:         logger.With().Str("service", "redemption").Logger(),
	}
}

// Redeem applies a coupon at a store. After resolution, state and
// availability checks and the discount calculation, one transaction
// writes the redemption, the saved-coupon flip, the coupon counters,
// the customer counters and the daily stats; any failure rolls back
// all of it.
func (s *redemptionService) Redeem(ctx context.Context, storeID uuid.UUID, input *model.RedemptionInput) (*model.RedemptionResult, error) {
	if input == nil {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "request body is required")
	}
	if (input.SavedCouponID == nil) == (input.CouponID == nil) {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "exactly one of savedCouponId or couponId is required")
	}

	now := time.Now()

	// Resolve the coupon, and the saved coupon when the claim came
	// through the wallet.
	var saved *model.SavedCoupon
	var coupon *model.Coupon
	customerID := input.CustomerID

	if input.SavedCouponID != nil {
		var err error
		saved, err = s.savedRepo.GetByID(ctx, *input.SavedCouponID)
		if err != nil {
			return nil, fmt.Errorf("failed to redeem coupon: %w", err)
		}
		if saved == nil {
			return nil, model.ErrCouponNotFound
		}
		switch saved.Status {
		case model.SavedCouponUsed:
			return nil, model.ErrCouponAlreadyUsed
		case model.SavedCouponExpired:
			return nil, model.ErrCouponExpired
		}
		if now.After(saved.ExpiresAt) {
			return nil, model.ErrCouponExpired
		}
		cid := saved.CustomerID
		customerID = &cid

		coupon, err = s.couponRepo.GetByID(ctx, saved.CouponID)
		if err != nil {
			return nil, fmt.Errorf("failed to redeem coupon: %w", err)
		}
	} else {
		var err error
		coupon, err = s.couponRepo.GetByID(ctx, *input.CouponID)
		if err != nil {
			return nil, fmt.Errorf("failed to redeem coupon: %w", err)
		}
	}
	if coupon == nil {
		return nil, model.ErrCouponNotFound
	}
	if coupon.StoreID != storeID {
		return nil, model.ErrStoreMismatch
	}

	avail, err := s.evaluator.EvaluateAt(ctx, coupon, customerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem coupon: %w", err)
	}
	if !avail.Available {
		s.logger.Warn().
			Str("coupon_id", coupon.ID.String()).
			Str("reason_code", string(avail.ReasonCode)).
			Msg("redemption blocked by availability check")
		return nil, model.NewDomainError(string(avail.ReasonCode), avail.Reason)
	}

	var orderTotal int64
	if input.OrderAmount != nil {
		orderTotal = *input.OrderAmount
	}
	calc := s.calculator.Calculate(coupon.DiscountType, coupon.DiscountValue, coupon.DiscountCondition, input.OrderItems, orderTotal)

	redemption := &model.Redemption{
		ID:             uuid.New(),
		CouponID:       coupon.ID,
		SavedCouponID:  input.SavedCouponID,
		CustomerID:     customerID,
		StoreID:        storeID,
		OrderAmount:    input.OrderAmount,
		DiscountAmount: calc.Amount,
		OrderItems:     input.OrderItems,
		RedeemedAt:     now,
	}
	if input.OrderAmount != nil {
		// No floor: a discount larger than the order surfaces as a
		// negative final amount.
		final := *input.OrderAmount - calc.Amount
		redemption.FinalAmount = &final
	}

	tx, err := s.redemptionRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem coupon: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.redemptionRepo.Create(ctx, tx, redemption); err != nil {
		return nil, fmt.Errorf("failed to redeem coupon: %w", err)
	}

	if saved != nil {
		if err = s.savedRepo.MarkUsed(ctx, tx, saved.ID, now, redemption.ID); err != nil {
			return nil, fmt.Errorf("failed to redeem coupon: %w", err)
		}
	}

	if err = s.couponRepo.IncrementRedeemed(ctx, tx, coupon.ID); err != nil {
		return nil, fmt.Errorf("failed to redeem coupon: %w", err)
	}

	if customerID != nil {
		if err = s.customerRepo.IncrementCouponStats(ctx, tx, *customerID, calc.Amount); err != nil {
			return nil, fmt.Errorf("failed to redeem coupon: %w", err)
		}
	}

	if err = s.redemptionRepo.UpsertDailyStats(ctx, tx, coupon.ID, now, calc.Amount); err != nil {
		return nil, fmt.Errorf("failed to redeem coupon: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("redemption_id", redemption.ID.String()).Msg("failed to commit redemption transaction")
		return nil, fmt.Errorf("failed to redeem coupon: %w", err)
	}

	s.logger.Info().
		Str("redemption_id", redemption.ID.String()).
		Str("coupon_id", coupon.ID.String()).
		Int64("discount_amount", calc.Amount).
		Msg("coupon redeemed")

	return &model.RedemptionResult{
		Redemption:     redemption,
		DiscountAmount: calc.Amount,
		FinalAmount:    redemption.FinalAmount,
	}, nil
}

// History lists a store's redemptions, newest first.
func (s *redemptionService) History(ctx context.Context, storeID uuid.UUID, filter model.RedemptionFilter) ([]model.Redemption, int, error) {
	redemptions, total, err := s.redemptionRepo.ListByStore(ctx, storeID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list redemptions: %w", err)
	}
	return redemptions, total, nil
}
