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

// couponService implements CouponService.
type couponService struct {
	couponRepo repository.CouponRepository
	savedRepo  repository.SavedCouponRepository
	storeRepo  repository.StoreRepository
	evaluator  *availability.Evaluator
	logger     zerolog.Logger
}

// NewCouponService creates a new coupon service.
func NewCouponService(
	couponRepo repository.CouponRepository,
	savedRepo repository.SavedCouponRepository,
	storeRepo repository.StoreRepository,
	evaluator *availability.Evaluator,
	logger zerolog.Logger,
) CouponService {
	return &couponService{
		couponRepo: couponRepo,
		savedRepo:  savedRepo,
		storeRepo:  storeRepo,
		evaluator:  evaluator,
		logger:     logger.With().Str("service", "coupon").Logger(),
	}
}

var validCouponStatuses = map[model.CouponStatus]bool{
	model.CouponDraft:     true,
	model.CouponScheduled: true,
	model.CouponActive:    true,
	model.CouponPaused:    true,
	model.CouponEnded:     true,
}

// Create authors a new coupon after structural validation.
func (s *couponService) Create(ctx context.Context, input *model.CreateCouponInput) (*model.Coupon, error) {
	if input == nil {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "request body is required")
	}
	if input.Name == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "coupon name is required")
	}
	if input.DiscountValue < 0 {
		return nil, model.NewDomainError(model.ErrCodeInvalidCondition, "discount value must not be negative")
	}
	if input.ValidUntil.Before(input.ValidFrom) {
		return nil, model.NewDomainError(model.ErrCodeInvalidCondition, "validUntil must not precede validFrom")
	}
	for _, d := range input.AvailableDays {
		if d < 0 || d > 6 {
			return nil, model.NewDomainError(model.ErrCodeInvalidCondition, "available days must be 0 (Sunday) through 6 (Saturday)")
		}
	}

	if err := discount.ValidateCondition(input.DiscountType, input.DiscountCondition); err != nil {
		s.logger.Warn().Err(err).Str("discount_type", string(input.DiscountType)).Msg("invalid discount condition")
		return nil, model.NewDomainError(model.ErrCodeInvalidCondition, err.Error())
	}

	status := input.Status
	if status == "" {
		status = model.CouponDraft
	}
	if !validCouponStatuses[status] {
		return nil, model.NewDomainError(model.ErrCodeInvalidStatus, fmt.Sprintf("unknown coupon status %q", status))
	}

	store, err := s.storeRepo.GetByID(ctx, input.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	if store == nil {
		return nil, model.ErrStoreNotFound
	}

	now := time.Now()
	coupon := &model.Coupon{
		ID:                 uuid.New(),
		StoreID:            input.StoreID,
		Name:               input.Name,
		Description:        input.Description,
		DiscountType:       input.DiscountType,
		DiscountValue:      input.DiscountValue,
		DiscountCondition:  input.DiscountCondition,
		ValidFrom:          input.ValidFrom,
		ValidUntil:         input.ValidUntil,
		AvailableDays:      input.AvailableDays,
		AvailableTimeStart: input.AvailableTimeStart,
		AvailableTimeEnd:   input.AvailableTimeEnd,
		BlackoutDates:      input.BlackoutDates,
		TotalQuantity:      input.TotalQuantity,
		DailyLimit:         input.DailyLimit,
		PerUserLimit:       input.PerUserLimit,
		Status:             status,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	s.logger.Info().
		Str("coupon_id", coupon.ID.String()).
		Str("store_id", coupon.StoreID.String()).
		Str("discount_type", string(coupon.DiscountType)).
		Msg("coupon created")

	return coupon, nil
}

// GetByID retrieves a coupon by ID.
func (s *couponService) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	coupon, err := s.couponRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	if coupon == nil {
		return nil, model.ErrCouponNotFound
	}
	return coupon, nil
}

// ListByStore retrieves a store's coupons, optionally filtered by status.
func (s *couponService) ListByStore(ctx context.Context, storeID uuid.UUID, status *model.CouponStatus) ([]model.Coupon, error) {
	coupons, err := s.couponRepo.ListByStore(ctx, storeID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, nil
}

// UpdateStatus transitions a coupon's lifecycle status.
func (s *couponService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.CouponStatus) (*model.Coupon, error) {
	if !validCouponStatuses[status] {
		return nil, model.NewDomainError(model.ErrCodeInvalidStatus, fmt.Sprintf("unknown coupon status %q", status))
	}

	if err := s.couponRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	coupon, err := s.couponRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return coupon, nil
}

// CheckAvailability evaluates whether a coupon is usable right now.
func (s *couponService) CheckAvailability(ctx context.Context, id uuid.UUID, customerID *uuid.UUID) (*availability.Result, error) {
	coupon, err := s.couponRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	if coupon == nil {
		return nil, model.ErrCouponNotFound
	}

	return s.evaluator.Evaluate(ctx, coupon, customerID)
}

// Save claims a coupon into a customer's wallet. The claim expires with
// the coupon itself, and a second active claim on the same coupon is
// rejected.
func (s *couponService) Save(ctx context.Context, customerID, couponID uuid.UUID) (*model.SavedCoupon, error) {
	coupon, err := s.couponRepo.GetByID(ctx, couponID)
	if err != nil {
		return nil, fmt.Errorf("failed to save coupon: %w", err)
	}
	if coupon == nil {
		return nil, model.ErrCouponNotFound
	}
	if coupon.Status != model.CouponActive {
		return nil, model.NewDomainError(model.ErrCodeCouponNotAvailable, "coupon is not currently active")
	}
	if time.Now().After(coupon.ValidUntil) {
		return nil, model.ErrCouponExpired
	}

	existing, err := s.savedRepo.FindActive(ctx, couponID, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to save coupon: %w", err)
	}
	if existing != nil {
		return nil, model.ErrCouponAlreadySaved
	}

	saved := &model.SavedCoupon{
		ID:         uuid.New(),
		CouponID:   couponID,
		CustomerID: customerID,
		Status:     model.SavedCouponActive,
		ExpiresAt:  coupon.ValidUntil,
		SavedAt:    time.Now(),
	}

	if err := s.savedRepo.Create(ctx, saved); err != nil {
		return nil, fmt.Errorf("failed to save coupon: %w", err)
	}

	if err := s.couponRepo.IncrementIssued(ctx, couponID); err != nil {
		s.logger.Error().Err(err).Str("coupon_id", couponID.String()).Msg("failed to increment issued count after save")
	}

	s.logger.Info().
		Str("coupon_id", couponID.String()).
		Str("customer_id", customerID.String()).
		Msg("coupon saved to wallet")

	return saved, nil
}

// ListSaved retrieves a customer's saved coupons.
func (s *couponService) ListSaved(ctx context.Context, customerID uuid.UUID, status *model.SavedCouponStatus) ([]model.SavedCoupon, error) {
	saved, err := s.savedRepo.ListByCustomer(ctx, customerID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved coupons: %w", err)
	}
	return saved, nil
}
