package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coupon-day/internal/discount"
	"coupon-day/internal/model"
	"coupon-day/internal/repository"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog"
)

// tokenService implements TokenService.
type tokenService struct {
	tokenRepo       repository.TokenRepository
	partnershipRepo repository.PartnershipRepository
	crossCouponRepo repository.CrossCouponRepository
	storeRepo       repository.StoreRepository
	now             func() time.Time
	logger          zerolog.Logger
}

// NewTokenService creates a new meal-token service.
func NewTokenService(
	tokenRepo repository.TokenRepository,
	partnershipRepo repository.PartnershipRepository,
	crossCouponRepo repository.CrossCouponRepository,
	storeRepo repository.StoreRepository,
	logger zerolog.Logger,
) TokenService {
	return &tokenService{
		tokenRepo:       tokenRepo,
		partnershipRepo: partnershipRepo,
		crossCouponRepo: crossCouponRepo,
		storeRepo:       storeRepo,
		now:             time.Now,
		logger:          logger.With().Str("service", "token").Logger(),
	}
}

// newTokenCode generates an 8-character upper-case code.
func newTokenCode() string {
	return strings.ToUpper(shortuuid.New()[:8])
}

// endOfDay is the last millisecond of d's calendar day.
func endOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(999*time.Millisecond), d.Location())
}

// tokenExpiry computes the expiry deadline from the redemption window
// policy. The result is fixed at issuance and never recalculated.
func tokenExpiry(window model.RedemptionWindow, issuedAt time.Time) time.Time {
	switch window {
	case model.WindowSameDay:
		return endOfDay(issuedAt)
	case model.WindowWithinWeek:
		return endOfDay(issuedAt.AddDate(0, 0, 7))
	default:
		return endOfDay(issuedAt.AddDate(0, 0, 1))
	}
}

// Issue creates a token at the distributor store after a qualifying
// purchase. The expiry policy comes from the partnership's first active
// cross coupon.
func (s *tokenService) Issue(ctx context.Context, distributorStoreID uuid.UUID, input *model.IssueTokenInput) (*model.IssueTokenResult, error) {
	if input == nil {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "request body is required")
	}

	partnership, err := s.partnershipRepo.GetByID(ctx, input.PartnershipID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	if partnership == nil {
		return nil, model.ErrPartnershipNotFound
	}
	if partnership.Status != model.PartnershipActive {
		return nil, model.NewDomainError(model.ErrCodeInvalidStatus, "partnership is not active")
	}
	if partnership.DistributorStoreID != distributorStoreID {
		return nil, model.ErrNotPartnershipParty
	}

	active, err := s.crossCouponRepo.ListByPartnership(ctx, input.PartnershipID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	if len(active) == 0 {
		return nil, model.ErrNoCrossCoupons
	}

	issuedAt := s.now()
	token := &model.MealToken{
		ID:                 uuid.New(),
		TokenCode:          newTokenCode(),
		PartnershipID:      partnership.ID,
		DistributorStoreID: partnership.DistributorStoreID,
		CustomerID:         input.CustomerID,
		Status:             model.TokenIssued,
		IssuedAt:           issuedAt,
		ExpiresAt:          tokenExpiry(active[0].RedemptionWindow, issuedAt),
	}

	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info().
		Str("token_code", token.TokenCode).
		Str("partnership_id", partnership.ID.String()).
		Time("expires_at", token.ExpiresAt).
		Int("available_coupons", len(active)).
		Msg("meal token issued")

	return &model.IssueTokenResult{
		Token:                token,
		AvailableCouponCount: len(active),
	}, nil
}

// Options lists the cross coupons a token can currently choose from.
// Coupons with a clock window are filtered against the current time;
// windowless ones always appear.
func (s *tokenService) Options(ctx context.Context, code string) (*model.TokenOptions, error) {
	token, err := s.liveToken(ctx, code)
	if err != nil {
		return nil, err
	}
	if token.Status != model.TokenIssued {
		return nil, model.NewDomainError(model.ErrCodeTokenAlreadyUsed, "a cross coupon has already been selected for this token")
	}

	partnership, err := s.partnershipRepo.GetByID(ctx, token.PartnershipID)
	if err != nil {
		return nil, fmt.Errorf("failed to list token options: %w", err)
	}
	if partnership == nil {
		return nil, model.ErrPartnershipNotFound
	}

	providerStore, err := s.storeRepo.GetByID(ctx, partnership.ProviderStoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to list token options: %w", err)
	}

	active, err := s.crossCouponRepo.ListByPartnership(ctx, token.PartnershipID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list token options: %w", err)
	}

	currentTime := s.now().Format("15:04")
	options := make([]model.CrossCoupon, 0, len(active))
	for _, c := range active {
		if c.AvailableTimeStart != nil && c.AvailableTimeEnd != nil {
			if currentTime < *c.AvailableTimeStart || currentTime > *c.AvailableTimeEnd {
				continue
			}
		}
		options = append(options, c)
	}

	return &model.TokenOptions{
		Token:         token,
		ProviderStore: providerStore,
		CrossCoupons:  options,
	}, nil
}

// Select records the holder's cross-coupon choice. State is re-checked
// inside the transaction under a row lock, and the daily selection cap
// is counted over today's selections.
func (s *tokenService) Select(ctx context.Context, code string, input *model.SelectCrossCouponInput) (*model.MealToken, error) {
	if input == nil {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "request body is required")
	}

	token, err := s.liveToken(ctx, code)
	if err != nil {
		return nil, err
	}

	crossCoupon, err := s.crossCouponRepo.GetByID(ctx, input.CrossCouponID)
	if err != nil {
		return nil, fmt.Errorf("failed to select cross coupon: %w", err)
	}
	if crossCoupon == nil || !crossCoupon.IsActive || crossCoupon.PartnershipID != token.PartnershipID {
		return nil, model.ErrCrossCouponNotFound
	}

	now := s.now()

	tx, err := s.tokenRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to select cross coupon: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	locked, err := s.tokenRepo.GetForUpdate(ctx, tx, token.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to select cross coupon: %w", err)
	}
	if locked == nil {
		err = model.ErrTokenNotFound
		return nil, err
	}
	if locked.Status != model.TokenIssued {
		err = model.NewDomainError(model.ErrCodeTokenAlreadyUsed, "a cross coupon has already been selected for this token")
		return nil, err
	}
	if now.After(locked.ExpiresAt) {
		err = model.ErrTokenExpired
		return nil, err
	}

	if crossCoupon.DailyLimit != nil {
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		var selections int
		selections, err = s.crossCouponRepo.CountSelectionsSince(ctx, tx, crossCoupon.ID, startOfDay)
		if err != nil {
			return nil, fmt.Errorf("failed to select cross coupon: %w", err)
		}
		if selections >= *crossCoupon.DailyLimit {
			err = model.ErrSelectionLimit
			return nil, err
		}
	}

	if err = s.tokenRepo.MarkSelected(ctx, tx, locked.ID, crossCoupon.ID, input.CustomerID, now); err != nil {
		return nil, fmt.Errorf("failed to select cross coupon: %w", err)
	}
	if err = s.crossCouponRepo.IncrementSelected(ctx, tx, crossCoupon.ID); err != nil {
		return nil, fmt.Errorf("failed to select cross coupon: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("token_code", code).Msg("failed to commit selection transaction")
		return nil, fmt.Errorf("failed to select cross coupon: %w", err)
	}

	locked.Status = model.TokenSelected
	locked.SelectedCrossCouponID = &crossCoupon.ID
	locked.SelectedAt = &now
	if input.CustomerID != nil {
		locked.CustomerID = input.CustomerID
	}

	s.logger.Info().
		Str("token_code", code).
		Str("cross_coupon_id", crossCoupon.ID.String()).
		Msg("cross coupon selected")

	return locked, nil
}

// Redeem finalises a token at the provider store. Replay protection and
// the status check run against locked state inside the transaction.
func (s *tokenService) Redeem(ctx context.Context, code string, providerStoreID uuid.UUID, input *model.RedeemTokenInput) (*model.TokenRedemptionResult, error) {
	token, err := s.tokenRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem token: %w", err)
	}
	if token == nil {
		return nil, model.ErrTokenNotFound
	}

	now := s.now()

	tx, err := s.tokenRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem token: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	locked, err := s.tokenRepo.GetForUpdate(ctx, tx, token.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem token: %w", err)
	}
	if locked == nil {
		err = model.ErrTokenNotFound
		return nil, err
	}
	if locked.Status == model.TokenRedeemed || locked.RedeemedAt != nil {
		err = model.ErrTokenAlreadyRedeemed
		return nil, err
	}
	if locked.Status == model.TokenExpired || now.After(locked.ExpiresAt) {
		err = model.ErrTokenExpired
		return nil, err
	}
	if locked.Status != model.TokenSelected || locked.SelectedCrossCouponID == nil {
		err = model.ErrTokenNotSelected
		return nil, err
	}

	crossCoupon, err := s.crossCouponRepo.GetByID(ctx, *locked.SelectedCrossCouponID)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem token: %w", err)
	}
	if crossCoupon == nil {
		err = model.ErrCrossCouponNotFound
		return nil, err
	}
	if crossCoupon.ProviderStoreID != providerStoreID {
		err = model.ErrStoreMismatch
		return nil, err
	}

	var orderAmount *int64
	if input != nil {
		orderAmount = input.OrderAmount
	}
	discountAmount := crossCouponDiscount(crossCoupon, orderAmount)

	if err = s.tokenRepo.MarkRedeemed(ctx, tx, locked.ID, now); err != nil {
		return nil, fmt.Errorf("failed to redeem token: %w", err)
	}
	if err = s.crossCouponRepo.IncrementRedeemed(ctx, tx, crossCoupon.ID); err != nil {
		return nil, fmt.Errorf("failed to redeem token: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("token_code", code).Msg("failed to commit token redemption transaction")
		return nil, fmt.Errorf("failed to redeem token: %w", err)
	}

	locked.Status = model.TokenRedeemed
	locked.RedeemedAt = &now

	result := &model.TokenRedemptionResult{
		Token:          locked,
		CrossCoupon:    crossCoupon,
		DiscountAmount: discountAmount,
	}
	if orderAmount != nil {
		final := *orderAmount - discountAmount
		result.FinalAmount = &final
	}

	s.logger.Info().
		Str("token_code", code).
		Str("cross_coupon_id", crossCoupon.ID.String()).
		Int64("discount_amount", discountAmount).
		Msg("meal token redeemed")

	return result, nil
}

// crossCouponDiscount prices a cross coupon's simplified fixed or
// percentage discount against an optional order amount.
func crossCouponDiscount(c *model.CrossCoupon, orderAmount *int64) int64 {
	switch c.DiscountType {
	case discount.TypeFixed:
		return c.DiscountValue
	case discount.TypePercentage:
		if orderAmount == nil {
			return 0
		}
		return *orderAmount * c.DiscountValue / 100
	default:
		return 0
	}
}

// ListByCustomer lists a customer's tokens after a lazy expiry sweep.
func (s *tokenService) ListByCustomer(ctx context.Context, customerID uuid.UUID, status *model.TokenStatus, limit, offset int) ([]model.MealToken, int, error) {
	if _, err := s.tokenRepo.ExpireOverdue(ctx, s.now()); err != nil {
		s.logger.Error().Err(err).Msg("lazy expiry sweep failed before listing")
	}

	tokens, total, err := s.tokenRepo.ListByCustomer(ctx, customerID, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tokens: %w", err)
	}
	return tokens, total, nil
}

// ExpireOverdue flips overdue tokens to expired; the scheduler calls this.
func (s *tokenService) ExpireOverdue(ctx context.Context) (int64, error) {
	n, err := s.tokenRepo.ExpireOverdue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire tokens: %w", err)
	}
	if n > 0 {
		s.logger.Info().Int64("count", n).Msg("expired overdue tokens")
	}
	return n, nil
}

// liveToken fetches a token by code and applies lazy expiry: an overdue
// token is flipped to EXPIRED on read and reported as expired.
func (s *tokenService) liveToken(ctx context.Context, code string) (*model.MealToken, error) {
	token, err := s.tokenRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	if token == nil {
		return nil, model.ErrTokenNotFound
	}

	switch token.Status {
	case model.TokenExpired:
		return nil, model.ErrTokenExpired
	case model.TokenRedeemed:
		return nil, model.ErrTokenAlreadyRedeemed
	}

	if s.now().After(token.ExpiresAt) {
		if err := s.tokenRepo.MarkExpired(ctx, token.ID); err != nil {
			s.logger.Error().Err(err).Str("token_code", code).Msg("failed to lazily expire token")
		}
		return nil, model.ErrTokenExpired
	}

	return token, nil
}
