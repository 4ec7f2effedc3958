package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coupon-day/internal/discount"
	"coupon-day/internal/model"
	"coupon-day/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// settlementService implements SettlementService.
type settlementService struct {
	settlementRepo  repository.SettlementRepository
	partnershipRepo repository.PartnershipRepository
	tokenRepo       repository.TokenRepository
	crossCouponRepo repository.CrossCouponRepository
	logger          zerolog.Logger
}

// NewSettlementService creates a new settlement service.
func NewSettlementService(
	settlementRepo repository.SettlementRepository,
	partnershipRepo repository.PartnershipRepository,
	tokenRepo repository.TokenRepository,
	crossCouponRepo repository.CrossCouponRepository,
	logger zerolog.Logger,
) SettlementService {
	return &settlementService{
		settlementRepo:  settlementRepo,
		partnershipRepo: partnershipRepo,
		tokenRepo:       tokenRepo,
		crossCouponRepo: crossCouponRepo,
		logger:          logger.With().Str("service", "settlement").Logger(),
	}
}

// GetOrCreate fetches a partnership's settlement for a calendar month,
// computing and persisting it on first access. The unique index on
// (partnership_id, period_start) makes concurrent first accesses
// converge on one row: the loser of the insert race re-fetches.
func (s *settlementService) GetOrCreate(ctx context.Context, partnershipID uuid.UUID, year int, month time.Month) (*model.CrossCouponSettlement, []model.SettlementDetail, error) {
	partnership, err := s.partnershipRepo.GetByID(ctx, partnershipID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	if partnership == nil {
		return nil, nil, model.ErrPartnershipNotFound
	}

	periodStart := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	nextMonth := periodStart.AddDate(0, 1, 0)

	tokens, err := s.tokenRepo.ListRedeemedInPeriod(ctx, partnershipID, periodStart, nextMonth)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	details, totals, err := s.aggregate(ctx, tokens, partnership.CommissionPerRedemption)
	if err != nil {
		return nil, nil, err
	}

	existing, err := s.settlementRepo.FindByPeriod(ctx, partnershipID, periodStart)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	if existing != nil {
		return existing, details, nil
	}

	settlement := &model.CrossCouponSettlement{
		ID:                  uuid.New(),
		PartnershipID:       partnershipID,
		PeriodStart:         periodStart,
		PeriodEnd:           nextMonth.Add(-time.Millisecond),
		TotalRedemptions:    totals.redemptions,
		TotalDiscountAmount: totals.discount,
		CommissionPerUnit:   partnership.CommissionPerRedemption,
		TotalCommission:     totals.commission,
		Status:              model.SettlementPending,
		CreatedAt:           time.Now(),
	}

	if err := s.settlementRepo.Create(ctx, settlement); err != nil {
		if errors.Is(err, repository.ErrDuplicatePeriod) {
			existing, ferr := s.settlementRepo.FindByPeriod(ctx, partnershipID, periodStart)
			if ferr != nil {
				return nil, nil, fmt.Errorf("failed to get settlement: %w", ferr)
			}
			if existing != nil {
				return existing, details, nil
			}
		}
		return nil, nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	s.logger.Info().
		Str("settlement_id", settlement.ID.String()).
		Str("partnership_id", partnershipID.String()).
		Int("total_redemptions", settlement.TotalRedemptions).
		Int64("total_commission", settlement.TotalCommission).
		Msg("settlement computed")

	return settlement, details, nil
}

type settlementTotals struct {
	redemptions int
	discount    int64
	commission  int64
}

// aggregate groups redeemed tokens by cross coupon. Fixed discounts sum
// at face value; percentage discounts contribute zero because the order
// amount is not recorded on the token.
func (s *settlementService) aggregate(ctx context.Context, tokens []model.MealToken, commissionPerUnit int64) ([]model.SettlementDetail, settlementTotals, error) {
	var totals settlementTotals

	coupons := make(map[uuid.UUID]*model.CrossCoupon)
	order := make([]uuid.UUID, 0)
	counts := make(map[uuid.UUID]int)

	for _, token := range tokens {
		id := *token.SelectedCrossCouponID
		if _, seen := coupons[id]; !seen {
			coupon, err := s.crossCouponRepo.GetByID(ctx, id)
			if err != nil {
				return nil, totals, fmt.Errorf("failed to get settlement: %w", err)
			}
			if coupon == nil {
				s.logger.Warn().Str("cross_coupon_id", id.String()).Msg("redeemed token references missing cross coupon")
				continue
			}
			coupons[id] = coupon
			order = append(order, id)
		}
		counts[id]++
	}

	details := make([]model.SettlementDetail, 0, len(order))
	for _, id := range order {
		coupon := coupons[id]
		count := counts[id]

		var discountSum int64
		if coupon.DiscountType == discount.TypeFixed {
			discountSum = coupon.DiscountValue * int64(count)
		}
		commission := int64(count) * commissionPerUnit

		details = append(details, model.SettlementDetail{
			CrossCouponID:   id,
			CrossCouponName: coupon.Name,
			RedemptionCount: count,
			DiscountAmount:  discountSum,
			Commission:      commission,
		})

		totals.redemptions += count
		totals.discount += discountSum
		totals.commission += commission
	}

	return details, totals, nil
}

// UpdateStatus moves a settlement along PENDING → CONFIRMED → PAID.
func (s *settlementService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SettlementStatus) (*model.CrossCouponSettlement, error) {
	settlement, err := s.settlementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update settlement: %w", err)
	}
	if settlement == nil {
		return nil, model.ErrSettlementNotFound
	}

	valid := (settlement.Status == model.SettlementPending && status == model.SettlementConfirmed) ||
		(settlement.Status == model.SettlementConfirmed && status == model.SettlementPaid)
	if !valid {
		return nil, model.NewDomainError(model.ErrCodeInvalidStatus,
			fmt.Sprintf("cannot move settlement from %s to %s", settlement.Status, status))
	}

	var paidAt *time.Time
	if status == model.SettlementPaid {
		now := time.Now()
		paidAt = &now
	}

	if err := s.settlementRepo.UpdateStatus(ctx, id, status, paidAt); err != nil {
		return nil, err
	}

	settlement.Status = status
	if paidAt != nil {
		settlement.PaidAt = paidAt
	}

	s.logger.Info().
		Str("settlement_id", id.String()).
		Str("status", string(status)).
		Msg("settlement status updated")

	return settlement, nil
}

// RunMonthly computes settlements for every active partnership. A
// failing partnership is recorded and never aborts its siblings.
func (s *settlementService) RunMonthly(ctx context.Context, year int, month time.Month) ([]model.PartnershipSettlementResult, error) {
	partnerships, err := s.partnershipRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run monthly settlements: %w", err)
	}

	results := make([]model.PartnershipSettlementResult, 0, len(partnerships))
	for _, p := range partnerships {
		settlement, _, err := s.GetOrCreate(ctx, p.ID, year, month)
		if err != nil {
			s.logger.Error().Err(err).Str("partnership_id", p.ID.String()).Msg("settlement run failed for partnership")
			results = append(results, model.PartnershipSettlementResult{
				PartnershipID: p.ID,
				Error:         err.Error(),
			})
			continue
		}
		results = append(results, model.PartnershipSettlementResult{
			PartnershipID: p.ID,
			Settlement:    settlement,
			Success:       true,
		})
	}

	s.logger.Info().
		Int("partnerships", len(partnerships)).
		Int("results", len(results)).
		Msg("monthly settlement run complete")

	return results, nil
}
