package service

import (
	"context"
	"time"

	"coupon-day/internal/availability"
	"coupon-day/internal/model"

	"github.com/google/uuid"
)

// CouponService defines operations for coupon authoring and the
// customer wallet.
type CouponService interface {
	// Create authors a new coupon after structural validation.
	Create(ctx context.Context, input *model.CreateCouponInput) (*model.Coupon, error)

	// GetByID retrieves a coupon by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)

	// ListByStore retrieves a store's coupons, optionally filtered by status.
	ListByStore(ctx context.Context, storeID uuid.UUID, status *model.CouponStatus) ([]model.Coupon, error)

	// UpdateStatus transitions a coupon's lifecycle status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.CouponStatus) (*model.Coupon, error)

	// CheckAvailability evaluates whether a coupon is usable right now.
	CheckAvailability(ctx context.Context, id uuid.UUID, customerID *uuid.UUID) (*availability.Result, error)

	// Save claims a coupon into a customer's wallet.
	Save(ctx context.Context, customerID, couponID uuid.UUID) (*model.SavedCoupon, error)

	// ListSaved retrieves a customer's saved coupons.
	ListSaved(ctx context.Context, customerID uuid.UUID, status *model.SavedCouponStatus) ([]model.SavedCoupon, error)
}

// RedemptionService defines the coupon redemption flow.
type RedemptionService interface {
	// Redeem applies a coupon at a store: resolution, state and
	// availability checks, discount calculation, then one atomic write set.
	Redeem(ctx context.Context, storeID uuid.UUID, input *model.RedemptionInput) (*model.RedemptionResult, error)

	// History lists a store's redemptions, newest first.
	History(ctx context.Context, storeID uuid.UUID, filter model.RedemptionFilter) ([]model.Redemption, int, error)
}

// TokenService defines the cross-store meal-token workflow.
type TokenService interface {
	// Issue creates a token at the distributor store after a qualifying purchase.
	Issue(ctx context.Context, distributorStoreID uuid.UUID, input *model.IssueTokenInput) (*model.IssueTokenResult, error)

	// Options lists the cross coupons a token can currently choose from.
	Options(ctx context.Context, code string) (*model.TokenOptions, error)

	// Select records the holder's cross-coupon choice.
	Select(ctx context.Context, code string, input *model.SelectCrossCouponInput) (*model.MealToken, error)

	// Redeem finalises a token at the provider store.
	Redeem(ctx context.Context, code string, providerStoreID uuid.UUID, input *model.RedeemTokenInput) (*model.TokenRedemptionResult, error)

	// ListByCustomer lists a customer's tokens after a lazy expiry sweep.
	ListByCustomer(ctx context.Context, customerID uuid.UUID, status *model.TokenStatus, limit, offset int) ([]model.MealToken, int, error)

	// ExpireOverdue flips overdue tokens to expired; the scheduler calls this.
	ExpireOverdue(ctx context.Context) (int64, error)
}

// PartnershipService defines partnership lifecycle and discovery.
type PartnershipService interface {
	// Request creates a pending partnership between two stores.
	Request(ctx context.Context, input *model.PartnershipRequestInput) (*model.Partnership, error)

	// Respond answers a pending request; only the non-requesting side may.
	Respond(ctx context.Context, id uuid.UUID, input *model.PartnershipRespondInput) (*model.Partnership, error)

	// ListByStore lists partnerships a store takes part in.
	ListByStore(ctx context.Context, storeID uuid.UUID, status *model.PartnershipStatus) ([]model.Partnership, error)

	// Recommend scores candidate partner stores for a store.
	Recommend(ctx context.Context, storeID uuid.UUID, limit int) ([]model.PartnerRecommendation, error)
}

// CrossCouponService defines provider-side cross-coupon management.
type CrossCouponService interface {
	// Create adds a cross coupon to an active partnership.
	Create(ctx context.Context, input *model.CrossCouponInput) (*model.CrossCoupon, error)

	// Update edits a cross coupon's offer fields.
	Update(ctx context.Context, id uuid.UUID, input *model.CrossCouponUpdateInput) (*model.CrossCoupon, error)

	// Deactivate soft-deletes a cross coupon.
	Deactivate(ctx context.Context, id, storeID uuid.UUID) error

	// ListByPartnership lists a partnership's cross coupons.
	ListByPartnership(ctx context.Context, partnershipID uuid.UUID, activeOnly bool) ([]model.CrossCoupon, error)
}

// SettlementService defines monthly settlement aggregation.
type SettlementService interface {
	// GetOrCreate fetches a partnership's settlement for a calendar month,
	// computing and persisting it on first access.
	GetOrCreate(ctx context.Context, partnershipID uuid.UUID, year int, month time.Month) (*model.CrossCouponSettlement, []model.SettlementDetail, error)

	// UpdateStatus moves a settlement along PENDING → CONFIRMED → PAID.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.SettlementStatus) (*model.CrossCouponSettlement, error)

	// RunMonthly computes settlements for every active partnership,
	// collecting per-partnership outcomes without aborting the run.
	RunMonthly(ctx context.Context, year int, month time.Month) ([]model.PartnershipSettlementResult, error)
}
