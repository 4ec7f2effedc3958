package repository

import (
	"context"
	"time"

	"coupon-day/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CouponRepository defines the interface for coupon data access operations.
type CouponRepository interface {
	// Create inserts a new coupon.
	Create(ctx context.Context, coupon *model.Coupon) error

	// GetByID retrieves a single coupon by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)

	// ListByStore retrieves a store's coupons, optionally filtered by status.
	ListByStore(ctx context.Context, storeID uuid.UUID, status *model.CouponStatus) ([]model.Coupon, error)

	// UpdateStatus transitions a coupon's lifecycle status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.CouponStatus) error

	// IncrementIssued bumps the issued counter when a customer saves the coupon.
	IncrementIssued(ctx context.Context, id uuid.UUID) error

	// IncrementRedeemed bumps the redeemed counter and recomputes the
	// redemption rate within the provided transaction.
	IncrementRedeemed(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// SavedCouponRepository defines the interface for saved-coupon data access.
type SavedCouponRepository interface {
	// Create inserts a new saved coupon.
	Create(ctx context.Context, saved *model.SavedCoupon) error

	// GetByID retrieves a saved coupon by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.SavedCoupon, error)

	// FindActive returns a customer's active claim on a coupon, or nil when
	// there is none.
	FindActive(ctx context.Context, couponID, customerID uuid.UUID) (*model.SavedCoupon, error)

	// ListByCustomer retrieves a customer's saved coupons, newest first.
	ListByCustomer(ctx context.Context, customerID uuid.UUID, status *model.SavedCouponStatus) ([]model.SavedCoupon, error)

	// MarkUsed flips a saved coupon to used within the provided transaction,
	// recording when and by which redemption.
	MarkUsed(ctx context.Context, tx pgx.Tx, id uuid.UUID, usedAt time.Time, redemptionID uuid.UUID) error
}

// RedemptionRepository defines the interface for redemption records and the
// daily stats they feed. Its count methods satisfy availability.CountReader.
type RedemptionRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a redemption within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, redemption *model.Redemption) error

	// RedemptionCountOn counts redemptions of a coupon since local
	// midnight of day's calendar day.
	RedemptionCountOn(ctx context.Context, couponID uuid.UUID, day time.Time) (int, error)

	// CustomerRedemptionCount counts one customer's redemptions of a coupon.
	CustomerRedemptionCount(ctx context.Context, couponID, customerID uuid.UUID) (int, error)

	// UpsertDailyStats increments today's stats row for a coupon within the
	// provided transaction, creating the row on the first redemption of the day.
	UpsertDailyStats(ctx context.Context, tx pgx.Tx, couponID uuid.UUID, day time.Time, discountAmount int64) error

	// ListByStore returns a store's redemption history, newest first, along
	// with the total matching count.
	ListByStore(ctx context.Context, storeID uuid.UUID, filter model.RedemptionFilter) ([]model.Redemption, int, error)
}

// CustomerRepository defines the interface for customer data access.
type CustomerRepository interface {
	// GetByID retrieves a customer by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)

	// IncrementCouponStats bumps a customer's lifetime used-count and
	// saved-amount within the provided transaction.
	IncrementCouponStats(ctx context.Context, tx pgx.Tx, id uuid.UUID, savedAmount int64) error
}

// StoreRepository defines the interface for store data access.
type StoreRepository interface {
	// GetByID retrieves a store by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Store, error)

	// ListActiveExcluding returns active stores outside the given category
	// and ID set, for partner recommendation scanning.
	ListActiveExcluding(ctx context.Context, excludeIDs []uuid.UUID, excludeCategory string, limit int) ([]model.Store, error)
}

// PartnershipRepository defines the interface for partnership data access.
type PartnershipRepository interface {
	// Create inserts a new partnership request.
	Create(ctx context.Context, partnership *model.Partnership) error

	// GetByID retrieves a partnership by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Partnership, error)

	// FindBetween returns the partnership edge between two stores in either
	// direction, or nil when none exists.
	FindBetween(ctx context.Context, storeA, storeB uuid.UUID) (*model.Partnership, error)

	// ListByStore returns partnerships a store takes part in, on either side.
	ListByStore(ctx context.Context, storeID uuid.UUID, status *model.PartnershipStatus) ([]model.Partnership, error)

	// ListActive returns all active partnerships.
	ListActive(ctx context.Context) ([]model.Partnership, error)

	// UpdateStatus records a status transition, stamping respondedAt or
	// terminatedAt when provided.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.PartnershipStatus, respondedAt, terminatedAt *time.Time) error
}

// CrossCouponRepository defines the interface for cross-coupon data access.
type CrossCouponRepository interface {
	// Create inserts a new cross coupon.
	Create(ctx context.Context, coupon *model.CrossCoupon) error

	// GetByID retrieves a cross coupon by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.CrossCoupon, error)

	// Update persists edits to a cross coupon's offer fields and active flag.
	Update(ctx context.Context, coupon *model.CrossCoupon) error

	// ListByPartnership returns a partnership's cross coupons, oldest first.
	// When activeOnly is set, inactive ones are filtered out.
	ListByPartnership(ctx context.Context, partnershipID uuid.UUID, activeOnly bool) ([]model.CrossCoupon, error)

	// CountSelectionsSince counts tokens that selected a cross coupon at or
	// after the given instant, within the provided transaction.
	CountSelectionsSince(ctx context.Context, tx pgx.Tx, crossCouponID uuid.UUID, since time.Time) (int, error)

	// IncrementSelected bumps the selection counter within the transaction.
	IncrementSelected(ctx context.Context, tx pgx.Tx, id uuid.UUID) error

	// IncrementRedeemed bumps the redemption counter within the transaction.
	IncrementRedeemed(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// TokenRepository defines the interface for meal-token data access.
type TokenRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a newly issued token.
	Create(ctx context.Context, token *model.MealToken) error

	// GetByCode retrieves a token by its 8-character code.
	GetByCode(ctx context.Context, code string) (*model.MealToken, error)

	// GetForUpdate re-reads a token inside the transaction with a row lock.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.MealToken, error)

	// MarkSelected records a cross-coupon selection within the transaction.
	MarkSelected(ctx context.Context, tx pgx.Tx, id, crossCouponID uuid.UUID, customerID *uuid.UUID, selectedAt time.Time) error

	// MarkRedeemed finalises a token within the transaction.
	MarkRedeemed(ctx context.Context, tx pgx.Tx, id uuid.UUID, redeemedAt time.Time) error

	// MarkExpired lazily flips a single token to expired.
	MarkExpired(ctx context.Context, id uuid.UUID) error

	// ExpireOverdue flips every overdue issued or selected token to expired
	// and returns how many rows were affected.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)

	// ListByCustomer returns a customer's tokens, newest first, with the
	// total matching count.
	ListByCustomer(ctx context.Context, customerID uuid.UUID, status *model.TokenStatus, limit, offset int) ([]model.MealToken, int, error)

	// ListRedeemedInPeriod returns a partnership's tokens redeemed within
	// [from, to) that carry a selected cross coupon.
	ListRedeemedInPeriod(ctx context.Context, partnershipID uuid.UUID, from, to time.Time) ([]model.MealToken, error)
}

// SettlementRepository defines the interface for monthly settlement rows.
type SettlementRepository interface {
	// Create inserts a settlement row. A unique violation on
	// (partnership_id, period_start) signals a concurrent creation.
	Create(ctx context.Context, settlement *model.CrossCouponSettlement) error

	// GetByID retrieves a settlement by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.CrossCouponSettlement, error)

	// FindByPeriod retrieves a partnership's settlement for the month
	// starting at periodStart, or nil when none exists yet.
	FindByPeriod(ctx context.Context, partnershipID uuid.UUID, periodStart time.Time) (*model.CrossCouponSettlement, error)

	// UpdateStatus transitions a settlement's status, stamping paidAt when
	// provided.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.SettlementStatus, paidAt *time.Time) error
}
