package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenStatus is a meal token's state. ISSUED → SELECTED → REDEEMED,
// with EXPIRED reachable from ISSUED or SELECTED once the deadline
// passes. A REDEEMED token is immutable.
type TokenStatus string

// Meal token states.
const (
	TokenIssued   TokenStatus = "ISSUED"
	TokenSelected TokenStatus = "SELECTED"
	TokenRedeemed TokenStatus = "REDEEMED"
	TokenExpired  TokenStatus = "EXPIRED"
)

// MealToken is the cross-store hand-off unit: issued by the
// distributor store after a qualifying purchase, it lets the customer
// claim one of the partnership's cross coupons at the provider store.
// ExpiresAt is computed once at issuance and never recalculated.
type MealToken struct {
	ID                    uuid.UUID   `json:"id" db:"id"`
	TokenCode             string      `json:"tokenCode" db:"token_code"`
	PartnershipID         uuid.UUID   `json:"partnershipId" db:"partnership_id"`
	DistributorStoreID    uuid.UUID   `json:"distributorStoreId" db:"distributor_store_id"`
	CustomerID            *uuid.UUID  `json:"customerId,omitempty" db:"customer_id"`
	SelectedCrossCouponID *uuid.UUID  `json:"selectedCrossCouponId,omitempty" db:"selected_cross_coupon_id"`
	Status                TokenStatus `json:"status" db:"status"`
	IssuedAt              time.Time   `json:"issuedAt" db:"issued_at"`
	ExpiresAt             time.Time   `json:"expiresAt" db:"expires_at"`
	SelectedAt            *time.Time  `json:"selectedAt,omitempty" db:"selected_at"`
	RedeemedAt            *time.Time  `json:"redeemedAt,omitempty" db:"redeemed_at"`
}

// SettlementStatus tracks a settlement row's own lifecycle,
// independent of the underlying tokens.
type SettlementStatus string

// Settlement states.
const (
	SettlementPending   SettlementStatus = "PENDING"
	SettlementConfirmed SettlementStatus = "CONFIRMED"
	SettlementPaid      SettlementStatus = "PAID"
)

// CrossCouponSettlement is one row per (partnership, calendar month),
// created lazily on first query for that month.
type CrossCouponSettlement struct {
	ID                  uuid.UUID        `json:"id" db:"id"`
	PartnershipID       uuid.UUID        `json:"partnershipId" db:"partnership_id"`
	PeriodStart         time.Time        `json:"periodStart" db:"period_start"`
	PeriodEnd           time.Time        `json:"periodEnd" db:"period_end"`
	TotalRedemptions    int              `json:"totalRedemptions" db:"total_redemptions"`
	TotalDiscountAmount int64            `json:"totalDiscountAmount" db:"total_discount_amount"`
	CommissionPerUnit   int64            `json:"commissionPerUnit" db:"commission_per_unit"`
	TotalCommission     int64            `json:"totalCommission" db:"total_commission"`
	Status              SettlementStatus `json:"status" db:"status"`
	PaidAt              *time.Time       `json:"paidAt,omitempty" db:"paid_at"`
	CreatedAt           time.Time        `json:"createdAt" db:"created_at"`
}

// SettlementDetail is the per-coupon breakdown of a computed settlement.
type SettlementDetail struct {
	CrossCouponID   uuid.UUID `json:"crossCouponId"`
	CrossCouponName string    `json:"crossCouponName"`
	RedemptionCount int       `json:"redemptionCount"`
	DiscountAmount  int64     `json:"discountAmount"`
	Commission      int64     `json:"commission"`
}

// PartnershipSettlementResult is one partnership's outcome in a
// monthly batch run. A failed partnership never aborts its siblings.
type PartnershipSettlementResult struct {
	PartnershipID uuid.UUID              `json:"partnershipId"`
	Settlement    *CrossCouponSettlement `json:"settlement,omitempty"`
	Error         string                 `json:"error,omitempty"`
	Success       bool                   `json:"success"`
}
