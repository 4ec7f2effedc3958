package model

import (
	"time"

	"coupon-day/internal/discount"

	"github.com/google/uuid"
)

// CouponStatus is a coupon's lifecycle state.
type CouponStatus string

// Coupon lifecycle states.
const (
	CouponDraft     CouponStatus = "DRAFT"
	CouponScheduled CouponStatus = "SCHEDULED"
	CouponActive    CouponStatus = "ACTIVE"
	CouponPaused    CouponStatus = "PAUSED"
	CouponEnded     CouponStatus = "ENDED"
)

// Coupon is a store-issued discount offer with temporal and quantity
// constraints. Counters are monotonically non-decreasing outside of
// administrative correction.
type Coupon struct {
	ID                uuid.UUID           `json:"id" db:"id"`
	StoreID           uuid.UUID           `json:"storeId" db:"store_id"`
	Name              string              `json:"name" db:"name"`
	Description       *string             `json:"description,omitempty" db:"description"`
	DiscountType      discount.Type       `json:"discountType" db:"discount_type"`
	DiscountValue     int64               `json:"discountValue" db:"discount_value"`
	DiscountCondition *discount.Condition `json:"discountCondition,omitempty" db:"discount_condition"`

	ValidFrom  time.Time `json:"validFrom" db:"valid_from"`
	ValidUntil time.Time `json:"validUntil" db:"valid_until"`

	// AvailableDays holds allowed weekdays, 0=Sunday; empty means every day.
	AvailableDays      []int       `json:"availableDays" db:"available_days"`
	AvailableTimeStart *string     `json:"availableTimeStart,omitempty" db:"available_time_start"`
	AvailableTimeEnd   *string     `json:"availableTimeEnd,omitempty" db:"available_time_end"`
	BlackoutDates      []time.Time `json:"blackoutDates,omitempty" db:"blackout_dates"`

	TotalQuantity *int `json:"totalQuantity,omitempty" db:"total_quantity"`
	DailyLimit    *int `json:"dailyLimit,omitempty" db:"daily_limit"`
	// PerUserLimit of 0 means unlimited.
	PerUserLimit int `json:"perUserLimit" db:"per_user_limit"`

	Status CouponStatus `json:"status" db:"status"`

	StatsIssued         int     `json:"statsIssued" db:"stats_issued"`
	StatsRedeemed       int     `json:"statsRedeemed" db:"stats_redeemed"`
	StatsRedemptionRate float64 `json:"statsRedemptionRate" db:"stats_redemption_rate"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// SavedCouponStatus is a saved coupon's state.
type SavedCouponStatus string

// Saved coupon states.
const (
	SavedCouponActive  SavedCouponStatus = "ACTIVE"
	SavedCouponUsed    SavedCouponStatus = "USED"
	SavedCouponExpired SavedCouponStatus = "EXPIRED"
)

// SavedCoupon is a customer's claim on a coupon, redeemable once.
// The active→used transition is driven solely by the redemption flow.
type SavedCoupon struct {
	ID           uuid.UUID         `json:"id" db:"id"`
	CouponID     uuid.UUID         `json:"couponId" db:"coupon_id"`
	CustomerID   uuid.UUID         `json:"customerId" db:"customer_id"`
	Status       SavedCouponStatus `json:"status" db:"status"`
	ExpiresAt    time.Time         `json:"expiresAt" db:"expires_at"`
	SavedAt      time.Time         `json:"savedAt" db:"saved_at"`
	UsedAt       *time.Time        `json:"usedAt,omitempty" db:"used_at"`
	RedemptionID *uuid.UUID        `json:"redemptionId,omitempty" db:"redemption_id"`
}
