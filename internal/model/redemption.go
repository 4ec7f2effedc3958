package model

import (
	"time"

	"coupon-day/internal/discount"

	"github.com/google/uuid"
)

// Redemption is the immutable record of one coupon use. It is never
// updated after creation; a saved coupon's status change references it.
type Redemption struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	CouponID       uuid.UUID       `json:"couponId" db:"coupon_id"`
	SavedCouponID  *uuid.UUID      `json:"savedCouponId,omitempty" db:"saved_coupon_id"`
	CustomerID     *uuid.UUID      `json:"customerId,omitempty" db:"customer_id"`
	StoreID        uuid.UUID       `json:"storeId" db:"store_id"`
	OrderAmount    *int64          `json:"orderAmount,omitempty" db:"order_amount"`
	DiscountAmount int64           `json:"discountAmount" db:"discount_amount"`
	FinalAmount    *int64          `json:"finalAmount,omitempty" db:"final_amount"`
	OrderItems     []discount.Item `json:"orderItems,omitempty" db:"order_items"`
	RedeemedAt     time.Time       `json:"redeemedAt" db:"redeemed_at"`
}

// CouponDailyStats is one row per (coupon, calendar day), upserted by
// every redemption. It backs the daily-cap check and reporting.
type CouponDailyStats struct {
	ID                  uuid.UUID `json:"id" db:"id"`
	CouponID            uuid.UUID `json:"couponId" db:"coupon_id"`
	Date                time.Time `json:"date" db:"date"`
	RedeemedCount       int       `json:"redeemedCount" db:"redeemed_count"`
	TotalDiscountAmount int64     `json:"totalDiscountAmount" db:"total_discount_amount"`
}

// RedemptionInput is the request payload for redeeming a coupon.
// Exactly one of SavedCouponID or CouponID must be set; a bare
// CouponID covers walk-in customers without the app.
type RedemptionInput struct {
	SavedCouponID *uuid.UUID      `json:"savedCouponId,omitempty"`
	CouponID      *uuid.UUID      `json:"couponId,omitempty"`
	CustomerID    *uuid.UUID      `json:"customerId,omitempty"`
	OrderAmount   *int64          `json:"orderAmount,omitempty"`
	OrderItems    []discount.Item `json:"orderItems,omitempty"`
}

// RedemptionResult is returned after a successful redemption.
type RedemptionResult struct {
	Redemption     *Redemption `json:"redemption"`
	DiscountAmount int64       `json:"discountAmount"`
	FinalAmount    *int64      `json:"finalAmount,omitempty"`
}

// RedemptionFilter narrows a store's redemption history listing.
type RedemptionFilter struct {
	CouponID  *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}
