package model

import (
	"time"

	"coupon-day/internal/discount"

	"github.com/google/uuid"
)

// CreateCouponInput is the request payload for coupon authoring.
type CreateCouponInput struct {
	StoreID           uuid.UUID           `json:"storeId"`
	Name              string              `json:"name"`
	Description       *string             `json:"description,omitempty"`
	DiscountType      discount.Type       `json:"discountType"`
	DiscountValue     int64               `json:"discountValue"`
	DiscountCondition *discount.Condition `json:"discountCondition,omitempty"`

	ValidFrom  time.Time `json:"validFrom"`
	ValidUntil time.Time `json:"validUntil"`

	AvailableDays      []int       `json:"availableDays,omitempty"`
	AvailableTimeStart *string     `json:"availableTimeStart,omitempty"`
	AvailableTimeEnd   *string     `json:"availableTimeEnd,omitempty"`
	BlackoutDates      []time.Time `json:"blackoutDates,omitempty"`

	TotalQuantity *int `json:"totalQuantity,omitempty"`
	DailyLimit    *int `json:"dailyLimit,omitempty"`
	PerUserLimit  int  `json:"perUserLimit"`

	// Status defaults to DRAFT when empty.
	Status CouponStatus `json:"status,omitempty"`
}

// PartnershipRequestInput is the request payload for a partnership request.
// RequestedBy must be one of the two stores.
type PartnershipRequestInput struct {
	DistributorStoreID uuid.UUID `json:"distributorStoreId"`
	ProviderStoreID    uuid.UUID `json:"providerStoreId"`
	RequestedBy        uuid.UUID `json:"requestedBy"`
	// CommissionPerRedemption defaults to DefaultCommissionPerRedemption when nil.
	CommissionPerRedemption *int64 `json:"commissionPerRedemption,omitempty"`
}

// PartnershipRespondInput is the request payload for answering a
// partnership request.
type PartnershipRespondInput struct {
	StoreID uuid.UUID `json:"storeId"`
	Accept  bool      `json:"accept"`
}

// CrossCouponInput is the request payload for creating a cross coupon.
type CrossCouponInput struct {
	PartnershipID uuid.UUID `json:"partnershipId"`
	// StoreID is the acting store; it must be the partnership's provider.
	StoreID     uuid.UUID `json:"storeId"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`

	DiscountType  discount.Type `json:"discountType"`
	DiscountValue int64         `json:"discountValue"`

	// RedemptionWindow defaults to next_day when empty.
	RedemptionWindow   RedemptionWindow `json:"redemptionWindow,omitempty"`
	AvailableTimeStart *string          `json:"availableTimeStart,omitempty"`
	AvailableTimeEnd   *string          `json:"availableTimeEnd,omitempty"`
	// DailyLimit defaults to 30 when nil.
	DailyLimit *int `json:"dailyLimit,omitempty"`
}

// CrossCouponUpdateInput carries partial edits to a cross coupon.
// Nil fields are left unchanged.
type CrossCouponUpdateInput struct {
	StoreID            uuid.UUID         `json:"storeId"`
	Name               *string           `json:"name,omitempty"`
	Description        *string           `json:"description,omitempty"`
	DiscountType       *discount.Type    `json:"discountType,omitempty"`
	DiscountValue      *int64            `json:"discountValue,omitempty"`
	RedemptionWindow   *RedemptionWindow `json:"redemptionWindow,omitempty"`
	AvailableTimeStart *string           `json:"availableTimeStart,omitempty"`
	AvailableTimeEnd   *string           `json:"availableTimeEnd,omitempty"`
	DailyLimit         *int              `json:"dailyLimit,omitempty"`
	IsActive           *bool             `json:"isActive,omitempty"`
}

// IssueTokenInput is the request payload for issuing a meal token.
type IssueTokenInput struct {
	PartnershipID uuid.UUID  `json:"partnershipId"`
	CustomerID    *uuid.UUID `json:"customerId,omitempty"`
}

// IssueTokenResult is the issuance response: the new token plus how
// many cross coupons the holder will be able to choose from.
type IssueTokenResult struct {
	Token                *MealToken `json:"token"`
	AvailableCouponCount int        `json:"availableCouponCount"`
}

// TokenOptions is the choice set shown to a token holder: the provider
// store and the cross coupons usable right now.
type TokenOptions struct {
	Token         *MealToken    `json:"token"`
	ProviderStore *Store        `json:"providerStore"`
	CrossCoupons  []CrossCoupon `json:"crossCoupons"`
}

// SelectCrossCouponInput is the request payload for picking a cross coupon.
type SelectCrossCouponInput struct {
	CrossCouponID uuid.UUID  `json:"crossCouponId"`
	CustomerID    *uuid.UUID `json:"customerId,omitempty"`
}

// RedeemTokenInput is the request payload for redeeming a token at the
// provider store. OrderAmount is optional; without it a percentage
// discount cannot be priced.
type RedeemTokenInput struct {
	OrderAmount *int64 `json:"orderAmount,omitempty"`
}

// TokenRedemptionResult is returned after a successful token redemption.
type TokenRedemptionResult struct {
	Token          *MealToken   `json:"token"`
	CrossCoupon    *CrossCoupon `json:"crossCoupon"`
	DiscountAmount int64        `json:"discountAmount"`
	FinalAmount    *int64       `json:"finalAmount,omitempty"`
}

// PartnerRecommendation is one scored candidate partner store.
type PartnerRecommendation struct {
	Store          Store   `json:"store"`
	DistanceMeters float64 `json:"distanceMeters"`
	Score          int     `json:"score"`
}
