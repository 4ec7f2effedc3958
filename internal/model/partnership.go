package model

import (
	"time"

	"coupon-day/internal/discount"

	"github.com/google/uuid"
)

// PartnershipStatus is a partnership's lifecycle state.
type PartnershipStatus string

// Partnership lifecycle states.
const (
	PartnershipPending    PartnershipStatus = "PENDING"
	PartnershipActive     PartnershipStatus = "ACTIVE"
	PartnershipPaused     PartnershipStatus = "PAUSED"
	PartnershipTerminated PartnershipStatus = "TERMINATED"
)

// DefaultCommissionPerRedemption applies when a partnership was created
// without an explicit commission figure.
const DefaultCommissionPerRedemption int64 = 500

// Partnership is an edge between a distributor store (where the token
// is issued) and a provider store (where it is redeemed).
type Partnership struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	DistributorStoreID uuid.UUID `json:"distributorStoreId" db:"distributor_store_id"`
	ProviderStoreID    uuid.UUID `json:"providerStoreId" db:"provider_store_id"`

	Status PartnershipStatus `json:"status" db:"status"`
	// CommissionPerRedemption is the flat fee per redeemed token, in won.
	CommissionPerRedemption int64 `json:"commissionPerRedemption" db:"commission_per_redemption"`

	RequestedBy  uuid.UUID  `json:"requestedBy" db:"requested_by"`
	RequestedAt  time.Time  `json:"requestedAt" db:"requested_at"`
	RespondedAt  *time.Time `json:"respondedAt,omitempty" db:"responded_at"`
	TerminatedAt *time.Time `json:"terminatedAt,omitempty" db:"terminated_at"`
}

// RedemptionWindow is a cross coupon's token-expiry policy.
type RedemptionWindow string

// Redemption window policies.
const (
	WindowSameDay    RedemptionWindow = "same_day"
	WindowNextDay    RedemptionWindow = "next_day"
	WindowWithinWeek RedemptionWindow = "within_week"
)

// CrossCoupon is a discount offered by a partnership's provider store,
// claimable only through a meal token. Its discount is a simplified
// fixed-or-percentage form.
type CrossCoupon struct {
	ID              uuid.UUID `json:"id" db:"id"`
	PartnershipID   uuid.UUID `json:"partnershipId" db:"partnership_id"`
	ProviderStoreID uuid.UUID `json:"providerStoreId" db:"provider_store_id"`

	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`

	DiscountType  discount.Type `json:"discountType" db:"discount_type"`
	DiscountValue int64         `json:"discountValue" db:"discount_value"`

	RedemptionWindow   RedemptionWindow `json:"redemptionWindow" db:"redemption_window"`
	AvailableTimeStart *string          `json:"availableTimeStart,omitempty" db:"available_time_start"`
	AvailableTimeEnd   *string          `json:"availableTimeEnd,omitempty" db:"available_time_end"`
	DailyLimit         *int             `json:"dailyLimit,omitempty" db:"daily_limit"`

	IsActive bool `json:"isActive" db:"is_active"`

	StatsSelected int `json:"statsSelected" db:"stats_selected"`
	StatsRedeemed int `json:"statsRedeemed" db:"stats_redeemed"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
