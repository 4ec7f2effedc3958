package discount

// Type identifies a discount strategy.
type Type string

// Discount strategies.
const (
	TypeFixed       Type = "FIXED"
	TypePercentage  Type = "PERCENTAGE"
	TypeBogo        Type = "BOGO"
	TypeBundle      Type = "BUNDLE"
	TypeFreebie     Type = "FREEBIE"
	TypeConditional Type = "CONDITIONAL"
)

// Condition holds the strategy-specific configuration for a coupon.
// Exactly one variant is populated, matching the coupon's discount type;
// FIXED and PERCENTAGE coupons carry no condition at all.
type Condition struct {
	Bogo        *BogoCondition        `json:"bogo,omitempty"`
	Bundle      *BundleCondition      `json:"bundle,omitempty"`
	Freebie     *FreebieCondition     `json:"freebie,omitempty"`
	Conditional *ConditionalCondition `json:"conditional,omitempty"`
}

// BogoCondition configures a buy-X-get-Y discount.
type BogoCondition struct {
	BuyQuantity     int     `json:"buyQuantity"`
	GetQuantity     int     `json:"getQuantity"`
	TargetItemID    *string `json:"targetItemId,omitempty"`
	MaxApplications *int    `json:"maxApplications,omitempty"`
}

// BundleCondition configures a set-price discount over required items.
type BundleCondition struct {
	Items         []BundleItem `json:"items"`
	BundlePrice   int64        `json:"bundlePrice"`
	OriginalPrice *int64       `json:"originalPrice,omitempty"`
}

// BundleItem is one required (item, quantity) pair of a bundle.
type BundleItem struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// FreebieCondition configures a free-item benefit. The benefit never
// reduces the order total; the free item is reported separately.
type FreebieCondition struct {
	MinOrderAmount  *int64 `json:"minOrderAmount,omitempty"`
	MinQuantity     *int   `json:"minQuantity,omitempty"`
	FreebieItemID   string `json:"freebieItemId"`
	FreebieQuantity int    `json:"freebieQuantity"`
}

// ConditionalCondition configures a guarded fixed-or-percentage discount.
// Guards are evaluated in order; the first unmet guard wins.
type ConditionalCondition struct {
	Conditions []Guard        `json:"conditions"`
	Discount   NestedDiscount `json:"discount"`
}

// GuardType identifies one kind of conditional guard.
type GuardType string

// Conditional guard kinds.
const (
	GuardMinAmount     GuardType = "min_amount"
	GuardMinQuantity   GuardType = "min_quantity"
	GuardTimeRange     GuardType = "time_range"
	GuardDayOfWeek     GuardType = "day_of_week"
	GuardFirstPurchase GuardType = "first_purchase"
)

// Guard is one condition of a CONDITIONAL discount. The field matching
// Type is read; the others are ignored.
type Guard struct {
	Type      GuardType  `json:"type"`
	Amount    int64      `json:"amount,omitempty"`
	Quantity  int        `json:"quantity,omitempty"`
	TimeRange *TimeRange `json:"timeRange,omitempty"`
	Days      []int      `json:"days,omitempty"`
}

// TimeRange is an inclusive clock-time window in "HH:mm" form.
// Start and End are compared as strings; an End before Start simply
// never matches, there is no midnight wraparound.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// NestedDiscount is the discount applied once all guards pass.
type NestedDiscount struct {
	Type  NestedType `json:"type"`
	Value int64      `json:"value"`
}

// NestedType is the inner discount kind of a CONDITIONAL coupon.
type NestedType string

// Nested discount kinds.
const (
	NestedFixed      NestedType = "fixed"
	NestedPercentage NestedType = "percentage"
)

// Item is one order line handed to the calculator by the caller.
type Item struct {
	ItemID   string `json:"itemId"`
	Name     string `json:"name,omitempty"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// FreeItem is a free-item benefit granted by a FREEBIE coupon.
type FreeItem struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// Result is the outcome of a discount calculation. A zero Amount with a
// Description is an expected business outcome (an unmet condition), not
// an error.
type Result struct {
	Type         Type       `json:"discountType"`
	Amount       int64      `json:"discountAmount"`
	Description  string     `json:"description"`
	AppliedItems []string   `json:"appliedItems,omitempty"`
	FreeItems    []FreeItem `json:"freeItems,omitempty"`
}
