package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Error codes surfaced to API callers. Availability reason codes live
// in the availability package; the codes here cover not-found,
// state-conflict, validation and integrity failures.
const (
	ErrCodeInvalidJSON   = "INVALID_JSON"
	ErrCodeMissingField  = "MISSING_FIELD"
	ErrCodeInternalError = "INTERNAL_ERROR"

	ErrCodeCouponNotFound     = "COUPON_NOT_FOUND"
	ErrCodeCouponNotAvailable = "COUPON_NOT_AVAILABLE"
	ErrCodeCouponAlreadyUsed  = "COUPON_ALREADY_USED"
	ErrCodeCouponExpired      = "COUPON_EXPIRED"
	ErrCodeInvalidCondition   = "INVALID_DISCOUNT_CONDITION"
	ErrCodeInvalidStatus      = "INVALID_STATUS"
	ErrCodeAlreadySaved       = "COUPON_ALREADY_SAVED"

	ErrCodeTokenNotFound        = "TOKEN_NOT_FOUND"
	ErrCodeTokenExpired         = "TOKEN_EXPIRED"
	ErrCodeTokenAlreadyUsed     = "TOKEN_ALREADY_USED"
	ErrCodeTokenNotSelected     = "TOKEN_NOT_SELECTED"
	ErrCodeTokenAlreadyRedeemed = "TOKEN_ALREADY_REDEEMED"
	ErrCodeCrossCouponNotFound  = "CROSS_COUPON_NOT_FOUND"
	ErrCodeNoCrossCoupons       = "NO_ACTIVE_CROSS_COUPONS"
	ErrCodeSelectionLimit       = "DAILY_SELECTION_LIMIT_REACHED"

	ErrCodePartnershipNotFound = "PARTNERSHIP_NOT_FOUND"
	ErrCodePartnershipExists   = "PARTNERSHIP_ALREADY_EXISTS"
	ErrCodeSelfPartnership     = "SELF_PARTNERSHIP"
	ErrCodeNotPartnershipParty = "NOT_PARTNERSHIP_PARTY"
	ErrCodeOwnRequest          = "OWN_PARTNERSHIP_REQUEST"

	ErrCodeSettlementNotFound = "SETTLEMENT_NOT_FOUND"
	ErrCodeStoreMismatch      = "STORE_MISMATCH"
	ErrCodeStoreNotFound      = "STORE_NOT_FOUND"
	ErrCodeCustomerNotFound   = "CUSTOMER_NOT_FOUND"
)

// DomainError is a business failure with a machine-readable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Common domain errors.
var (
	ErrCouponNotFound     = NewDomainError(ErrCodeCouponNotFound, "coupon not found")
	ErrCouponAlreadyUsed  = NewDomainError(ErrCodeCouponAlreadyUsed, "coupon has already been used")
	ErrCouponExpired      = NewDomainError(ErrCodeCouponExpired, "coupon has expired")
	ErrCouponAlreadySaved = NewDomainError(ErrCodeAlreadySaved, "coupon is already saved")

	ErrTokenNotFound        = NewDomainError(ErrCodeTokenNotFound, "token not found")
	ErrTokenExpired         = NewDomainError(ErrCodeTokenExpired, "token has expired")
	ErrTokenAlreadyUsed     = NewDomainError(ErrCodeTokenAlreadyUsed, "token has already been used")
	ErrTokenNotSelected     = NewDomainError(ErrCodeTokenNotSelected, "no cross coupon has been selected for this token")
	ErrTokenAlreadyRedeemed = NewDomainError(ErrCodeTokenAlreadyRedeemed, "token has already been redeemed")
	ErrCrossCouponNotFound  = NewDomainError(ErrCodeCrossCouponNotFound, "cross coupon not found")
	ErrNoCrossCoupons       = NewDomainError(ErrCodeNoCrossCoupons, "partnership has no active cross coupons")
	ErrSelectionLimit       = NewDomainError(ErrCodeSelectionLimit, "daily selection limit reached for this cross coupon")

	ErrPartnershipNotFound = NewDomainError(ErrCodePartnershipNotFound, "partnership not found")
	ErrPartnershipExists   = NewDomainError(ErrCodePartnershipExists, "partnership already exists between these stores")
	ErrSelfPartnership     = NewDomainError(ErrCodeSelfPartnership, "a store cannot partner with itself")
	ErrNotPartnershipParty = NewDomainError(ErrCodeNotPartnershipParty, "store is not part of this partnership")
	ErrOwnRequest          = NewDomainError(ErrCodeOwnRequest, "cannot respond to own partnership request")

	ErrSettlementNotFound = NewDomainError(ErrCodeSettlementNotFound, "settlement not found")
	ErrStoreMismatch      = NewDomainError(ErrCodeStoreMismatch, "coupon does not belong to this store")
	ErrStoreNotFound      = NewDomainError(ErrCodeStoreNotFound, "store not found")
	ErrCustomerNotFound   = NewDomainError(ErrCodeCustomerNotFound, "customer not found")
)
