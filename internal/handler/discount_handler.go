package handler

import (
	"net/http"

	"coupon-day/internal/discount"
	"coupon-day/internal/model"

	"github.com/rs/zerolog"
)

// DiscountHandler exposes the discount calculator as a stateless
// preview endpoint so store dashboards can price a basket without
// touching any coupon row.
type DiscountHandler struct {
	calculator *discount.Calculator
	logger     zerolog.Logger
}

// NewDiscountHandler creates a new discount handler.
func NewDiscountHandler(calculator *discount.Calculator, logger zerolog.Logger) *DiscountHandler {
	return &DiscountHandler{
		calculator: calculator,
		logger:     logger.With().Str("handler", "discount").Logger(),
	}
}

type calculateRequest struct {
	DiscountType      discount.Type       `json:"discountType"`
	DiscountValue     int64               `json:"discountValue"`
	DiscountCondition *discount.Condition `json:"discountCondition,omitempty"`
	OrderItems        []discount.Item     `json:"orderItems,omitempty"`
	OrderAmount       int64               `json:"orderAmount"`
}

// Calculate handles POST /api/discounts/calculate.
func (h *DiscountHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}

	if err := discount.ValidateCondition(req.DiscountType, req.DiscountCondition); err != nil {
		respondError(w, model.NewDomainError(model.ErrCodeInvalidCondition, err.Error()), h.logger)
		return
	}

	result := h.calculator.Calculate(
		req.DiscountType, req.DiscountValue, req.DiscountCondition, req.OrderItems, req.OrderAmount,
	)

	writeJSON(w, http.StatusOK, result)
}
