package handler

import (
	"net/http"

	"coupon-day/internal/model"
	"coupon-day/internal/service"

	"github.com/rs/zerolog"
)

// CrossCouponHandler handles provider-side cross-coupon management.
type CrossCouponHandler struct {
	service service.CrossCouponService
	logger  zerolog.Logger
}

// NewCrossCouponHandler creates a new cross-coupon handler.
func NewCrossCouponHandler(service service.CrossCouponService, logger zerolog.Logger) *CrossCouponHandler {
	return &CrossCouponHandler{
		service: service,
		logger:  logger.With().Str("handler", "cross_coupon").Logger(),
	}
}

// CreateCrossCoupon handles POST /api/cross-coupons.
func (h *CrossCouponHandler) CreateCrossCoupon(w http.ResponseWriter, r *http.Request) {
	var input model.CrossCouponInput
	if err := decodeJSON(r, &input); err != nil {
		respondError(w, err, h.logger)
		return
	}

	crossCoupon, err := h.service.Create(r.Context(), &input)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, crossCoupon)
}

// UpdateCrossCoupon handles PATCH /api/cross-coupons/{id}.
func (h *CrossCouponHandler) UpdateCrossCoupon(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	var input model.CrossCouponUpdateInput
	if err := decodeJSON(r, &input); err != nil {
		respondError(w, err, h.logger)
		return
	}

	crossCoupon, err := h.service.Update(r.Context(), id, &input)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, crossCoupon)
}

// DeactivateCrossCoupon handles DELETE /api/cross-coupons/{id}.
// The acting store comes from the storeId query parameter.
func (h *CrossCouponHandler) DeactivateCrossCoupon(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	storeID, err := queryUUID(r, "storeId")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	if storeID == nil {
		respondError(w, model.NewDomainError(model.ErrCodeMissingField, "storeId is required"), h.logger)
		return
	}

	if err := h.service.Deactivate(r.Context(), id, *storeID); err != nil {
		respondError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListPartnershipCrossCoupons handles GET /api/partnerships/{id}/cross-coupons.
func (h *CrossCouponHandler) ListPartnershipCrossCoupons(w http.ResponseWriter, r *http.Request) {
	partnershipID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"

	crossCoupons, err := h.service.ListByPartnership(r.Context(), partnershipID, activeOnly)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"crossCoupons": crossCoupons})
}
