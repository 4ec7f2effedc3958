package handler

import (
	"net/http"

	"coupon-day/internal/model"
	"coupon-day/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CouponHandler handles coupon authoring, availability checks and the
// customer wallet endpoints.
type CouponHandler struct {
	service service.CouponService
	logger  zerolog.Logger
}

// NewCouponHandler creates a new coupon handler.
func NewCouponHandler(service service.CouponService, logger zerolog.Logger) *CouponHandler {
	return &CouponHandler{
		service: service,
		logger:  logger.With().Str("handler", "coupon").Logger(),
	}
}

// CreateCoupon handles POST /api/coupons.
func (h *CouponHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var input model.CreateCouponInput
	if err := decodeJSON(r, &input); err != nil {
		respondError(w, err, h.logger)
		return
	}

	coupon, err := h.service.Create(r.Context(), &input)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, coupon)
}

// GetCoupon handles GET /api/coupons/{id}.
func (h *CouponHandler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	coupon, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, coupon)
}

// ListStoreCoupons handles GET /api/stores/{storeId}/coupons.
func (h *CouponHandler) ListStoreCoupons(w http.ResponseWriter, r *http.Request) {
	storeID, err := pathUUID(r, "storeId")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	var status *model.CouponStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := model.CouponStatus(raw)
		status = &s
	}

	coupons, err := h.service.ListByStore(r.Context(), storeID, status)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"coupons": coupons})
}

// UpdateCouponStatus handles PATCH /api/coupons/{id}/status.
func (h *CouponHandler) UpdateCouponStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	var body struct {
		Status model.CouponStatus `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, err, h.logger)
		return
	}

	coupon, err := h.service.UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, coupon)
}

// CheckAvailability handles GET /api/coupons/{id}/availability.
// An optional customerId query parameter enables the per-user limit check.
func (h *CouponHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	customerID, err := queryUUID(r, "customerId")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	result, err := h.service.CheckAvailability(r.Context(), id, customerID)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// SaveCoupon handles POST /api/customers/{customerId}/saved-coupons.
func (h *CouponHandler) SaveCoupon(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathUUID(r, "customerId")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	var body struct {
		CouponID uuid.UUID `json:"couponId"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, err, h.logger)
		return
	}
	if body.CouponID == uuid.Nil {
		respondError(w, model.NewDomainError(model.ErrCodeMissingField, "couponId is required"), h.logger)
		return
	}

	saved, err := h.service.Save(r.Context(), customerID, body.CouponID)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

// ListSavedCoupons handles GET /api/customers/{customerId}/saved-coupons.
func (h *CouponHandler) ListSavedCoupons(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathUUID(r, "customerId")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	var status *model.SavedCouponStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := model.SavedCouponStatus(raw)
		status = &s
	}

	saved, err := h.service.ListSaved(r.Context(), customerID, status)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"savedCoupons": saved})
}
