package handler

import (
	"net/http"
	"time"

	"coupon-day/internal/model"
	"coupon-day/internal/service"

	"github.com/rs/zerolog"
)

// RedemptionHandler handles the store-side redemption endpoints.
type RedemptionHandler struct {
	service service.RedemptionService
	logger  zerolog.Logger
}

// NewRedemptionHandler creates a new redemption handler.
func NewRedemptionHandler(service service.RedemptionService, logger zerolog.Logger) *RedemptionHandler {
	return &RedemptionHandler{
		service: service,
		logger:  logger.With().Str("handler", "redemption").Logger(),
	}
}

// Redeem handles POST /api/stores/{storeId}/redemptions.
func (h *RedemptionHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	storeID, err := pathUUID(r, "storeId")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	var input model.RedemptionInput
	if err := decodeJSON(r, &input); err != nil {
		respondError(w, err, h.logger)
		return
	}

	result, err := h.service.Redeem(r.Context(), storeID, &input)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// History handles GET /api/stores/{storeId}/redemptions.
// Optional filters: couponId, startDate, endDate (YYYY-MM-DD), limit, offset.
func (h *RedemptionHandler) History(w http.ResponseWriter, r *http.Request) {
	storeID, err := pathUUID(r, "storeId")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	filter := model.RedemptionFilter{
		Limit:  queryInt(r, "limit", 20),
		Offset: queryInt(r, "offset", 0),
	}
	if filter.CouponID, err = queryUUID(r, "couponId"); err != nil {
		respondError(w, err, h.logger)
		return
	}
	if filter.StartDate, err = queryDate(r, "startDate"); err != nil {
		respondError(w, err, h.logger)
		return
	}
	if filter.EndDate, err = queryDate(r, "endDate"); err != nil {
		respondError(w, err, h.logger)
		return
	}

	redemptions, total, err := h.service.History(r.Context(), storeID, filter)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"redemptions": redemptions,
		"total":       total,
		"limit":       filter.Limit,
		"offset":      filter.Offset,
	})
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "invalid "+name+" format, expected YYYY-MM-DD")
	}
	return &t, nil
}
