package handler

import (
	"net/http"
	"strconv"
	"time"

	"coupon-day/internal/model"
	"coupon-day/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// SettlementHandler handles monthly cross-coupon settlement endpoints.
type SettlementHandler struct {
	service service.SettlementService
	logger  zerolog.Logger
}

// NewSettlementHandler creates a new settlement handler.
func NewSettlementHandler(service service.SettlementService, logger zerolog.Logger) *SettlementHandler {
	return &SettlementHandler{
		service: service,
		logger:  logger.With().Str("handler", "settlement").Logger(),
	}
}

// pathPeriod parses the {year}/{month} route parameters.
func pathPeriod(r *http.Request) (int, time.Month, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 2000 || year > 2200 {
		return 0, 0, model.NewDomainError(model.ErrCodeMissingField, "invalid year")
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, model.NewDomainError(model.ErrCodeMissingField, "invalid month")
	}
	return year, time.Month(month), nil
}

// GetSettlement handles GET /api/partnerships/{id}/settlements/{year}/{month}.
func (h *SettlementHandler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	partnershipID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	year, month, err := pathPeriod(r)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	settlement, details, err := h.service.GetOrCreate(r.Context(), partnershipID, year, month)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"settlement": settlement,
		"details":    details,
	})
}

// UpdateSettlementStatus handles PATCH /api/settlements/{id}/status.
func (h *SettlementHandler) UpdateSettlementStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	var body struct {
		Status model.SettlementStatus `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, err, h.logger)
		return
	}

	settlement, err := h.service.UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, settlement)
}

// RunSettlements handles POST /api/settlements/run/{year}/{month}.
// It is the manual trigger for the monthly batch the scheduler runs.
func (h *SettlementHandler) RunSettlements(w http.ResponseWriter, r *http.Request) {
	year, month, err := pathPeriod(r)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	results, err := h.service.RunMonthly(r.Context(), year, month)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}
