package handler

import (
	"net/http"

	"coupon-day/internal/model"
	"coupon-day/internal/service"

	"github.com/rs/zerolog"
)

// PartnershipHandler handles partnership lifecycle and partner discovery.
type PartnershipHandler struct {
	service service.PartnershipService
	logger  zerolog.Logger
}

// NewPartnershipHandler creates a new partnership handler.
func NewPartnershipHandler(service service.PartnershipService, logger zerolog.Logger) *PartnershipHandler {
	return &PartnershipHandler{
		service: service,
		logger:  logger.With().Str("handler", "partnership").Logger(),
	}
}

// RequestPartnership handles POST /api/partnerships.
func (h *PartnershipHandler) RequestPartnership(w http.ResponseWriter, r *http.Request) {
	var input model.PartnershipRequestInput
	if err := decodeJSON(r, &input); err != nil {
		respondError(w, err, h.logger)
		return
	}

	partnership, err := h.service.Request(r.Context(), &input)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, partnership)
}

// RespondToPartnership handles POST /api/partnerships/{id}/respond.
func (h *PartnershipHandler) RespondToPartnership(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	var input model.PartnershipRespondInput
	if err := decodeJSON(r, &input); err != nil {
		respondError(w, err, h.logger)
		return
	}

	partnership, err := h.service.Respond(r.Context(), id, &input)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, partnership)
}

// ListStorePartnerships handles GET /api/stores/{storeId}/partnerships.
func (h *PartnershipHandler) ListStorePartnerships(w http.ResponseWriter, r *http.Request) {
	storeID, err := pathUUID(r, "storeId")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	var status *model.PartnershipStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := model.PartnershipStatus(raw)
		status = &s
	}

	partnerships, err := h.service.ListByStore(r.Context(), storeID, status)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"partnerships": partnerships})
}

// RecommendPartners handles GET /api/stores/{storeId}/partner-recommendations.
func (h *PartnershipHandler) RecommendPartners(w http.ResponseWriter, r *http.Request) {
	storeID, err := pathUUID(r, "storeId")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	limit := queryInt(r, "limit", 5)

	recommendations, err := h.service.Recommend(r.Context(), storeID, limit)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"recommendations": recommendations})
}
