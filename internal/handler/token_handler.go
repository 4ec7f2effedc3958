package handler

import (
	"net/http"

	"coupon-day/internal/model"
	"coupon-day/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// TokenHandler handles the cross-store meal-token workflow.
type TokenHandler struct {
	service service.TokenService
	logger  zerolog.Logger
}

// NewTokenHandler creates a new token handler.
func NewTokenHandler(service service.TokenService, logger zerolog.Logger) *TokenHandler {
	return &TokenHandler{
		service: service,
		logger:  logger.With().Str("handler", "token").Logger(),
	}
}

// IssueToken handles POST /api/stores/{storeId}/tokens.
func (h *TokenHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	storeID, err := pathUUID(r, "storeId")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	var input model.IssueTokenInput
	if err := decodeJSON(r, &input); err != nil {
		respondError(w, err, h.logger)
		return
	}

	result, err := h.service.Issue(r.Context(), storeID, &input)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// TokenOptions handles GET /api/tokens/{code}/options.
func (h *TokenHandler) TokenOptions(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	options, err := h.service.Options(r.Context(), code)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, options)
}

// SelectCrossCoupon handles POST /api/tokens/{code}/select.
func (h *TokenHandler) SelectCrossCoupon(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var input model.SelectCrossCouponInput
	if err := decodeJSON(r, &input); err != nil {
		respondError(w, err, h.logger)
		return
	}

	token, err := h.service.Select(r.Context(), code, &input)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, token)
}

// RedeemToken handles POST /api/stores/{storeId}/tokens/{code}/redeem.
func (h *TokenHandler) RedeemToken(w http.ResponseWriter, r *http.Request) {
	storeID, err := pathUUID(r, "storeId")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	code := chi.URLParam(r, "code")

	// An empty body means a redemption without an order amount.
	input := model.RedeemTokenInput{}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &input); err != nil {
			respondError(w, err, h.logger)
			return
		}
	}

	result, err := h.service.Redeem(r.Context(), code, storeID, &input)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ListCustomerTokens handles GET /api/customers/{customerId}/tokens.
func (h *TokenHandler) ListCustomerTokens(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathUUID(r, "customerId")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	var status *model.TokenStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := model.TokenStatus(raw)
		status = &s
	}
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	tokens, total, err := h.service.ListByCustomer(r.Context(), customerID, status, limit, offset)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tokens": tokens,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
