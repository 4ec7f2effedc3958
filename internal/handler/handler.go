package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"coupon-day/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with a machine-readable code.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Warn().Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// domainErrorStatus maps business error codes to HTTP statuses. Codes
// not listed here (availability reason codes among them) are conflicts.
var domainErrorStatus = map[string]int{
	model.ErrCodeMissingField:     http.StatusBadRequest,
	model.ErrCodeInvalidJSON:      http.StatusBadRequest,
	model.ErrCodeInvalidCondition: http.StatusBadRequest,
	model.ErrCodeSelfPartnership:  http.StatusBadRequest,

	model.ErrCodeCouponNotFound:      http.StatusNotFound,
	model.ErrCodeTokenNotFound:       http.StatusNotFound,
	model.ErrCodeCrossCouponNotFound: http.StatusNotFound,
	model.ErrCodePartnershipNotFound: http.StatusNotFound,
	model.ErrCodeSettlementNotFound:  http.StatusNotFound,
	model.ErrCodeStoreNotFound:       http.StatusNotFound,
	model.ErrCodeCustomerNotFound:    http.StatusNotFound,

	model.ErrCodeNotPartnershipParty: http.StatusForbidden,
	model.ErrCodeOwnRequest:          http.StatusForbidden,
	model.ErrCodeStoreMismatch:       http.StatusForbidden,

	model.ErrCodeCouponExpired: http.StatusGone,
	model.ErrCodeTokenExpired:  http.StatusGone,
}

// respondError translates a service error into an HTTP response.
// Domain errors carry their own code; everything else is an opaque
// internal failure.
func respondError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status, ok := domainErrorStatus[domainErr.Code]
		if !ok {
			status = http.StatusConflict
		}
		writeError(w, status, domainErr.Code, domainErr.Message, logger)
		return
	}

	logger.Error().Err(err).Msg("internal error")
	writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
		Error:   model.ErrCodeInternalError,
		Message: "internal server error",
	})
}

// decodeJSON parses the request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "invalid request body")
	}
	return nil
}

// pathUUID parses a UUID route parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, model.NewDomainError(model.ErrCodeMissingField, "invalid "+name+" format")
	}
	return id, nil
}

// queryUUID parses an optional UUID query parameter.
func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "invalid "+name+" format")
	}
	return &id, nil
}

// queryInt parses an optional integer query parameter with a default.
func queryInt(r *http.Request, name string, defaultValue int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return v
}
