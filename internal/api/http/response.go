package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
	"github.com/yassirbousseta123/car-rent-v1/internal/lock"
	"github.com/yassirbousseta123/car-rent-v1/internal/logger"
)

type errorResponse struct {
	Error          string               `json:"error"`
	Code           string               `json:"code"`
	Field          string               `json:"field,omitempty"`
	Conflicts      []domain.Reservation `json:"conflicts,omitempty"`
	ReservationIDs []string             `json:"reservation_ids,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Anything unrecognized
// is a server fault and its detail stays in the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Error(), Code: "VALIDATION", Field: ve.Field})
		return
	}
	if ce, ok := domain.AsConflict(err); ok {
		writeJSON(w, http.StatusConflict, errorResponse{Error: ce.Error(), Code: "OVERLAP", Conflicts: ce.Conflicts})
		return
	}
	if ie, ok := domain.AsInUse(err); ok {
		writeJSON(w, http.StatusConflict, errorResponse{Error: ie.Error(), Code: "IN_USE", ReservationIDs: ie.ReservationIDs})
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Code: "NOT_FOUND"})
		return
	}
	if errors.Is(err, lock.ErrNotAcquired) || errors.Is(err, context.DeadlineExceeded) {
		logger.WarnContext(r.Context(), "Request timed out", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "the vehicle is busy, retry shortly", Code: "TIMEOUT"})
		return
	}

	logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: "INTERNAL"})
}
