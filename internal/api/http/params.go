package http

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
)

// timeParam parses an RFC 3339 query parameter.
func timeParam(r *http.Request, name string, required bool) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		if required {
			return time.Time{}, domain.NewValidationError(name, "is required")
		}
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, domain.NewValidationError(name, "must be an RFC 3339 timestamp")
	}
	return t, nil
}

func floatParam(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, domain.NewValidationError(name, "must be a number")
	}
	return &v, nil
}
