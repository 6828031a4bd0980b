package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yassirbousseta123/car-rent-v1/internal/config"
	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
	"github.com/yassirbousseta123/car-rent-v1/internal/events"
	"github.com/yassirbousseta123/car-rent-v1/internal/lock"
	"github.com/yassirbousseta123/car-rent-v1/internal/repository/memory"
	"github.com/yassirbousseta123/car-rent-v1/internal/service"
	"github.com/yassirbousseta123/car-rent-v1/internal/storage"
)

type testServer struct {
	router    http.Handler
	vehicleID string
	renterID  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	blobs, err := storage.NewMockStorageService("http://localhost:8080", t.TempDir())
	require.NoError(t, err)

	storageCfg := config.StorageConfig{
		MaxFileSize:       1,
		AllowedTypes:      []string{"image/jpeg", "application/pdf"},
		PendingTTLMinutes: 30,
	}
	locker := lock.NewKeyedMutex()
	svcs := Services{
		Vehicles:     service.NewVehicleService(store.VehicleRepository, store, locker),
		Renters:      service.NewRenterService(store.RenterRepository),
		Reservations: service.NewReservationService(store, store.RenterRepository, locker, events.NoopPublisher{}, 2, nil),
		Documents:    service.NewDocumentService(store.DocumentRepository, store, blobs, storageCfg),
	}
	s := &testServer{
		router: NewRouter(svcs, NewTransferHandler(blobs, storageCfg.AllowedTypes, 1<<20), 5*time.Second),
	}

	rec := s.do(t, http.MethodPost, "/api/v1/vehicles", map[string]any{
		"make": "Dacia", "model": "Sandero", "year": 2022, "plate": "4455-B-12",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var v domain.Vehicle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	s.vehicleID = v.ID

	rec = s.do(t, http.MethodPost, "/api/v1/renters", map[string]any{
		"first_name": "Youssef", "last_name": "Idrissi", "date_of_birth": "1988-11-03", "id_number": "K998877",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var rt domain.Renter
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rt))
	s.renterID = rt.ID
	return s
}

func (s *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) reserve(t *testing.T, start, end string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, http.MethodPost, "/api/v1/reservations", map[string]any{
		"vehicle_id":       s.vehicleID,
		"renter_id":        s.renterID,
		"start_at":         start,
		"end_at":           end,
		"daily_rate_cents": 30000,
	})
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestVehicleEndpoints(t *testing.T) {
	s := newTestServer(t)

	t.Run("Validation error names the json field", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/vehicles", map[string]any{"make": "Renault", "model": "Clio", "year": 1980, "plate": "1-A-1"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody[errorResponse](t, rec)
		assert.Equal(t, "VALIDATION", body.Code)
		assert.Equal(t, "year", body.Field)
	})

	t.Run("Unknown fields are rejected", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/vehicles", map[string]any{"make": "Renault", "colour": "red"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Get and patch", func(t *testing.T) {
		rec := s.do(t, http.MethodPatch, "/api/v1/vehicles/"+s.vehicleID, map[string]any{"odometer": 42000, "buffer_hours": 0})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = s.do(t, http.MethodGet, "/api/v1/vehicles/"+s.vehicleID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		v := decodeBody[domain.Vehicle](t, rec)
		require.NotNil(t, v.Odometer)
		assert.Equal(t, int64(42000), *v.Odometer)
		require.NotNil(t, v.BufferHours)
		assert.Zero(t, *v.BufferHours)
	})

	t.Run("Unknown vehicle", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/v1/vehicles/ghost", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "NOT_FOUND", decodeBody[errorResponse](t, rec).Code)
	})

	t.Run("List", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/v1/vehicles", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeBody[[]domain.Vehicle](t, rec), 1)
	})

	t.Run("Oversized buffer is rejected", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/vehicles", map[string]any{
			"make": "Renault", "model": "Clio", "year": 2021, "plate": "9-Z-9", "buffer_hours": 1e12,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "buffer_hours", decodeBody[errorResponse](t, rec).Field)

		rec = s.do(t, http.MethodPatch, "/api/v1/vehicles/"+s.vehicleID, map[string]any{"buffer_hours": 1e12})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "buffer_hours", decodeBody[errorResponse](t, rec).Field)
	})

	t.Run("Administrative status", func(t *testing.T) {
		rec := s.do(t, http.MethodPut, "/api/v1/vehicles/"+s.vehicleID+"/status", map[string]any{"status": "MAINTENANCE"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, domain.VehicleStatusMaintenance, decodeBody[domain.Vehicle](t, rec).Status)

		rec = s.do(t, http.MethodPut, "/api/v1/vehicles/"+s.vehicleID+"/status", map[string]any{"status": "RENTED"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "status", decodeBody[errorResponse](t, rec).Field)

		rec = s.do(t, http.MethodPut, "/api/v1/vehicles/"+s.vehicleID+"/status", map[string]any{"status": "AVAILABLE"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = s.do(t, http.MethodPut, "/api/v1/vehicles/ghost/status", map[string]any{"status": "INACTIVE"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/vehicles", map[string]any{"make": "Fiat", "model": "Panda", "year": 2018, "plate": "3-C-3"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		id := decodeBody[domain.Vehicle](t, rec).ID

		rec = s.do(t, http.MethodDelete, "/api/v1/vehicles/"+id, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		rec = s.do(t, http.MethodGet, "/api/v1/vehicles/"+id, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		rec = s.do(t, http.MethodDelete, "/api/v1/vehicles/"+id, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRenterEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/renters", map[string]any{
		"first_name": "Nadia", "last_name": "Tazi", "email": "nadia@", "date_of_birth": "1995-01-01", "id_number": "Z1",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email", decodeBody[errorResponse](t, rec).Field)

	rec = s.do(t, http.MethodPost, "/api/v1/renters", map[string]any{
		"first_name": "Nadia", "last_name": "Tazi", "date_of_birth": "01/01/1995", "id_number": "Z1",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "date_of_birth", decodeBody[errorResponse](t, rec).Field)

	rec = s.do(t, http.MethodGet, "/api/v1/renters/"+s.renterID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Idrissi", decodeBody[domain.Renter](t, rec).LastName)

	rec = s.do(t, http.MethodGet, "/api/v1/renters", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]domain.Renter](t, rec), 1)

	t.Run("Patch", func(t *testing.T) {
		rec := s.do(t, http.MethodPatch, "/api/v1/renters/"+s.renterID, map[string]any{"address": "12 Rue Atlas, Rabat"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		rt := decodeBody[domain.Renter](t, rec)
		require.NotNil(t, rt.Address)
		assert.Equal(t, "12 Rue Atlas, Rabat", *rt.Address)
		assert.Equal(t, "Youssef", rt.FirstName)

		rec = s.do(t, http.MethodPatch, "/api/v1/renters/"+s.renterID, map[string]any{"email": "nope"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "email", decodeBody[errorResponse](t, rec).Field)

		rec = s.do(t, http.MethodPatch, "/api/v1/renters/ghost", map[string]any{"address": "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestReservationEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.reserve(t, "2025-01-10T10:00:00Z", "2025-01-12T10:00:00Z")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decodeBody[domain.Reservation](t, rec)
	assert.Equal(t, domain.ReservationStatusReserved, first.Status)

	t.Run("Overlap inside the buffer is a conflict", func(t *testing.T) {
		rec := s.reserve(t, "2025-01-12T11:00:00Z", "2025-01-13T10:00:00Z")
		require.Equal(t, http.StatusConflict, rec.Code)
		body := decodeBody[errorResponse](t, rec)
		assert.Equal(t, "OVERLAP", body.Code)
		require.Len(t, body.Conflicts, 1)
		assert.Equal(t, first.ID, body.Conflicts[0].ID)
	})

	t.Run("End before start", func(t *testing.T) {
		rec := s.reserve(t, "2025-02-12T10:00:00Z", "2025-02-10T10:00:00Z")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "end_at", decodeBody[errorResponse](t, rec).Field)
	})

	t.Run("Unknown renter", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/reservations", map[string]any{
			"vehicle_id": s.vehicleID, "renter_id": "ghost",
			"start_at": "2025-03-01T10:00:00Z", "end_at": "2025-03-02T10:00:00Z",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Availability", func(t *testing.T) {
		q := url.Values{"start": {"2025-01-11T00:00:00Z"}, "end": {"2025-01-11T05:00:00Z"}}
		rec := s.do(t, http.MethodGet, "/api/v1/vehicles/"+s.vehicleID+"/availability?"+q.Encode(), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		result := decodeBody[domain.AvailabilityResult](t, rec)
		assert.False(t, result.Available)

		q.Set("exclude_id", first.ID)
		rec = s.do(t, http.MethodGet, "/api/v1/vehicles/"+s.vehicleID+"/availability?"+q.Encode(), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decodeBody[domain.AvailabilityResult](t, rec).Available)

		rec = s.do(t, http.MethodGet, "/api/v1/vehicles/"+s.vehicleID+"/availability?start=yesterday&end=today", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Next available and blocked ranges", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/v1/vehicles/"+s.vehicleID+"/next-available?from=2025-01-11T00:00:00Z", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		next := decodeBody[nextAvailableResponse](t, rec)
		assert.True(t, next.NextAvailable.Equal(time.Date(2025, 1, 12, 12, 0, 0, 0, time.UTC)), next.NextAvailable)

		for _, buffer := range []string{"-1", "Inf", "NaN", "1e12"} {
			rec = s.do(t, http.MethodGet, "/api/v1/vehicles/"+s.vehicleID+"/next-available?buffer_hours="+buffer, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, "buffer_hours=%s", buffer)
		}

		rec = s.do(t, http.MethodGet, "/api/v1/vehicles/"+s.vehicleID+"/blocked-ranges", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeBody[[]domain.TimeRange](t, rec), 1)
	})

	t.Run("Reserved vehicle is in use", func(t *testing.T) {
		rec := s.do(t, http.MethodPut, "/api/v1/vehicles/"+s.vehicleID+"/status", map[string]any{"status": "MAINTENANCE"})
		require.Equal(t, http.StatusConflict, rec.Code)
		body := decodeBody[errorResponse](t, rec)
		assert.Equal(t, "IN_USE", body.Code)
		assert.Equal(t, []string{first.ID}, body.ReservationIDs)

		rec = s.do(t, http.MethodDelete, "/api/v1/vehicles/"+s.vehicleID, nil)
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "IN_USE", decodeBody[errorResponse](t, rec).Code)
	})

	t.Run("Quote", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/v1/reservations/"+first.ID+"/quote", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"total_cents":60000`)
	})

	t.Run("Check out then illegal move back", func(t *testing.T) {
		rec := s.do(t, http.MethodPatch, "/api/v1/reservations/"+first.ID, map[string]any{"status": "CHECKED_OUT"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = s.do(t, http.MethodGet, "/api/v1/vehicles/"+s.vehicleID, nil)
		assert.Equal(t, domain.VehicleStatusRented, decodeBody[domain.Vehicle](t, rec).Status)

		rec = s.do(t, http.MethodPatch, "/api/v1/reservations/"+first.ID, map[string]any{"status": "RESERVED"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = s.do(t, http.MethodPatch, "/api/v1/reservations/"+first.ID, map[string]any{"status": "LOST"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "status", decodeBody[errorResponse](t, rec).Field)
	})

	t.Run("Cancel and delete", func(t *testing.T) {
		rec := s.reserve(t, "2025-04-01T10:00:00Z", "2025-04-03T10:00:00Z")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		second := decodeBody[domain.Reservation](t, rec)

		rec = s.do(t, http.MethodPost, "/api/v1/reservations/"+second.ID+"/cancel", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.ReservationStatusCanceled, decodeBody[domain.Reservation](t, rec).Status)

		rec = s.do(t, http.MethodDelete, "/api/v1/reservations/"+second.ID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = s.do(t, http.MethodGet, "/api/v1/reservations/"+second.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("List by vehicle", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/v1/reservations?vehicle_id="+s.vehicleID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeBody[[]domain.Reservation](t, rec), 1)
	})
}

func TestDocumentEndpoints(t *testing.T) {
	s := newTestServer(t)
	rec := s.reserve(t, "2025-01-10T10:00:00Z", "2025-01-12T10:00:00Z")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decodeBody[domain.Reservation](t, rec)

	rec = s.do(t, http.MethodPost, "/api/v1/reservations/"+res.ID+"/documents", map[string]any{
		"kind": "passport", "file_name": "p.jpg", "content_type": "image/jpeg",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "kind", decodeBody[errorResponse](t, rec).Field)

	rec = s.do(t, http.MethodPost, "/api/v1/reservations/"+res.ID+"/documents", map[string]any{
		"kind": "contract_pdf", "file_name": "contract.pdf", "content_type": "application/pdf",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	upload := decodeBody[documentUploadResponse](t, rec)

	uploadURL, err := url.Parse(upload.UploadURL)
	require.NoError(t, err)

	put := func(contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, uploadURL.RequestURI(), strings.NewReader("%PDF-1.7 signed"))
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusBadRequest, put("image/gif").Code)
	require.Equal(t, http.StatusOK, put("application/pdf").Code)
	assert.Equal(t, http.StatusForbidden, put("application/pdf").Code, "upload tokens are single use")

	rec = s.do(t, http.MethodPost, "/api/v1/documents/"+upload.Document.ID+"/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	confirmed := decodeBody[documentConfirmResponse](t, rec)
	assert.Equal(t, domain.DocumentStatusConfirmed, confirmed.Document.Status)

	downloadURL, err := url.Parse(confirmed.DownloadURL)
	require.NoError(t, err)
	rec = s.do(t, http.MethodGet, downloadURL.RequestURI(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.7 signed", rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/documents?reservation_id="+res.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]domain.Document](t, rec), 1)

	rec = s.do(t, http.MethodDelete, "/api/v1/documents/"+upload.Document.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, downloadURL.RequestURI(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// brokenReservations fails or panics on lookups to exercise the error paths.
type brokenReservations struct {
	service.ReservationService
	err   error
	panic bool
}

func (b brokenReservations) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	if b.panic {
		panic("store exploded")
	}
	return nil, b.err
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		svc    brokenReservations
		status int
		code   string
	}{
		{"Store failure", brokenReservations{err: errors.New("connection reset")}, http.StatusInternalServerError, "INTERNAL"},
		{"Lock timeout", brokenReservations{err: errors.Join(lock.ErrNotAcquired, context.DeadlineExceeded)}, http.StatusServiceUnavailable, "TIMEOUT"},
		{"Wrapped not found", brokenReservations{err: errors.Join(errors.New("lookup"), domain.NewNotFoundError("reservation", "r1"))}, http.StatusNotFound, "NOT_FOUND"},
		{"Panic", brokenReservations{panic: true}, http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := NewRouter(Services{Reservations: tc.svc}, nil, time.Second)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/r1", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			body := decodeBody[errorResponse](t, rec)
			assert.Equal(t, tc.code, body.Code)
			assert.NotContains(t, body.Error, "connection reset")
		})
	}
}
