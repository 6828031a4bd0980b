package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/yassirbousseta123/car-rent-v1/internal/service"
)

type Services struct {
	Vehicles     service.VehicleService
	Renters      service.RenterService
	Reservations service.ReservationService
	Documents    service.DocumentService
}

// NewRouter wires every endpoint below /api/v1. transfer may be nil when
// the blob store serves its own URLs.
func NewRouter(svcs Services, transfer *TransferHandler, timeout time.Duration) *mux.Router {
	router := mux.NewRouter()
	router.Use(recovery, requestLogging)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(requestTimeout(timeout))

	vehicles := NewVehicleHandler(svcs.Vehicles, svcs.Reservations)
	api.HandleFunc("/vehicles", vehicles.CreateVehicle).Methods(http.MethodPost)
	api.HandleFunc("/vehicles", vehicles.ListVehicles).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}", vehicles.GetVehicle).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}", vehicles.UpdateVehicle).Methods(http.MethodPatch)
	api.HandleFunc("/vehicles/{id}", vehicles.DeleteVehicle).Methods(http.MethodDelete)
	api.HandleFunc("/vehicles/{id}/status", vehicles.ChangeStatus).Methods(http.MethodPut)
	api.HandleFunc("/vehicles/{id}/availability", vehicles.CheckAvailability).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}/next-available", vehicles.NextAvailable).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}/blocked-ranges", vehicles.BlockedRanges).Methods(http.MethodGet)

	renters := NewRenterHandler(svcs.Renters)
	api.HandleFunc("/renters", renters.CreateRenter).Methods(http.MethodPost)
	api.HandleFunc("/renters", renters.ListRenters).Methods(http.MethodGet)
	api.HandleFunc("/renters/{id}", renters.GetRenter).Methods(http.MethodGet)
	api.HandleFunc("/renters/{id}", renters.UpdateRenter).Methods(http.MethodPatch)

	reservations := NewReservationHandler(svcs.Reservations)
	api.HandleFunc("/reservations", reservations.CreateReservation).Methods(http.MethodPost)
	api.HandleFunc("/reservations", reservations.ListReservations).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{id}", reservations.GetReservation).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{id}", reservations.UpdateReservation).Methods(http.MethodPatch)
	api.HandleFunc("/reservations/{id}", reservations.DeleteReservation).Methods(http.MethodDelete)
	api.HandleFunc("/reservations/{id}/cancel", reservations.CancelReservation).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id}/quote", reservations.QuoteReservation).Methods(http.MethodGet)

	documents := NewDocumentHandler(svcs.Documents)
	api.HandleFunc("/reservations/{id}/documents", documents.RequestUpload).Methods(http.MethodPost)
	api.HandleFunc("/documents", documents.ListDocuments).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}/confirm", documents.ConfirmUpload).Methods(http.MethodPost)
	api.HandleFunc("/documents/{id}", documents.DeleteDocument).Methods(http.MethodDelete)

	if transfer != nil {
		RegisterTransferRoutes(api, transfer)
	}
	return router
}
