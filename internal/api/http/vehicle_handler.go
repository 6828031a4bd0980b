package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
	"github.com/yassirbousseta123/car-rent-v1/internal/service"
)

type VehicleHandler struct {
	vehicleSvc     service.VehicleService
	reservationSvc service.ReservationService
}

func NewVehicleHandler(vehicleSvc service.VehicleService, reservationSvc service.ReservationService) *VehicleHandler {
	return &VehicleHandler{vehicleSvc: vehicleSvc, reservationSvc: reservationSvc}
}

func (h *VehicleHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req createVehicleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	v, err := h.vehicleSvc.RegisterVehicle(r.Context(), req.toDomain())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *VehicleHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.vehicleSvc.ListVehicles(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

func (h *VehicleHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := h.vehicleSvc.GetVehicle(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *VehicleHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	var req updateVehicleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	v, err := h.vehicleSvc.UpdateVehicle(r.Context(), mux.Vars(r)["id"], req.toDomain())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// ChangeStatus is the administrative status change.
func (h *VehicleHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req vehicleStatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	v, err := h.vehicleSvc.ChangeStatus(r.Context(), mux.Vars(r)["id"], domain.VehicleStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *VehicleHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	if err := h.vehicleSvc.DeleteVehicle(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckAvailability answers whether [start, end) can be booked.
func (h *VehicleHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	start, err := timeParam(r, "start", true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := timeParam(r, "end", true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.reservationSvc.CheckAvailability(r.Context(), mux.Vars(r)["id"], start, end, r.URL.Query().Get("exclude_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *VehicleHandler) NextAvailable(w http.ResponseWriter, r *http.Request) {
	from, err := timeParam(r, "from", false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	buffer, err := floatParam(r, "buffer_hours")
	if err != nil {
		writeError(w, r, err)
		return
	}
	vehicleID := mux.Vars(r)["id"]
	next, err := h.reservationSvc.FindNextAvailable(r.Context(), vehicleID, from, buffer)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nextAvailableResponse{VehicleID: vehicleID, NextAvailable: next})
}

func (h *VehicleHandler) BlockedRanges(w http.ResponseWriter, r *http.Request) {
	ranges, err := h.reservationSvc.BlockedRanges(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ranges)
}
