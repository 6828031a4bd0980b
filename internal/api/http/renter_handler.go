package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yassirbousseta123/car-rent-v1/internal/service"
)

type RenterHandler struct {
	renterSvc service.RenterService
}

func NewRenterHandler(renterSvc service.RenterService) *RenterHandler {
	return &RenterHandler{renterSvc: renterSvc}
}

func (h *RenterHandler) CreateRenter(w http.ResponseWriter, r *http.Request) {
	var req createRenterRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	renter, err := h.renterSvc.RegisterRenter(r.Context(), req.toDomain())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, renter)
}

func (h *RenterHandler) ListRenters(w http.ResponseWriter, r *http.Request) {
	renters, err := h.renterSvc.ListRenters(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renters)
}

func (h *RenterHandler) GetRenter(w http.ResponseWriter, r *http.Request) {
	renter, err := h.renterSvc.GetRenter(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renter)
}

func (h *RenterHandler) UpdateRenter(w http.ResponseWriter, r *http.Request) {
	var req updateRenterRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	renter, err := h.renterSvc.UpdateRenter(r.Context(), mux.Vars(r)["id"], req.toDomain())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renter)
}
