package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
	"github.com/yassirbousseta123/car-rent-v1/internal/service"
)

type DocumentHandler struct {
	documentSvc service.DocumentService
}

func NewDocumentHandler(documentSvc service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentSvc: documentSvc}
}

// RequestUpload registers a pending document and returns the URL the
// client must PUT the file to.
func (h *DocumentHandler) RequestUpload(w http.ResponseWriter, r *http.Request) {
	var req requestDocumentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	doc, uploadURL, err := h.documentSvc.RequestUpload(r.Context(), mux.Vars(r)["id"], domain.DocumentKind(req.Kind), req.FileName, req.ContentType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, documentUploadResponse{Document: doc, UploadURL: uploadURL})
}

func (h *DocumentHandler) ConfirmUpload(w http.ResponseWriter, r *http.Request) {
	doc, downloadURL, err := h.documentSvc.ConfirmUpload(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentConfirmResponse{Document: doc, DownloadURL: downloadURL})
}

func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	docs, err := h.documentSvc.ListDocuments(r.Context(), domain.DocumentFilter{
		ReservationID: q.Get("reservation_id"),
		VehicleID:     q.Get("vehicle_id"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.documentSvc.DeleteDocument(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
