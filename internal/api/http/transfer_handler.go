package http

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"slices"

	"github.com/gorilla/mux"

	"github.com/yassirbousseta123/car-rent-v1/internal/logger"
	"github.com/yassirbousseta123/car-rent-v1/internal/storage"
)

// TransferHandler serves the presigned upload and download URLs issued by
// the local blob store.
type TransferHandler struct {
	blobs        storage.LocalTransfer
	allowedTypes []string
	maxBytes     int64
}

func NewTransferHandler(blobs storage.LocalTransfer, allowedTypes []string, maxBytes int64) *TransferHandler {
	return &TransferHandler{
		blobs:        blobs,
		allowedTypes: allowedTypes,
		maxBytes:     maxBytes,
	}
}

// HandleUpload accepts the PUT of a presigned upload URL.
func (h *TransferHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}

	contentType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || !slices.Contains(h.allowedTypes, contentType) {
		http.Error(w, "Invalid content type", http.StatusBadRequest)
		return
	}

	if err := h.blobs.RedeemUploadToken(token, key); err != nil {
		http.Error(w, "Upload URL is invalid or expired", http.StatusForbidden)
		return
	}

	// One byte over the limit is enough for confirmation to reject it.
	body := io.LimitReader(r.Body, h.maxBytes+1)
	if err := h.blobs.SaveFile(key, body); err != nil {
		logger.ErrorContext(r.Context(), "Failed to save upload", "key", key, "error", err)
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", `"local-etag-success"`)
	w.WriteHeader(http.StatusOK)
}

// HandleDownload streams a stored document.
func (h *TransferHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}

	file, err := h.blobs.ReadFile(key)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidKey) {
			http.Error(w, "Invalid key", http.StatusBadRequest)
			return
		}
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".pdf":
		contentType = "application/pdf"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, file); err != nil {
		logger.WarnContext(r.Context(), "Download interrupted", "key", key, "error", err)
	}
}

// RegisterTransferRoutes registers the upload and download endpoints.
func RegisterTransferRoutes(router *mux.Router, h *TransferHandler) {
	router.HandleFunc("/upload/{token}", h.HandleUpload).Methods(http.MethodPut)
	router.HandleFunc("/download/{key}", h.HandleDownload).Methods(http.MethodGet)
}
