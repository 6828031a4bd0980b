package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yassirbousseta123/car-rent-v1/internal/config"
	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
	"github.com/yassirbousseta123/car-rent-v1/internal/logger"
	"github.com/yassirbousseta123/car-rent-v1/internal/repository"
	"github.com/yassirbousseta123/car-rent-v1/internal/storage"
)

const downloadURLTTL = 15 * time.Minute

var mimeExtensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

type documentService struct {
	docRepo      repository.DocumentRepository
	reservations repository.ReservationStore
	blobs        storage.BlobStore
	allowedTypes map[string]bool
	maxBytes     int64
	pendingTTL   time.Duration
	now          func() time.Time
}

func NewDocumentService(
	docRepo repository.DocumentRepository,
	reservations repository.ReservationStore,
	blobs storage.BlobStore,
	cfg config.StorageConfig,
) DocumentService {
	allowed := make(map[string]bool, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[strings.ToLower(t)] = true
	}
	return &documentService{
		docRepo:      docRepo,
		reservations: reservations,
		blobs:        blobs,
		allowedTypes: allowed,
		maxBytes:     cfg.MaxFileSize * 1024 * 1024,
		pendingTTL:   time.Duration(cfg.PendingTTLMinutes) * time.Minute,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// RequestUpload records a pending document and returns a URL the client
// uploads the file to. The document must be confirmed before pendingTTL.
func (s *documentService) RequestUpload(ctx context.Context, reservationID string, kind domain.DocumentKind, fileName, mime string) (*domain.Document, string, error) {
	if !kind.Valid() {
		return nil, "", domain.NewValidationError("kind", "unknown document kind")
	}
	mime = strings.ToLower(mime)
	if !s.allowedTypes[mime] {
		return nil, "", domain.NewValidationError("mime", "file type "+mime+" is not allowed")
	}
	if fileName == "" {
		return nil, "", domain.NewValidationError("file_name", "is required")
	}

	r, err := s.reservations.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, "", err
	}

	ext, ok := mimeExtensions[mime]
	if !ok {
		ext = strings.ToLower(filepath.Ext(fileName))
	}
	now := s.now()
	expires := now.Add(s.pendingTTL)
	id := uuid.NewString()
	doc := &domain.Document{
		ID:            id,
		ReservationID: r.ID,
		VehicleID:     r.VehicleID,
		RenterID:      r.RenterID,
		Kind:          kind,
		FileName:      filepath.Base(fileName),
		Mime:          mime,
		StorageKey:    fmt.Sprintf("reservations/%s/%s/%s%s", r.ID, kind, id, ext),
		Status:        domain.DocumentStatusPending,
		ExpiresAt:     &expires,
		CreatedAt:     now,
	}

	uploadURL, err := s.blobs.GeneratePresignedUploadURL(ctx, doc.StorageKey, mime, s.pendingTTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate upload url: %w", err)
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, "", err
	}
	logger.Debug("Document upload requested", "document_id", doc.ID, "reservation_id", r.ID, "kind", kind)
	return doc, uploadURL, nil
}

func (s *documentService) ConfirmUpload(ctx context.Context, id string) (*domain.Document, string, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	if doc.Status == domain.DocumentStatusPending {
		if doc.ExpiresAt != nil && s.now().After(*doc.ExpiresAt) {
			return nil, "", domain.NewValidationError("document", "upload window has expired")
		}
		exists, size, err := s.blobs.FileExists(ctx, doc.StorageKey)
		if err != nil {
			return nil, "", fmt.Errorf("failed to check uploaded file: %w", err)
		}
		if !exists {
			return nil, "", domain.NewValidationError("file", "has not been uploaded")
		}
		if s.maxBytes > 0 && size > s.maxBytes {
			if err := s.blobs.DeleteFile(ctx, doc.StorageKey); err != nil {
				logger.Warn("Failed to delete oversized upload", "document_id", id, "error", err)
			}
			return nil, "", domain.NewValidationError("file", fmt.Sprintf("exceeds the maximum size of %d bytes", s.maxBytes))
		}

		confirmedAt := s.now()
		doc.Status = domain.DocumentStatusConfirmed
		doc.FileSize = size
		doc.ConfirmedAt = &confirmedAt
		doc.ExpiresAt = nil
		if err := s.docRepo.Update(ctx, doc); err != nil {
			return nil, "", err
		}
	}

	downloadURL, err := s.blobs.GeneratePresignedDownloadURL(ctx, doc.StorageKey, downloadURLTTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate download url: %w", err)
	}
	return doc, downloadURL, nil
}

func (s *documentService) ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	return s.docRepo.List(ctx, filter)
}

func (s *documentService) DeleteDocument(ctx context.Context, id string) error {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.blobs.DeleteFile(ctx, doc.StorageKey); err != nil {
		return fmt.Errorf("failed to delete document file: %w", err)
	}
	return s.docRepo.Delete(ctx, id)
}

// CleanupExpired removes pending documents whose upload window has passed,
// together with any partial blob. It keeps going past individual failures.
func (s *documentService) CleanupExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.docRepo.ListExpiredPending(ctx, now)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, doc := range expired {
		if err := s.blobs.DeleteFile(ctx, doc.StorageKey); err != nil {
			logger.Warn("Failed to delete expired blob", "document_id", doc.ID, "key", doc.StorageKey, "error", err)
			continue
		}
		if err := s.docRepo.Delete(ctx, doc.ID); err != nil {
			logger.Warn("Failed to delete expired document", "document_id", doc.ID, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}
