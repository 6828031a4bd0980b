package storage

import (
	"fmt"

	"github.com/yassirbousseta123/car-rent-v1/internal/config"
)

// New builds the blob store selected by cfg.
func New(cfg config.StorageConfig) (BlobStore, error) {
	switch cfg.Type {
	case "", "mock":
		return NewMockStorageService(cfg.BaseURL, cfg.UploadDir)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
