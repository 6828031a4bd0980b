package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrInvalidKey   = errors.New("invalid storage key")
	ErrInvalidToken = errors.New("upload token is invalid or expired")
)

// BlobStore holds reservation documents. Clients upload and download
// through presigned URLs; the service only checks and deletes blobs.
type BlobStore interface {
	// GeneratePresignedUploadURL returns a URL accepting a PUT of key
	// until expiresIn elapses.
	GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error)

	GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// FileExists checks if a blob exists and returns its size
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	// DeleteFile removes a blob. Missing blobs are not an error.
	DeleteFile(ctx context.Context, key string) error
}

// LocalTransfer is implemented by stores that serve their own presigned
// URLs through this server's upload and download routes.
type LocalTransfer interface {
	// RedeemUploadToken checks that token was issued for key and consumes it.
	RedeemUploadToken(token, key string) error
	SaveFile(key string, reader io.Reader) error
	ReadFile(key string) (io.ReadCloser, error)
}
