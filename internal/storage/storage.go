package storage

import (
	"context"
	"io"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// PutObject streams size bytes from body to objectKey. It returns once the
	// object is durably stored. An existing object at objectKey is overwritten.
	PutObject(ctx context.Context, objectKey string, body io.Reader, size int64, contentType string) error

	// ObjectURL returns the durable retrieval URL recorded alongside metadata.
	ObjectURL(objectKey string) string

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
}
