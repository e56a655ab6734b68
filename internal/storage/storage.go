package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default expiry duration for presigned upload URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// AttachmentDownloadExpiry is how long the link in a plan email stays valid.
const AttachmentDownloadExpiry = 7 * 24 * time.Hour

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	DeleteObject(ctx context.Context, objectKey string) error
}

var ErrUnsupportedContentType = errors.New("unsupported attachment content type")

// attachmentExtensions maps the accepted plan document types to file extensions.
var attachmentExtensions = map[string]string{
	"application/pdf": ".pdf",
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/webp":      ".webp",
}

// PlanAttachmentKey builds a unique object key for a plan document,
// e.g. plan-requests/<requestID>/<uuid>.pdf
func PlanAttachmentKey(requestID, contentType string) (string, error) {
	ext, ok := attachmentExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
	return path.Join("plan-requests", requestID, uuid.New().String()+ext), nil
}
