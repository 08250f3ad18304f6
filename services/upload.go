package services

import (
	"context"
	"io"
	"strings"

	"go-storefront/utils"
)

// DefaultUploadFolder is used when an upload names no folder.
const DefaultUploadFolder = "uploads"

// UploadService stores files in blob storage.
type UploadService struct {
	blobs BlobStore
}

// NewUploadService creates a new UploadService. blobs may be nil, which
// makes every upload fail.
func NewUploadService(blobs BlobStore) *UploadService {
	return &UploadService{blobs: blobs}
}

// Upload stores body under folder and returns its public URL.
func (s *UploadService) Upload(ctx context.Context, folder, filename string, body io.Reader, contentType string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", validationError("Filename is required")
	}
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		folder = DefaultUploadFolder
	}
	if strings.Contains(folder, "..") || strings.Contains(filename, "/") {
		return "", validationError("Invalid upload path")
	}
	if s.blobs == nil {
		return "", internal("blob storage is not configured", nil)
	}
	url, err := s.blobs.Upload(ctx, folder, filename, body, contentType)
	if err != nil {
		return "", internal("failed to upload file", err)
	}
	return url, nil
}

// List returns the stored objects under prefix.
func (s *UploadService) List(ctx context.Context, prefix string) ([]utils.BlobObject, error) {
	if s.blobs == nil {
		return nil, internal("blob storage is not configured", nil)
	}
	objects, err := s.blobs.List(ctx, prefix)
	if err != nil {
		return nil, internal("failed to list files", err)
	}
	if objects == nil {
		objects = []utils.BlobObject{}
	}
	return objects, nil
}

// Delete removes the object behind url.
func (s *UploadService) Delete(ctx context.Context, url string) error {
	if url == "" {
		return validationError("URL is required")
	}
	if s.blobs == nil {
		return internal("blob storage is not configured", nil)
	}
	if err := s.blobs.Delete(ctx, url); err != nil {
		return internal("failed to delete file", err)
	}
	return nil
}
