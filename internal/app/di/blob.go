package di

import (
	"context"
	"fmt"

	"industry_backend/internal/platform/blob"
)

// NewBlobStore creates the store selected by BLOB_BACKEND.
func NewBlobStore(ctx context.Context, cfg blob.Config) (blob.Store, error) {
	switch cfg.Backend {
	case blob.BackendFile:
		return blob.NewFileStore(cfg.BasePath)
	case blob.BackendS3:
		return blob.NewS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}
