package repository

import (
	"context"
	"fmt"

	appConfig "github.com/filedepot/filedepot/internal/config"
	"github.com/filedepot/filedepot/internal/domain"
)

// NewBlobStore builds the configured blob storage backend.
func NewBlobStore(ctx context.Context, cfg appConfig.StorageConfig) (domain.BlobStore, error) {
	switch cfg.Backend {
	case "disk":
		return NewDiskBlobStore(cfg.Root), nil
	case "s3":
		return NewS3BlobStore(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
