package repository

import (
	"context"
	"io"

	"github.com/rs/zerolog"
)

type StorageRepository interface {
	UploadFile(ctx context.Context, objectKey string, file io.Reader, size int64, contentType string) error
	DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, int64, error)
	DeleteFile(ctx context.Context, objectKey string) error
	FileExists(ctx context.Context, objectKey string) (bool, error)
	PublicURL(objectKey string) string
}

type storageRepository struct {
	provider StorageRepository
	logger   zerolog.Logger
}

func NewStorageRepository(provider StorageRepository, logger zerolog.Logger) StorageRepository {
	return &storageRepository{
		provider: provider,
		logger:   logger,
	}
}

func (r *storageRepository) UploadFile(ctx context.Context, objectKey string, file io.Reader, size int64, contentType string) error {
	return r.provider.UploadFile(ctx, objectKey, file, size, contentType)
}

func (r *storageRepository) DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, int64, error) {
	return r.provider.DownloadFile(ctx, objectKey)
}

func (r *storageRepository) DeleteFile(ctx context.Context, objectKey string) error {
	return r.provider.DeleteFile(ctx, objectKey)
}

func (r *storageRepository) FileExists(ctx context.Context, objectKey string) (bool, error) {
	return r.provider.FileExists(ctx, objectKey)
}

func (r *storageRepository) PublicURL(objectKey string) string {
	return r.provider.PublicURL(objectKey)
}
