// Package media provides blob storage for uploaded files backed by GridFS.
package media

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/parley/parley/internal/domain/errs"
)

// GridFSStore реализует media.BlobStore поверх GridFS bucket.
type GridFSStore struct {
	bucket *mongo.GridFSBucket
	logger *slog.Logger
}

// GridFSStoreOption configures GridFSStore.
type GridFSStoreOption func(*GridFSStore)

// WithGridFSLogger sets the logger for the blob store.
func WithGridFSLogger(logger *slog.Logger) GridFSStoreOption {
	return func(s *GridFSStore) {
		s.logger = logger
	}
}

// NewGridFSStore создает blob-хранилище поверх указанного bucket
func NewGridFSStore(bucket *mongo.GridFSBucket, opts ...GridFSStoreOption) *GridFSStore {
	s := &GridFSStore{
		bucket: bucket,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Put сохраняет содержимое файла под указанным ключом.
// Ключ используется как file id: повторная загрузка того же ключа невозможна.
func (s *GridFSStore) Put(ctx context.Context, key, fileName string, r io.Reader) error {
	if key == "" || r == nil {
		return errs.ErrInvalidInput
	}

	err := s.bucket.UploadFromStreamWithID(ctx, key, fileName, r)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to upload blob",
			slog.String("key", key),
			slog.String("file_name", fileName),
			slog.String("error", err.Error()),
		)
		return err
	}

	return nil
}

// Get открывает содержимое файла по ключу. Закрытие — на вызывающем.
func (s *GridFSStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == "" {
		return nil, errs.ErrInvalidInput
	}

	stream, err := s.bucket.OpenDownloadStream(ctx, key)
	if err != nil {
		if errors.Is(err, mongo.ErrFileNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return stream, nil
}

// Delete удаляет содержимое файла по ключу
func (s *GridFSStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errs.ErrInvalidInput
	}

	err := s.bucket.Delete(ctx, key)
	if err != nil {
		if errors.Is(err, mongo.ErrFileNotFound) {
			return errs.ErrNotFound
		}
		return err
	}

	return nil
}
