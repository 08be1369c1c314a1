package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/domain/media"
	"github.com/parley/parley/internal/domain/uuid"
)

// MediaService хранит файлы: байты в blob store, метаданные в репозитории.
// Ключ ресурса выдается при загрузке и служит единственной ссылкой на файл.
type MediaService struct {
	resources media.Repository
	blobs     media.BlobStore
	logger    *slog.Logger
}

// NewMediaService создаёт новый MediaService.
func NewMediaService(resources media.Repository, blobs media.BlobStore, logger *slog.Logger) *MediaService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MediaService{resources: resources, blobs: blobs, logger: logger}
}

// Upload сохраняет файл и возвращает его метаданные. Ресурс создается
// непривязанным (пустой TypeID) и позже закрепляется за владельцем.
func (s *MediaService) Upload(
	ctx context.Context,
	upload media.Upload,
	resourceType string,
) (*media.Resource, error) {
	key := uuid.NewUUID().String()

	if err := s.blobs.Put(ctx, key, upload.FileName, upload.Content); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	resource := &media.Resource{
		Key:         key,
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
		Size:        upload.Size,
		Type:        resourceType,
		CreatedByID: upload.CreatedByID,
		CreatedAt:   time.Now(),
	}
	if err := s.resources.Insert(ctx, resource); err != nil {
		// метаданные не записались, байты-сироты подчищаем сразу
		if deleteErr := s.blobs.Delete(ctx, key); deleteErr != nil {
			s.logger.Warn("failed to delete orphaned blob",
				slog.String("key", key),
				slog.String("error", deleteErr.Error()),
			)
		}
		return nil, err
	}

	s.logger.Info("file uploaded",
		slog.String("key", key),
		slog.String("file_name", upload.FileName),
		slog.Int64("size", upload.Size),
	)
	return resource, nil
}

// Resource возвращает метаданные файла по ключу, не открывая поток.
func (s *MediaService) Resource(ctx context.Context, key string) (*media.Resource, error) {
	resource, err := s.resources.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return resource, nil
}

// Download открывает файл по ключу вместе с метаданными.
// Закрыть reader обязан вызывающий.
func (s *MediaService) Download(ctx context.Context, key string) (*media.Resource, io.ReadCloser, error) {
	resource, err := s.resources.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, err
	}

	r, err := s.blobs.Get(ctx, key)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, err
	}
	return resource, r, nil
}

// Attach закрепляет загруженные ресурсы за владельцем (пользователем,
// каналом или сообщением).
func (s *MediaService) Attach(ctx context.Context, keys []string, typeID string) error {
	return s.resources.ReassignTypeID(ctx, keys, typeID)
}

// Delete удаляет файл и его метаданные.
func (s *MediaService) Delete(ctx context.Context, key string) error {
	if err := s.resources.DeleteByKey(ctx, key); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return ErrFileNotFound
		}
		return err
	}
	if err := s.blobs.Delete(ctx, key); err != nil && !errors.Is(err, errs.ErrNotFound) {
		s.logger.Warn("failed to delete blob",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// DeleteByOwner удаляет все файлы владельца.
func (s *MediaService) DeleteByOwner(ctx context.Context, resourceType, typeID string) error {
	keys, err := s.resources.DeleteByTypeID(ctx, resourceType, typeID)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if deleteErr := s.blobs.Delete(ctx, key); deleteErr != nil && !errors.Is(deleteErr, errs.ErrNotFound) {
			s.logger.Warn("failed to delete blob",
				slog.String("key", key),
				slog.String("error", deleteErr.Error()),
			)
		}
	}
	return nil
}
