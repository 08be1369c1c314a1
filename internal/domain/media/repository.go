package media

import (
	"context"
	"io"

	"github.com/parley/parley/internal/domain/uuid"
)

// Repository определяет интерфейс репозитория метаданных media-ресурсов
type Repository interface {
	// Insert сохраняет метаданные ресурса
	Insert(ctx context.Context, resource *Resource) error

	// FindByKey находит ресурс по ключу
	FindByKey(ctx context.Context, key string) (*Resource, error)

	// FindByKeys находит ресурсы по набору ключей
	FindByKeys(ctx context.Context, keys []string) ([]*Resource, error)

	// FindByTypeID находит ресурсы владельца
	FindByTypeID(ctx context.Context, resourceType string, typeID string) ([]*Resource, error)

	// ReassignTypeID привязывает ресурсы к новому владельцу
	ReassignTypeID(ctx context.Context, keys []string, typeID string) error

	// DeleteByKey удаляет метаданные ресурса
	DeleteByKey(ctx context.Context, key string) error

	// DeleteByTypeID удаляет все ресурсы владельца
	DeleteByTypeID(ctx context.Context, resourceType string, typeID string) ([]string, error)
}

// BlobStore — хранилище байтов файлов: store bytes, return a stable key.
// Единственная реализация — GridFS bucket поверх документного хранилища.
type BlobStore interface {
	// Put сохраняет содержимое файла под указанным ключом
	Put(ctx context.Context, key string, fileName string, r io.Reader) error

	// Get открывает содержимое файла по ключу
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete удаляет содержимое файла по ключу
	Delete(ctx context.Context, key string) error
}

// Upload описывает входящий файл для загрузки
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
	CreatedByID uuid.UUID
}
