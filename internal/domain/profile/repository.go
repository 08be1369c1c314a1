package profile

import (
	"context"

	"github.com/parley/parley/internal/domain/uuid"
)

// Repository определяет интерфейс репозитория permission profiles
type Repository interface {
	// FindByID находит профиль по ID
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)

	// FindByIDs находит профили по набору ID
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Profile, error)

	// FindByName находит профиль по имени
	FindByName(ctx context.Context, name string) (*Profile, error)

	// Save сохраняет профиль (insert или update по ID)
	Save(ctx context.Context, profile *Profile) error

	// Delete удаляет профиль
	Delete(ctx context.Context, id uuid.UUID) error

	// List возвращает профили с пагинацией
	List(ctx context.Context, offset, limit int) ([]*Profile, error)

	// Count возвращает общее количество профилей
	Count(ctx context.Context) (int, error)
}
