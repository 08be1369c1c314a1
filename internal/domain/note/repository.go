package note

import (
	"context"

	"github.com/parley/parley/internal/domain/uuid"
)

// Repository определяет интерфейс репозитория заметок
type Repository interface {
	// Insert создает заметку
	Insert(ctx context.Context, n *Note) error

	// Save обновляет существующую заметку
	Save(ctx context.Context, n *Note) error

	// FindByID находит заметку по id
	FindByID(ctx context.Context, id uuid.UUID) (*Note, error)

	// DeleteByID удаляет заметку
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// ListByOwner возвращает заметки владельца (updatedAt desc) и их количество
	ListByOwner(ctx context.Context, ownerID uuid.UUID, skip, limit int) ([]*Note, int, error)
}
