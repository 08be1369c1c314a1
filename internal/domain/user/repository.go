package user

import (
	"context"

	"github.com/parley/parley/internal/domain/uuid"
)

// SearchFilter задает параметры поиска пользователей
type SearchFilter struct {
	Search string // подстрока по username/email/имени
	Offset int
	Limit  int
}

// Repository определяет интерфейс репозитория пользователей
type Repository interface {
	// FindByID находит пользователя по ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByIDs находит пользователей по набору ID
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*User, error)

	// FindByLogin находит пользователя по username или email
	FindByLogin(ctx context.Context, loginID string) (*User, error)

	// FindByUsername находит пользователя по username, исключая excludeID
	FindByUsername(ctx context.Context, username string, excludeID uuid.UUID) (*User, error)

	// ExistsSuperUser проверяет, существует ли хотя бы один суперпользователь
	ExistsSuperUser(ctx context.Context) (bool, error)

	// Save сохраняет пользователя (insert или update по ID)
	Save(ctx context.Context, user *User) error

	// List возвращает пользователей по фильтру и общее количество
	List(ctx context.Context, filter SearchFilter) ([]*User, int, error)
}
