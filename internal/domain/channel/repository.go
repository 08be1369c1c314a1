package channel

import (
	"context"

	"github.com/parley/parley/internal/domain/uuid"
)

// Repository определяет интерфейс репозитория каналов
type Repository interface {
	// Insert создает канал. Возвращает errs.ErrAlreadyExists при
	// нарушении уникальности id (конкурентное создание DIRECT канала).
	Insert(ctx context.Context, ch *Channel) error

	// Save обновляет существующий канал по ID
	Save(ctx context.Context, ch *Channel) error

	// Delete удаляет канал. Используется только как компенсация при
	// частичном сбое создания группы (канал без владельца недопустим).
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID находит канал по id, опционально сужая по типу
	FindByID(ctx context.Context, id uuid.UUID, channelType Type) (*Channel, error)

	// FindByIDs находит каналы по набору id, опционально сужая по типу
	FindByIDs(ctx context.Context, ids []uuid.UUID, channelType Type) ([]*Channel, error)
}

// MemberRepository определяет интерфейс репозитория участников каналов
type MemberRepository interface {
	// InsertMany создает участников. Возвращает errs.ErrAlreadyExists при
	// нарушении уникальности (channelID, userID).
	InsertMany(ctx context.Context, members []*Member) error

	// Find находит участника канала
	Find(ctx context.Context, channelID, userID uuid.UUID) (*Member, error)

	// FindByUserIDs находит участников канала из набора пользователей
	FindByUserIDs(ctx context.Context, channelID uuid.UUID, userIDs []uuid.UUID) ([]*Member, error)

	// ListByChannel возвращает всех участников канала
	ListByChannel(ctx context.Context, channelID uuid.UUID) ([]*Member, error)

	// ListByUser возвращает все членства пользователя
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Member, error)

	// UpdateRole устанавливает роль участника
	UpdateRole(ctx context.Context, channelID, userID uuid.UUID, role Role) error

	// UpdateLastSeenAt обновляет время последнего просмотра канала
	UpdateLastSeenAt(ctx context.Context, channelID, userID uuid.UUID) error

	// CountByRole возвращает количество участников канала с ролью
	CountByRole(ctx context.Context, channelID uuid.UUID, role Role) (int, error)
}
