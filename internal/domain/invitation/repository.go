package invitation

import (
	"context"

	"github.com/parley/parley/internal/domain/channel"
	"github.com/parley/parley/internal/domain/uuid"
)

// PendingKey идентифицирует PENDING-приглашение по паре
// (приглашаемый, канал) в рамках одного приглашающего.
type PendingKey struct {
	UserID    uuid.UUID
	ChannelID uuid.UUID
}

// Filter задает параметры выборки приглашений
type Filter struct {
	UserID      uuid.UUID
	CreatedByID uuid.UUID
	ChannelType channel.Type
	ChannelID   uuid.UUID
	Statuses    []Status
	Skip        int
	Limit       int
}

// Repository определяет интерфейс репозитория приглашений
type Repository interface {
	// InsertMany создает приглашения
	InsertMany(ctx context.Context, invitations []*Invitation) error

	// FindByID находит приглашение по id
	FindByID(ctx context.Context, id uuid.UUID) (*Invitation, error)

	// UpdateResponse записывает терминальный ответ приглашения
	UpdateResponse(ctx context.Context, inv *Invitation) error

	// DeletePending удаляет PENDING-приглашения приглашающего для
	// указанных пар (user, channel). Delete-then-insert окно дедупликации
	// best-effort; см. известное ограничение гонки отправки.
	DeletePending(ctx context.Context, createdByID uuid.UUID, keys []PendingKey) error

	// Find возвращает страницу приглашений по фильтру (createdAt desc)
	// и общее количество подходящих записей
	Find(ctx context.Context, filter Filter) ([]*Invitation, int, error)
}
