package message

import (
	"context"
	"time"

	"github.com/parley/parley/internal/domain/uuid"
)

// Repository определяет интерфейс репозитория сообщений
type Repository interface {
	// Insert создает сообщение
	Insert(ctx context.Context, msg *Message) error

	// Save обновляет существующее сообщение
	Save(ctx context.Context, msg *Message) error

	// FindByID находит сообщение по id
	FindByID(ctx context.Context, id uuid.UUID) (*Message, error)

	// DeleteByID удаляет сообщение
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// ListByChannel возвращает страницу сообщений канала (createdAt desc)
	ListByChannel(ctx context.Context, channelID uuid.UUID, skip, limit int) ([]*Message, error)

	// FindLastByChannel возвращает последнее сообщение канала или nil
	FindLastByChannel(ctx context.Context, channelID uuid.UUID) (*Message, error)

	// CountAfter возвращает количество сообщений канала новее момента t
	CountAfter(ctx context.Context, channelID uuid.UUID, t time.Time) (int, error)
}
