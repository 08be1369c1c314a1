package message

import (
	"time"

	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/domain/media"
	"github.com/parley/parley/internal/domain/uuid"
)

// Message представляет сообщение канала. Тонкий CRUD-слой: правила доступа
// к отправке/изменению/удалению живут в authorization gate, не здесь.
type Message struct {
	id          uuid.UUID
	channelID   uuid.UUID
	createdByID uuid.UUID
	text        string
	resources   []media.Resource
	createdAt   time.Time
	updatedAt   time.Time
}

// NewMessage создает сообщение. Текст или вложения обязательны.
func NewMessage(channelID, createdByID uuid.UUID, text string, resources []media.Resource) (*Message, error) {
	if channelID.IsZero() || createdByID.IsZero() {
		return nil, errs.ErrInvalidInput
	}
	if text == "" && len(resources) == 0 {
		return nil, errs.ErrInvalidInput
	}

	now := time.Now()
	return &Message{
		id:          uuid.NewTimestampID(),
		channelID:   channelID,
		createdByID: createdByID,
		text:        text,
		resources:   resources,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct восстанавливает Message из хранилища
func Reconstruct(
	id, channelID, createdByID uuid.UUID,
	text string,
	resources []media.Resource,
	createdAt, updatedAt time.Time,
) *Message {
	return &Message{
		id:          id,
		channelID:   channelID,
		createdByID: createdByID,
		text:        text,
		resources:   resources,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// Edit заменяет текст и вложения сообщения
func (m *Message) Edit(text string, resources []media.Resource) error {
	if text == "" && len(resources) == 0 {
		return errs.ErrInvalidInput
	}

	m.text = text
	m.resources = resources
	m.updatedAt = time.Now()
	return nil
}

// IsAuthor проверяет, является ли пользователь автором сообщения
func (m *Message) IsAuthor(userID uuid.UUID) bool { return m.createdByID == userID }

// ID возвращает ID сообщения
func (m *Message) ID() uuid.UUID { return m.id }

// ChannelID возвращает ID канала
func (m *Message) ChannelID() uuid.UUID { return m.channelID }

// CreatedByID возвращает ID автора
func (m *Message) CreatedByID() uuid.UUID { return m.createdByID }

// Text возвращает текст сообщения
func (m *Message) Text() string { return m.text }

// Resources возвращает вложения сообщения
func (m *Message) Resources() []media.Resource { return m.resources }

// CreatedAt возвращает время создания
func (m *Message) CreatedAt() time.Time { return m.createdAt }

// UpdatedAt возвращает время последнего изменения
func (m *Message) UpdatedAt() time.Time { return m.updatedAt }
