package note

import (
	"time"

	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/domain/uuid"
)

// Note представляет личную заметку пользователя
type Note struct {
	id          uuid.UUID
	createdByID uuid.UUID
	title       string
	content     string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewNote создает заметку
func NewNote(createdByID uuid.UUID, title, content string) (*Note, error) {
	if createdByID.IsZero() || title == "" {
		return nil, errs.ErrInvalidInput
	}

	now := time.Now()
	return &Note{
		id:          uuid.NewUUID(),
		createdByID: createdByID,
		title:       title,
		content:     content,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct восстанавливает Note из хранилища
func Reconstruct(id, createdByID uuid.UUID, title, content string, createdAt, updatedAt time.Time) *Note {
	return &Note{
		id:          id,
		createdByID: createdByID,
		title:       title,
		content:     content,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// Update обновляет заголовок и содержимое заметки
func (n *Note) Update(title, content string) error {
	if title == "" {
		return errs.ErrInvalidInput
	}

	n.title = title
	n.content = content
	n.updatedAt = time.Now()
	return nil
}

// ID возвращает ID заметки
func (n *Note) ID() uuid.UUID { return n.id }

// CreatedByID возвращает ID владельца
func (n *Note) CreatedByID() uuid.UUID { return n.createdByID }

// Title возвращает заголовок
func (n *Note) Title() string { return n.title }

// Content возвращает содержимое
func (n *Note) Content() string { return n.content }

// CreatedAt возвращает время создания
func (n *Note) CreatedAt() time.Time { return n.createdAt }

// UpdatedAt возвращает время последнего изменения
func (n *Note) UpdatedAt() time.Time { return n.updatedAt }
