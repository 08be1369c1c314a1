package invitation

import (
	"time"

	"github.com/parley/parley/internal/domain/channel"
	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/domain/uuid"
)

// Status представляет статус приглашения
type Status string

const (
	// StatusPending приглашение отправлено и ждет ответа
	StatusPending Status = "PENDING"
	// StatusAccepted терминальный статус: приглашение принято
	StatusAccepted Status = "ACCEPTED"
	// StatusRejected терминальный статус: приглашение отклонено
	StatusRejected Status = "REJECTED"
)

// IsValidResponse проверяет, является ли статус допустимым ответом
// на приглашение. PENDING ответом не является.
func (s Status) IsValidResponse() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Invitation представляет приглашение пользователя в канал.
// Жизненный цикл: PENDING -> {ACCEPTED, REJECTED}, терминальная мутация
// происходит ровно один раз; повторное открытие невозможно.
type Invitation struct {
	id               uuid.UUID
	userID           uuid.UUID // приглашаемый
	createdByID      uuid.UUID // приглашающий
	status           Status
	channelType      channel.Type
	channelID        uuid.UUID // для DIRECT — выведенный id, не произвольный
	message          string
	respondedMessage string
	createdAt        time.Time
	respondedAt      time.Time
}

// NewInvitation создает приглашение в статусе PENDING.
// Id time-ordered: сортировка по id совпадает с порядком отправки.
func NewInvitation(
	userID, createdByID uuid.UUID,
	channelType channel.Type,
	channelID uuid.UUID,
	message string,
) (*Invitation, error) {
	if userID.IsZero() || createdByID.IsZero() || channelID.IsZero() {
		return nil, errs.ErrInvalidInput
	}
	if !channelType.IsValid() {
		return nil, errs.ErrInvalidInput
	}
	if userID == createdByID {
		return nil, errs.ErrInvalidInput
	}

	return &Invitation{
		id:          uuid.NewTimestampID(),
		userID:      userID,
		createdByID: createdByID,
		status:      StatusPending,
		channelType: channelType,
		channelID:   channelID,
		message:     message,
		createdAt:   time.Now(),
	}, nil
}

// Reconstruct восстанавливает Invitation из хранилища
func Reconstruct(
	id, userID, createdByID uuid.UUID,
	status Status,
	channelType channel.Type,
	channelID uuid.UUID,
	message, respondedMessage string,
	createdAt, respondedAt time.Time,
) *Invitation {
	return &Invitation{
		id:               id,
		userID:           userID,
		createdByID:      createdByID,
		status:           status,
		channelType:      channelType,
		channelID:        channelID,
		message:          message,
		respondedMessage: respondedMessage,
		createdAt:        createdAt,
		respondedAt:      respondedAt,
	}
}

// Respond терминально мутирует приглашение. Повторный ответ недопустим.
func (i *Invitation) Respond(response Status, message string) error {
	if !response.IsValidResponse() {
		return errs.ErrInvalidInput
	}
	if i.status != StatusPending {
		return errs.ErrInvalidState
	}

	i.status = response
	i.respondedMessage = message
	i.respondedAt = time.Now()
	return nil
}

// IsPending проверяет, ждет ли приглашение ответа
func (i *Invitation) IsPending() bool { return i.status == StatusPending }

// ID возвращает ID приглашения
func (i *Invitation) ID() uuid.UUID { return i.id }

// UserID возвращает ID приглашаемого
func (i *Invitation) UserID() uuid.UUID { return i.userID }

// CreatedByID возвращает ID приглашающего
func (i *Invitation) CreatedByID() uuid.UUID { return i.createdByID }

// Status возвращает статус приглашения
func (i *Invitation) Status() Status { return i.status }

// ChannelType возвращает тип целевого канала
func (i *Invitation) ChannelType() channel.Type { return i.channelType }

// ChannelID возвращает id целевого канала
func (i *Invitation) ChannelID() uuid.UUID { return i.channelID }

// Message возвращает сообщение приглашающего
func (i *Invitation) Message() string { return i.message }

// RespondedMessage возвращает сообщение ответа
func (i *Invitation) RespondedMessage() string { return i.respondedMessage }

// CreatedAt возвращает время создания
func (i *Invitation) CreatedAt() time.Time { return i.createdAt }

// RespondedAt возвращает время ответа
func (i *Invitation) RespondedAt() time.Time { return i.respondedAt }
