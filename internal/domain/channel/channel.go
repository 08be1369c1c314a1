package channel

import (
	"sort"
	"strings"
	"time"

	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/domain/media"
	"github.com/parley/parley/internal/domain/uuid"
)

// Type представляет тип чат-канала
type Type string

const (
	// TypeGroup многопользовательский канал с именем и ролями
	TypeGroup Type = "GROUP"
	// TypeDirect диалог двух пользователей с детерминированным id
	TypeDirect Type = "DIRECT"
)

// IsValid проверяет, является ли тип канала допустимым
func (t Type) IsValid() bool {
	return t == TypeGroup || t == TypeDirect
}

// directIDSeparator разделяет два user id в id прямого канала.
const directIDSeparator = "--"

// DirectChannelID выводит детерминированный id прямого канала из пары
// пользователей: отсортированные лексикографически id, соединенные "--".
// DirectChannelID(a, b) == DirectChannelID(b, a) — на пару пользователей
// существует не более одного прямого канала без гонки на uniqueness-запросе.
func DirectChannelID(userIDA, userIDB uuid.UUID) uuid.UUID {
	ids := []string{userIDA.String(), userIDB.String()}
	sort.Strings(ids)
	return uuid.UUID(strings.Join(ids, directIDSeparator))
}

// SplitDirectChannelID возвращает пару user id, из которой выведен id
// прямого канала.
func SplitDirectChannelID(channelID uuid.UUID) (uuid.UUID, uuid.UUID, error) {
	parts := strings.Split(channelID.String(), directIDSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errs.ErrInvalidInput
	}
	return uuid.UUID(parts[0]), uuid.UUID(parts[1]), nil
}

// Channel представляет чат-канал (GROUP или DIRECT)
type Channel struct {
	id          uuid.UUID
	channelType Type
	name        string
	description string
	avatar      media.Resource
	createdByID uuid.UUID
	createdAt   time.Time
}

// NewGroupChannel создает групповой канал
func NewGroupChannel(name, description string, createdByID uuid.UUID) (*Channel, error) {
	if name == "" {
		return nil, errs.ErrInvalidInput
	}
	if createdByID.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	return &Channel{
		id:          uuid.NewUUID(),
		channelType: TypeGroup,
		name:        name,
		description: description,
		createdByID: createdByID,
		createdAt:   time.Now(),
	}, nil
}

// NewDirectChannel создает прямой канал для пары пользователей.
// Id канала полностью определяется парой участников.
func NewDirectChannel(userIDA, userIDB, createdByID uuid.UUID) (*Channel, error) {
	if userIDA.IsZero() || userIDB.IsZero() || userIDA == userIDB {
		return nil, errs.ErrInvalidInput
	}

	return &Channel{
		id:          DirectChannelID(userIDA, userIDB),
		channelType: TypeDirect,
		createdByID: createdByID,
		createdAt:   time.Now(),
	}, nil
}

// Reconstruct восстанавливает Channel из хранилища
func Reconstruct(
	id uuid.UUID,
	channelType Type,
	name, description string,
	avatar media.Resource,
	createdByID uuid.UUID,
	createdAt time.Time,
) *Channel {
	return &Channel{
		id:          id,
		channelType: channelType,
		name:        name,
		description: description,
		avatar:      avatar,
		createdByID: createdByID,
		createdAt:   createdAt,
	}
}

// UpdateDetails обновляет имя и описание группового канала
func (c *Channel) UpdateDetails(name, description string) error {
	if c.channelType != TypeGroup {
		return errs.ErrInvalidState
	}
	if name == "" {
		return errs.ErrInvalidInput
	}

	c.name = name
	c.description = description
	return nil
}

// SetAvatar заменяет аватар группового канала
func (c *Channel) SetAvatar(avatar media.Resource) error {
	if c.channelType != TypeGroup {
		return errs.ErrInvalidState
	}

	c.avatar = avatar
	return nil
}

// OtherUserID возвращает id собеседника в прямом канале
func (c *Channel) OtherUserID(userID uuid.UUID) (uuid.UUID, error) {
	if c.channelType != TypeDirect {
		return "", errs.ErrInvalidState
	}

	a, b, err := SplitDirectChannelID(c.id)
	if err != nil {
		return "", err
	}
	if a == userID {
		return b, nil
	}
	return a, nil
}

// ID возвращает ID канала
func (c *Channel) ID() uuid.UUID { return c.id }

// Type возвращает тип канала
func (c *Channel) Type() Type { return c.channelType }

// IsDirect проверяет, является ли канал прямым
func (c *Channel) IsDirect() bool { return c.channelType == TypeDirect }

// Name возвращает имя канала (пустое для DIRECT)
func (c *Channel) Name() string { return c.name }

// Description возвращает описание канала
func (c *Channel) Description() string { return c.description }

// Avatar возвращает ссылку на аватар канала
func (c *Channel) Avatar() media.Resource { return c.avatar }

// CreatedByID возвращает ID создателя
func (c *Channel) CreatedByID() uuid.UUID { return c.createdByID }

// CreatedAt возвращает время создания
func (c *Channel) CreatedAt() time.Time { return c.createdAt }
