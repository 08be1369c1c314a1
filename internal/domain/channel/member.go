package channel

import (
	"time"

	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/domain/uuid"
)

// Member представляет участника канала: пара (канал, пользователь) с ролью.
// Составная identity (ChannelID, UserID) уникальна.
type Member struct {
	channelID  uuid.UUID
	userID     uuid.UUID
	role       Role
	joinedAt   time.Time
	lastSeenAt time.Time
}

// NewMember создает нового участника канала
func NewMember(channelID, userID uuid.UUID, role Role) (*Member, error) {
	if channelID.IsZero() || userID.IsZero() {
		return nil, errs.ErrInvalidInput
	}
	if !role.IsValid() {
		return nil, errs.ErrInvalidInput
	}

	return &Member{
		channelID: channelID,
		userID:    userID,
		role:      role,
		joinedAt:  time.Now(),
	}, nil
}

// ReconstructMember восстанавливает Member из хранилища
func ReconstructMember(
	channelID, userID uuid.UUID,
	role Role,
	joinedAt, lastSeenAt time.Time,
) *Member {
	return &Member{
		channelID:  channelID,
		userID:     userID,
		role:       role,
		joinedAt:   joinedAt,
		lastSeenAt: lastSeenAt,
	}
}

// ChannelID возвращает ID канала
func (m *Member) ChannelID() uuid.UUID { return m.channelID }

// UserID возвращает ID пользователя
func (m *Member) UserID() uuid.UUID { return m.userID }

// Role возвращает роль участника
func (m *Member) Role() Role { return m.role }

// JoinedAt возвращает время присоединения
func (m *Member) JoinedAt() time.Time { return m.joinedAt }

// LastSeenAt возвращает время последнего просмотра канала
func (m *Member) LastSeenAt() time.Time { return m.lastSeenAt }

// IsOwner проверяет, является ли участник владельцем канала
func (m *Member) IsOwner() bool { return m.role == RoleOwner }

// CanManageChannel проверяет право менять детали канала и роли:
// только OWNER, ADMIN и MODERATOR.
func (m *Member) CanManageChannel() bool { return m.role.IsRanked() }

// CanInvite проверяет право приглашать в групповой канал. Приглашают
// только MEMBER и VIEWER — ранжированные роли этим правом не обладают
// (намеренная асимметрия исходного дизайна).
func (m *Member) CanInvite() bool {
	return m.role == RoleMember || m.role == RoleViewer
}

// CanPost проверяет право отправлять сообщения: все роли кроме VIEWER
func (m *Member) CanPost() bool { return m.role != RoleViewer }

// CanDeleteMessageOf проверяет право удалить сообщение автора authorID:
// свои сообщения — любой пишущий участник, чужие — MODERATOR и выше.
func (m *Member) CanDeleteMessageOf(authorID uuid.UUID) bool {
	if !m.CanPost() {
		return false
	}
	if m.userID == authorID {
		return true
	}
	return m.role.IsRanked()
}
