package channel

import "math"

// Role представляет роль участника канала
type Role string

const (
	// RoleOwner владелец группового канала, ровно один на канал
	RoleOwner Role = "OWNER"
	// RoleAdmin администратор канала
	RoleAdmin Role = "ADMIN"
	// RoleModerator модератор; обе стороны прямого канала получают эту роль
	RoleModerator Role = "MODERATOR"
	// RoleMember обычный участник
	RoleMember Role = "MEMBER"
	// RoleViewer участник только для чтения
	RoleViewer Role = "VIEWER"
)

// unrankedValue — ранг для ролей вне иерархии управления (MEMBER, VIEWER):
// они не могут назначать роли и не могут быть изменены сравнением рангов.
var unrankedValue = math.Inf(1)

// rankTable — единственное место, где определена иерархия ролей.
// Меньшее значение — больше полномочий.
var rankTable = map[Role]float64{
	RoleOwner:     0,
	RoleAdmin:     1,
	RoleModerator: 2,
}

// IsValid проверяет, является ли роль допустимой
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleModerator, RoleMember, RoleViewer:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление роли
func (r Role) String() string {
	return string(r)
}

// Rank возвращает численный ранг роли: OWNER=0, ADMIN=1, MODERATOR=2,
// остальные — +Inf (unranked).
func (r Role) Rank() float64 {
	if rank, ok := rankTable[r]; ok {
		return rank
	}
	return unrankedValue
}

// IsRanked проверяет, входит ли роль в иерархию управления
func (r Role) IsRanked() bool {
	_, ok := rankTable[r]
	return ok
}

// Outranks проверяет, что роль r строго выше other по полномочиям
func (r Role) Outranks(other Role) bool {
	return r.Rank() < other.Rank()
}
