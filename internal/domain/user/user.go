package user

import (
	"regexp"
	"strings"
	"time"

	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/domain/media"
	"github.com/parley/parley/internal/domain/profile"
	"github.com/parley/parley/internal/domain/uuid"
)

const minUsernameLength = 3

var (
	usernameStartPattern = regexp.MustCompile(`^[a-zA-Z]`)
	usernamePattern      = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)
)

// User представляет пользователя системы
type User struct {
	id                    uuid.UUID
	username              string
	email                 string
	firstName             string
	lastName              string
	passwordHash          string
	isSuperUser           bool
	isActive              bool // soft-delete: пользователи никогда не удаляются физически
	profilePicture        media.Resource
	profiles              []profile.Snapshot
	passwordLastChangedAt time.Time
	createdAt             time.Time
	updatedAt             time.Time
}

// NewUser создает нового пользователя
func NewUser(username, email, firstName, lastName, passwordHash string) (*User, error) {
	if !IsValidUsername(username) {
		return nil, errs.ErrInvalidInput
	}
	if email == "" || firstName == "" || passwordHash == "" {
		return nil, errs.ErrInvalidInput
	}

	now := time.Now()
	return &User{
		id:           uuid.NewUUID(),
		username:     username,
		email:        strings.ToLower(strings.TrimSpace(email)),
		firstName:    firstName,
		lastName:     lastName,
		passwordHash: passwordHash,
		isActive:     true,
		profiles:     make([]profile.Snapshot, 0),
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct восстанавливает User из хранилища без валидации бизнес-правил
func Reconstruct(
	id uuid.UUID,
	username, email, firstName, lastName, passwordHash string,
	isSuperUser, isActive bool,
	profilePicture media.Resource,
	profiles []profile.Snapshot,
	passwordLastChangedAt, createdAt, updatedAt time.Time,
) *User {
	return &User{
		id:                    id,
		username:              username,
		email:                 email,
		firstName:             firstName,
		lastName:              lastName,
		passwordHash:          passwordHash,
		isSuperUser:           isSuperUser,
		isActive:              isActive,
		profilePicture:        profilePicture,
		profiles:              profiles,
		passwordLastChangedAt: passwordLastChangedAt,
		createdAt:             createdAt,
		updatedAt:             updatedAt,
	}
}

// IsValidUsername проверяет имя пользователя: минимум 3 символа, начинается
// с буквы, только буквы/цифры/дефис/подчеркивание, не email и без пробелов.
func IsValidUsername(username string) bool {
	if username == "" {
		return false
	}
	if strings.ContainsAny(username, " @") {
		return false
	}
	if !usernameStartPattern.MatchString(username) {
		return false
	}
	if !usernamePattern.MatchString(username) {
		return false
	}
	return len(username) >= minUsernameLength
}

// UpdateProfile обновляет редактируемые поля пользователя
func (u *User) UpdateProfile(username, firstName, lastName string) error {
	if !IsValidUsername(username) {
		return errs.ErrInvalidInput
	}
	if firstName == "" {
		return errs.ErrInvalidInput
	}

	u.username = username
	u.firstName = firstName
	u.lastName = lastName
	u.updatedAt = time.Now()
	return nil
}

// ChangePassword устанавливает новый хэш пароля
func (u *User) ChangePassword(passwordHash string) error {
	if passwordHash == "" {
		return errs.ErrInvalidInput
	}

	now := time.Now()
	u.passwordHash = passwordHash
	u.passwordLastChangedAt = now
	u.updatedAt = now
	return nil
}

// AssignProfiles заменяет снапшоты permission profiles пользователя
func (u *User) AssignProfiles(profiles []profile.Snapshot) {
	u.profiles = profiles
	u.updatedAt = time.Now()
}

// SetProfilePicture заменяет ссылку на аватар пользователя
func (u *User) SetProfilePicture(picture media.Resource) {
	u.profilePicture = picture
	u.updatedAt = time.Now()
}

// Deactivate выключает пользователя (soft-delete)
func (u *User) Deactivate() {
	u.isActive = false
	u.updatedAt = time.Now()
}

// ID возвращает ID пользователя
func (u *User) ID() uuid.UUID { return u.id }

// Username возвращает имя пользователя
func (u *User) Username() string { return u.username }

// Email возвращает email
func (u *User) Email() string { return u.email }

// FirstName возвращает имя
func (u *User) FirstName() string { return u.firstName }

// LastName возвращает фамилию
func (u *User) LastName() string { return u.lastName }

// FullName возвращает полное имя для отображения
func (u *User) FullName() string {
	return strings.TrimSpace(u.firstName + " " + u.lastName)
}

// PasswordHash возвращает bcrypt-хэш пароля
func (u *User) PasswordHash() string { return u.passwordHash }

// IsSuperUser возвращает флаг суперпользователя
func (u *User) IsSuperUser() bool { return u.isSuperUser }

// IsActive возвращает флаг активности
func (u *User) IsActive() bool { return u.isActive }

// ProfilePicture возвращает ссылку на аватар
func (u *User) ProfilePicture() media.Resource { return u.profilePicture }

// Profiles возвращает копию снапшотов permission profiles
func (u *User) Profiles() []profile.Snapshot {
	profiles := make([]profile.Snapshot, len(u.profiles))
	copy(profiles, u.profiles)
	return profiles
}

// PasswordLastChangedAt возвращает время последней смены пароля
func (u *User) PasswordLastChangedAt() time.Time { return u.passwordLastChangedAt }

// CreatedAt возвращает время создания
func (u *User) CreatedAt() time.Time { return u.createdAt }

// UpdatedAt возвращает время последнего обновления
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// MarkSuperUser устанавливает флаг суперпользователя
func (u *User) MarkSuperUser() {
	u.isSuperUser = true
	u.updatedAt = time.Now()
}
