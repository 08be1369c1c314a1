package profile

import (
	"time"

	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/domain/uuid"
)

// Grant представляет выданное разрешение: permission и список действий
type Grant struct {
	Permission string   `bson:"permission" json:"permission"`
	Actions    []string `bson:"actions"    json:"actions"`
}

// Profile представляет именованный набор разрешений (permission profile)
type Profile struct {
	id          uuid.UUID
	name        string
	description string
	grants      []Grant
	isActive    bool
	createdAt   time.Time
	updatedAt   time.Time
}

// NewProfile создает новый permission profile
func NewProfile(name, description string, grants []Grant) (*Profile, error) {
	if name == "" {
		return nil, errs.ErrInvalidInput
	}

	now := time.Now()
	return &Profile{
		id:          uuid.NewUUID(),
		name:        name,
		description: description,
		grants:      grants,
		isActive:    true,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct восстанавливает Profile из хранилища
func Reconstruct(
	id uuid.UUID,
	name, description string,
	grants []Grant,
	isActive bool,
	createdAt, updatedAt time.Time,
) *Profile {
	return &Profile{
		id:          id,
		name:        name,
		description: description,
		grants:      grants,
		isActive:    isActive,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// Update обновляет имя, описание и разрешения профиля
func (p *Profile) Update(name, description string, grants []Grant) error {
	if name == "" {
		return errs.ErrInvalidInput
	}

	p.name = name
	p.description = description
	p.grants = grants
	p.updatedAt = time.Now()
	return nil
}

// Deactivate выключает профиль
func (p *Profile) Deactivate() {
	p.isActive = false
	p.updatedAt = time.Now()
}

// ID возвращает ID профиля
func (p *Profile) ID() uuid.UUID { return p.id }

// Name возвращает имя профиля
func (p *Profile) Name() string { return p.name }

// Description возвращает описание профиля
func (p *Profile) Description() string { return p.description }

// Grants возвращает копию списка разрешений
func (p *Profile) Grants() []Grant {
	grants := make([]Grant, len(p.grants))
	copy(grants, p.grants)
	return grants
}

// IsActive возвращает флаг активности
func (p *Profile) IsActive() bool { return p.isActive }

// CreatedAt возвращает время создания
func (p *Profile) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt возвращает время последнего обновления
func (p *Profile) UpdatedAt() time.Time { return p.updatedAt }

// Snapshot — денормализованная копия профиля, встраиваемая в документ
// пользователя. Не живая ссылка: изменение профиля не трогает уже
// выданные копии до переназначения.
type Snapshot struct {
	ID          uuid.UUID `bson:"id"          json:"id"`
	Name        string    `bson:"name"        json:"name"`
	Description string    `bson:"description" json:"description"`
	Grants      []Grant   `bson:"grants"      json:"grants"`
}

// ToSnapshot создает snapshot профиля для встраивания
func (p *Profile) ToSnapshot() Snapshot {
	return Snapshot{
		ID:          p.id,
		Name:        p.name,
		Description: p.description,
		Grants:      p.Grants(),
	}
}
