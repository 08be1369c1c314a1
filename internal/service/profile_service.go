package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/domain/profile"
	"github.com/parley/parley/internal/domain/uuid"
)

// ProfilePage — страница профилей с общим количеством.
type ProfilePage struct {
	Items []*profile.Profile
	Total int
}

// ProfileService управляет каталогом permission-профилей.
type ProfileService struct {
	profiles profile.Repository
	logger   *slog.Logger
}

// NewProfileService создаёт новый ProfileService.
func NewProfileService(profiles profile.Repository, logger *slog.Logger) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{profiles: profiles, logger: logger}
}

// Create создает профиль с уникальным именем.
func (s *ProfileService) Create(
	ctx context.Context,
	name, description string,
	grants []profile.Grant,
) (*profile.Profile, error) {
	if err := s.requireUniqueName(ctx, name, ""); err != nil {
		return nil, err
	}

	p, err := profile.NewProfile(name, description, grants)
	if err != nil {
		return nil, err
	}
	if err = s.profiles.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("permission profile created",
		slog.String("profile_id", p.ID().String()),
		slog.String("name", p.Name()),
	)
	return p, nil
}

// Get возвращает профиль по id.
func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	p, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// List возвращает страницу профилей.
func (s *ProfileService) List(ctx context.Context, offset, limit int) (*ProfilePage, error) {
	profiles, err := s.profiles.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.profiles.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &ProfilePage{Items: profiles, Total: total}, nil
}

// Update изменяет профиль. Снимки в документах пользователей обновляются
// при следующем назначении профилей, не ретроактивно.
func (s *ProfileService) Update(
	ctx context.Context,
	id uuid.UUID,
	name, description string,
	grants []profile.Grant,
) (*profile.Profile, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = s.requireUniqueName(ctx, name, id); err != nil {
		return nil, err
	}

	if err = p.Update(name, description, grants); err != nil {
		return nil, err
	}
	if err = s.profiles.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete удаляет профиль.
func (s *ProfileService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.profiles.Delete(ctx, id)
}

func (s *ProfileService) requireUniqueName(ctx context.Context, name string, excludeID uuid.UUID) error {
	existing, err := s.profiles.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID() != excludeID {
		return ErrProfileNameTaken
	}
	return nil
}
