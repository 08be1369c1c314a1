package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/domain/media"
	"github.com/parley/parley/internal/domain/profile"
	"github.com/parley/parley/internal/domain/user"
	"github.com/parley/parley/internal/domain/uuid"
)

// UserPage — страница пользователей с общим количеством.
type UserPage struct {
	Items []*user.User
	Total int
}

// UserService управляет справочником пользователей.
type UserService struct {
	users    user.Repository
	profiles profile.Repository
	hasher   AuthServicePasswordHasher
	logger   *slog.Logger
}

// NewUserService создаёт новый UserService.
func NewUserService(
	users user.Repository,
	profiles profile.Repository,
	hasher AuthServicePasswordHasher,
	logger *slog.Logger,
) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:    users,
		profiles: profiles,
		hasher:   hasher,
		logger:   logger,
	}
}

// Get возвращает пользователя по id.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// List возвращает страницу пользователей по поисковому фильтру.
func (s *UserService) List(ctx context.Context, filter user.SearchFilter) (*UserPage, error) {
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &UserPage{Items: users, Total: total}, nil
}

// UpdateProfile обновляет username и имя пользователя. Новый username
// проверяется на формат и уникальность среди остальных пользователей.
func (s *UserService) UpdateProfile(
	ctx context.Context,
	id uuid.UUID,
	username, firstName, lastName string,
) (*user.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !user.IsValidUsername(username) {
		return nil, ErrInvalidUsername
	}
	if _, err = s.users.FindByUsername(ctx, username, id); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	if err = u.UpdateProfile(username, firstName, lastName); err != nil {
		return nil, err
	}
	if err = s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword меняет пароль после проверки текущего.
func (s *UserService) ChangePassword(
	ctx context.Context,
	id uuid.UUID,
	currentPassword, newPassword string,
) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !s.hasher.Compare(u.PasswordHash(), currentPassword) {
		return ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err = u.ChangePassword(hash); err != nil {
		return err
	}
	if err = s.users.Save(ctx, u); err != nil {
		return err
	}

	s.logger.Info("user password changed", slog.String("user_id", id.String()))
	return nil
}

// SetProfilePicture привязывает загруженный ресурс как аватар пользователя.
func (s *UserService) SetProfilePicture(
	ctx context.Context,
	id uuid.UUID,
	picture media.Resource,
) (*user.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	u.SetProfilePicture(picture)
	if err = s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// AssignProfiles заменяет набор permission-профилей пользователя.
// Снимки профилей денормализуются в документ пользователя.
func (s *UserService) AssignProfiles(
	ctx context.Context,
	id uuid.UUID,
	profileIDs []uuid.UUID,
) (*user.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	snapshots := make([]profile.Snapshot, 0, len(profileIDs))
	if len(profileIDs) > 0 {
		profiles, findErr := s.profiles.FindByIDs(ctx, profileIDs)
		if findErr != nil {
			return nil, findErr
		}
		if len(profiles) != len(profileIDs) {
			return nil, ErrProfileNotFound
		}
		for _, p := range profiles {
			snapshots = append(snapshots, p.ToSnapshot())
		}
	}

	u.AssignProfiles(snapshots)
	if err = s.users.Save(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user profiles assigned",
		slog.String("user_id", id.String()),
		slog.Int("profile_count", len(snapshots)),
	)
	return u, nil
}

// Deactivate отключает учетную запись: вход и обновление токенов
// становятся невозможны.
func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	u.Deactivate()
	if err = s.users.Save(ctx, u); err != nil {
		return err
	}

	s.logger.Info("user deactivated", slog.String("user_id", id.String()))
	return nil
}
