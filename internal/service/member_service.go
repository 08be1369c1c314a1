package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/parley/parley/internal/domain/channel"
	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/domain/user"
	"github.com/parley/parley/internal/domain/uuid"
)

// MemberView объединяет участника канала с данными пользователя.
type MemberView struct {
	Member *channel.Member
	User   *user.User
}

// MemberService управляет составом группового канала и ролями участников.
type MemberService struct {
	channels channel.Repository
	members  channel.MemberRepository
	users    user.Repository
	logger   *slog.Logger
}

// NewMemberService создаёт новый MemberService.
func NewMemberService(
	channels channel.Repository,
	members channel.MemberRepository,
	users user.Repository,
	logger *slog.Logger,
) *MemberService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemberService{
		channels: channels,
		members:  members,
		users:    users,
		logger:   logger,
	}
}

// AddMembers добавляет пользователей в групповой канал с ролью VIEWER.
// Уже состоящие в канале пользователи молча пропускаются.
func (s *MemberService) AddMembers(
	ctx context.Context,
	channelID uuid.UUID,
	userIDs []uuid.UUID,
) error {
	if _, err := s.channels.FindByID(ctx, channelID, channel.TypeGroup); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return ErrChatGroupNotFound
		}
		return err
	}

	existing, err := s.members.FindByUserIDs(ctx, channelID, userIDs)
	if err != nil {
		return err
	}
	present := make(map[uuid.UUID]struct{}, len(existing))
	for _, m := range existing {
		present[m.UserID()] = struct{}{}
	}

	newMembers := make([]*channel.Member, 0, len(userIDs))
	for _, userID := range userIDs {
		if _, ok := present[userID]; ok {
			continue
		}
		m, memberErr := channel.NewMember(channelID, userID, channel.RoleViewer)
		if memberErr != nil {
			return memberErr
		}
		newMembers = append(newMembers, m)
	}
	if len(newMembers) == 0 {
		return nil
	}

	if insertErr := s.members.InsertMany(ctx, newMembers); insertErr != nil {
		// гонка с параллельным добавлением того же пользователя
		if errors.Is(insertErr, errs.ErrAlreadyExists) {
			return nil
		}
		return insertErr
	}
	return nil
}

// ListMembers возвращает участников канала вместе с данными пользователей.
// Запрашивающий сам должен состоять в канале.
func (s *MemberService) ListMembers(
	ctx context.Context,
	actorID, channelID uuid.UUID,
) ([]MemberView, error) {
	if _, err := s.members.Find(ctx, channelID, actorID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrNotChannelMember
		}
		return nil, err
	}

	members, err := s.members.ListByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID())
	}
	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	usersByID := make(map[uuid.UUID]*user.User, len(users))
	for _, u := range users {
		usersByID[u.ID()] = u
	}

	views := make([]MemberView, 0, len(members))
	for _, m := range members {
		views = append(views, MemberView{Member: m, User: usersByID[m.UserID()]})
	}
	return views, nil
}

// MsgNoChanges возвращается из AssignRole, когда роль уже назначена.
const MsgNoChanges = "No changes made."

// AssignRole назначает участнику группового канала новую роль. Если цель
// уже носит эту роль, ничего не меняется и возвращается MsgNoChanges.
//
// Назначение OWNER — передача владения: текущий владелец понижается до
// ADMIN, затем цель повышается до OWNER. Между двумя записями канал
// наблюдаем с двумя владельцами; при сбое второй записи выполняется
// компенсирующий откат первой.
func (s *MemberService) AssignRole(
	ctx context.Context,
	actorID, channelID, targetUserID uuid.UUID,
	newRole channel.Role,
) (string, error) {
	if !newRole.IsValid() {
		return "", ErrInvalidRole
	}

	if _, err := s.channels.FindByID(ctx, channelID, channel.TypeGroup); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", ErrChatGroupNotFound
		}
		return "", err
	}

	actor, err := s.members.Find(ctx, channelID, actorID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", ErrNotGroupMember
		}
		return "", err
	}
	if !actor.CanManageChannel() {
		return "", ErrCannotUpdateMemberRole
	}

	// Роль не выше собственной; OWNER освобождён от этой проверки и потому
	// единственный, кто может назначить нового OWNER.
	if actor.Role().Rank() >= newRole.Rank() && actor.Role() != channel.RoleOwner {
		return "", ErrCannotAssignRole
	}

	target, err := s.members.Find(ctx, channelID, targetUserID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", ErrMemberNotFound
		}
		return "", err
	}
	if target.Role() == newRole {
		return MsgNoChanges, nil
	}

	if newRole == channel.RoleOwner {
		return "", s.transferOwnership(ctx, channelID, actor, target)
	}

	// Чужую роль не ниже собственной менять нельзя — здесь без исключения
	// для OWNER, так что владение не отбирается через этот путь.
	if actor.Role().Rank() >= target.Role().Rank() {
		return "", ErrCannotUpdateMemberRole
	}

	return "", s.members.UpdateRole(ctx, channelID, targetUserID, newRole)
}

// transferOwnership передает владение каналом от actor к target.
func (s *MemberService) transferOwnership(
	ctx context.Context,
	channelID uuid.UUID,
	actor, target *channel.Member,
) error {
	if err := s.members.UpdateRole(ctx, channelID, actor.UserID(), channel.RoleAdmin); err != nil {
		return err
	}

	if err := s.members.UpdateRole(ctx, channelID, target.UserID(), channel.RoleOwner); err != nil {
		// компенсация: вернуть владение, иначе канал останется без OWNER
		if revertErr := s.members.UpdateRole(
			ctx, channelID, actor.UserID(), channel.RoleOwner,
		); revertErr != nil {
			s.logger.Error("ownership transfer compensation failed, channel left without owner",
				slog.String("channel_id", channelID.String()),
				slog.String("previous_owner_id", actor.UserID().String()),
				slog.String("target_id", target.UserID().String()),
				slog.String("error", revertErr.Error()),
			)
			return revertErr
		}
		return err
	}

	s.logger.Info("channel ownership transferred",
		slog.String("channel_id", channelID.String()),
		slog.String("from_user_id", actor.UserID().String()),
		slog.String("to_user_id", target.UserID().String()),
	)
	return nil
}

// MarkSeen отмечает канал прочитанным для пользователя.
func (s *MemberService) MarkSeen(ctx context.Context, actorID, channelID uuid.UUID) error {
	if err := s.members.UpdateLastSeenAt(ctx, channelID, actorID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return ErrNotChannelMember
		}
		return err
	}
	return nil
}
