package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/parley/parley/internal/domain/channel"
	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/domain/invitation"
	"github.com/parley/parley/internal/domain/user"
	"github.com/parley/parley/internal/domain/uuid"
)

// InvitationView объединяет приглашение с данными сторон и целевого канала.
type InvitationView struct {
	Invitation *invitation.Invitation
	FromUser   *user.User
	ToUser     *user.User
	Channel    *channel.Channel // nil для DIRECT, пока канал не создан
}

// InvitationPage — страница приглашений с общим количеством.
type InvitationPage struct {
	Items []InvitationView
	Total int
}

// InvitationService управляет жизненным циклом приглашений в каналы.
type InvitationService struct {
	invitations invitation.Repository
	channels    channel.Repository
	members     channel.MemberRepository
	users       user.Repository
	logger      *slog.Logger
}

// NewInvitationService создаёт новый InvitationService.
func NewInvitationService(
	invitations invitation.Repository,
	channels channel.Repository,
	members channel.MemberRepository,
	users user.Repository,
	logger *slog.Logger,
) *InvitationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvitationService{
		invitations: invitations,
		channels:    channels,
		members:     members,
		users:       users,
		logger:      logger,
	}
}

// InvitationSendResult — итог отправки приглашений. Пустой Created с
// заполненным Info означает, что все цели отфильтрованы; это не ошибка.
type InvitationSendResult struct {
	Created []*invitation.Invitation
	Info    string
}

// Информационные сообщения для случая, когда все цели отфильтрованы.
const (
	MsgAllAlreadyMembers = "All users are already members of this chat group."
	MsgAllHaveDirectChat = "All users already have a direct chat with you."
)

// SendToGroup отправляет приглашения в групповой канал. Приглашать могут
// только MEMBER и VIEWER; пользователи, уже состоящие в канале,
// отфильтровываются. Прежние PENDING-приглашения тех же пар заменяются.
func (s *InvitationService) SendToGroup(
	ctx context.Context,
	actorID, channelID uuid.UUID,
	userIDs []uuid.UUID,
	msg string,
) (*InvitationSendResult, error) {
	targetIDs, err := s.resolveTargets(ctx, actorID, userIDs)
	if err != nil {
		return nil, err
	}

	if _, err = s.channels.FindByID(ctx, channelID, channel.TypeGroup); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrChatGroupNotFound
		}
		return nil, err
	}

	actor, err := s.members.Find(ctx, channelID, actorID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrNotGroupMember
		}
		return nil, err
	}
	if !actor.CanInvite() {
		return nil, ErrCannotInvite
	}

	existing, err := s.members.FindByUserIDs(ctx, channelID, targetIDs)
	if err != nil {
		return nil, err
	}
	alreadyIn := make(map[uuid.UUID]struct{}, len(existing))
	for _, m := range existing {
		alreadyIn[m.UserID()] = struct{}{}
	}

	invitations := make([]*invitation.Invitation, 0, len(targetIDs))
	for _, targetID := range targetIDs {
		if _, ok := alreadyIn[targetID]; ok {
			continue
		}
		inv, invErr := invitation.NewInvitation(targetID, actorID, channel.TypeGroup, channelID, msg)
		if invErr != nil {
			return nil, invErr
		}
		invitations = append(invitations, inv)
	}
	if len(invitations) == 0 {
		return &InvitationSendResult{Info: MsgAllAlreadyMembers}, nil
	}

	if err = s.replacePending(ctx, actorID, invitations); err != nil {
		return nil, err
	}
	return &InvitationSendResult{Created: invitations}, nil
}

// SendDirect отправляет приглашения к прямому диалогу. Id целевого канала
// выводится из пары пользователей; пользователи, с которыми диалог уже
// существует, отфильтровываются.
func (s *InvitationService) SendDirect(
	ctx context.Context,
	actorID uuid.UUID,
	userIDs []uuid.UUID,
	msg string,
) (*InvitationSendResult, error) {
	targetIDs, err := s.resolveTargets(ctx, actorID, userIDs)
	if err != nil {
		return nil, err
	}

	channelIDs := make([]uuid.UUID, 0, len(targetIDs))
	for _, targetID := range targetIDs {
		channelIDs = append(channelIDs, channel.DirectChannelID(actorID, targetID))
	}
	existing, err := s.channels.FindByIDs(ctx, channelIDs, channel.TypeDirect)
	if err != nil {
		return nil, err
	}
	haveChat := make(map[uuid.UUID]struct{}, len(existing))
	for _, ch := range existing {
		haveChat[ch.ID()] = struct{}{}
	}

	invitations := make([]*invitation.Invitation, 0, len(targetIDs))
	for _, targetID := range targetIDs {
		directID := channel.DirectChannelID(actorID, targetID)
		if _, ok := haveChat[directID]; ok {
			continue
		}
		inv, invErr := invitation.NewInvitation(targetID, actorID, channel.TypeDirect, directID, msg)
		if invErr != nil {
			return nil, invErr
		}
		invitations = append(invitations, inv)
	}
	if len(invitations) == 0 {
		return &InvitationSendResult{Info: MsgAllHaveDirectChat}, nil
	}

	if err = s.replacePending(ctx, actorID, invitations); err != nil {
		return nil, err
	}
	return &InvitationSendResult{Created: invitations}, nil
}

// Respond терминально отвечает на приглашение. Отвечать может только
// приглашенный; ACCEPTED материализует членство (GROUP) или сам канал
// с обоими участниками (DIRECT).
func (s *InvitationService) Respond(
	ctx context.Context,
	actorID, invitationID uuid.UUID,
	response invitation.Status,
	msg string,
) (*invitation.Invitation, error) {
	inv, err := s.invitations.FindByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	if inv.UserID() != actorID {
		return nil, ErrNotInvitationRecipient
	}
	if !inv.IsPending() {
		return nil, ErrAlreadyResponded
	}

	// Сначала эффект, затем статус: если членство или канал не записались,
	// приглашение остаётся PENDING и ответ можно повторить.
	if response == invitation.StatusAccepted {
		if err = s.materialize(ctx, inv); err != nil {
			return nil, err
		}
	}

	if err = inv.Respond(response, msg); err != nil {
		if errors.Is(err, errs.ErrInvalidState) {
			return nil, ErrAlreadyResponded
		}
		return nil, err
	}
	if err = s.invitations.UpdateResponse(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("invitation responded",
		slog.String("invitation_id", inv.ID().String()),
		slog.String("user_id", actorID.String()),
		slog.String("status", string(inv.Status())),
	)
	return inv, nil
}

// List возвращает страницу приглашений по фильтру, обогащенную данными
// сторон и групповых каналов.
func (s *InvitationService) List(ctx context.Context, filter invitation.Filter) (*InvitationPage, error) {
	invitations, total, err := s.invitations.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	userIDs := make([]uuid.UUID, 0, len(invitations)*2)
	channelIDs := make([]uuid.UUID, 0, len(invitations))
	for _, inv := range invitations {
		userIDs = append(userIDs, inv.UserID(), inv.CreatedByID())
		if inv.ChannelType() == channel.TypeGroup {
			channelIDs = append(channelIDs, inv.ChannelID())
		}
	}

	usersByID := make(map[uuid.UUID]*user.User)
	if len(userIDs) > 0 {
		users, usersErr := s.users.FindByIDs(ctx, userIDs)
		if usersErr != nil {
			return nil, usersErr
		}
		for _, u := range users {
			usersByID[u.ID()] = u
		}
	}

	channelsByID := make(map[uuid.UUID]*channel.Channel)
	if len(channelIDs) > 0 {
		channels, channelsErr := s.channels.FindByIDs(ctx, channelIDs, channel.TypeGroup)
		if channelsErr != nil {
			return nil, channelsErr
		}
		for _, ch := range channels {
			channelsByID[ch.ID()] = ch
		}
	}

	items := make([]InvitationView, 0, len(invitations))
	for _, inv := range invitations {
		items = append(items, InvitationView{
			Invitation: inv,
			FromUser:   usersByID[inv.CreatedByID()],
			ToUser:     usersByID[inv.UserID()],
			Channel:    channelsByID[inv.ChannelID()],
		})
	}
	return &InvitationPage{Items: items, Total: total}, nil
}

// RecipientCandidate — результат поиска пользователя для приглашения.
type RecipientCandidate struct {
	User     *user.User // nil, если пользователь не найден
	IsMember bool
}

// FindRecipientCandidate ищет пользователя по имени или почте и сообщает,
// состоит ли он уже в целевом канале. Для DIRECT id канала выводится из
// пары (кандидат, приглашающий).
func (s *InvitationService) FindRecipientCandidate(
	ctx context.Context,
	actorID uuid.UUID,
	loginID string,
	channelType channel.Type,
	channelID uuid.UUID,
) (*RecipientCandidate, error) {
	u, err := s.users.FindByLogin(ctx, strings.ToLower(strings.TrimSpace(loginID)))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return &RecipientCandidate{}, nil
		}
		return nil, err
	}

	candidate := &RecipientCandidate{User: u}

	switch channelType {
	case channel.TypeGroup:
		if _, memberErr := s.members.Find(ctx, channelID, u.ID()); memberErr != nil {
			if errors.Is(memberErr, errs.ErrNotFound) {
				return candidate, nil
			}
			return nil, memberErr
		}
		candidate.IsMember = true

	case channel.TypeDirect:
		directID := channel.DirectChannelID(actorID, u.ID())
		if _, chanErr := s.channels.FindByID(ctx, directID, channel.TypeDirect); chanErr != nil {
			if errors.Is(chanErr, errs.ErrNotFound) {
				return candidate, nil
			}
			return nil, chanErr
		}
		candidate.IsMember = true

	default:
		return nil, errs.ErrInvalidInput
	}

	return candidate, nil
}

// resolveTargets проверяет существование всех приглашаемых и исключает
// самого приглашающего из списка.
func (s *InvitationService) resolveTargets(
	ctx context.Context,
	actorID uuid.UUID,
	userIDs []uuid.UUID,
) ([]uuid.UUID, error) {
	targetIDs := make([]uuid.UUID, 0, len(userIDs))
	seen := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		if id == actorID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		targetIDs = append(targetIDs, id)
	}
	if len(targetIDs) == 0 {
		return nil, ErrUsersNotFound
	}

	users, err := s.users.FindByIDs(ctx, targetIDs)
	if err != nil {
		return nil, err
	}
	if len(users) != len(targetIDs) {
		return nil, ErrUsersNotFound
	}
	return targetIDs, nil
}

// replacePending заменяет прежние PENDING-приглашения тех же пар
// (приглашаемый, канал) новыми. Окно между delete и insert допускает
// гонку конкурентных отправок; дубликат разрешается на стороне ответа.
func (s *InvitationService) replacePending(
	ctx context.Context,
	actorID uuid.UUID,
	invitations []*invitation.Invitation,
) error {
	keys := make([]invitation.PendingKey, 0, len(invitations))
	for _, inv := range invitations {
		keys = append(keys, invitation.PendingKey{UserID: inv.UserID(), ChannelID: inv.ChannelID()})
	}
	if err := s.invitations.DeletePending(ctx, actorID, keys); err != nil {
		return err
	}
	return s.invitations.InsertMany(ctx, invitations)
}

// materialize применяет эффект принятого приглашения.
func (s *InvitationService) materialize(ctx context.Context, inv *invitation.Invitation) error {
	switch inv.ChannelType() {
	case channel.TypeGroup:
		m, err := channel.NewMember(inv.ChannelID(), inv.UserID(), channel.RoleViewer)
		if err != nil {
			return err
		}
		if err = s.members.InsertMany(ctx, []*channel.Member{m}); err != nil &&
			!errors.Is(err, errs.ErrAlreadyExists) {
			return err
		}
		return nil

	case channel.TypeDirect:
		ch, err := channel.NewDirectChannel(inv.CreatedByID(), inv.UserID(), inv.CreatedByID())
		if err != nil {
			return err
		}
		if err = s.channels.Insert(ctx, ch); err != nil && !errors.Is(err, errs.ErrAlreadyExists) {
			return err
		}

		members := make([]*channel.Member, 0, 2)
		for _, userID := range []uuid.UUID{inv.CreatedByID(), inv.UserID()} {
			m, memberErr := channel.NewMember(ch.ID(), userID, channel.RoleModerator)
			if memberErr != nil {
				return memberErr
			}
			members = append(members, m)
		}
		if err = s.members.InsertMany(ctx, members); err != nil && !errors.Is(err, errs.ErrAlreadyExists) {
			return err
		}
		return nil

	default:
		return errs.ErrInvalidState
	}
}
