package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/parley/parley/internal/domain/channel"
	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/domain/media"
	"github.com/parley/parley/internal/domain/message"
	"github.com/parley/parley/internal/domain/user"
	"github.com/parley/parley/internal/domain/uuid"
)

// ChannelView — канал глазами конкретного пользователя: для DIRECT имя и
// аватар берутся у собеседника, unread считается от lastSeenAt участника.
type ChannelView struct {
	Channel     *channel.Channel
	Role        channel.Role
	Name        string
	Avatar      media.Resource
	OtherUser   *user.User // только для DIRECT
	LastMessage *message.Message
	UnreadCount int
}

// ChannelService управляет жизненным циклом чат-каналов.
type ChannelService struct {
	channels channel.Repository
	members  channel.MemberRepository
	messages message.Repository
	users    user.Repository
	logger   *slog.Logger
}

// NewChannelService создаёт новый ChannelService.
func NewChannelService(
	channels channel.Repository,
	members channel.MemberRepository,
	messages message.Repository,
	users user.Repository,
	logger *slog.Logger,
) *ChannelService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChannelService{
		channels: channels,
		members:  members,
		messages: messages,
		users:    users,
		logger:   logger,
	}
}

// CreateGroup создает групповой канал; создатель становится OWNER.
// Канал без владельца недопустим: при сбое записи владельца канал
// удаляется компенсирующим действием.
func (s *ChannelService) CreateGroup(
	ctx context.Context,
	actorID uuid.UUID,
	name, description string,
) (*channel.Channel, error) {
	ch, err := channel.NewGroupChannel(name, description, actorID)
	if err != nil {
		return nil, err
	}

	if err = s.channels.Insert(ctx, ch); err != nil {
		return nil, err
	}

	owner, err := channel.NewMember(ch.ID(), actorID, channel.RoleOwner)
	if err != nil {
		return nil, err
	}
	if err = s.members.InsertMany(ctx, []*channel.Member{owner}); err != nil {
		if deleteErr := s.channels.Delete(ctx, ch.ID()); deleteErr != nil {
			s.logger.Error("failed to delete ownerless channel",
				slog.String("channel_id", ch.ID().String()),
				slog.String("error", deleteErr.Error()),
			)
		}
		return nil, err
	}

	s.logger.Info("group channel created",
		slog.String("channel_id", ch.ID().String()),
		slog.String("owner_id", actorID.String()),
	)
	return ch, nil
}

// CreateDirect создает прямой канал между actor и otherUser или возвращает
// существующий. Id канала детерминирован, поэтому операция идемпотентна;
// конкурентное создание разрешается повторным чтением по ErrAlreadyExists.
func (s *ChannelService) CreateDirect(
	ctx context.Context,
	actorID, otherUserID uuid.UUID,
) (*channel.Channel, error) {
	if _, err := s.users.FindByID(ctx, otherUserID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	ch, err := channel.NewDirectChannel(actorID, otherUserID, actorID)
	if err != nil {
		return nil, err
	}

	existing, err := s.channels.FindByID(ctx, ch.ID(), channel.TypeDirect)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	if err = s.channels.Insert(ctx, ch); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return s.channels.FindByID(ctx, ch.ID(), channel.TypeDirect)
		}
		return nil, err
	}

	members := make([]*channel.Member, 0, 2)
	for _, userID := range []uuid.UUID{actorID, otherUserID} {
		m, memberErr := channel.NewMember(ch.ID(), userID, channel.RoleModerator)
		if memberErr != nil {
			return nil, memberErr
		}
		members = append(members, m)
	}
	if err = s.members.InsertMany(ctx, members); err != nil && !errors.Is(err, errs.ErrAlreadyExists) {
		return nil, err
	}

	return ch, nil
}

// UpdateDetails обновляет имя и описание группового канала.
// Разрешено только ранжированным участникам.
func (s *ChannelService) UpdateDetails(
	ctx context.Context,
	actorID, channelID uuid.UUID,
	name, description string,
) (*channel.Channel, error) {
	ch, m, err := s.requireGroupMember(ctx, actorID, channelID)
	if err != nil {
		return nil, err
	}
	if !m.CanManageChannel() {
		return nil, ErrCannotUpdateChannel
	}

	if err = ch.UpdateDetails(name, description); err != nil {
		return nil, err
	}
	if err = s.channels.Save(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// UpdateAvatar заменяет аватар группового канала.
func (s *ChannelService) UpdateAvatar(
	ctx context.Context,
	actorID, channelID uuid.UUID,
	avatar media.Resource,
) (*channel.Channel, error) {
	ch, m, err := s.requireGroupMember(ctx, actorID, channelID)
	if err != nil {
		return nil, err
	}
	if !m.CanManageChannel() {
		return nil, ErrCannotUpdateChannel
	}

	if err = ch.SetAvatar(avatar); err != nil {
		return nil, err
	}
	if err = s.channels.Save(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// Get возвращает канал глазами пользователя.
func (s *ChannelService) Get(ctx context.Context, actorID, channelID uuid.UUID) (*ChannelView, error) {
	m, err := s.members.Find(ctx, channelID, actorID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrNotChannelMember
		}
		return nil, err
	}

	ch, err := s.channels.FindByID(ctx, channelID, "")
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrChatChannelNotFound
		}
		return nil, err
	}

	views, err := s.buildViews(ctx, actorID, []*channel.Member{m}, []*channel.Channel{ch})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// My возвращает все каналы пользователя с последним сообщением,
// счетчиком непрочитанного и, для DIRECT, данными собеседника.
func (s *ChannelService) My(ctx context.Context, actorID uuid.UUID) ([]ChannelView, error) {
	memberships, err := s.members.ListByUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []ChannelView{}, nil
	}

	channelIDs := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		channelIDs = append(channelIDs, m.ChannelID())
	}
	channels, err := s.channels.FindByIDs(ctx, channelIDs, "")
	if err != nil {
		return nil, err
	}

	return s.buildViews(ctx, actorID, memberships, channels)
}

func (s *ChannelService) buildViews(
	ctx context.Context,
	actorID uuid.UUID,
	memberships []*channel.Member,
	channels []*channel.Channel,
) ([]ChannelView, error) {
	channelsByID := make(map[uuid.UUID]*channel.Channel, len(channels))
	otherUserIDs := make([]uuid.UUID, 0)
	for _, ch := range channels {
		channelsByID[ch.ID()] = ch
		if ch.IsDirect() {
			otherID, err := ch.OtherUserID(actorID)
			if err != nil {
				return nil, err
			}
			otherUserIDs = append(otherUserIDs, otherID)
		}
	}

	usersByID := make(map[uuid.UUID]*user.User, len(otherUserIDs))
	if len(otherUserIDs) > 0 {
		users, err := s.users.FindByIDs(ctx, otherUserIDs)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			usersByID[u.ID()] = u
		}
	}

	views := make([]ChannelView, 0, len(memberships))
	for _, m := range memberships {
		ch, ok := channelsByID[m.ChannelID()]
		if !ok {
			continue
		}

		view := ChannelView{
			Channel: ch,
			Role:    m.Role(),
			Name:    ch.Name(),
			Avatar:  ch.Avatar(),
		}
		if ch.IsDirect() {
			otherID, err := ch.OtherUserID(actorID)
			if err != nil {
				return nil, err
			}
			if other, found := usersByID[otherID]; found {
				view.OtherUser = other
				view.Name = other.FullName()
				view.Avatar = other.ProfilePicture()
			}
		}

		last, err := s.messages.FindLastByChannel(ctx, ch.ID())
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
		view.LastMessage = last

		unread, err := s.messages.CountAfter(ctx, ch.ID(), m.LastSeenAt())
		if err != nil {
			return nil, err
		}
		view.UnreadCount = unread

		views = append(views, view)
	}
	return views, nil
}

func (s *ChannelService) requireGroupMember(
	ctx context.Context,
	actorID, channelID uuid.UUID,
) (*channel.Channel, *channel.Member, error) {
	ch, err := s.channels.FindByID(ctx, channelID, channel.TypeGroup)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, nil, ErrChatGroupNotFound
		}
		return nil, nil, err
	}

	m, err := s.members.Find(ctx, channelID, actorID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, nil, ErrNotGroupMember
		}
		return nil, nil, err
	}
	return ch, m, nil
}
