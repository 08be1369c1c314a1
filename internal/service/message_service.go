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

// MessageView объединяет сообщение с данными автора.
type MessageView struct {
	Message *message.Message
	Author  *user.User
}

// MessageService — шлюз доступа к сообщениям: каждая операция сначала
// проверяет членство и роль в канале, затем выполняет CRUD.
type MessageService struct {
	messages message.Repository
	members  channel.MemberRepository
	channels channel.Repository
	users    user.Repository
	media    media.Repository
	logger   *slog.Logger
}

// NewMessageService создаёт новый MessageService.
func NewMessageService(
	messages message.Repository,
	members channel.MemberRepository,
	channels channel.Repository,
	users user.Repository,
	mediaRepo media.Repository,
	logger *slog.Logger,
) *MessageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageService{
		messages: messages,
		members:  members,
		channels: channels,
		users:    users,
		media:    mediaRepo,
		logger:   logger,
	}
}

// Send отправляет сообщение в канал. VIEWER отправлять не может.
// Переданные ключи вложений привязываются к сообщению.
func (s *MessageService) Send(
	ctx context.Context,
	actorID, channelID uuid.UUID,
	text string,
	resourceKeys []string,
) (*message.Message, error) {
	m, err := s.requireMember(ctx, actorID, channelID)
	if err != nil {
		return nil, err
	}
	if !m.CanPost() {
		return nil, ErrCannotPostMessage
	}

	resources, err := s.resolveResources(ctx, resourceKeys)
	if err != nil {
		return nil, err
	}

	msg, err := message.NewMessage(channelID, actorID, text, resources)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidInput) {
			return nil, ErrMessageBodyRequired
		}
		return nil, err
	}
	if err = s.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}

	if len(resourceKeys) > 0 {
		if err = s.media.ReassignTypeID(ctx, resourceKeys, msg.ID().String()); err != nil {
			s.logger.Warn("failed to reassign message attachments",
				slog.String("message_id", msg.ID().String()),
				slog.String("error", err.Error()),
			)
		}
	}
	return msg, nil
}

// Update изменяет сообщение. Изменять может только автор, независимо
// от роли; ранжированные роли этого права не получают.
func (s *MessageService) Update(
	ctx context.Context,
	actorID, messageID uuid.UUID,
	text string,
	resourceKeys []string,
) (*message.Message, error) {
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}

	if _, err = s.requireMember(ctx, actorID, msg.ChannelID()); err != nil {
		return nil, err
	}
	if !msg.IsAuthor(actorID) {
		return nil, ErrCannotUpdateMessage
	}

	resources, err := s.resolveResources(ctx, resourceKeys)
	if err != nil {
		return nil, err
	}
	if err = msg.Edit(text, resources); err != nil {
		if errors.Is(err, errs.ErrInvalidInput) {
			return nil, ErrMessageBodyRequired
		}
		return nil, err
	}
	if err = s.messages.Save(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Delete удаляет сообщение: свое — любой пишущий участник, чужое —
// только ранжированные роли. Вложения удаляются вместе с сообщением.
func (s *MessageService) Delete(ctx context.Context, actorID, messageID uuid.UUID) (*message.Message, error) {
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}

	m, err := s.requireMember(ctx, actorID, msg.ChannelID())
	if err != nil {
		return nil, err
	}
	if !m.CanDeleteMessageOf(msg.CreatedByID()) {
		return nil, ErrCannotDeleteMessage
	}

	if err = s.messages.DeleteByID(ctx, messageID); err != nil {
		return nil, err
	}

	if _, err = s.media.DeleteByTypeID(ctx, media.TypeChatChannelMessage, messageID.String()); err != nil {
		s.logger.Warn("failed to delete message attachments",
			slog.String("message_id", messageID.String()),
			slog.String("error", err.Error()),
		)
	}
	return msg, nil
}

// List возвращает страницу сообщений канала (новые первыми) с данными
// авторов. Читать может любой участник, включая VIEWER.
func (s *MessageService) List(
	ctx context.Context,
	actorID, channelID uuid.UUID,
	skip, limit int,
) ([]MessageView, error) {
	if _, err := s.requireMember(ctx, actorID, channelID); err != nil {
		return nil, err
	}

	messages, err := s.messages.ListByChannel(ctx, channelID, skip, limit)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]uuid.UUID, 0, len(messages))
	seen := make(map[uuid.UUID]struct{}, len(messages))
	for _, msg := range messages {
		if _, ok := seen[msg.CreatedByID()]; ok {
			continue
		}
		seen[msg.CreatedByID()] = struct{}{}
		authorIDs = append(authorIDs, msg.CreatedByID())
	}

	usersByID := make(map[uuid.UUID]*user.User, len(authorIDs))
	if len(authorIDs) > 0 {
		users, usersErr := s.users.FindByIDs(ctx, authorIDs)
		if usersErr != nil {
			return nil, usersErr
		}
		for _, u := range users {
			usersByID[u.ID()] = u
		}
	}

	views := make([]MessageView, 0, len(messages))
	for _, msg := range messages {
		views = append(views, MessageView{Message: msg, Author: usersByID[msg.CreatedByID()]})
	}
	return views, nil
}

func (s *MessageService) requireMember(
	ctx context.Context,
	actorID, channelID uuid.UUID,
) (*channel.Member, error) {
	if _, err := s.channels.FindByID(ctx, channelID, ""); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrChatChannelNotFound
		}
		return nil, err
	}

	m, err := s.members.Find(ctx, channelID, actorID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrNotChannelMember
		}
		return nil, err
	}
	return m, nil
}

func (s *MessageService) resolveResources(ctx context.Context, keys []string) ([]media.Resource, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	resources, err := s.media.FindByKeys(ctx, keys)
	if err != nil {
		return nil, err
	}
	if len(resources) != len(keys) {
		return nil, ErrFileNotFound
	}

	out := make([]media.Resource, 0, len(resources))
	for _, r := range resources {
		out = append(out, *r)
	}
	return out, nil
}
