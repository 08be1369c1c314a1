package httphandler_test

import (
	"context"
	stdhttp "net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley/parley/internal/domain/message"
	"github.com/parley/parley/internal/domain/uuid"
	httphandler "github.com/parley/parley/internal/handler/http"
	"github.com/parley/parley/internal/service"
)

type mockMessageService struct {
	sendFunc   func(ctx context.Context, actorID, channelID uuid.UUID, text string, resourceKeys []string) (*message.Message, error)
	updateFunc func(ctx context.Context, actorID, messageID uuid.UUID, text string, resourceKeys []string) (*message.Message, error)
	deleteFunc func(ctx context.Context, actorID, messageID uuid.UUID) (*message.Message, error)
	listFunc   func(ctx context.Context, actorID, channelID uuid.UUID, skip, limit int) ([]service.MessageView, error)
}

func (m *mockMessageService) Send(
	ctx context.Context,
	actorID, channelID uuid.UUID,
	text string,
	resourceKeys []string,
) (*message.Message, error) {
	return m.sendFunc(ctx, actorID, channelID, text, resourceKeys)
}

func (m *mockMessageService) Update(
	ctx context.Context,
	actorID, messageID uuid.UUID,
	text string,
	resourceKeys []string,
) (*message.Message, error) {
	return m.updateFunc(ctx, actorID, messageID, text, resourceKeys)
}

func (m *mockMessageService) Delete(ctx context.Context, actorID, messageID uuid.UUID) (*message.Message, error) {
	return m.deleteFunc(ctx, actorID, messageID)
}

func (m *mockMessageService) List(
	ctx context.Context,
	actorID, channelID uuid.UUID,
	skip, limit int,
) ([]service.MessageView, error) {
	return m.listFunc(ctx, actorID, channelID, skip, limit)
}

func newTestMessage(t *testing.T, channelID, authorID uuid.UUID, text string) *message.Message {
	t.Helper()
	msg, err := message.NewMessage(channelID, authorID, text, nil)
	require.NoError(t, err)
	return msg
}

func TestMessageHandler_Send(t *testing.T) {
	t.Run("sends message", func(t *testing.T) {
		actorID := uuid.NewUUID()
		channelID := uuid.NewUUID()
		mock := &mockMessageService{
			sendFunc: func(
				_ context.Context,
				actor, ch uuid.UUID,
				text string,
				resourceKeys []string,
			) (*message.Message, error) {
				assert.Equal(t, actorID, actor)
				assert.Equal(t, channelID, ch)
				assert.Equal(t, []string{"file-key"}, resourceKeys)
				return newTestMessage(t, ch, actor, text), nil
			},
		}
		handler := httphandler.NewMessageHandler(mock)

		body := `{"text":"hello there","resourceKeys":["file-key"]}`
		c, rec := newJSONContext(stdhttp.MethodPost, "/api/v1/channels/x/messages", body)
		c.SetParamNames("id")
		c.SetParamValues(channelID.String())
		setupAuthContext(c, actorID)

		require.NoError(t, handler.Send(c))
		assert.Equal(t, stdhttp.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "hello there")
	})

	t.Run("empty text", func(t *testing.T) {
		handler := httphandler.NewMessageHandler(&mockMessageService{})

		c, rec := newJSONContext(stdhttp.MethodPost, "/api/v1/channels/x/messages", `{"text":""}`)
		c.SetParamNames("id")
		c.SetParamValues(uuid.NewUUID().String())
		setupAuthContext(c, uuid.NewUUID())

		require.NoError(t, handler.Send(c))
		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
	})

	t.Run("viewer cannot post", func(t *testing.T) {
		mock := &mockMessageService{
			sendFunc: func(
				_ context.Context,
				_, _ uuid.UUID,
				_ string,
				_ []string,
			) (*message.Message, error) {
				return nil, service.ErrCannotPostMessage
			},
		}
		handler := httphandler.NewMessageHandler(mock)

		c, rec := newJSONContext(stdhttp.MethodPost, "/api/v1/channels/x/messages", `{"text":"hi"}`)
		c.SetParamNames("id")
		c.SetParamValues(uuid.NewUUID().String())
		setupAuthContext(c, uuid.NewUUID())

		require.NoError(t, handler.Send(c))
		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		requireErrorCode(t, rec, "NO_POST_PERMISSION")
	})
}

func TestMessageHandler_List(t *testing.T) {
	actorID := uuid.NewUUID()
	channelID := uuid.NewUUID()
	var gotSkip, gotLimit int
	mock := &mockMessageService{
		listFunc: func(_ context.Context, _, _ uuid.UUID, skip, limit int) ([]service.MessageView, error) {
			gotSkip, gotLimit = skip, limit
			return []service.MessageView{
				{Message: newTestMessage(t, channelID, actorID, "newest")},
				{Message: newTestMessage(t, channelID, actorID, "older")},
			}, nil
		},
	}
	handler := httphandler.NewMessageHandler(mock)

	c, rec := newJSONContext(stdhttp.MethodGet, "/api/v1/channels/x/messages?skip=20&limit=10", "")
	c.SetParamNames("id")
	c.SetParamValues(channelID.String())
	setupAuthContext(c, actorID)

	require.NoError(t, handler.List(c))
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Equal(t, 20, gotSkip)
	assert.Equal(t, 10, gotLimit)
	assert.Contains(t, rec.Body.String(), "newest")
	assert.Contains(t, rec.Body.String(), "older")
}

func TestMessageHandler_Update(t *testing.T) {
	t.Run("author edits message", func(t *testing.T) {
		actorID := uuid.NewUUID()
		msg := newTestMessage(t, uuid.NewUUID(), actorID, "original")
		mock := &mockMessageService{
			updateFunc: func(
				_ context.Context,
				_, messageID uuid.UUID,
				text string,
				_ []string,
			) (*message.Message, error) {
				assert.Equal(t, msg.ID(), messageID)
				require.NoError(t, msg.Edit(text, nil))
				return msg, nil
			},
		}
		handler := httphandler.NewMessageHandler(mock)

		c, rec := newJSONContext(stdhttp.MethodPut, "/api/v1/messages/x", `{"text":"edited"}`)
		c.SetParamNames("id")
		c.SetParamValues(msg.ID().String())
		setupAuthContext(c, actorID)

		require.NoError(t, handler.Update(c))
		assert.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "edited")
	})

	t.Run("non-author cannot edit", func(t *testing.T) {
		mock := &mockMessageService{
			updateFunc: func(
				_ context.Context,
				_, _ uuid.UUID,
				_ string,
				_ []string,
			) (*message.Message, error) {
				return nil, service.ErrCannotUpdateMessage
			},
		}
		handler := httphandler.NewMessageHandler(mock)

		c, rec := newJSONContext(stdhttp.MethodPut, "/api/v1/messages/x", `{"text":"edited"}`)
		c.SetParamNames("id")
		c.SetParamValues(uuid.NewTimestampID().String())
		setupAuthContext(c, uuid.NewUUID())

		require.NoError(t, handler.Update(c))
		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		requireErrorCode(t, rec, "NO_MESSAGE_UPDATE_PERMISSION")
	})
}

func TestMessageHandler_Delete(t *testing.T) {
	t.Run("deletes message", func(t *testing.T) {
		actorID := uuid.NewUUID()
		messageID := uuid.NewTimestampID()
		var deleted bool
		mock := &mockMessageService{
			deleteFunc: func(_ context.Context, actor, id uuid.UUID) (*message.Message, error) {
				assert.Equal(t, actorID, actor)
				assert.Equal(t, messageID, id)
				deleted = true
				return newTestMessage(t, uuid.NewUUID(), actorID, "gone"), nil
			},
		}
		handler := httphandler.NewMessageHandler(mock)

		c, rec := newJSONContext(stdhttp.MethodDelete, "/api/v1/messages/x", "")
		c.SetParamNames("id")
		c.SetParamValues(messageID.String())
		setupAuthContext(c, actorID)

		require.NoError(t, handler.Delete(c))
		assert.Equal(t, stdhttp.StatusNoContent, rec.Code)
		assert.True(t, deleted)
	})

	t.Run("no delete permission", func(t *testing.T) {
		mock := &mockMessageService{
			deleteFunc: func(_ context.Context, _, _ uuid.UUID) (*message.Message, error) {
				return nil, service.ErrCannotDeleteMessage
			},
		}
		handler := httphandler.NewMessageHandler(mock)

		c, rec := newJSONContext(stdhttp.MethodDelete, "/api/v1/messages/x", "")
		c.SetParamNames("id")
		c.SetParamValues(uuid.NewTimestampID().String())
		setupAuthContext(c, uuid.NewUUID())

		require.NoError(t, handler.Delete(c))
		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
	})
}
