package websocket_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley/parley/internal/domain/uuid"
	ws "github.com/parley/parley/internal/infrastructure/websocket"
)

func TestEvents_MessageSent(t *testing.T) {
	hub := ws.NewHub()
	go hub.Run(t.Context())
	time.Sleep(10 * time.Millisecond)

	events := ws.NewEvents(hub)

	channelID := uuid.NewUUID()
	member, memberMsgs := newPumpedClient(t, hub, uuid.NewUUID())
	outsider, outsiderMsgs := newPumpedClient(t, hub, uuid.NewUUID())

	hub.Register(member)
	hub.Register(outsider)
	hub.JoinChannel(member, channelID)
	time.Sleep(10 * time.Millisecond)

	events.MessageSent(channelID, map[string]any{"text": "hello"})
	time.Sleep(10 * time.Millisecond)

	select {
	case raw := <-memberMsgs:
		var msg ws.OutboundMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "message.new", msg.Type)
		require.NotNil(t, msg.ChannelID)
		assert.Equal(t, channelID.String(), *msg.ChannelID)
		data, ok := msg.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "hello", data["text"])
	case <-time.After(100 * time.Millisecond):
		t.Fatal("channel member did not receive the broadcast")
	}

	assertNotReceived(t, outsiderMsgs)
}

func TestEvents_MessageDeleted(t *testing.T) {
	hub := ws.NewHub()
	go hub.Run(t.Context())
	time.Sleep(10 * time.Millisecond)

	events := ws.NewEvents(hub)

	channelID := uuid.NewUUID()
	messageID := uuid.NewTimestampID()
	member, memberMsgs := newPumpedClient(t, hub, uuid.NewUUID())

	hub.Register(member)
	hub.JoinChannel(member, channelID)
	time.Sleep(10 * time.Millisecond)

	events.MessageDeleted(channelID, messageID)
	time.Sleep(10 * time.Millisecond)

	select {
	case raw := <-memberMsgs:
		var msg ws.OutboundMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "message.deleted", msg.Type)
		data, ok := msg.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, messageID.String(), data["id"])
	case <-time.After(100 * time.Millisecond):
		t.Fatal("channel member did not receive the deletion")
	}
}

func TestEvents_InvitationReceived(t *testing.T) {
	hub := ws.NewHub()
	go hub.Run(t.Context())
	time.Sleep(10 * time.Millisecond)

	events := ws.NewEvents(hub)

	invitedID := uuid.NewUUID()
	invited, invitedMsgs := newPumpedClient(t, hub, invitedID)
	bystander, bystanderMsgs := newPumpedClient(t, hub, uuid.NewUUID())

	hub.Register(invited)
	hub.Register(bystander)
	time.Sleep(10 * time.Millisecond)

	events.InvitationReceived(invitedID, map[string]any{"status": "PENDING"})
	time.Sleep(10 * time.Millisecond)

	select {
	case raw := <-invitedMsgs:
		var msg ws.OutboundMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "invitation.new", msg.Type)
		assert.Nil(t, msg.ChannelID)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("invited user did not receive the notification")
	}

	assertNotReceived(t, bystanderMsgs)
}
