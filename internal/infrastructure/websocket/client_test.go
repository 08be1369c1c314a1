package websocket_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley/parley/internal/domain/uuid"
	ws "github.com/parley/parley/internal/infrastructure/websocket"
)

func TestNewClient(t *testing.T) {
	t.Run("creates client with defaults", func(t *testing.T) {
		hub := ws.NewHub()
		serverConn, _, cleanup := newWSConnPair(t)
		defer cleanup()

		userID := uuid.NewUUID()
		client := ws.NewClient(hub, serverConn, userID)

		assert.NotNil(t, client)
		assert.Equal(t, userID, client.UserID())
		assert.Empty(t, client.ChannelIDs())
		assert.False(t, client.IsClosed())
	})

	t.Run("creates client with custom config", func(t *testing.T) {
		hub := ws.NewHub()
		serverConn, _, cleanup := newWSConnPair(t)
		defer cleanup()

		config := ws.ClientConfig{
			ReadBufferSize:  2048,
			WriteBufferSize: 2048,
			PingInterval:    15 * time.Second,
			PongWait:        30 * time.Second,
			WriteWait:       5 * time.Second,
			MaxMessageSize:  32768,
		}

		client := ws.NewClient(hub, serverConn, uuid.NewUUID(),
			ws.WithClientConfig(config),
		)

		assert.NotNil(t, client)
	})
}

func TestClient_ChannelIDs(t *testing.T) {
	t.Run("adds and removes channel", func(t *testing.T) {
		hub := ws.NewHub()
		serverConn, _, cleanup := newWSConnPair(t)
		defer cleanup()

		client := ws.NewClient(hub, serverConn, uuid.NewUUID())
		channelID := uuid.NewUUID()

		client.AddChannel(channelID)
		assert.True(t, client.HasChannel(channelID))
		assert.Contains(t, client.ChannelIDs(), channelID)

		client.RemoveChannel(channelID)
		assert.False(t, client.HasChannel(channelID))
	})

	t.Run("tracks multiple channels", func(t *testing.T) {
		hub := ws.NewHub()
		serverConn, _, cleanup := newWSConnPair(t)
		defer cleanup()

		client := ws.NewClient(hub, serverConn, uuid.NewUUID())
		channelID1 := uuid.NewUUID()
		channelID2 := uuid.NewUUID()
		channelID3 := uuid.NewUUID()

		client.AddChannel(channelID1)
		client.AddChannel(channelID2)
		client.AddChannel(channelID3)

		assert.Len(t, client.ChannelIDs(), 3)
		assert.True(t, client.HasChannel(channelID1))
		assert.True(t, client.HasChannel(channelID2))
		assert.True(t, client.HasChannel(channelID3))
	})
}

func TestClient_Close(t *testing.T) {
	t.Run("closes connection", func(t *testing.T) {
		hub := ws.NewHub()
		serverConn, _, cleanup := newWSConnPair(t)
		defer cleanup()

		client := ws.NewClient(hub, serverConn, uuid.NewUUID())

		assert.False(t, client.IsClosed())
		client.Close()
		assert.True(t, client.IsClosed())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		hub := ws.NewHub()
		serverConn, _, cleanup := newWSConnPair(t)
		defer cleanup()

		client := ws.NewClient(hub, serverConn, uuid.NewUUID())

		client.Close()
		client.Close()
		assert.True(t, client.IsClosed())
	})
}

func TestClient_Send(t *testing.T) {
	t.Run("sends message to peer", func(t *testing.T) {
		hub := ws.NewHub()
		go hub.Run(t.Context())
		time.Sleep(10 * time.Millisecond)

		serverConn, peer, cleanup := newWSConnPair(t)
		defer cleanup()

		client := ws.NewClient(hub, serverConn, uuid.NewUUID())

		go client.WritePump()

		message := []byte(`{"type":"test"}`)
		client.Send(message)

		peer.SetReadDeadline(time.Now().Add(time.Second))
		_, received, err := peer.ReadMessage()
		require.NoError(t, err)

		var expectedJSON, receivedJSON any
		require.NoError(t, json.Unmarshal(message, &expectedJSON))
		require.NoError(t, json.Unmarshal(received, &receivedJSON))
		assert.Equal(t, expectedJSON, receivedJSON)
	})

	t.Run("does not send to closed client", func(t *testing.T) {
		hub := ws.NewHub()
		serverConn, _, cleanup := newWSConnPair(t)
		defer cleanup()

		client := ws.NewClient(hub, serverConn, uuid.NewUUID())
		client.Close()

		// Must not panic.
		client.Send([]byte(`{"type":"test"}`))
	})
}

func TestClient_HandleClientMessage(t *testing.T) {
	newRunningClient := func(t *testing.T) (*ws.Hub, *ws.Client, *websocket.Conn) {
		t.Helper()
		hub := ws.NewHub()
		go hub.Run(t.Context())
		time.Sleep(10 * time.Millisecond)

		serverConn, peer, cleanup := newWSConnPair(t)
		t.Cleanup(cleanup)

		client := ws.NewClient(hub, serverConn, uuid.NewUUID())
		hub.Register(client)
		time.Sleep(10 * time.Millisecond)

		go client.WritePump()
		go client.ReadPump()

		return hub, client, peer
	}

	readJSON := func(t *testing.T, peer *websocket.Conn) map[string]any {
		t.Helper()
		peer.SetReadDeadline(time.Now().Add(time.Second))
		_, response, err := peer.ReadMessage()
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(response, &decoded))
		return decoded
	}

	t.Run("subscribe joins channel room and acks", func(t *testing.T) {
		hub, client, peer := newRunningClient(t)
		channelID := uuid.NewUUID()

		msgBytes, _ := json.Marshal(map[string]any{
			"type":       "subscribe",
			"channel_id": channelID.String(),
		})
		require.NoError(t, peer.WriteMessage(websocket.TextMessage, msgBytes))

		time.Sleep(50 * time.Millisecond)

		assert.True(t, client.HasChannel(channelID))
		assert.Equal(t, 1, hub.ClientsInChannel(channelID))

		ack := readJSON(t, peer)
		assert.Equal(t, "ack", ack["type"])
		assert.Equal(t, "subscribed", ack["action"])
		assert.Equal(t, channelID.String(), ack["channel_id"])
	})

	t.Run("unsubscribe leaves channel room", func(t *testing.T) {
		hub, client, peer := newRunningClient(t)
		channelID := uuid.NewUUID()
		hub.JoinChannel(client, channelID)
		time.Sleep(10 * time.Millisecond)

		msgBytes, _ := json.Marshal(map[string]any{
			"type":       "unsubscribe",
			"channel_id": channelID.String(),
		})
		require.NoError(t, peer.WriteMessage(websocket.TextMessage, msgBytes))

		time.Sleep(50 * time.Millisecond)

		assert.False(t, client.HasChannel(channelID))
		assert.Equal(t, 0, hub.ClientsInChannel(channelID))
	})

	t.Run("typing is fanned out to channel members", func(t *testing.T) {
		hub, client, peer := newRunningClient(t)
		channelID := uuid.NewUUID()
		hub.JoinChannel(client, channelID)
		time.Sleep(10 * time.Millisecond)

		msgBytes, _ := json.Marshal(map[string]any{
			"type":       "channel.typing",
			"channel_id": channelID.String(),
		})
		require.NoError(t, peer.WriteMessage(websocket.TextMessage, msgBytes))

		typing := readJSON(t, peer)
		assert.Equal(t, "channel.typing", typing["type"])
		assert.Equal(t, channelID.String(), typing["channel_id"])
		data, ok := typing["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, client.UserID().String(), data["user_id"])
	})

	t.Run("ping gets a pong", func(t *testing.T) {
		_, _, peer := newRunningClient(t)

		msgBytes, _ := json.Marshal(map[string]string{"type": "ping"})
		require.NoError(t, peer.WriteMessage(websocket.TextMessage, msgBytes))

		pong := readJSON(t, peer)
		assert.Equal(t, "pong", pong["type"])
	})

	t.Run("unknown message type returns error", func(t *testing.T) {
		_, _, peer := newRunningClient(t)

		msgBytes, _ := json.Marshal(map[string]string{"type": "unknown_type"})
		require.NoError(t, peer.WriteMessage(websocket.TextMessage, msgBytes))

		errorResp := readJSON(t, peer)
		assert.Equal(t, "error", errorResp["type"])
		assert.Contains(t, errorResp["message"], "unknown message type")
	})

	t.Run("invalid JSON returns error", func(t *testing.T) {
		_, _, peer := newRunningClient(t)

		require.NoError(t, peer.WriteMessage(websocket.TextMessage, []byte(`{invalid json`)))

		errorResp := readJSON(t, peer)
		assert.Equal(t, "error", errorResp["type"])
	})

	t.Run("subscribe without channel_id returns error", func(t *testing.T) {
		_, _, peer := newRunningClient(t)

		msgBytes, _ := json.Marshal(map[string]string{"type": "subscribe"})
		require.NoError(t, peer.WriteMessage(websocket.TextMessage, msgBytes))

		errorResp := readJSON(t, peer)
		assert.Equal(t, "error", errorResp["type"])
		assert.Contains(t, errorResp["message"], "channel_id")
	})
}

func TestDefaultClientConfig(t *testing.T) {
	config := ws.DefaultClientConfig()

	assert.Equal(t, 1024, config.ReadBufferSize)
	assert.Equal(t, 1024, config.WriteBufferSize)
	assert.Equal(t, 30*time.Second, config.PingInterval)
	assert.Equal(t, 60*time.Second, config.PongWait)
	assert.Equal(t, 10*time.Second, config.WriteWait)
	assert.Equal(t, int64(65536), config.MaxMessageSize)
}

// Helper functions

func newWSConnPair(t *testing.T) (*websocket.Conn, *websocket.Conn, func()) {
	t.Helper()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(_ *http.Request) bool { return true },
	}

	serverChan := make(chan *websocket.Conn, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverChan <- conn
	}))

	wsURL := "ws" + server.URL[4:]
	peer, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	select {
	case serverConn := <-serverChan:
		cleanup := func() {
			serverConn.Close()
			peer.Close()
			server.Close()
		}
		return serverConn, peer, cleanup
	case <-time.After(time.Second):
		peer.Close()
		server.Close()
		t.Fatal("timeout waiting for server connection")
		return nil, nil, nil
	}
}
