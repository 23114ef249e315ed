package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveHub accepts connections into hub for the given session
func serveHub(t *testing.T, hub *Hub, session Session) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(conn, AllClientsRoom, session, hub)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestClient_SubscribeMovesRoom(t *testing.T) {
	hub := NewHub()
	conn := dial(t, serveHub(t, hub, Session{Subject: "auth0|1"}))
	require.Eventually(t, func() bool { return hub.RoomCount(AllClientsRoom) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.WriteJSON(Command{Action: ActionSubscribe, ClientID: "MRM-2"}))
	require.Eventually(t, func() bool { return hub.RoomCount("MRM-2") == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, hub.RoomCount(AllClientsRoom))

	hub.Broadcast(ClientUpdated(map[string]string{"clientId": "MRM-2"}), "MRM-2")

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, "client.updated", event.Type)
}

func TestClient_IgnoresUnknownCommands(t *testing.T) {
	hub := NewHub()
	conn := dial(t, serveHub(t, hub, Session{Subject: "auth0|1"}))
	require.Eventually(t, func() bool { return hub.RoomCount(AllClientsRoom) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("hello")))
	require.NoError(t, conn.WriteJSON(Command{Action: "unsubscribe", ClientID: "MRM-2"}))
	require.NoError(t, conn.WriteJSON(Command{Action: ActionSubscribe, ClientID: strings.Repeat("x", 51)}))
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 1, hub.RoomCount(AllClientsRoom))
	assert.Equal(t, 1, hub.TotalClientCount())
}

func TestClient_ClosesWhenSessionExpires(t *testing.T) {
	hub := NewHub()
	conn := dial(t, serveHub(t, hub, Session{Subject: "auth0|1", ExpiresAt: time.Now().Add(100 * time.Millisecond)}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()

	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
	assert.Equal(t, "token expired", closeErr.Text)
	require.Eventually(t, func() bool { return hub.TotalClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestClient_SendReportsSlowConsumer(t *testing.T) {
	c := NewClient(nil, "MRM-1", Session{Subject: "auth0|1"}, NewHub())
	for i := 0; i < sendBuffer; i++ {
		require.NoError(t, c.Send([]byte("{}")))
	}

	assert.ErrorIs(t, c.Send([]byte("{}")), ErrSlowConsumer)

	require.NoError(t, c.Close())
	assert.True(t, c.IsClosed())
	assert.ErrorIs(t, c.Send([]byte("{}")), ErrClientClosed)
}
