package websocket

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	// sendBuffer is how many events may queue for one connection before it is evicted
	sendBuffer = 64
)

// ErrSlowConsumer is returned by Send when a connection has fallen behind.
// The hub closes such connections; the UI reconnects and refetches the ledger.
var ErrSlowConsumer = errors.New("client is not keeping up")

// ActionSubscribe moves a connection to another client's room
const ActionSubscribe = "subscribe"

// Command is a message sent by the browser
type Command struct {
	Action   string `json:"action"`
	ClientID string `json:"clientId"`
}

// Session is the authenticated identity behind a connection
type Session struct {
	Subject   string
	ExpiresAt time.Time
}

// Client is one browser tab watching a ledger room
type Client struct {
	id      string
	session Session
	conn    *websocket.Conn
	hub     *Hub
	send    chan []byte

	mu        sync.RWMutex
	room      string
	closed    bool
	closeOnce sync.Once
}

// NewClient creates a connection in room for the given session
func NewClient(conn *websocket.Conn, room string, session Session, hub *Hub) *Client {
	return &Client{
		id:      uuid.New().String(),
		session: session,
		conn:    conn,
		hub:     hub,
		send:    make(chan []byte, sendBuffer),
		room:    room,
	}
}

func (c *Client) ID() string { return c.id }

// Room returns the room the connection currently watches
func (c *Client) Room() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

func (c *Client) Subject() string { return c.session.Subject }

func (c *Client) logEvent(e *zerolog.Event) *zerolog.Event {
	return e.
		Str("connection_id", c.id).
		Str("subject", c.session.Subject).
		Str("room", c.Room())
}

// Send queues an encoded event. A full queue reports ErrSlowConsumer rather than blocking the publisher.
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSlowConsumer
	}
}

// Close is idempotent
func (c *Client) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		if c.conn != nil {
			closeErr = c.conn.Close()
		}
	})
	return closeErr
}

func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// subscribe switches the connection to clientID's room. An empty id watches every client.
func (c *Client) subscribe(clientID string) {
	room := strings.TrimSpace(clientID)
	if room == "" {
		room = AllClientsRoom
	}
	if len(room) > 50 {
		c.logEvent(log.Debug()).Msg("WebSocket subscribe ignored: client id too long")
		return
	}

	from := c.Room()
	if from == room {
		return
	}
	c.hub.Move(c, from, room)

	c.mu.Lock()
	c.room = room
	c.mu.Unlock()

	c.logEvent(log.Debug()).Str("from", from).Msg("WebSocket room changed")
}

func (c *Client) handleCommand(data []byte) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		c.logEvent(log.Debug()).Err(err).Msg("WebSocket command ignored: not JSON")
		return
	}
	switch cmd.Action {
	case ActionSubscribe:
		c.subscribe(cmd.ClientID)
	default:
		c.logEvent(log.Debug()).Str("action", cmd.Action).Msg("WebSocket command ignored: unknown action")
	}
}

// ReadPump handles subscribe commands until the connection drops. Run it in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logEvent(log.Warn()).Err(err).Msg("WebSocket unexpected close")
			}
			return
		}
		if msgType == websocket.TextMessage {
			c.handleCommand(data)
		}
	}
}

// WritePump delivers queued events and pings, and ends the connection when the session expires.
// Run it in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	var expired <-chan time.Time
	if !c.session.ExpiresAt.IsZero() {
		timer := time.NewTimer(time.Until(c.session.ExpiresAt))
		defer timer.Stop()
		expired = timer.C
	}
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logEvent(log.Warn()).Err(err).Msg("WebSocket write error")
				return
			}

		case <-expired:
			c.logEvent(log.Info()).Msg("WebSocket session expired")
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "token expired"),
				time.Now().Add(writeWait))
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
