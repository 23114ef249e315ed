package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// AllClientsRoom receives every ledger event regardless of client
const AllClientsRoom = "*"

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	Room() string
	Send(data []byte) error
	Close() error
}

// Hub manages WebSocket connections organized by room.
// A room is a ledger client id, or AllClientsRoom.
// It is safe for concurrent use
type Hub struct {
	// rooms maps room name to a map of connection ID to connection
	rooms map[string]map[string]ClientInterface
	mu    sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[string]ClientInterface),
	}
}

// Register adds a connection to the hub under its room
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := client.Room()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]ClientInterface)
	}
	h.rooms[room][client.ID()] = client

	log.Debug().
		Str("room", room).
		Str("connection_id", client.ID()).
		Msg("WebSocket client registered")
}

// Unregister removes a connection from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := client.Room()
	clients, ok := h.rooms[room]
	if !ok {
		return
	}
	if _, exists := clients[client.ID()]; !exists {
		return
	}
	delete(clients, client.ID())

	// Clean up empty rooms
	if len(clients) == 0 {
		delete(h.rooms, room)
	}

	log.Debug().
		Str("room", room).
		Str("connection_id", client.ID()).
		Msg("WebSocket client unregistered")
}

// Move re-files a registered connection from one room to another.
// Unknown connections are ignored.
func (h *Hub) Move(client ClientInterface, from, to string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[from][client.ID()]; !ok {
		return
	}
	delete(h.rooms[from], client.ID())
	if len(h.rooms[from]) == 0 {
		delete(h.rooms, from)
	}
	if h.rooms[to] == nil {
		h.rooms[to] = make(map[string]ClientInterface)
	}
	h.rooms[to][client.ID()] = client
}

// Broadcast sends an event to every connection in the given rooms.
// A connection is sent the event at most once.
func (h *Hub) Broadcast(event Event, rooms ...string) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	seen := make(map[string]struct{})
	targets := make([]ClientInterface, 0)
	for _, room := range rooms {
		for id, client := range h.rooms[room] {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	// Send to each connection asynchronously
	for _, client := range targets {
		go func(c ClientInterface) {
			err := c.Send(data)
			if err == nil {
				return
			}
			log.Warn().
				Err(err).
				Str("room", c.Room()).
				Str("connection_id", c.ID()).
				Msg("Failed to send to client")
			if errors.Is(err, ErrSlowConsumer) {
				h.Unregister(c)
				c.Close()
			}
		}(client)
	}

	log.Debug().
		Strs("rooms", rooms).
		Str("event_type", event.Type).
		Int("client_count", len(targets)).
		Msg("Broadcast event")
}

// RoomCount returns the number of connections subscribed to a room
func (h *Hub) RoomCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// TotalClientCount returns the total number of connections across all rooms
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.rooms {
		total += len(clients)
	}
	return total
}
