package websocket

// EventPublisher defines the interface for publishing ledger events to WebSocket clients
type EventPublisher interface {
	// Publish sends an event to subscribers of the ledger client's room and of AllClientsRoom
	Publish(clientID string, event Event)
}

// Ensure Hub implements EventPublisher
var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher
func (h *Hub) Publish(clientID string, event Event) {
	h.Broadcast(event, clientID, AllClientsRoom)
}

// NoOpPublisher is a publisher that does nothing (for testing or when WebSocket is disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(clientID string, event Event) {}
