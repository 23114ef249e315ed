package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to the entity
type EventType string

const (
	EventTypeSaved    EventType = "saved"
	EventTypeCascaded EventType = "cascaded"
	EventTypeDeleted  EventType = "deleted"
	EventTypeUpdated  EventType = "updated"
	EventTypeImported EventType = "imported"
	EventTypeStatus   EventType = "status_changed"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeRoyaltyEntry EntityType = "royalty_entry"
	EntityTypeClient       EntityType = "client"
	EntityTypeLedger       EntityType = "ledger"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "royalty_entry.saved"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "royalty_entry"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RoyaltyEntrySaved creates a royalty_entry.saved event
func RoyaltyEntrySaved(payload interface{}) Event {
	return NewEvent(EventTypeSaved, EntityTypeRoyaltyEntry, payload)
}

// RoyaltyEntryCascaded creates a royalty_entry.cascaded event.
// The payload lists the later months rewritten by a save.
func RoyaltyEntryCascaded(payload interface{}) Event {
	return NewEvent(EventTypeCascaded, EntityTypeRoyaltyEntry, payload)
}

// RoyaltyEntryDeleted creates a royalty_entry.deleted event
func RoyaltyEntryDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeRoyaltyEntry, payload)
}

// RoyaltyEntryStatusChanged creates a royalty_entry.status_changed event
func RoyaltyEntryStatusChanged(payload interface{}) Event {
	return NewEvent(EventTypeStatus, EntityTypeRoyaltyEntry, payload)
}

// ClientUpdated creates a client.updated event
func ClientUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeClient, payload)
}

// ClientDeleted creates a client.deleted event
func ClientDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeClient, payload)
}

// LedgerImported creates a ledger.imported event
func LedgerImported(payload interface{}) Event {
	return NewEvent(EventTypeImported, EntityTypeLedger, payload)
}
