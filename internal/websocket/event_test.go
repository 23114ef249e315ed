package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"clientId": "MRM-1",
		"month":    "apr",
	}

	before := time.Now()
	evt := NewEvent(EventTypeSaved, EntityTypeRoyaltyEntry, payload)
	after := time.Now()

	assert.Equal(t, "royalty_entry.saved", evt.Type)
	assert.Equal(t, EntityTypeRoyaltyEntry, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before) && !evt.Timestamp.After(after))
}

func TestEvent_ToJSON(t *testing.T) {
	evt := NewEvent(EventTypeCascaded, EntityTypeRoyaltyEntry, map[string]interface{}{"cascadedCount": float64(3)})

	data, err := evt.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "royalty_entry.cascaded", decoded["type"])
	assert.Equal(t, "royalty_entry", decoded["entity"])
	assert.NotNil(t, decoded["payload"])
	assert.NotNil(t, decoded["timestamp"])
}

func TestEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{"clientId": "MRM-1"}

	tests := []struct {
		name   string
		evt    Event
		typ    string
		entity EntityType
	}{
		{"RoyaltyEntrySaved", RoyaltyEntrySaved(payload), "royalty_entry.saved", EntityTypeRoyaltyEntry},
		{"RoyaltyEntryCascaded", RoyaltyEntryCascaded(payload), "royalty_entry.cascaded", EntityTypeRoyaltyEntry},
		{"RoyaltyEntryDeleted", RoyaltyEntryDeleted(payload), "royalty_entry.deleted", EntityTypeRoyaltyEntry},
		{"RoyaltyEntryStatusChanged", RoyaltyEntryStatusChanged(payload), "royalty_entry.status_changed", EntityTypeRoyaltyEntry},
		{"ClientUpdated", ClientUpdated(payload), "client.updated", EntityTypeClient},
		{"ClientDeleted", ClientDeleted(payload), "client.deleted", EntityTypeClient},
		{"LedgerImported", LedgerImported(payload), "ledger.imported", EntityTypeLedger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.evt.Type)
			assert.Equal(t, tt.entity, tt.evt.Entity)
			assert.Equal(t, payload, tt.evt.Payload)
		})
	}
}
