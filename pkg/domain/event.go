package domain

import (
	"encoding/json"
	"time"
)

// Principal identifies an actor on the chain (an agent or an admin).
type Principal string

func (p Principal) String() string {
	return string(p)
}

// Event is a stored Windows event as returned by the viewer API.
type Event struct {
	TxHash   string          `json:"tx_hash"`
	Metadata EventMetadata   `json:"metadata"`
	Event    json.RawMessage `json:"event,omitempty"`
}

// EventMetadata is the indexed part of a stored event.
type EventMetadata struct {
	EventID      string    `json:"event_id"`
	Principal    Principal `json:"principal"`
	ReceivedTime time.Time `json:"received_time"`
	Channel      string    `json:"channel,omitempty"`
	ProviderName string    `json:"provider_name,omitempty"`
	EventType    int       `json:"event_type_id,omitempty"`
}

// ShortID returns the first 12 characters of the event ID for list displays.
func (e Event) ShortID() string {
	if len(e.Metadata.EventID) <= 12 {
		return e.Metadata.EventID
	}
	return e.Metadata.EventID[:12]
}
