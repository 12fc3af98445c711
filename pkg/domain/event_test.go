package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEventShortID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"", ""},
		{"abc", "abc"},
		{"0123456789ab", "0123456789ab"},
		{"0123456789abcdef", "0123456789ab"},
	}
	for _, tt := range tests {
		e := Event{Metadata: EventMetadata{EventID: tt.id}}
		if got := e.ShortID(); got != tt.want {
			t.Errorf("ShortID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestEventDecode(t *testing.T) {
	raw := `{
		"tx_hash": "0xfeed",
		"metadata": {
			"event_id": "4f1c2a9b",
			"principal": "agent-7",
			"received_time": "2024-05-01T12:30:00Z",
			"channel": "Security",
			"provider_name": "Microsoft-Windows-Security-Auditing",
			"event_type_id": 4624
		},
		"event": {"System": {"EventID": 4624}}
	}`

	var e Event
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	md := e.Metadata
	if e.TxHash != "0xfeed" || md.EventID != "4f1c2a9b" || md.Principal != "agent-7" {
		t.Errorf("decoded = %+v", e)
	}
	if md.EventType != 4624 {
		t.Errorf("EventType = %d, want 4624", md.EventType)
	}
	if want := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC); !md.ReceivedTime.Equal(want) {
		t.Errorf("ReceivedTime = %v, want %v", md.ReceivedTime, want)
	}
	if string(e.Event) != `{"System": {"EventID": 4624}}` {
		t.Errorf("Event = %s, want raw payload kept", e.Event)
	}
}
