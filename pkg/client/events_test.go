package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/naveenspark/eventview/pkg/domain"
)

func TestSearchEvents(t *testing.T) {
	var (
		gotPage, gotFirst string
		gotFilters        []domain.Filter
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/events" {
			http.NotFound(w, r)
			return
		}
		gotPage = r.URL.Query().Get("page")
		gotFirst = r.URL.Query().Get("first")
		var body struct {
			Filters []domain.Filter `json:"filters"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotFilters = body.Filters
		json.NewEncoder(w).Encode([]domain.Event{ //nolint:errcheck
			{TxHash: "aa", Metadata: domain.EventMetadata{EventID: "e1", Principal: "alice", ReceivedTime: time.Unix(10, 0).UTC()}},
			{TxHash: "bb", Metadata: domain.EventMetadata{EventID: "e2", Principal: "bob"}},
		})
	}))
	defer srv.Close()

	filters := []domain.Filter{{Property: domain.PropertyPrincipal, Operator: domain.OperatorEqual, Value: "alice"}}
	events, err := New(srv.URL, "tok").SearchEvents(context.Background(), filters, 2, "e1")
	if err != nil {
		t.Fatalf("SearchEvents() error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Metadata.Principal != "alice" {
		t.Errorf("events[0].Principal = %q, want %q", events[0].Metadata.Principal, "alice")
	}
	if gotPage != "2" {
		t.Errorf("page = %q, want %q", gotPage, "2")
	}
	if gotFirst != "e1" {
		t.Errorf("first = %q, want %q", gotFirst, "e1")
	}
	if len(gotFilters) != 1 || gotFilters[0] != filters[0] {
		t.Errorf("filters = %+v, want %+v", gotFilters, filters)
	}
}

func TestSearchEventsDefaults(t *testing.T) {
	var rawBody, gotPage, gotFirst string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body) //nolint:errcheck
		rawBody = string(data)
		gotPage = r.URL.Query().Get("page")
		gotFirst = r.URL.Query().Get("first")
		io.WriteString(w, "null") //nolint:errcheck
	}))
	defer srv.Close()

	events, err := New(srv.URL, "tok").SearchEvents(context.Background(), nil, 0, "")
	if err != nil {
		t.Fatalf("SearchEvents() error: %v", err)
	}
	if events == nil || len(events) != 0 {
		t.Errorf("events = %#v, want empty non-nil slice", events)
	}
	if rawBody != `{"filters":[]}` {
		t.Errorf("body = %q, want %q", rawBody, `{"filters":[]}`)
	}
	if gotPage != "1" {
		t.Errorf("page = %q, want %q", gotPage, "1")
	}
	if gotFirst != "" {
		t.Errorf("first = %q, want empty", gotFirst)
	}
}

func TestSearchEventsInvalidFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid filter"}) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := New(srv.URL, "tok").SearchEvents(context.Background(), nil, 1, "")
	if !IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("err = %v, want HTTP 400", err)
	}
}

func TestGetEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events/by-id/abcdef" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "event not found"}) //nolint:errcheck
			return
		}
		io.WriteString(w, `{"tx_hash":"ff","metadata":{"event_id":"abcdef","principal":"alice"},"event":{"System":{"EventID":4624}}}`) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	ev, err := c.GetEvent(context.Background(), "abcdef")
	if err != nil {
		t.Fatalf("GetEvent() error: %v", err)
	}
	if ev.Metadata.EventID != "abcdef" {
		t.Errorf("EventID = %q, want %q", ev.Metadata.EventID, "abcdef")
	}
	if string(ev.Event) != `{"System":{"EventID":4624}}` {
		t.Errorf("Event = %s, want raw payload", ev.Event)
	}

	_, err = c.GetEvent(context.Background(), "missing")
	if !IsStatus(err, http.StatusNotFound) {
		t.Errorf("GetEvent(missing) err = %v, want HTTP 404", err)
	}
}
