package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/naveenspark/eventview/pkg/domain"
)

const (
	streamPath         = "/events/stream"
	streamWriteTimeout = 10 * time.Second
	streamReadLimit    = 1 << 20
	streamBuffer       = 64
)

// Message types exchanged on the event stream.
const (
	streamTypeAuth      = "auth"
	streamTypeSubscribe = "subscribe"
	streamTypeEvent     = "event"
	streamTypeError     = "error"
)

// ErrNotSignedIn is returned by Stream when the gateway carries no token.
var ErrNotSignedIn = errors.New("client: not signed in")

// StreamError is an error message sent by the server before it closes the stream.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return "stream: " + e.Message
}

type streamMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Stream is a live feed of newly stored events that match a filter set.
type Stream struct {
	conn   *websocket.Conn
	events chan domain.Event
	done   chan struct{}
	logger *slog.Logger

	mu        sync.Mutex
	err       error
	closeOnce sync.Once
}

// Stream opens the live event feed. The token is sent as the first message
// and filters as the second; filters may be changed later with Subscribe.
func (c *Client) Stream(ctx context.Context, filters []domain.Filter) (*Stream, error) {
	if c.token == "" {
		return nil, fmt.Errorf("client.Stream: %w", ErrNotSignedIn)
	}
	target, err := streamURL(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("client.Stream: %w", err)
	}

	header := http.Header{}
	header.Set("X-Request-ID", uuid.NewString())
	conn, resp, err := c.dialer.DialContext(ctx, target, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close() //nolint:errcheck
	}
	if err != nil {
		c.metrics.transportError()
		return nil, fmt.Errorf("client.Stream: dial: %w", err)
	}
	conn.SetReadLimit(streamReadLimit)

	s := &Stream{
		conn:   conn,
		events: make(chan domain.Event, streamBuffer),
		done:   make(chan struct{}),
		logger: c.logger,
	}
	if err := s.send(streamTypeAuth, map[string]string{"token": c.token}); err != nil {
		conn.Close() //nolint:errcheck
		return nil, fmt.Errorf("client.Stream: auth: %w", err)
	}
	if err := s.Subscribe(filters); err != nil {
		conn.Close() //nolint:errcheck
		return nil, fmt.Errorf("client.Stream: %w", err)
	}
	go s.readLoop()
	return s, nil
}

// Events delivers matching events. It is closed when the stream ends.
func (s *Stream) Events() <-chan domain.Event {
	return s.events
}

// Subscribe replaces the server-side filter set.
func (s *Stream) Subscribe(filters []domain.Filter) error {
	if filters == nil {
		filters = []domain.Filter{}
	}
	if err := s.send(streamTypeSubscribe, filters); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

// Err returns why the stream ended, or nil if it was closed by Close or
// the server closed it normally.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close ends the stream. It is safe to call more than once.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)) //nolint:errcheck
		s.mu.Unlock()
		err = s.conn.Close()
	})
	return err
}

func (s *Stream) send(typ string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)) //nolint:errcheck
	return s.conn.WriteJSON(streamMessage{Type: typ, Data: data})
}

func (s *Stream) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *Stream) closing() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Stream) readLoop() {
	defer close(s.events)
	defer s.conn.Close() //nolint:errcheck

	for {
		typ, data, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closing() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.fail(err)
			}
			return
		}
		if typ != websocket.TextMessage {
			continue
		}

		var msg streamMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Debug("stream: bad message", slog.String("err", err.Error()))
			continue
		}
		switch msg.Type {
		case streamTypeEvent:
			var ev domain.Event
			if err := json.Unmarshal(msg.Data, &ev); err != nil {
				s.logger.Debug("stream: bad event", slog.String("err", err.Error()))
				continue
			}
			select {
			case s.events <- ev:
			case <-s.done:
				return
			}
		case streamTypeError:
			var payload struct {
				Message string `json:"message"`
			}
			json.Unmarshal(msg.Data, &payload) //nolint:errcheck // an empty message is still an error
			s.fail(&StreamError{Message: payload.Message})
		}
	}
}

func streamURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + streamPath
	u.RawQuery = ""
	return u.String(), nil
}
