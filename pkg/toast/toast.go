// Package toast holds the transient notifications shown to the user.
//
// Toasts are identified by pointer: two toasts with the same text are still
// different toasts, and Remove only drops the exact instance it is given.
// Every toast expires on its own after the store timeout unless it is
// removed earlier.
package toast

import (
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTimeout is how long a toast stays in the store before it expires.
const DefaultTimeout = 10 * time.Second

// Toast is a single user-facing notification.
type Toast struct {
	Success bool
	Content string
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock used to schedule expiries.
func WithClock(c Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithTimeout sets the expiry timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger used for expiry diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

type subscriber struct {
	id int
	fn func([]*Toast)
}

// Store is the ordered collection of active toasts.
type Store struct {
	// notifyMu serializes mutate-then-publish so subscribers observe
	// snapshots in mutation order.
	notifyMu sync.Mutex

	mu      sync.Mutex
	toasts  []*Toast
	timers  map[*Toast]Timer
	subs    []subscriber
	nextSub int

	clock   Clock
	timeout time.Duration
	logger  *slog.Logger
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		timers:  make(map[*Toast]Timer),
		clock:   SystemClock(),
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends a new toast and schedules its expiry. The first rune of
// content is upper-cased; the rest is kept as is.
func (s *Store) Add(success bool, content string) *Toast {
	t := &Toast{Success: success, Content: capitalize(content)}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.toasts = append(s.toasts, t)
	s.timers[t] = s.clock.AfterFunc(s.timeout, func() { s.expire(t) })
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()

	publish(subs, snapshot)
	return t
}

// Remove drops every occurrence of t and cancels its pending expiry.
// Removing a toast that is not in the store does nothing.
func (s *Store) Remove(t *Toast) {
	if t == nil {
		return
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	kept := make([]*Toast, 0, len(s.toasts))
	for _, existing := range s.toasts {
		if existing != t {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(s.toasts) {
		s.mu.Unlock()
		return
	}
	s.toasts = kept
	if timer, ok := s.timers[t]; ok {
		timer.Stop()
		delete(s.timers, t)
	}
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()

	publish(subs, snapshot)
}

// Toasts returns a copy of the current collection, oldest first.
func (s *Store) Toasts() []*Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Toast, len(s.toasts))
	copy(out, s.toasts)
	return out
}

// Len returns the number of active toasts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.toasts)
}

// Subscribe registers fn to receive the collection after every change.
// fn runs synchronously on the mutating goroutine and must not call Add or
// Remove. The returned function cancels the subscription.
func (s *Store) Subscribe(fn func([]*Toast)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Close cancels every pending expiry and empties the store. The store can
// be used again afterwards.
func (s *Store) Close() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	for t, timer := range s.timers {
		timer.Stop()
		delete(s.timers, t)
	}
	hadToasts := len(s.toasts) > 0
	s.toasts = nil
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()

	if hadToasts {
		publish(subs, snapshot)
	}
}

func (s *Store) expire(t *Toast) {
	s.logger.Debug("toast expired", slog.Bool("success", t.Success), slog.String("content", t.Content))
	s.Remove(t)
}

// snapshotLocked must be called with s.mu held.
func (s *Store) snapshotLocked() ([]*Toast, []subscriber) {
	snapshot := make([]*Toast, len(s.toasts))
	copy(snapshot, s.toasts)
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	return snapshot, subs
}

func publish(subs []subscriber, snapshot []*Toast) {
	for _, sub := range subs {
		sub.fn(snapshot)
	}
}

func capitalize(content string) string {
	if content == "" {
		return content
	}
	r, size := utf8.DecodeRuneInString(content)
	if r == utf8.RuneError {
		return content
	}
	// Full case mapping: a leading "ß" becomes "SS".
	return cases.Upper(language.Und).String(content[:size]) + content[size:]
}
