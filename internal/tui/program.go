package tui

import (
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/eventview/pkg/toast"
)

// Routes understood by the app.
const (
	RouteSignIn = "/sign-in"
	RouteEvents = "/events"
)

// navigateMsg asks the app to switch to the view mapped to path.
type navigateMsg struct {
	path string
}

// toastsChangedMsg tells the app to re-read the toast store.
type toastsChangedMsg struct{}

// sender is the part of *tea.Program the bridges need.
type sender interface {
	Send(msg tea.Msg)
}

// Navigator turns gateway redirects into navigateMsg values for the running
// program. Messages are posted from a new goroutine because Send blocks
// until the event loop reads them and Navigate may run inside Update.
type Navigator struct {
	mu     sync.Mutex
	target sender
	logger *slog.Logger
}

// NewNavigator returns a Navigator with no program attached yet.
func NewNavigator(logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{logger: logger}
}

// Attach sets the program that receives navigation messages.
func (n *Navigator) Attach(p sender) {
	n.mu.Lock()
	n.target = p
	n.mu.Unlock()
}

// Navigate implements client.Navigator.
func (n *Navigator) Navigate(path string) {
	n.mu.Lock()
	p := n.target
	n.mu.Unlock()
	if p == nil {
		n.logger.Warn("navigate before program attached", slog.String("path", path))
		return
	}
	n.logger.Debug("navigate", slog.String("path", path))
	go p.Send(navigateMsg{path: path})
}

// WatchToasts re-renders p whenever the store changes. The returned func
// stops watching.
func WatchToasts(store *toast.Store, p sender) func() {
	return store.Subscribe(func([]*toast.Toast) {
		go p.Send(toastsChangedMsg{})
	})
}
