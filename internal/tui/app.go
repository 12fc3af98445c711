package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/eventview/internal/auth"
	"github.com/naveenspark/eventview/pkg/client"
	"github.com/naveenspark/eventview/pkg/domain"
	"github.com/naveenspark/eventview/pkg/toast"
)

type view int

const (
	viewSignIn view = iota
	viewEvents
)

// Chrome: logo(1) + status(1) above the body, help(1) below the toast rack.
const (
	headerLines = 2
	helpLines   = 1
)

const overlayID = "event-detail"

// principalMsg carries the result of the token check.
type principalMsg struct {
	principal domain.Principal
	err       error
}

// Deps wires the app to the rest of the program.
type Deps struct {
	// Store holds the notifications shown in the toast rack.
	Store *toast.Store
	// Credentials is the durable storage holding server_url and token.
	Credentials auth.Store
	// Connect builds the session gateway from Credentials.
	Connect func() (*client.Client, error)
	// Dial builds a gateway without a session for signing in to serverURL.
	Dial func(serverURL string) *client.Client
	// DefaultServer pre-fills the sign-in form when no server is stored.
	DefaultServer string
	// OpenURL opens a link from the help overlay.
	OpenURL func(url string) error
	Logger  *slog.Logger
}

// App is the root Bubbletea model.
type App struct {
	deps       Deps
	gateway    *client.Client
	view       view
	signIn     signInModel
	events     eventsModel
	toasts     []*toast.Toast
	principal  domain.Principal
	helpOpen   bool
	helpCursor int
	outside    *clickOutside
	width      int
	height     int
	frame      int // logo shimmer animation frame
}

// NewApp creates the TUI. It starts on the events view when a token is
// stored and on the sign-in view otherwise.
func NewApp(d Deps) App {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	a := App{deps: d}

	if d.Connect != nil {
		gw, err := d.Connect()
		if err != nil {
			d.Logger.Error("load session", slog.String("err", err.Error()))
			a.notify(false, "failed to load session: "+err.Error())
		}
		a.gateway = gw
	}
	a.events = newEventsModel(a.gateway, a.notifier())
	if a.gateway != nil && a.gateway.HasToken() {
		a.view = viewEvents
		// Shown until the token check answers.
		if d.Credentials != nil {
			if s, err := auth.Current(d.Credentials); err == nil {
				a.principal = s.Principal
			}
		}
	} else {
		a.view = viewSignIn
		a.signIn = a.newSignIn()
	}
	if d.Store != nil {
		a.toasts = d.Store.Toasts()
	}
	return a
}

func (a App) Init() tea.Cmd {
	if a.view == viewEvents {
		return tea.Batch(shimmerTickCmd(), a.events.Init(), a.checkToken())
	}
	return shimmerTickCmd()
}

// Close releases the live stream, if one is open.
func (a App) Close() {
	a.events.stop()
}

func (a App) notifier() client.Notifier {
	if a.deps.Store == nil {
		return nil
	}
	return a.deps.Store
}

func (a App) notify(success bool, content string) {
	if a.deps.Store != nil {
		a.deps.Store.Add(success, content)
	}
}

func (a App) newSignIn() signInModel {
	server := a.deps.DefaultServer
	if a.deps.Credentials != nil {
		if stored, err := a.deps.Credentials.Get(client.StorageKeyServerURL); err == nil && stored != "" {
			server = stored
		}
	}
	m := newSignInModel(a.deps.Dial, a.deps.Credentials, server)
	m.width = a.width
	return m
}

func (a App) checkToken() tea.Cmd {
	gw := a.gateway
	if gw == nil || !gw.HasToken() {
		return nil
	}
	return func() tea.Msg {
		p, err := gw.CheckToken(context.Background())
		return principalMsg{principal: p, err: err}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a.relayout(), nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case toastsChangedMsg:
		a = a.refreshToasts()
		return a.relayout(), nil

	case navigateMsg:
		return a.navigate(msg.path)

	case principalMsg:
		if msg.err == nil {
			a.principal = msg.principal
		} else if !errors.Is(msg.err, client.ErrSessionExpired) {
			a.deps.Logger.Warn("check token", slog.String("err", msg.err.Error()))
		}
		return a, nil

	case signedInMsg:
		a.signIn, _ = a.signIn.Update(msg)
		return a.finishSignIn(msg)

	case clickOutsideMsg:
		if msg.id == overlayID && a.events.detail {
			a.events = a.events.closeDetail()
		}
		return a.syncOverlay(), nil

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.helpOpen {
			return a.updateHelp(msg)
		}
		if !a.isEditing() {
			switch msg.String() {
			case "h", "?":
				a.helpOpen = true
				a.helpCursor = 0
				return a, nil
			case "q":
				if !(a.view == viewEvents && a.events.detail) {
					return a, tea.Quit
				}
			case "x":
				if len(a.toasts) > 0 && a.deps.Store != nil {
					a.deps.Store.Remove(a.toasts[0])
					a = a.refreshToasts()
					return a.relayout(), nil
				}
				return a, nil
			}
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewSignIn:
		a.signIn, cmd = a.signIn.Update(msg)
	case viewEvents:
		a.events, cmd = a.events.Update(msg)
	}
	return a.syncOverlay(), cmd
}

func (a App) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := helpItems(a.serverURL())
	switch msg.String() {
	case "h", "?", "esc":
		a.helpOpen = false
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.helpCursor < len(items)-1 {
			a.helpCursor++
		}
	case "k", "up":
		if a.helpCursor > 0 {
			a.helpCursor--
		}
	case "enter":
		if a.helpCursor < len(items) && a.deps.OpenURL != nil {
			if err := a.deps.OpenURL(items[a.helpCursor].url); err != nil {
				a.notify(false, "could not open browser: "+err.Error())
			}
		}
	}
	return a, nil
}

// navigate switches to the view mapped to path.
func (a App) navigate(path string) (tea.Model, tea.Cmd) {
	switch path {
	case RouteSignIn:
		a.events = a.events.closeDetail().stop()
		a.helpOpen = false
		a.principal = ""
		a.view = viewSignIn
		a.signIn = a.newSignIn()
		return a.relayout(), nil
	case RouteEvents:
		if a.view == viewEvents {
			return a, nil
		}
		a.view = viewEvents
		a.events.loading = true
		return a.relayout(), tea.Batch(a.events.Init(), a.checkToken())
	default:
		a.deps.Logger.Warn("unknown route", slog.String("path", path))
		return a, nil
	}
}

// finishSignIn rebuilds the session gateway from the freshly stored
// credentials and moves on to the events view.
func (a App) finishSignIn(msg signedInMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.notify(false, "sign in failed: "+errorText(msg.err))
		return a, nil
	}
	if a.deps.Connect == nil {
		return a, nil
	}
	gw, err := a.deps.Connect()
	if err != nil {
		a.notify(false, "failed to load session: "+err.Error())
		return a, nil
	}
	a.events = a.events.stop()
	a.gateway = gw
	a.principal = msg.principal
	a.events = newEventsModel(gw, a.notifier())
	a.notify(true, "signed in as "+msg.principal.String())
	a.deps.Logger.Info("signed in", slog.String("principal", msg.principal.String()), slog.String("server", msg.server))
	return a.navigate(RouteEvents)
}

func (a App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	cmd := a.outside.check(msg)
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && a.deps.Store != nil {
		if t := toastAt(visibleToasts(a.toasts), msg.Y-a.rackTop()); t != nil {
			a.deps.Store.Remove(t)
			a = a.refreshToasts()
			a = a.relayout()
		}
	}
	return a, cmd
}

func (a App) refreshToasts() App {
	if a.deps.Store != nil {
		a.toasts = a.deps.Store.Toasts()
	}
	return a
}

func (a App) isEditing() bool {
	switch a.view {
	case viewSignIn:
		return true
	case viewEvents:
		return a.events.editing
	}
	return false
}

func (a App) serverURL() string {
	if a.gateway == nil {
		return ""
	}
	return a.gateway.BaseURL()
}

func (a App) bodyHeight() int {
	h := a.height - headerLines - len(visibleToasts(a.toasts)) - helpLines
	if h < 1 {
		h = 1
	}
	return h
}

// rackTop is the screen row of the first toast.
func (a App) rackTop() int {
	return headerLines + a.bodyHeight()
}

// relayout resizes the sub-models to the body and moves the overlay watcher.
func (a App) relayout() App {
	body := tea.WindowSizeMsg{Width: a.width, Height: a.bodyHeight()}
	a.signIn, _ = a.signIn.Update(body)
	a.events, _ = a.events.Update(body)
	return a.syncOverlay()
}

// syncOverlay mounts the click-outside watcher while the detail overlay is
// open and detaches it once the overlay is gone.
func (a App) syncOverlay() App {
	open := a.view == viewEvents && a.events.detail
	switch {
	case open && a.outside == nil:
		_, bounds := a.overlayLayout()
		a.outside = watchClickOutside(overlayID, bounds)
	case open:
		// Content grows once the full event loads.
		_, bounds := a.overlayLayout()
		a.outside.resize(bounds)
	case a.outside != nil:
		a.outside = nil
	}
	return a
}

// overlayLayout renders the detail overlay and returns it with its screen
// rectangle, centred in the body.
func (a App) overlayLayout() (string, rect) {
	bodyH := a.bodyHeight()
	maxW := min(a.width-4, 110)
	if maxW < 24 {
		maxW = 24
	}
	box := a.events.detailView(maxW, max(bodyH-2, 6))
	w, h := lipgloss.Width(box), lipgloss.Height(box)
	x := max((a.width-w)/2, 0)
	y := max((bodyH-h)/2, 0)
	return box, rect{x: x, y: headerLines + y, w: w, h: h}
}

func (a App) View() string {
	// Header: centered shimmer logo and session line
	header := center(renderShimmerLogo(a.frame), a.width)
	var status string
	switch {
	case a.view == viewSignIn:
		status = dimStyle.Render("not signed in")
	case a.principal != "":
		status = metaStyle.Render(a.serverURL()) + metaStyle.Render(" · ") + principalStyle.Render(a.principal.String())
	default:
		status = metaStyle.Render(a.serverURL())
	}
	header += "\n" + center(status, a.width)

	bodyH := a.bodyHeight()
	var body, help string
	switch a.view {
	case viewSignIn:
		body = a.signIn.View()
		help = " " + helpEntry("tab", "next") + "  " + helpEntry("enter", "sign in") + "  " + helpEntry("ctrl+c", "quit")
	case viewEvents:
		body = a.events.View()
		switch {
		case a.events.editing:
			help = " " + helpEntry("enter", "apply") + "  " + helpEntry("esc", "cancel") + "  " +
				dimStyle.Render("property op value, e.g. principal eq alice")
		case a.events.detail:
			box, r := a.overlayLayout()
			body = placeAt(box, r.x, r.y-headerLines)
			help = " " + helpEntry("c", "copy id") + "  " + helpEntry("esc", "close") + "  " + helpEntry("click outside", "close")
		default:
			help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("/", "filter") + "  " + helpEntry("f", "clear") + "  " +
				helpEntry("n/p", "page") + "  " + helpEntry("l", "live") + "  " + helpEntry("enter", "detail") + "  " +
				helpEntry("c", "copy") + "  " + helpEntry("x", "dismiss") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
		}
	}

	if a.helpOpen {
		body = helpView(a.serverURL(), a.helpCursor)
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("esc", "close")
	}

	parts := []string{header, fitHeight(body, bodyH)}
	for _, t := range visibleToasts(a.toasts) {
		parts = append(parts, renderToast(t, a.width))
	}
	parts = append(parts, help)
	return strings.Join(parts, "\n")
}

// center left-pads s so it sits in the middle of width.
func center(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

// placeAt offsets every line of box by x columns after y blank lines.
func placeAt(box string, x, y int) string {
	var b strings.Builder
	for i := 0; i < y; i++ {
		b.WriteString("\n")
	}
	indent := strings.Repeat(" ", max(x, 0))
	for i, line := range strings.Split(box, "\n") {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(indent + line)
	}
	return b.String()
}
