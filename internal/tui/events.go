package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/eventview/pkg/client"
	"github.com/naveenspark/eventview/pkg/domain"
)

// maxLiveEvents caps how many streamed events are kept on page one.
const maxLiveEvents = 500

// copyToClipboard is swapped in tests.
var copyToClipboard = clipboard.WriteAll

type eventsModel struct {
	client  *client.Client
	notify  client.Notifier
	events  []domain.Event
	filters []domain.Filter
	input   string
	editing bool // true when typing a filter
	page    int
	first   string // pins page boundaries to the newest event seen on page one
	cursor  int
	loading bool
	err     error

	detail        bool
	detailEvent   *domain.Event
	detailLoading bool
	detailErr     error

	stream *client.Stream

	width  int
	height int
}

type eventsLoadedMsg struct {
	events []domain.Event
	page   int
	err    error
}

type eventLoadedMsg struct {
	id    string
	event *domain.Event
	err   error
}

type copyResultMsg struct {
	id  string
	err error
}

type streamOpenedMsg struct {
	stream *client.Stream
	err    error
}

type streamEventMsg struct {
	stream *client.Stream
	event  domain.Event
}

type streamClosedMsg struct {
	stream *client.Stream
	err    error
}

type streamSubscribedMsg struct {
	err error
}

func newEventsModel(c *client.Client, notify client.Notifier) eventsModel {
	return eventsModel{
		client:  c,
		notify:  notify,
		page:    1,
		loading: true,
	}
}

func (m eventsModel) Init() tea.Cmd {
	return m.load()
}

func (m eventsModel) load() tea.Cmd {
	c, filters, page, first := m.client, m.filters, m.page, m.first
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		events, err := c.SearchEvents(context.Background(), filters, page, first)
		return eventsLoadedMsg{events: events, page: page, err: err}
	}
}

func (m eventsModel) loadDetail(id string) tea.Cmd {
	c := m.client
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		ev, err := c.GetEvent(context.Background(), id)
		return eventLoadedMsg{id: id, event: ev, err: err}
	}
}

func (m eventsModel) openStream() tea.Cmd {
	c, filters := m.client, m.filters
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		s, err := c.Stream(context.Background(), filters)
		return streamOpenedMsg{stream: s, err: err}
	}
}

func waitStream(s *client.Stream) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-s.Events()
		if !ok {
			return streamClosedMsg{stream: s, err: s.Err()}
		}
		return streamEventMsg{stream: s, event: ev}
	}
}

// stop closes the live stream, if any.
func (m eventsModel) stop() eventsModel {
	if m.stream != nil {
		m.stream.Close() //nolint:errcheck
		m.stream = nil
	}
	return m
}

// fail reports err as a failure toast unless the gateway already handled it.
func (m eventsModel) fail(prefix string, err error) {
	if err == nil || m.notify == nil {
		return
	}
	if errors.Is(err, client.ErrSessionExpired) || errors.Is(err, client.ErrResponseHandled) {
		return
	}
	m.notify.Add(false, prefix+": "+errorText(err))
}

// errorText prefers the server's message over the wrapped error chain.
func errorText(err error) string {
	var he *client.HTTPError
	if errors.As(err, &he) && he.Message != "" {
		return he.Message
	}
	return err.Error()
}

func (m eventsModel) selected() (domain.Event, bool) {
	if m.cursor < 0 || m.cursor >= len(m.events) {
		return domain.Event{}, false
	}
	return m.events[m.cursor], true
}

func (m eventsModel) Update(msg tea.Msg) (eventsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case eventsLoadedMsg:
		if msg.page != m.page {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.fail("Failed to load events", msg.err)
			return m, nil
		}
		m.events = msg.events
		if m.page == 1 && m.first == "" && len(m.events) > 0 {
			m.first = m.events[0].Metadata.EventID
		}
		if m.cursor >= len(m.events) {
			m.cursor = 0
		}
		return m, nil

	case eventLoadedMsg:
		if !m.detail {
			return m, nil
		}
		if ev, ok := m.selected(); !ok || ev.Metadata.EventID != msg.id {
			return m, nil
		}
		m.detailLoading = false
		m.detailErr = msg.err
		if msg.err != nil {
			m.fail("Failed to load event", msg.err)
			return m, nil
		}
		m.detailEvent = msg.event
		return m, nil

	case copyResultMsg:
		if m.notify != nil {
			if msg.err != nil {
				m.notify.Add(false, "copy failed: "+msg.err.Error())
			} else {
				m.notify.Add(true, "copied "+msg.id)
			}
		}
		return m, nil

	case streamOpenedMsg:
		if msg.err != nil {
			m.fail("Live stream unavailable", msg.err)
			return m, nil
		}
		m = m.stop()
		m.stream = msg.stream
		return m, waitStream(msg.stream)

	case streamEventMsg:
		if msg.stream != m.stream {
			return m, nil
		}
		if m.page == 1 {
			m.events = append([]domain.Event{msg.event}, m.events...)
			if len(m.events) > maxLiveEvents {
				m.events = m.events[:maxLiveEvents]
			}
			if m.cursor > 0 {
				m.cursor++
			}
		}
		return m, waitStream(msg.stream)

	case streamClosedMsg:
		if msg.stream != m.stream {
			return m, nil
		}
		m.stream = nil
		m.fail("Live stream closed", msg.err)
		return m, nil

	case streamSubscribedMsg:
		m.fail("Live filter update failed", msg.err)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateFilterInput(msg)
		}
		if m.detail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m eventsModel) updateFilterInput(msg tea.KeyMsg) (eventsModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.editing = false
		if strings.TrimSpace(m.input) == "" {
			return m, nil
		}
		f, err := domain.ParseFilter(m.input)
		if err != nil {
			if m.notify != nil {
				m.notify.Add(false, err.Error())
			}
			return m, nil
		}
		m.input = ""
		m.filters = append(append([]domain.Filter(nil), m.filters...), f)
		return m.refilter()
	case "esc":
		m.editing = false
		m.input = ""
	default:
		m.input = editRune(m.input, msg.String())
	}
	return m, nil
}

// refilter restarts paging after the filter set changed.
func (m eventsModel) refilter() (eventsModel, tea.Cmd) {
	m.page = 1
	m.first = ""
	m.cursor = 0
	m.loading = true
	cmds := []tea.Cmd{m.load()}
	if s := m.stream; s != nil {
		filters := m.filters
		cmds = append(cmds, func() tea.Msg {
			return streamSubscribedMsg{err: s.Subscribe(filters)}
		})
	}
	return m, tea.Batch(cmds...)
}

func (m eventsModel) updateList(msg tea.KeyMsg) (eventsModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.events)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		return m.openDetail()
	case "/":
		m.editing = true
		m.input = ""
	case "f":
		if len(m.filters) > 0 {
			m.filters = nil
			return m.refilter()
		}
	case "n":
		if len(m.events) > 0 && !m.loading {
			m.page++
			m.cursor = 0
			m.loading = true
			return m, m.load()
		}
	case "p":
		if m.page > 1 && !m.loading {
			m.page--
			m.cursor = 0
			m.loading = true
			return m, m.load()
		}
	case "r":
		if m.page == 1 {
			m.first = ""
		}
		m.loading = true
		return m, m.load()
	case "l":
		if m.stream != nil {
			m = m.stop()
			return m, nil
		}
		return m, m.openStream()
	case "c":
		return m.copySelected()
	}
	return m, nil
}

func (m eventsModel) updateDetail(msg tea.KeyMsg) (eventsModel, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m = m.closeDetail()
	case "c":
		return m.copySelected()
	}
	return m, nil
}

func (m eventsModel) openDetail() (eventsModel, tea.Cmd) {
	ev, ok := m.selected()
	if !ok {
		return m, nil
	}
	m.detail = true
	m.detailEvent = nil
	m.detailErr = nil
	m.detailLoading = true
	return m, m.loadDetail(ev.Metadata.EventID)
}

func (m eventsModel) closeDetail() eventsModel {
	m.detail = false
	m.detailEvent = nil
	m.detailErr = nil
	m.detailLoading = false
	return m
}

func (m eventsModel) copySelected() (eventsModel, tea.Cmd) {
	ev, ok := m.selected()
	if !ok {
		return m, nil
	}
	id := ev.Metadata.EventID
	return m, func() tea.Msg {
		return copyResultMsg{id: id, err: copyToClipboard(id)}
	}
}

func (m eventsModel) View() string {
	var b strings.Builder

	// Filter line
	b.WriteString(" ")
	switch {
	case m.editing:
		b.WriteString(searchStyle.Render("/ " + m.input + "█"))
	case len(m.filters) == 0:
		b.WriteString(dimStyle.Render("/ filter..."))
	default:
		chips := make([]string, 0, len(m.filters))
		for _, f := range m.filters {
			chips = append(chips, filterChipStyle.Render(f.String()))
		}
		b.WriteString(strings.Join(chips, " "))
	}
	right := metaStyle.Render(fmt.Sprintf("page %d", m.page))
	if m.stream != nil {
		right = liveStyle.Render("● live") + "  " + right
	}
	gap := m.width - lipgloss.Width(b.String()) - lipgloss.Width(right) - 1
	if gap < 2 {
		gap = 2
	}
	b.WriteString(strings.Repeat(" ", gap) + right + "\n")

	sepW := m.width - 2
	if sepW < 4 {
		sepW = 4
	}
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", sepW)) + "\n")

	if m.loading && len(m.events) == 0 {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	if m.err != nil && len(m.events) == 0 {
		b.WriteString(" " + dimStyle.Render("error: "+errorText(m.err)))
		return b.String()
	}
	if len(m.events) == 0 {
		b.WriteString(" " + dimStyle.Render("no events found"))
		return b.String()
	}
	return b.String() + m.viewList()
}

func (m eventsModel) viewList() string {
	var b strings.Builder

	maxVisible := m.height - 2 // filter line + separator
	if maxVisible < 3 {
		maxVisible = 3
	}
	start := 0
	if m.cursor >= maxVisible {
		start = m.cursor - maxVisible + 1
	}

	showProvider := m.width >= 90
	for i := start; i < len(m.events) && i < start+maxVisible; i++ {
		ev := m.events[i]
		md := ev.Metadata

		cursor := "  "
		idStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			idStyle = normalStyle.Bold(true)
		}
		dot := ChannelStyle(md.Channel).Render("●") + " "

		cols := []string{
			idStyle.Render(fmt.Sprintf("%-12s", ev.ShortID())),
			principalStyle.Render(fmt.Sprintf("%-14s", truncStr(md.Principal.String(), 14))),
			normalStyle.Render(fmt.Sprintf("%6d", md.EventType)),
			dimStyle.Render(fmt.Sprintf("%-12s", truncStr(md.Channel, 12))),
		}
		if showProvider {
			cols = append(cols, dimStyle.Render(fmt.Sprintf("%-28s", truncStr(md.ProviderName, 28))))
		}
		cols = append(cols, metaStyle.Render(formatTime(md.ReceivedTime)))

		line := cursor + dot + strings.Join(cols, " ")
		if i == m.cursor {
			padded := line + strings.Repeat(" ", max(m.width-lipgloss.Width(line), 0))
			b.WriteString(selectedRowBg.Render(padded) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}
	return truncateToHeight(b.String(), maxVisible)
}

// detailView renders the event detail overlay content within maxW x maxH cells.
func (m eventsModel) detailView(maxW, maxH int) string {
	ev, ok := m.selected()
	if !ok {
		return ""
	}
	if m.detailEvent != nil {
		ev = *m.detailEvent
	}
	md := ev.Metadata

	innerW := maxW - 4 // border + padding
	if innerW < 20 {
		innerW = 20
	}

	var b strings.Builder
	b.WriteString(selectedStyle.Render("Event "+truncStr(md.EventID, innerW-6)) + "\n")
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", label)), normalStyle.Render(truncStr(value, innerW-11)))
	}
	row("principal", md.Principal.String())
	row("tx hash", ev.TxHash)
	if md.EventType != 0 {
		row("type", fmt.Sprintf("%d", md.EventType))
	}
	row("channel", md.Channel)
	row("provider", md.ProviderName)
	if !md.ReceivedTime.IsZero() {
		row("received", md.ReceivedTime.Local().Format("2006-01-02 15:04:05 MST"))
	}
	b.WriteString("\n")

	switch {
	case m.detailLoading:
		b.WriteString(dimStyle.Render("loading event..."))
	case m.detailErr != nil:
		b.WriteString(dimStyle.Render("error: " + errorText(m.detailErr)))
	default:
		body := prettyJSON(ev.Event)
		if body == "" {
			body = "(no payload)"
		}
		budget := maxH - lipgloss.Height(b.String()) - 3
		if budget < 1 {
			budget = 1
		}
		lines := strings.Split(body, "\n")
		more := 0
		if len(lines) > budget {
			more = len(lines) - budget + 1
			lines = lines[:budget-1]
		}
		for _, l := range lines {
			b.WriteString(jsonStyle.Render(truncStr(l, innerW)) + "\n")
		}
		if more > 0 {
			b.WriteString(metaStyle.Render(fmt.Sprintf("… %d more lines", more)))
		}
	}

	return overlayStyle.Width(innerW + 2).Render(strings.TrimRight(b.String(), "\n"))
}
