package tui

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/eventview/internal/auth"
	"github.com/naveenspark/eventview/pkg/client"
	"github.com/naveenspark/eventview/pkg/domain"
)

type signInField int

const (
	fieldServer signInField = iota
	fieldPrincipal
	fieldKey
	numSignInFields
)

type signInModel struct {
	dial       func(serverURL string) *client.Client
	store      auth.Store
	fields     [numSignInFields]string
	focus      signInField
	submitting bool
	statusMsg  string
	width      int
}

// signedInMsg carries the result of a sign-in attempt.
type signedInMsg struct {
	principal domain.Principal
	server    string
	err       error
}

func newSignInModel(dial func(string) *client.Client, store auth.Store, server string) signInModel {
	m := signInModel{dial: dial, store: store}
	m.fields[fieldServer] = server
	if server != "" {
		m.focus = fieldPrincipal
	}
	return m
}

func (m signInModel) Update(msg tea.Msg) (signInModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case signedInMsg:
		m.submitting = false
		if msg.err != nil {
			m.statusMsg = "sign in failed"
		} else {
			m.statusMsg = ""
			m.fields[fieldKey] = ""
		}
	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m signInModel) updateKeys(msg tea.KeyMsg) (signInModel, tea.Cmd) {
	m.statusMsg = ""

	switch msg.String() {
	case "ctrl+s":
		return m.submit()
	case "tab", "down":
		m.focus = (m.focus + 1) % numSignInFields
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numSignInFields) % numSignInFields
	case "enter":
		if m.focus == fieldKey {
			return m.submit()
		}
		m.focus++
	default:
		f := &m.fields[m.focus]
		*f = editRune(*f, msg.String())
	}
	return m, nil
}

func (m signInModel) submit() (signInModel, tea.Cmd) {
	server := strings.TrimRight(strings.TrimSpace(m.fields[fieldServer]), "/")
	principal := domain.Principal(strings.TrimSpace(m.fields[fieldPrincipal]))
	keyPath := strings.TrimSpace(m.fields[fieldKey])

	if u, err := url.Parse(server); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		m.statusMsg = "server must be an http(s) URL"
		m.focus = fieldServer
		return m, nil
	}
	if principal == "" {
		m.statusMsg = "principal is required"
		m.focus = fieldPrincipal
		return m, nil
	}
	if keyPath == "" {
		m.statusMsg = "key file is required"
		m.focus = fieldKey
		return m, nil
	}

	m.submitting = true
	dial, store := m.dial, m.store
	return m, func() tea.Msg {
		_, err := auth.Login(context.Background(), dial(server), store, principal, keyPath)
		return signedInMsg{principal: principal, server: server, err: err}
	}
}

func (m signInModel) View() string {
	var b strings.Builder

	b.WriteString("\n " + selectedStyle.Render("Sign in") + "  " +
		dimStyle.Render("answer the server's challenge with your ed25519 key") + "\n\n")

	labels := [numSignInFields]string{"server", "principal", "key file"}
	placeholders := [numSignInFields]string{"http://localhost:4000", "admin", "~/.eventview/admin.key"}

	for i := signInField(0); i < numSignInFields; i++ {
		cursor := "  "
		style := metaStyle
		if i == m.focus {
			cursor = accentStyle.Render("▸") + " "
			style = selectedStyle
		}
		fmt.Fprintf(&b, " %s%s  %s\n", cursor, style.Render(fmt.Sprintf("%-10s", labels[i])),
			renderInput(m.fields[i], placeholders[i], i == m.focus))
	}

	b.WriteString("\n")
	if m.submitting {
		b.WriteString(" " + dimStyle.Render("signing in..."))
	} else if m.statusMsg != "" {
		b.WriteString(" " + liveStyle.Render(m.statusMsg))
	}
	return b.String()
}
