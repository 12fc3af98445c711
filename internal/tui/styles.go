package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Shimmer animation for the EVENTVIEW logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "E V E N T V I E W" as a wave of light moving
// left to right. Deep slate blue (#1b2a44) -> bright sky (#60a5fa).
func renderShimmerLogo(frame int) string {
	const text = "EVENTVIEW"
	n := len(text)

	var out strings.Builder
	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		// Slow breathing tide
		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(27 + b*(96-27))
		g := clampByte(42 + b*(165-42))
		bl := clampByte(68 + b*(250-68))

		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)
		out.WriteString(lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(color)).
			Render(string(text[i])))

		if i < n-1 {
			out.WriteString("  ")
		}
	}

	return out.String()
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#60a5fa")).
			Bold(true)

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#60a5fa"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#606878"))

	principalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844")).
			Bold(true)

	liveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f87171")).
			Bold(true)

	filterChipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Background(lipgloss.Color("#1e2a44")).
			Padding(0, 1)

	jsonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a0a8b8"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#60a5fa")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	// Toast rack
	toastSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#0a0a10")).
				Background(lipgloss.Color("#34d474")).
				Padding(0, 1)

	toastFailureStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f4f4f8")).
				Background(lipgloss.Color("#d05050")).
				Padding(0, 1)

	// Detail overlay frame
	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3a4a6a")).
			Padding(0, 1)

	// Selected row background
	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))

	// Channel colours for the dot in the events list
	channelColors = map[string]lipgloss.Color{
		"security":    lipgloss.Color("#d05050"),
		"system":      lipgloss.Color("#60a0e0"),
		"application": lipgloss.Color("#34d474"),
		"setup":       lipgloss.Color("#d4a844"),
	}
)

// ChannelStyle returns a style coloured for a Windows event log channel.
func ChannelStyle(channel string) lipgloss.Style {
	if c, ok := channelColors[strings.ToLower(channel)]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#606878"))
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	desc  string
	url   string
}

// helpItems lists the links shown for the current server.
func helpItems(serverURL string) []helpItem {
	if serverURL == "" {
		return nil
	}
	return []helpItem{
		{"Web viewer", serverURL, serverURL},
	}
}

// helpView renders the help overlay with a cursor over the links.
func helpView(serverURL string, cursor int) string {
	title := searchStyle.Render("E V E N T V I E W")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	selStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#60a5fa"))
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	commands := []struct{ cmd, desc string }{
		{"eventview", "Browse events (interactive TUI)"},
		{"eventview login", "Sign in with an ed25519 key"},
		{"eventview logout", "Forget the stored token"},
		{"eventview status", "Show the server and principal"},
		{"eventview server", "Show or set the server URL"},
		{"eventview open", "Open the web viewer"},
		{"eventview version", "Show version"},
	}
	keys := []struct{ key, desc string }{
		{"/", "add a filter, e.g. principal eq alice"},
		{"f", "clear filters"},
		{"n / p", "next / previous page"},
		{"l", "toggle live stream"},
		{"enter", "event detail (click outside to close)"},
		{"c", "copy event id"},
		{"x", "dismiss oldest notification"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", title)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Keys"))
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", k.key)), descStyle.Render(k.desc))
	}

	items := helpItems(serverURL)
	if len(items) > 0 {
		fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
		for i, item := range items {
			label := cmdStyle.Render(fmt.Sprintf("%-20s", item.label))
			prefix := "    "
			if i == cursor {
				label = selStyle.Render(fmt.Sprintf("%-20s", item.label))
				prefix = "  > "
			}
			fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(item.desc))
		}
	}
	return b.String()
}
