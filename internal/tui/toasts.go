package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/eventview/pkg/toast"
)

// maxVisibleToasts caps the rack; older toasts stay in the store until
// they expire or are dismissed.
const maxVisibleToasts = 4

// visibleToasts returns the newest toasts that fit in the rack, oldest first.
func visibleToasts(all []*toast.Toast) []*toast.Toast {
	if len(all) <= maxVisibleToasts {
		return all
	}
	return all[len(all)-maxVisibleToasts:]
}

// renderToast renders one toast line, right-aligned within width.
func renderToast(t *toast.Toast, width int) string {
	style := toastFailureStyle
	icon := "✕ "
	if t.Success {
		style = toastSuccessStyle
		icon = "✓ "
	}
	text := truncStr(t.Content, max(width-6, 8))
	line := style.Render(icon + text)
	pad := width - lipgloss.Width(line) - 1
	if pad < 0 {
		pad = 0
	}
	return lipgloss.NewStyle().PaddingLeft(pad).Render(line)
}

// toastAt returns the toast rendered on rack row idx, or nil.
func toastAt(visible []*toast.Toast, idx int) *toast.Toast {
	if idx < 0 || idx >= len(visible) {
		return nil
	}
	return visible[idx]
}
