package tui

import tea "github.com/charmbracelet/bubbletea"

// rect is a screen region in cells.
type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// clickOutsideMsg reports a left click outside the watched region.
type clickOutsideMsg struct {
	id string
}

// clickOutside watches mouse presses for a mounted overlay. The app holds
// one while the overlay is open and drops it when the overlay closes, so a
// detached watcher never fires.
type clickOutside struct {
	id     string
	bounds rect
}

func watchClickOutside(id string, bounds rect) *clickOutside {
	return &clickOutside{id: id, bounds: bounds}
}

// resize moves the watched region after a relayout.
func (c *clickOutside) resize(bounds rect) {
	c.bounds = bounds
}

// check returns a command yielding clickOutsideMsg when msg is a left press
// outside the region, and nil otherwise.
func (c *clickOutside) check(msg tea.MouseMsg) tea.Cmd {
	if c == nil {
		return nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	if c.bounds.contains(msg.X, msg.Y) {
		return nil
	}
	id := c.id
	return func() tea.Msg { return clickOutsideMsg{id: id} }
}
