package tui

import "github.com/csheth/muninn/internal/backend"

// Coordinator owns the single active overlay. Views never switch overlays
// themselves; they ask the coordinator.
type Coordinator struct {
	current Overlay
}

func NewCoordinator(start Overlay) *Coordinator {
	return &Coordinator{current: start}
}

func (c *Coordinator) Current() Overlay { return c.current }

// Show activates o, replacing whatever was visible. It reports whether the
// overlay changed.
func (c *Coordinator) Show(o Overlay) bool {
	if c.current == o {
		return false
	}
	c.current = o
	return true
}

// HandleEvent applies a backend focus event. Unknown events are ignored.
func (c *Coordinator) HandleEvent(ev backend.Event) bool {
	switch ev {
	case backend.EventFocusCapture:
		c.Show(OverlayCapture)
	case backend.EventFocusSearch:
		c.Show(OverlaySearch)
	default:
		return false
	}
	return true
}

// Dismiss steps one level back: Preview returns to Search, Search and
// Capture close. With nothing open it reports that the window should hide.
func (c *Coordinator) Dismiss() (hide bool) {
	switch c.current {
	case OverlayPreview:
		c.current = OverlaySearch
	case OverlaySearch, OverlayCapture:
		c.current = OverlayNone
	default:
		return true
	}
	return false
}
