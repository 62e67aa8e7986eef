package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/muninn/internal/config"
)

type keyMap struct {
	Quit              key.Binding
	Search            key.Binding
	Capture           key.Binding
	Submit            key.Binding
	Dismiss           key.Binding
	Up                key.Binding
	Down              key.Binding
	Activate          key.Binding
	Paste             key.Binding
	PasteAsAttachment key.Binding
	PickFile          key.Binding
	RemoveLast        key.Binding
	ToggleList        key.Binding
	RemoveSelected    key.Binding
	Copy              key.Binding
	Edit              key.Binding
	ScrollUp          key.Binding
	ScrollDown        key.Binding
}

func newKeyMap(dismissKey string) keyMap {
	dismiss := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back"))
	if dismissKey == config.DismissBackspace {
		dismiss = key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("⌫/esc", "back"))
	}
	return keyMap{
		Quit:              key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Search:            key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "search")),
		Capture:           key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "capture")),
		Submit:            key.NewBinding(key.WithKeys("ctrl+s", "ctrl+j"), key.WithHelp("ctrl+s", "save")),
		Dismiss:           dismiss,
		Up:                key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "prev")),
		Down:              key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "next")),
		Activate:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Paste:             key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "paste")),
		PasteAsAttachment: key.NewBinding(key.WithKeys("alt+v"), key.WithHelp("alt+v", "paste as file")),
		PickFile:          key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "attach")),
		RemoveLast:        key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "drop last")),
		ToggleList:        key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "attachments")),
		RemoveSelected:    key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		Copy:              key.NewBinding(key.WithKeys("c", "y"), key.WithHelp("c", "copy")),
		Edit:              key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		ScrollUp:          key.NewBinding(key.WithKeys("k", "pgup"), key.WithHelp("k", "scroll up")),
		ScrollDown:        key.NewBinding(key.WithKeys("j", "pgdown"), key.WithHelp("j", "scroll down")),
	}
}

type intent int

const (
	intentNone intent = iota
	intentQuit
	intentSearch
	intentCapture
	intentSubmit
	intentDismiss
)

// globalIntent resolves keys that act across overlays. inEntry reports that a
// text control has focus and entryEmpty whether it holds any text: plain
// backspace belongs to the control until there is nothing left to delete.
func (k keyMap) globalIntent(msg tea.KeyMsg, current Overlay, inEntry, entryEmpty bool) intent {
	switch {
	case key.Matches(msg, k.Quit):
		return intentQuit
	case key.Matches(msg, k.Search):
		return intentSearch
	case key.Matches(msg, k.Capture):
		return intentCapture
	case key.Matches(msg, k.Submit):
		if current == OverlayCapture {
			return intentSubmit
		}
		return intentNone
	case key.Matches(msg, k.Dismiss):
		if msg.Type == tea.KeyBackspace && inEntry && !entryEmpty {
			return intentNone
		}
		return intentDismiss
	}
	return intentNone
}

func (k keyMap) captureHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Paste, k.PasteAsAttachment, k.PickFile, k.RemoveLast, k.ToggleList, k.Dismiss}
}

func (k keyMap) searchHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Activate, k.Capture, k.Dismiss}
}

func (k keyMap) previewHelp() []key.Binding {
	return []key.Binding{k.Copy, k.Edit, k.ScrollDown, k.ScrollUp, k.Dismiss}
}

func (k keyMap) idleHelp() []key.Binding {
	return []key.Binding{k.Capture, k.Search, k.Dismiss, k.Quit}
}
