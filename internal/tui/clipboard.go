package tui

import "github.com/atotto/clipboard"

// Clipboard is the slice of the system clipboard the UI uses.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// SystemClipboard talks to the OS clipboard (pbcopy, xclip, wl-copy, ...).
type SystemClipboard struct{}

func (SystemClipboard) ReadAll() (string, error) { return clipboard.ReadAll() }

func (SystemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }
