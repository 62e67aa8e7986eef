package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/csheth/muninn/internal/backend"
)

type saveResultMsg struct {
	token int
	note  backend.Note
	err   error
}

type searchDebounceMsg struct {
	token int
	query string
}

type searchResultMsg struct {
	token   int
	query   string
	results []backend.SearchResult
	err     error
}

type hideResultMsg struct {
	err error
}

type editorResultMsg struct {
	err error
}

type copyResultMsg struct {
	token int
	err   error
}

type clipboardReadMsg struct {
	text         string
	asAttachment bool
	err          error
}

type shakeTickMsg struct {
	token int
	frame int
}

type focusEventMsg struct {
	event backend.Event
}

type eventsClosedMsg struct{}

func saveNoteJob(b backend.Backend, token int, text string, items []StagedAttachment, maxBytes int64, now time.Time) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(ctx, saveTimeout)
		defer cancel()
		attachments, err := ConvertAll(ctx, items, maxBytes)
		if err != nil {
			err = fmt.Errorf("attachments: %w", err)
			return saveResultMsg{token: token, err: err}, err
		}
		note := backend.Note{
			ID:          uuid.NewString(),
			Text:        text,
			Attachments: attachments,
			Timestamp:   now,
		}
		if err := b.SaveNote(ctx, note); err != nil {
			return saveResultMsg{token: token, note: note, err: err}, err
		}
		return saveResultMsg{token: token, note: note}, nil
	}
}

func searchNotesJob(b backend.Backend, token int, query string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(ctx, searchTimeout)
		defer cancel()
		results, err := b.SearchNotes(ctx, query)
		return searchResultMsg{token: token, query: query, results: results, err: err}, err
	}
}

func hideJob(b backend.Backend) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		err := b.Hide(ctx)
		return hideResultMsg{err: err}, err
	}
}

func copyTextJob(cb Clipboard, token int, text string) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		err := cb.WriteAll(text)
		return copyResultMsg{token: token, err: err}, err
	}
}

func readClipboardCmd(cb Clipboard, asAttachment bool) tea.Cmd {
	return func() tea.Msg {
		text, err := cb.ReadAll()
		return clipboardReadMsg{text: text, asAttachment: asAttachment, err: err}
	}
}

// launchEditorCmd suspends the program while the editor owns the terminal.
func launchEditorCmd(b backend.Backend, text string) tea.Cmd {
	cmd, cleanup, err := b.PrepareEditor(text)
	if err != nil {
		return func() tea.Msg { return editorResultMsg{err: err} }
	}
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		if cleanup != nil {
			cleanup()
		}
		return editorResultMsg{err: err}
	})
}

func waitForEvent(events <-chan backend.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return focusEventMsg{event: ev}
	}
}

func expireCmd(d time.Duration, target expireTarget, token int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return expireMsg{target: target, token: token}
	})
}

func shakeCmd(token, frame int) tea.Cmd {
	return tea.Tick(shakeFrameInterval, func(time.Time) tea.Msg {
		return shakeTickMsg{token: token, frame: frame}
	})
}

// userFacingError trims wrapped context down to something that fits a
// one-line banner.
func userFacingError(prefix string, err error) string {
	switch {
	case errors.Is(err, ErrAttachmentTooLarge):
		return prefix + ": attachment is too large"
	case errors.Is(err, context.DeadlineExceeded):
		return prefix + ": timed out"
	}
	msg := err.Error()
	if idx := strings.Index(msg, "\n"); idx >= 0 {
		msg = msg[:idx]
	}
	return fmt.Sprintf("%s: %s", prefix, msg)
}
