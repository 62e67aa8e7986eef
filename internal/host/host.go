// Package host wires the local store and editor into a backend.Backend for the
// terminal build.
package host

import (
	"context"
	"log/slog"
	"os/exec"

	"github.com/csheth/muninn/internal/backend"
	"github.com/csheth/muninn/internal/editor"
)

// Notes is the persistence half of the backend.
type Notes interface {
	SaveNote(ctx context.Context, note backend.Note) error
	SearchNotes(ctx context.Context, query string) ([]backend.SearchResult, error)
}

// Sender ships the current day somewhere else.
type Sender interface {
	Send(ctx context.Context) error
}

// Local serves backend calls in-process.
type Local struct {
	notes  Notes
	editor editor.Launcher
	logger *slog.Logger
	sender Sender
}

var _ backend.Backend = (*Local)(nil)

// Option configures a Local.
type Option func(*Local)

// WithSendOnHide uploads the day's bundle every time the UI hides.
func WithSendOnHide(s Sender) Option {
	return func(l *Local) { l.sender = s }
}

// NewLocal returns a backend backed by notes and launcher.
func NewLocal(notes Notes, launcher editor.Launcher, logger *slog.Logger, opts ...Option) *Local {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Local{notes: notes, editor: launcher, logger: logger}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Local) SaveNote(ctx context.Context, note backend.Note) error {
	if err := l.notes.SaveNote(ctx, note); err != nil {
		return err
	}
	l.logger.Info("note saved", "id", note.ID, "attachments", len(note.Attachments))
	return nil
}

func (l *Local) SearchNotes(ctx context.Context, query string) ([]backend.SearchResult, error) {
	return l.notes.SearchNotes(ctx, query)
}

func (l *Local) PrepareEditor(text string) (*exec.Cmd, func(), error) {
	return l.editor.Prepare(text)
}

// Hide has no window to hide in a terminal; the UI exits after it returns.
// A failed upload is logged and does not block the hide.
func (l *Local) Hide(ctx context.Context) error {
	l.logger.Debug("hide requested")
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.sender != nil {
		if err := l.sender.Send(ctx); err != nil {
			l.logger.Warn("send on hide failed", "error", err)
		}
	}
	return nil
}
