// Package trigger turns files dropped into a run directory into focus events,
// so a window-manager hotkey can run `muninn focus search` against a live UI.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/csheth/muninn/internal/backend"
)

// ErrUnknownEvent is returned by Fire for events the UI does not understand.
var ErrUnknownEvent = errors.New("unknown event")

// Watcher emits an event for each trigger file that appears in its directory.
type Watcher struct {
	dir    string
	logger *slog.Logger
	fs     *fsnotify.Watcher
	events chan backend.Event
	done   chan struct{}
}

// Watch starts watching dir, creating it if needed. Stale trigger files left by
// a previous run are removed without being delivered.
func Watch(ctx context.Context, dir string, logger *slog.Logger) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create trigger dir: %w", err)
	}
	for _, ev := range []backend.Event{backend.EventFocusSearch, backend.EventFocusCapture} {
		_ = os.Remove(filepath.Join(dir, string(ev)))
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		dir:    dir,
		logger: logger,
		fs:     fw,
		events: make(chan backend.Event, 4),
		done:   make(chan struct{}),
	}
	go w.loop(ctx)
	return w, nil
}

// Events delivers focus events until the watcher stops.
func (w *Watcher) Events() <-chan backend.Event { return w.events }

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	err := w.fs.Close()
	<-w.done
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	defer close(w.events)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			focus, ok := backend.ParseEvent(filepath.Base(ev.Name))
			if !ok {
				continue
			}
			// Create and Write can both fire for one trigger; whoever removes the
			// file delivers it.
			if err := os.Remove(ev.Name); err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					w.logger.Warn("trigger cleanup failed", "file", ev.Name, "error", err)
				}
				continue
			}
			w.logger.Debug("trigger received", "event", focus)
			select {
			case w.events <- focus:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Error("trigger watcher error", "error", err)
		}
	}
}

// Fire drops a trigger file for ev into dir.
func Fire(dir string, ev backend.Event) error {
	focus, ok := backend.ParseEvent(string(ev))
	if !ok {
		return fmt.Errorf("%q: %w", ev, ErrUnknownEvent)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create trigger dir: %w", err)
	}
	tmp := filepath.Join(dir, "."+string(focus)+".tmp")
	stamp := strconv.FormatInt(time.Now().UnixNano(), 10)
	if err := os.WriteFile(tmp, []byte(stamp), 0o644); err != nil {
		return fmt.Errorf("write trigger: %w", err)
	}
	return os.Rename(tmp, filepath.Join(dir, string(focus)))
}
