package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/muninn/internal/backend"
	"github.com/csheth/muninn/internal/config"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Backend            backend.Backend
	Events             <-chan backend.Event
	Clipboard          Clipboard
	Logger             *slog.Logger
	DismissKey         string
	SearchDebounce     time.Duration
	MaxAttachmentBytes int64
	PreviewStyle       string
	Start              Overlay
	Now                func() time.Time
}

// New returns a tea.Model ready to be mounted into a Program.
func New(cfg Config) tea.Model {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = SystemClipboard{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.DismissKey == "" {
		cfg.DismissKey = config.DismissEscape
	}
	if cfg.MaxAttachmentBytes <= 0 {
		cfg.MaxAttachmentBytes = defaultMaxAttachment
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &model{
		config:    cfg,
		logger:    cfg.Logger,
		clipboard: cfg.Clipboard,
		overlays:  NewCoordinator(OverlayNone),
		keys:      newKeyMap(cfg.DismissKey),
		help:      help.New(),
		layout:    newPageLayout(),
		jobs:      newJobBus(cfg.Logger),
		running:   map[string]jobSnapshot{},
		spinner:   spin,
		capture:   newCaptureView(),
		search:    newSearchView(cfg.SearchDebounce),
		preview:   newPreviewView(cfg.PreviewStyle),
	}
	m.startCmd = m.show(cfg.Start)
	return m
}

type model struct {
	config    Config
	logger    *slog.Logger
	clipboard Clipboard
	overlays  *Coordinator
	keys      keyMap
	help      help.Model
	layout    pageLayout
	jobs      *jobBus
	running   map[string]jobSnapshot
	spinner   spinner.Model

	capture captureView
	search  searchView
	preview previewView

	startCmd tea.Cmd
	hiding   bool
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.startCmd, waitForEvent(m.config.Events))
}

func (m *model) now() time.Time { return m.config.Now() }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case focusEventMsg:
		var cmd tea.Cmd
		if m.overlays.HandleEvent(msg.event) {
			m.logger.Debug("focus event", "event", msg.event)
			cmd = m.focusCurrent()
		}
		return m, tea.Batch(cmd, waitForEvent(m.config.Events))
	case eventsClosedMsg:
		m.logger.Debug("event source closed")
		return m, nil
	case jobSignalMsg:
		m.running[msg.Snapshot.ID] = msg.Snapshot
		return m, nil
	case jobResultEnvelope:
		delete(m.running, msg.Snapshot.ID)
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case saveResultMsg:
		if msg.err != nil {
			m.logger.Error("save failed", "error", msg.err, "attachments", m.capture.staging.Len())
		}
		return m, m.capture.finishSubmit(msg)
	case searchDebounceMsg:
		return m, m.dispatchSearch(msg)
	case searchResultMsg:
		m.applySearchResult(msg)
		return m, nil
	case hideResultMsg:
		m.hiding = false
		if msg.err != nil {
			m.logger.Error("hide failed", "error", msg.err)
			return m, nil
		}
		return m, tea.Quit
	case copyResultMsg:
		return m, m.applyCopyResult(msg)
	case editorResultMsg:
		return m, m.applyEditorResult(msg)
	case clipboardReadMsg:
		return m, m.applyClipboard(msg)
	case shakeTickMsg:
		return m, m.capture.advanceShake(msg)
	case expireMsg:
		m.capture.expire(msg)
		m.preview.expire(msg)
		return m, nil
	}

	if m.capture.picking {
		var cmd tea.Cmd
		m.capture.picker, cmd = m.capture.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) busy() bool {
	return m.capture.submitting || m.search.state == searchLoading || m.search.state == searchDebouncing
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	inEntry, entryEmpty := m.textEntryState()
	switch m.keys.globalIntent(msg, m.overlays.Current(), inEntry, entryEmpty) {
	case intentQuit:
		return tea.Quit
	case intentSearch:
		return m.show(OverlaySearch)
	case intentCapture:
		return m.show(OverlayCapture)
	case intentSubmit:
		return m.submitCapture()
	case intentDismiss:
		return m.dismiss()
	}

	switch m.overlays.Current() {
	case OverlayCapture:
		return m.updateCapture(msg)
	case OverlaySearch:
		return m.updateSearch(msg)
	case OverlayPreview:
		return m.updatePreview(msg)
	}
	return nil
}

func (m *model) textEntryState() (inEntry, empty bool) {
	switch m.overlays.Current() {
	case OverlayCapture:
		return m.capture.inEntry(), m.capture.input.Value() == ""
	case OverlaySearch:
		return true, m.search.input.Value() == ""
	default:
		return false, true
	}
}

// show switches overlays and moves keyboard focus with them.
func (m *model) show(o Overlay) tea.Cmd {
	m.overlays.Show(o)
	return m.focusCurrent()
}

func (m *model) focusCurrent() tea.Cmd {
	m.capture.blur()
	m.search.input.Blur()
	switch m.overlays.Current() {
	case OverlayCapture:
		return m.capture.focus()
	case OverlaySearch:
		return m.search.input.Focus()
	}
	return nil
}

// dismiss backs out one level. Capture's picker and attachment list close
// before the overlay does.
func (m *model) dismiss() tea.Cmd {
	if m.overlays.Current() == OverlayCapture {
		switch {
		case m.capture.picking:
			m.capture.picking = false
			return m.capture.focus()
		case m.capture.listFocus:
			m.capture.listFocus = false
			return m.capture.focus()
		}
	}
	if !m.overlays.Dismiss() {
		return m.focusCurrent()
	}
	if m.hiding {
		return nil
	}
	m.hiding = true
	return m.jobs.Start(context.Background(), jobKindHide, hideJob(m.config.Backend))
}

func (m *model) resize(width, height int) {
	m.layout.Update(width, height)
	m.help.Width = m.layout.contentWidth
	m.capture.setWidth(m.layout.contentWidth - captureMargin)
	m.search.input.Width = m.layout.contentWidth - 4
	m.preview.viewport.Height = m.layout.previewHeight
	m.preview.render(m.layout.contentWidth)
}
