package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

type captureView struct {
	input      textarea.Model
	picker     filepicker.Model
	staging    Staging
	picking    bool
	listFocus  bool
	listCursor int

	submitting    bool
	submitToken   int
	submittedText string
	submittedIDs  []string
	width         int

	pasted      bool
	pastedToken int
	saved       bool
	savedToken  int
	banner      string
	bannerToken int

	shakeToken  int
	shakeOffset int
}

func newCaptureView() captureView {
	input := textarea.New()
	input.Placeholder = capturePlaceholder
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.SetWidth(72)
	input.SetHeight(minCaptureHeight)

	picker := filepicker.New()
	picker.AutoHeight = false
	picker.Height = 10
	if home, err := os.UserHomeDir(); err == nil {
		picker.CurrentDirectory = home
	}
	return captureView{input: input, picker: picker, width: 72}
}

// inEntry reports whether keys are going to the textarea.
func (c *captureView) inEntry() bool { return !c.picking && !c.listFocus }

func (c *captureView) focus() tea.Cmd {
	if !c.inEntry() {
		return nil
	}
	return c.input.Focus()
}

func (c *captureView) blur() { c.input.Blur() }

func (c *captureView) setWidth(width int) {
	c.width = width
	c.input.SetWidth(width)
	c.resize()
}

// resize grows the textarea with its wrapped content, within the clamp.
func (c *captureView) resize() {
	lines := displayLines(c.input.Value(), c.width-lipgloss.Width(c.input.Prompt))
	if lines < minCaptureHeight {
		lines = minCaptureHeight
	}
	if lines > maxCaptureHeight {
		lines = maxCaptureHeight
	}
	c.input.SetHeight(lines)
}

// displayLines counts the rows text occupies when wrapped at width.
func displayLines(text string, width int) int {
	if width <= 0 {
		return strings.Count(text, "\n") + 1
	}
	rows := 0
	for _, line := range strings.Split(text, "\n") {
		wrapped := wrap.String(wordwrap.String(line, width), width)
		rows += strings.Count(wrapped, "\n") + 1
	}
	return rows
}

// stagePaths stages every readable path and reports the ones that failed.
func (c *captureView) stagePaths(paths []string) (int, error) {
	var (
		added []StagedAttachment
		errs  []error
	)
	for _, path := range paths {
		item, err := AttachmentFromPath(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		added = append(added, item)
	}
	c.staging.Add(added...)
	return len(added), errors.Join(errs...)
}

func (c *captureView) showBanner(text string) tea.Cmd {
	c.bannerToken++
	c.banner = text
	return expireCmd(errorBannerDuration, expireCaptureBanner, c.bannerToken)
}

func (c *captureView) showPasted() tea.Cmd {
	c.pastedToken++
	c.pasted = true
	return expireCmd(pastedIndicatorDuration, expirePasted, c.pastedToken)
}

func (c *captureView) showSaved() tea.Cmd {
	c.savedToken++
	c.saved = true
	return expireCmd(savedFlashDuration, expireSaved, c.savedToken)
}

func (c *captureView) expire(msg expireMsg) {
	switch msg.target {
	case expirePasted:
		if msg.token == c.pastedToken {
			c.pasted = false
		}
	case expireSaved:
		if msg.token == c.savedToken {
			c.saved = false
		}
	case expireCaptureBanner:
		if msg.token == c.bannerToken {
			c.banner = ""
		}
	}
}

func (c *captureView) startShake() tea.Cmd {
	c.shakeToken++
	c.shakeOffset = shakeOffsets[0]
	return shakeCmd(c.shakeToken, 1)
}

func (c *captureView) advanceShake(msg shakeTickMsg) tea.Cmd {
	if msg.token != c.shakeToken {
		return nil
	}
	if msg.frame >= len(shakeOffsets) {
		c.shakeOffset = 0
		return nil
	}
	c.shakeOffset = shakeOffsets[msg.frame]
	return shakeCmd(msg.token, msg.frame+1)
}

// beginSubmit snapshots the note being composed. ok is false when there is
// nothing to save or a save is already running.
func (c *captureView) beginSubmit() (token int, text string, items []StagedAttachment, ok bool) {
	if c.submitting {
		return 0, "", nil, false
	}
	text = strings.TrimSpace(c.input.Value())
	if text == "" && c.staging.Len() == 0 {
		return 0, "", nil, false
	}
	items = c.staging.Items()
	c.submitting = true
	c.submitToken++
	c.submittedText = text
	c.submittedIDs = c.submittedIDs[:0]
	for _, item := range items {
		c.submittedIDs = append(c.submittedIDs, item.ID)
	}
	return c.submitToken, text, items, true
}

// finishSubmit removes what the save sent. Text typed and files staged while
// the save ran stay put. Failures keep everything so the user can retry.
func (c *captureView) finishSubmit(msg saveResultMsg) tea.Cmd {
	if msg.token != c.submitToken {
		return nil
	}
	c.submitting = false
	if msg.err != nil {
		return c.showBanner(userFacingError("Save failed", msg.err))
	}
	if strings.TrimSpace(c.input.Value()) == c.submittedText {
		c.input.Reset()
	}
	for _, id := range c.submittedIDs {
		c.staging.Remove(id)
	}
	c.submittedIDs = nil
	c.submittedText = ""
	if c.staging.Len() == 0 {
		c.listFocus = false
	}
	if c.listCursor >= c.staging.Len() {
		c.listCursor = 0
	}
	c.resize()
	return c.showSaved()
}

func (c *captureView) moveListCursor(delta int) {
	n := c.staging.Len()
	if n == 0 {
		c.listCursor = 0
		return
	}
	c.listCursor = (c.listCursor + delta + n) % n
}

// removeAttachment is the binding layer's remove intent.
func (c *captureView) removeAttachment(id string) bool {
	if !c.staging.Remove(id) {
		return false
	}
	if c.listCursor >= c.staging.Len() {
		c.listCursor = c.staging.Len() - 1
	}
	if c.listCursor < 0 {
		c.listCursor = 0
	}
	if c.staging.Len() == 0 {
		c.listFocus = false
	}
	return true
}

func (m *model) updateCapture(msg tea.KeyMsg) tea.Cmd {
	c := &m.capture
	if c.picking {
		var cmd tea.Cmd
		c.picker, cmd = c.picker.Update(msg)
		if ok, path := c.picker.DidSelectFile(msg); ok {
			c.picking = false
			if _, err := c.stagePaths([]string{path}); err != nil {
				return tea.Batch(c.focus(), c.showBanner(userFacingError("Attach failed", err)))
			}
			return c.focus()
		}
		return cmd
	}

	if c.listFocus {
		switch {
		case key.Matches(msg, m.keys.ToggleList):
			c.listFocus = false
			return c.focus()
		case key.Matches(msg, m.keys.Up):
			c.moveListCursor(-1)
		case key.Matches(msg, m.keys.Down):
			c.moveListCursor(1)
		case key.Matches(msg, m.keys.RemoveSelected):
			items := c.staging.Items()
			if c.listCursor < len(items) {
				c.removeAttachment(items[c.listCursor].ID)
			}
			if !c.listFocus {
				return c.focus()
			}
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Paste):
		return readClipboardCmd(m.clipboard, false)
	case key.Matches(msg, m.keys.PasteAsAttachment):
		return readClipboardCmd(m.clipboard, true)
	case key.Matches(msg, m.keys.PickFile):
		c.picking = true
		c.blur()
		return c.picker.Init()
	case key.Matches(msg, m.keys.RemoveLast):
		c.staging.RemoveLast()
		return nil
	case key.Matches(msg, m.keys.ToggleList):
		if c.staging.Len() == 0 {
			return nil
		}
		c.listFocus = true
		c.listCursor = c.staging.Len() - 1
		c.blur()
		return nil
	}

	// A burst of runes that names existing files is a drag-and-drop.
	if msg.Type == tea.KeyRunes && len(msg.Runes) > 1 {
		if paths, ok := existingFiles(string(msg.Runes)); ok {
			if _, err := c.stagePaths(paths); err != nil {
				return c.showBanner(userFacingError("Attach failed", err))
			}
			return nil
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	c.resize()
	return cmd
}

func (m *model) submitCapture() tea.Cmd {
	token, text, items, ok := m.capture.beginSubmit()
	if !ok {
		return nil
	}
	runner := saveNoteJob(m.config.Backend, token, text, items, m.config.MaxAttachmentBytes, m.now())
	return tea.Batch(m.capture.startShake(), m.spinner.Tick, m.jobs.Start(context.Background(), jobKindSave, runner))
}

func (m *model) applyClipboard(msg clipboardReadMsg) tea.Cmd {
	c := &m.capture
	if msg.err != nil {
		m.logger.Warn("clipboard read failed", "error", msg.err)
		return c.showBanner(userFacingError("Clipboard unavailable", msg.err))
	}
	if msg.asAttachment {
		if strings.TrimSpace(msg.text) == "" {
			return c.showBanner("Clipboard is empty")
		}
		name := fmt.Sprintf("clipboard-%s.txt", m.now().Format("20060102-150405"))
		c.staging.Add(AttachmentFromBytes(name, "text/plain; charset=utf-8", []byte(msg.text)))
		return c.showPasted()
	}
	if paths, ok := existingFiles(msg.text); ok {
		if _, err := c.stagePaths(paths); err != nil {
			return c.showBanner(userFacingError("Attach failed", err))
		}
		return c.showPasted()
	}
	c.input.InsertString(msg.text)
	c.resize()
	return nil
}

func (m *model) viewCapture() string {
	c := &m.capture
	header := sectionHeaderStyle.Render("Capture")
	if c.submitting {
		header = fmt.Sprintf("%s %s", header, helperStyle.Render(m.spinner.View()+" saving…"))
	}
	if c.picking {
		return joinNonEmpty([]string{
			header,
			helperStyle.Render("Pick a file to attach. Enter selects, esc goes back."),
			c.picker.View(),
		})
	}

	margin := captureMargin + c.shakeOffset
	if margin < 0 {
		margin = 0
	}
	parts := []string{
		header,
		lipgloss.NewStyle().MarginLeft(margin).Render(c.input.View()),
		m.attachmentListView(),
	}
	var notices []string
	if c.pasted {
		notices = append(notices, successStyle.Render("Pasted ✓"))
	}
	if c.saved {
		notices = append(notices, successStyle.Render("Saved ✓"))
	}
	if c.banner != "" {
		notices = append(notices, errorStyle.Render(c.banner))
	}
	parts = append(parts, strings.Join(notices, "  "))
	return joinNonEmpty(parts)
}

func (m *model) attachmentListView() string {
	c := &m.capture
	items := c.staging.Items()
	if len(items) == 0 {
		return ""
	}
	lines := []string{helperStyle.Render(fmt.Sprintf("Attachments (%d)", len(items)))}
	for idx, item := range items {
		line := fmt.Sprintf("%s %s  %s", attachmentIcon(item.Type), item.Name, humanize.Bytes(uint64(item.Size)))
		if c.listFocus && idx == c.listCursor {
			lines = append(lines, currentLineStyle.Render("▸ "+line))
			continue
		}
		lines = append(lines, "  "+line)
	}
	return strings.Join(lines, "\n")
}
