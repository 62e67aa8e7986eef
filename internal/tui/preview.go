package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/muninn/internal/backend"
)

type previewView struct {
	note     backend.SearchResult
	openedAt time.Time
	viewport viewport.Model
	style    string

	renderer      *glamour.TermRenderer
	rendererWidth int

	copied      bool
	copyToken   int
	banner      string
	bannerToken int
}

func newPreviewView(style string) previewView {
	vp := viewport.New(80, 12)
	vp.MouseWheelEnabled = true
	return previewView{viewport: vp, style: style}
}

func (p *previewView) open(note backend.SearchResult, now time.Time) {
	p.note = note
	p.openedAt = now
	p.copied = false
	p.banner = ""
	p.viewport.GotoTop()
}

// render lays the note body out for width, as markdown when possible.
func (p *previewView) render(width int) {
	if width <= 0 {
		width = 80
	}
	p.viewport.Width = width
	p.viewport.SetContent(p.renderBody(width))
}

func (p *previewView) renderBody(width int) string {
	text := strings.TrimSpace(p.note.Text)
	if text == "" {
		return helperStyle.Render("(empty note)")
	}
	if p.style != "" && p.style != "notty" {
		if p.renderer == nil || p.rendererWidth != width {
			r, err := glamour.NewTermRenderer(glamour.WithStandardStyle(p.style), glamour.WithWordWrap(width))
			if err == nil {
				p.renderer = r
				p.rendererWidth = width
			}
		}
		if p.renderer != nil {
			if out, err := p.renderer.Render(text); err == nil {
				return strings.Trim(out, "\n")
			}
		}
	}
	return wordwrap.String(text, width)
}

// enterSuppressed swallows the Enter that opened the preview from Search.
func (p *previewView) enterSuppressed(now time.Time) bool {
	return now.Sub(p.openedAt) < previewEnterGuard
}

func (p *previewView) showBanner(text string) tea.Cmd {
	p.bannerToken++
	p.banner = text
	return expireCmd(errorBannerDuration, expirePreviewBanner, p.bannerToken)
}

func (p *previewView) expire(msg expireMsg) {
	switch msg.target {
	case expireCopied:
		if msg.token == p.copyToken {
			p.copied = false
		}
	case expirePreviewBanner:
		if msg.token == p.bannerToken {
			p.banner = ""
		}
	}
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

func relativeTime(now, ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	diff := now.Sub(ts)
	switch {
	case diff < time.Hour:
		return "just now"
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return ts.Local().Format("Jan 2, 2006")
	}
}

func attachmentIcon(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "🖼"
	case strings.HasPrefix(mimeType, "application/pdf"):
		return "📕"
	case strings.HasPrefix(mimeType, "text/"):
		return "📝"
	default:
		return "📎"
	}
}

func (m *model) updatePreview(msg tea.KeyMsg) tea.Cmd {
	p := &m.preview
	switch {
	case key.Matches(msg, m.keys.Copy):
		p.copyToken++
		return m.jobs.Start(context.Background(), jobKindCopy, copyTextJob(m.clipboard, p.copyToken, p.note.Text))
	case key.Matches(msg, m.keys.Edit):
		if msg.Type == tea.KeyEnter && p.enterSuppressed(m.now()) {
			return nil
		}
		m.logger.Debug("launching editor", "note", p.note.ID)
		return launchEditorCmd(m.config.Backend, p.note.Text)
	case key.Matches(msg, m.keys.ScrollDown):
		p.viewport.LineDown(1)
		return nil
	case key.Matches(msg, m.keys.ScrollUp):
		p.viewport.LineUp(1)
		return nil
	}
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return cmd
}

func (m *model) applyCopyResult(msg copyResultMsg) tea.Cmd {
	p := &m.preview
	if msg.err != nil {
		m.logger.Warn("copy to clipboard failed", "error", msg.err)
		return nil
	}
	if msg.token != p.copyToken {
		return nil
	}
	p.copied = true
	return expireCmd(copiedFeedbackDuration, expireCopied, msg.token)
}

func (m *model) applyEditorResult(msg editorResultMsg) tea.Cmd {
	if msg.err != nil {
		m.logger.Error("editor failed", "error", msg.err)
		return m.preview.showBanner(userFacingError("Editor failed", msg.err))
	}
	if m.overlays.Current() != OverlayPreview {
		return nil
	}
	return m.show(OverlaySearch)
}

func (m *model) viewPreview() string {
	p := &m.preview
	meta := []string{
		fmt.Sprintf("%d words", wordCount(p.note.Text)),
	}
	if stamp := relativeTime(m.now(), p.note.Timestamp); stamp != "" {
		meta = append(meta, stamp)
	}
	parts := []string{
		sectionHeaderStyle.Render("Note") + "  " + helperStyle.Render(strings.Join(meta, " • ")),
		p.viewport.View(),
	}
	if len(p.note.Attachments) > 0 {
		lines := []string{helperStyle.Render(fmt.Sprintf("Attachments (%d)", len(p.note.Attachments)))}
		for _, a := range p.note.Attachments {
			lines = append(lines, fmt.Sprintf("  %s %s", attachmentIcon(a.FileType), a.FileName))
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	var notices []string
	if p.copied {
		notices = append(notices, successStyle.Render("Copied ✓"))
	}
	if p.banner != "" {
		notices = append(notices, errorStyle.Render(p.banner))
	}
	parts = append(parts, strings.Join(notices, "  "))
	return joinNonEmpty(parts)
}
