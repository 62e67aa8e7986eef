package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

func (m *model) View() string {
	var body string
	var bindings []key.Binding
	switch m.overlays.Current() {
	case OverlayCapture:
		body, bindings = m.viewCapture(), m.keys.captureHelp()
	case OverlaySearch:
		body, bindings = m.viewSearch(), m.keys.searchHelp()
	case OverlayPreview:
		body, bindings = m.viewPreview(), m.keys.previewHelp()
	default:
		body, bindings = m.viewIdle(), m.keys.idleHelp()
	}
	return pageStyle.Render(joinNonEmpty([]string{
		body,
		m.statusBarView(),
		m.help.ShortHelpView(bindings),
	}))
}

func (m *model) viewIdle() string {
	return joinNonEmpty([]string{
		lipgloss.JoinVertical(lipgloss.Left, renderLogo(), taglineStyle.Render(heroTagline)),
		helperStyle.Render("Ctrl+O to capture a note, Ctrl+K to search. Esc hides muninn."),
	})
}

func (m *model) statusBarView() string {
	stats := []string{strings.ToUpper(m.overlays.Current().String())}
	if n := m.capture.staging.Len(); n > 0 {
		stats = append(stats, fmt.Sprintf("%d staged", n))
	}
	stats = append(stats, m.jobStatusBadges()...)
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) jobStatusBadges() []string {
	if len(m.running) == 0 {
		return nil
	}
	counts := map[jobKind]int{}
	for _, snap := range m.running {
		counts[snap.Kind]++
	}
	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	badges := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		badges = append(badges, fmt.Sprintf("%s…", kind))
	}
	return badges
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func renderLogo() string {
	if len(logoArtLines) == 0 {
		return ""
	}
	width := 0
	lineRunes := make([][]rune, len(logoArtLines))
	for i, line := range logoArtLines {
		runes := []rune(line)
		lineRunes[i] = runes
		if len(runes) > width {
			width = len(runes)
		}
	}
	width++
	height := len(logoArtLines) + 1

	type cell struct {
		r     rune
		style lipgloss.Style
	}
	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}
	// Shadow first, offset one cell down-right, then the face on top.
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r != ' ' {
				grid[y+1][x+1] = cell{r: r, style: logoShadowStyle}
			}
		}
	}
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r != ' ' {
				grid[y][x] = cell{r: r, style: logoFaceStyle}
			}
		}
	}

	lines := make([]string, height)
	for y, row := range grid {
		var b strings.Builder
		for _, c := range row {
			if c.r == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
		lines[y] = b.String()
	}
	return logoContainerStyle.Render(strings.Join(lines, "\n"))
}
