package tui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"

	"github.com/csheth/muninn/internal/backend"
)

type searchState int

const (
	searchIdle searchState = iota
	searchDebouncing
	searchLoading
	searchResults
	searchEmpty
	searchError
)

type searchView struct {
	input    textinput.Model
	state    searchState
	query    string
	results  []backend.SearchResult
	selected int
	err      error
	slot     taskSlot
	debounce time.Duration
}

func newSearchView(debounce time.Duration) searchView {
	input := textinput.New()
	input.Placeholder = searchPlaceholder
	input.Prompt = "🔍 "
	input.CharLimit = 200
	input.Width = 60
	if debounce <= 0 {
		debounce = defaultSearchDebounce
	}
	return searchView{input: input, selected: -1, debounce: debounce}
}

// setQuery reacts to an edited query. Any earlier request is superseded; a
// blank query clears immediately without a backend call.
func (s *searchView) setQuery(query string) tea.Cmd {
	token := s.slot.Supersede()
	if strings.TrimSpace(query) == "" {
		s.state = searchIdle
		s.query = ""
		s.results = nil
		s.selected = -1
		s.err = nil
		return nil
	}
	s.state = searchDebouncing
	return tea.Tick(s.debounce, func(time.Time) tea.Msg {
		return searchDebounceMsg{token: token, query: query}
	})
}

// apply installs a result set. Stale results report false and change nothing.
func (s *searchView) apply(msg searchResultMsg) bool {
	if !s.slot.Current(msg.token) {
		return false
	}
	s.slot.Finish(msg.token)
	s.query = msg.query
	s.selected = -1
	if msg.err != nil {
		s.state = searchError
		s.err = msg.err
		s.results = nil
		return true
	}
	s.err = nil
	s.results = msg.results
	if len(msg.results) == 0 {
		s.state = searchEmpty
	} else {
		s.state = searchResults
	}
	return true
}

// move steps the selection with wrap-around. From no selection, down lands
// on the first result and up on the last.
func (s *searchView) move(delta int) {
	n := len(s.results)
	if n == 0 {
		s.selected = -1
		return
	}
	if s.selected < 0 {
		if delta > 0 {
			s.selected = 0
		} else {
			s.selected = n - 1
		}
		return
	}
	s.selected = ((s.selected+delta)%n + n) % n
}

func (s *searchView) current() (backend.SearchResult, bool) {
	if s.selected < 0 || s.selected >= len(s.results) {
		return backend.SearchResult{}, false
	}
	return s.results[s.selected], true
}

func (s *searchView) footer() string {
	switch s.state {
	case searchResults, searchEmpty:
		return resultCountLabel(len(s.results))
	default:
		return ""
	}
}

func resultCountLabel(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

// highlightQuery wraps every case-insensitive occurrence of query in content.
func renderHighlight(match string) string { return searchHighlightStyle.Render(match) }

func highlightQuery(content, query string, render func(string) string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return content
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return content
	}
	return re.ReplaceAllStringFunc(content, render)
}

func (m *model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	s := &m.search
	switch {
	case key.Matches(msg, m.keys.Down):
		s.move(1)
		return nil
	case key.Matches(msg, m.keys.Up):
		s.move(-1)
		return nil
	case key.Matches(msg, m.keys.Activate):
		return m.openPreview()
	}
	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if s.input.Value() == before {
		return cmd
	}
	return tea.Batch(cmd, s.setQuery(s.input.Value()))
}

func (m *model) dispatchSearch(msg searchDebounceMsg) tea.Cmd {
	s := &m.search
	ctx, ok := s.slot.Context(msg.token)
	if !ok {
		return nil
	}
	s.state = searchLoading
	m.logger.Debug("search dispatched", "query", msg.query)
	return tea.Batch(m.spinner.Tick, m.jobs.Start(ctx, jobKindSearch, searchNotesJob(m.config.Backend, msg.token, msg.query)))
}

func (m *model) applySearchResult(msg searchResultMsg) {
	if !m.search.apply(msg) {
		return
	}
	if msg.err != nil {
		m.logger.Error("search failed", "query", msg.query, "error", msg.err)
	}
}

func (m *model) openPreview() tea.Cmd {
	result, ok := m.search.current()
	if !ok {
		return nil
	}
	m.preview.open(result, m.now())
	m.preview.render(m.layout.contentWidth)
	return m.show(OverlayPreview)
}

func (m *model) viewSearch() string {
	s := &m.search
	parts := []string{sectionHeaderStyle.Render("Search"), s.input.View()}
	switch s.state {
	case searchDebouncing, searchLoading:
		parts = append(parts, helperStyle.Render(m.spinner.View()+" Searching…"))
	case searchEmpty:
		parts = append(parts, helperStyle.Render("No notes match"))
	case searchError:
		parts = append(parts, errorStyle.Render(userFacingError("Search failed", s.err)))
	case searchResults:
		parts = append(parts, m.resultListView())
	}
	if footer := s.footer(); footer != "" {
		parts = append(parts, helperStyle.Render(footer))
	}
	return joinNonEmpty(parts)
}

func (m *model) resultListView() string {
	s := &m.search
	width := m.layout.contentWidth - 4
	if width < 20 {
		width = 20
	}
	visible := m.layout.resultsHeight
	start := 0
	if s.selected >= visible {
		start = s.selected - visible + 1
	}
	end := start + visible
	if end > len(s.results) {
		end = len(s.results)
	}
	now := m.now()
	lines := make([]string, 0, end-start)
	for idx := start; idx < end; idx++ {
		result := s.results[idx]
		excerpt := strings.Join(strings.Fields(result.Content), " ")
		stamp := relativeTime(now, result.Timestamp)
		excerpt = truncate.StringWithTail(excerpt, uint(width-len(stamp)-2), "…")
		excerpt = highlightQuery(excerpt, s.query, renderHighlight)
		if idx == s.selected {
			lines = append(lines, currentLineStyle.Render("▸ ")+excerpt+"  "+helperStyle.Render(stamp))
			continue
		}
		lines = append(lines, "  "+excerpt+"  "+helperStyle.Render(stamp))
	}
	return strings.Join(lines, "\n")
}
