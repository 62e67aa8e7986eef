package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func submit(t *testing.T, m *model) []tea.Msg {
	t.Helper()
	msgs := drain(t, press(m, tea.KeyMsg{Type: tea.KeyCtrlS}))
	deliver(m, msgs)
	return msgs
}

func TestSubmitEmptyCaptureIsNoop(t *testing.T) {
	m, env := newTestModel(t)
	m.show(OverlayCapture)
	if cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlS}); cmd != nil {
		t.Fatalf("empty submit should not schedule work, got %T", cmd())
	}
	m.capture.input.SetValue("   \n  ")
	if cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlS}); cmd != nil {
		t.Fatal("whitespace-only submit should not schedule work")
	}
	if len(env.backend.saved) != 0 {
		t.Fatalf("backend should not be called, got %d saves", len(env.backend.saved))
	}
}

func TestSubmitSavesNoteAndResets(t *testing.T) {
	m, env := newTestModel(t)
	m.show(OverlayCapture)
	m.capture.input.SetValue("  remember the milk\nand eggs  ")
	m.capture.resize()
	path := writeTempFile(t, "list.txt", "milk")
	if _, err := m.capture.stagePaths([]string{path}); err != nil {
		t.Fatalf("stage: %v", err)
	}

	msgs := submit(t, m)
	if _, ok := containsMsg[shakeTickMsg](msgs); !ok {
		t.Fatal("submit should start the shake animation")
	}
	if len(env.backend.saved) != 1 {
		t.Fatalf("expected one save, got %d", len(env.backend.saved))
	}
	note := env.backend.saved[0]
	if note.Text != "remember the milk\nand eggs" {
		t.Fatalf("text not trimmed: %q", note.Text)
	}
	if note.ID == "" || !note.Timestamp.Equal(env.clock.now) {
		t.Fatalf("unexpected id/timestamp: %q %v", note.ID, note.Timestamp)
	}
	if len(note.Attachments) != 1 || note.Attachments[0].FilePath != path || note.Attachments[0].Data != nil {
		t.Fatalf("attachment should travel by path: %+v", note.Attachments)
	}
	if m.capture.input.Value() != "" || m.capture.staging.Len() != 0 {
		t.Fatal("successful save should clear text and attachments")
	}
	if m.capture.input.Height() != minCaptureHeight {
		t.Fatalf("height should collapse to %d, got %d", minCaptureHeight, m.capture.input.Height())
	}
	if !m.capture.saved || m.capture.submitting {
		t.Fatal("saved flash should show once the save completes")
	}
}

func TestSaveKeepsWorkAddedWhileSaving(t *testing.T) {
	m, env := newTestModel(t)
	m.show(OverlayCapture)
	m.capture.input.SetValue("first note")
	cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if !m.capture.submitting {
		t.Fatal("ctrl+s should start a save")
	}

	next := writeTempFile(t, "next.txt", "later")
	if _, err := m.capture.stagePaths([]string{next}); err != nil {
		t.Fatalf("stage: %v", err)
	}
	deliver(m, drain(t, cmd))

	if len(env.backend.saved) != 1 || len(env.backend.saved[0].Attachments) != 0 {
		t.Fatalf("save should carry only the snapshot, got %+v", env.backend.saved)
	}
	if names := stagedNames(m); names != "next.txt" {
		t.Fatalf("file staged during the save must survive, got %q", names)
	}
	if m.capture.input.Value() != "" {
		t.Fatalf("submitted text should clear, got %q", m.capture.input.Value())
	}

	m.capture.input.SetValue("draft")
	cmd = press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m.capture.input.SetValue("draft, continued")
	deliver(m, drain(t, cmd))
	if m.capture.input.Value() != "draft, continued" {
		t.Fatalf("text edited during the save must survive, got %q", m.capture.input.Value())
	}
	if m.capture.staging.Len() != 0 {
		t.Fatal("attachments sent with the second save should be removed")
	}
}

func TestSubmitAttachmentsOnly(t *testing.T) {
	m, env := newTestModel(t)
	m.show(OverlayCapture)
	m.capture.staging.Add(AttachmentFromBytes("clip.txt", "text/plain", []byte("hello")))
	submit(t, m)
	if len(env.backend.saved) != 1 {
		t.Fatal("attachments alone should be enough to save")
	}
	got := env.backend.saved[0].Attachments[0]
	if string(got.Data) != "hello" || got.FilePath != "" {
		t.Fatalf("in-memory attachment should travel inline: %+v", got)
	}
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	m, env := newTestModel(t)
	env.backend.saveErr = errors.New("disk full")
	m.show(OverlayCapture)
	m.capture.input.SetValue("keep me")
	m.capture.staging.Add(AttachmentFromBytes("a.txt", "text/plain", []byte("a")))

	submit(t, m)
	if m.capture.input.Value() != "keep me" || m.capture.staging.Len() != 1 {
		t.Fatal("failed save must keep text and attachments")
	}
	if !strings.Contains(m.capture.banner, "disk full") {
		t.Fatalf("banner should explain the failure, got %q", m.capture.banner)
	}
	if m.capture.submitting {
		t.Fatal("submitting flag should clear after failure")
	}
}

func TestSubmitMissingAttachmentFailsWholeNote(t *testing.T) {
	m, env := newTestModel(t)
	m.show(OverlayCapture)
	path := writeTempFile(t, "gone.txt", "x")
	if _, err := m.capture.stagePaths([]string{path}); err != nil {
		t.Fatalf("stage: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	m.capture.input.SetValue("note")
	submit(t, m)
	if len(env.backend.saved) != 0 {
		t.Fatal("note must not be saved without its attachments")
	}
	if m.capture.banner == "" || m.capture.staging.Len() != 1 {
		t.Fatal("attachment failure should surface and keep the draft")
	}
}

func TestSecondSubmitWhileSavingIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	m.show(OverlayCapture)
	m.capture.input.SetValue("once")
	if cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlS}); cmd == nil {
		t.Fatal("first submit should start a save")
	}
	if cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlS}); cmd != nil {
		t.Fatal("second submit during a save should be ignored")
	}
}

func TestStaleSaveResultIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	m.capture.submitting = true
	m.capture.submitToken = 2
	m.Update(saveResultMsg{token: 1})
	if !m.capture.submitting {
		t.Fatal("result for an old token must not finish the current save")
	}
}

func TestSubmitOnlyWhileCaptureActive(t *testing.T) {
	m, env := newTestModel(t)
	m.capture.input.SetValue("hidden draft")
	m.show(OverlaySearch)
	press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.capture.submitting || len(env.backend.saved) != 0 {
		t.Fatal("submit must not fire outside capture")
	}
}

func TestCtrlJSubmits(t *testing.T) {
	m, env := newTestModel(t)
	m.show(OverlayCapture)
	m.capture.input.SetValue("ctrl enter")
	deliver(m, drain(t, press(m, tea.KeyMsg{Type: tea.KeyCtrlJ})))
	if len(env.backend.saved) != 1 {
		t.Fatal("ctrl+j should submit like ctrl+s")
	}
}

func TestPasteStagesExistingPaths(t *testing.T) {
	m, env := newTestModel(t)
	m.show(OverlayCapture)
	first := writeTempFile(t, "one.png", "png")
	second := writeTempFile(t, "two words.pdf", "%PDF-1.4")
	env.clipboard.text = first + "\n" + second + "\n"

	deliver(m, drain(t, press(m, tea.KeyMsg{Type: tea.KeyCtrlV})))
	items := m.capture.staging.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 staged files, got %d", len(items))
	}
	if items[0].Type != "image/png" || items[1].Name != "two words.pdf" {
		t.Fatalf("unexpected staged items: %+v", items)
	}
	if !m.capture.pasted {
		t.Fatal("pasted indicator should show")
	}
	if m.capture.input.Value() != "" {
		t.Fatalf("paths should not be typed into the note, got %q", m.capture.input.Value())
	}
}

func TestPasteInsertsPlainText(t *testing.T) {
	m, env := newTestModel(t)
	m.show(OverlayCapture)
	env.clipboard.text = "just some words"
	deliver(m, drain(t, press(m, tea.KeyMsg{Type: tea.KeyCtrlV})))
	if m.capture.input.Value() != "just some words" {
		t.Fatalf("plain text should be inserted, got %q", m.capture.input.Value())
	}
	if m.capture.staging.Len() != 0 || m.capture.pasted {
		t.Fatal("plain text paste should not stage anything")
	}
}

func TestPasteAsAttachment(t *testing.T) {
	m, env := newTestModel(t)
	m.show(OverlayCapture)
	env.clipboard.text = "log line 1\nlog line 2"
	deliver(m, drain(t, press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'v'}, Alt: true})))
	items := m.capture.staging.Items()
	if len(items) != 1 {
		t.Fatalf("expected one staged blob, got %d", len(items))
	}
	if items[0].Name != "clipboard-20240309-100000.txt" || string(items[0].Data) != env.clipboard.text {
		t.Fatalf("unexpected blob: %+v", items[0])
	}
	if items[0].Path != "" {
		t.Fatal("clipboard blob should have no path")
	}
}

func TestClipboardErrorShowsBanner(t *testing.T) {
	m, env := newTestModel(t)
	m.show(OverlayCapture)
	env.clipboard.readErr = errors.New("xclip missing")
	deliver(m, drain(t, press(m, tea.KeyMsg{Type: tea.KeyCtrlV})))
	if !strings.Contains(m.capture.banner, "xclip missing") {
		t.Fatalf("banner = %q", m.capture.banner)
	}
}

func TestDroppedPathsAreStaged(t *testing.T) {
	m, _ := newTestModel(t)
	m.show(OverlayCapture)
	path := writeTempFile(t, "my photo.jpg", "jpg")
	dropped := strings.ReplaceAll(path, " ", `\ `) + " "
	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(dropped)})
	if m.capture.staging.Len() != 1 {
		t.Fatalf("drop should stage the file, got %d", m.capture.staging.Len())
	}
	if m.capture.input.Value() != "" {
		t.Fatalf("drop should not type the path, got %q", m.capture.input.Value())
	}
}

func TestRemoveAttachments(t *testing.T) {
	m, _ := newTestModel(t)
	m.show(OverlayCapture)
	m.capture.staging.Add(
		AttachmentFromBytes("a.txt", "text/plain", []byte("a")),
		AttachmentFromBytes("b.txt", "text/plain", []byte("b")),
		AttachmentFromBytes("c.txt", "text/plain", []byte("c")),
	)

	press(m, tea.KeyMsg{Type: tea.KeyCtrlX})
	if names := stagedNames(m); names != "a.txt,b.txt" {
		t.Fatalf("ctrl+x should drop the last item, got %s", names)
	}

	press(m, tea.KeyMsg{Type: tea.KeyTab})
	if !m.capture.listFocus || m.capture.inEntry() {
		t.Fatal("tab should move focus to the attachment list")
	}
	press(m, tea.KeyMsg{Type: tea.KeyUp})
	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if names := stagedNames(m); names != "b.txt" {
		t.Fatalf("x should remove the selected item, got %s", names)
	}
	if m.capture.input.Value() != "" {
		t.Fatal("list keys must not reach the textarea")
	}
	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.overlays.Current() != OverlayCapture || m.capture.listFocus {
		t.Fatal("esc should leave the list before closing capture")
	}
}

func stagedNames(m *model) string {
	var names []string
	for _, item := range m.capture.staging.Items() {
		names = append(names, item.Name)
	}
	return strings.Join(names, ",")
}

func TestCaptureAutoGrow(t *testing.T) {
	m, _ := newTestModel(t)
	m.show(OverlayCapture)
	m.capture.input.SetValue("one\ntwo\nthree\nfour\nfive")
	m.capture.resize()
	if got := m.capture.input.Height(); got != 5 {
		t.Fatalf("height = %d, want 5", got)
	}
	m.capture.input.SetValue(strings.Repeat("line\n", 40))
	m.capture.resize()
	if got := m.capture.input.Height(); got != maxCaptureHeight {
		t.Fatalf("height = %d, want clamp at %d", got, maxCaptureHeight)
	}
}

func TestCaptureGrowsWithWrappedText(t *testing.T) {
	m, _ := newTestModel(t)
	m.show(OverlayCapture)
	m.capture.setWidth(42)
	m.capture.input.SetValue(strings.Repeat("word ", 40))
	m.capture.resize()
	if got := m.capture.input.Height(); got <= minCaptureHeight {
		t.Fatalf("a long paragraph should grow the textarea, height = %d", got)
	}

	m.capture.input.SetValue(strings.Repeat("x", 200))
	m.capture.resize()
	if got := m.capture.input.Height(); got < 5 {
		t.Fatalf("an unbroken run should wrap too, height = %d", got)
	}
}

func TestDisplayLines(t *testing.T) {
	cases := []struct {
		text  string
		width int
		want  int
	}{
		{"", 10, 1},
		{"short", 10, 1},
		{"one\ntwo", 10, 2},
		{"aaaa bbbb cccc", 9, 2},
		{"abcdefghij", 5, 2},
		{"one\ntwo", 0, 2},
	}
	for _, tc := range cases {
		if got := displayLines(tc.text, tc.width); got != tc.want {
			t.Fatalf("displayLines(%q, %d) = %d, want %d", tc.text, tc.width, got, tc.want)
		}
	}
}

func TestShakeRunsToRest(t *testing.T) {
	m, _ := newTestModel(t)
	m.capture.startShake()
	token := m.capture.shakeToken
	for frame := 1; frame <= len(shakeOffsets); frame++ {
		m.Update(shakeTickMsg{token: token, frame: frame})
	}
	if m.capture.shakeOffset != 0 {
		t.Fatalf("shake should settle at 0, got %d", m.capture.shakeOffset)
	}
	m.capture.shakeOffset = 5
	if cmd := m.capture.advanceShake(shakeTickMsg{token: token - 1, frame: 1}); cmd != nil || m.capture.shakeOffset != 5 {
		t.Fatal("stale shake ticks should be ignored")
	}
}

func TestTransientNoticesExpireByToken(t *testing.T) {
	m, _ := newTestModel(t)
	m.capture.showBanner("first")
	m.capture.showBanner("second")
	m.Update(expireMsg{target: expireCaptureBanner, token: 1})
	if m.capture.banner != "second" {
		t.Fatal("an old expiry must not clear a newer banner")
	}
	m.Update(expireMsg{target: expireCaptureBanner, token: 2})
	if m.capture.banner != "" {
		t.Fatal("banner should clear when its own timer fires")
	}
	m.capture.showPasted()
	m.Update(expireMsg{target: expirePasted, token: m.capture.pastedToken})
	if m.capture.pasted {
		t.Fatal("pasted indicator should clear")
	}
}
