package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/csheth/muninn/internal/backend"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSaveNoteWritesDayFileAndAttachments(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(src, []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	when := time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)
	s := New(dir, WithClock(fixedClock(when)))

	note := backend.Note{
		ID:   "note-1",
		Text: "standup notes",
		Attachments: []backend.Attachment{
			{ID: "a1", FileName: "photo.png", FileType: "image/png", FilePath: src},
			{ID: "a2", FileName: "", FileType: "text/plain", Data: []byte("inline")},
		},
		Timestamp: when,
	}
	if err := s.SaveNote(context.Background(), note); err != nil {
		t.Fatalf("SaveNote: %v", err)
	}

	copied := filepath.Join(dir, "attachments", "2026-03-14", "note-1", "photo.png")
	if data, err := os.ReadFile(copied); err != nil || string(data) != "png-bytes" {
		t.Fatalf("copied attachment = %q, %v", data, err)
	}
	inline := filepath.Join(dir, "attachments", "2026-03-14", "note-1", "attachment_1")
	if data, err := os.ReadFile(inline); err != nil || string(data) != "inline" {
		t.Fatalf("inline attachment = %q, %v", data, err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "2026-03-14.json"))
	if err != nil {
		t.Fatalf("read day file: %v", err)
	}
	var stored []record
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("decode day file: %v", err)
	}
	if len(stored) != 1 || stored[0].Text != "standup notes" {
		t.Fatalf("unexpected records: %+v", stored)
	}
	for _, att := range stored[0].Attachments {
		if att.Data != nil {
			t.Fatalf("stored attachment kept inline data: %+v", att)
		}
		if filepath.IsAbs(att.FilePath) {
			t.Fatalf("stored path should be relative, got %q", att.FilePath)
		}
	}
}

func TestSaveNoteRejectsInvalidAttachment(t *testing.T) {
	t.Parallel()

	s := New(t.TempDir())
	note := backend.Note{ID: "n", Attachments: []backend.Attachment{{FileName: "x"}}}
	err := s.SaveNote(context.Background(), note)
	if !errors.Is(err, backend.ErrAttachmentSource) {
		t.Fatalf("expected ErrAttachmentSource, got %v", err)
	}
}

func TestSaveNoteMissingSourceFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := New(dir)
	note := backend.Note{
		ID:          "n",
		Attachments: []backend.Attachment{{FileName: "gone.txt", FilePath: filepath.Join(dir, "gone.txt")}},
		Timestamp:   time.Now(),
	}
	if err := s.SaveNote(context.Background(), note); err == nil {
		t.Fatal("expected copy error")
	}
	days, err := s.days()
	if err != nil {
		t.Fatalf("days: %v", err)
	}
	if len(days) != 0 {
		t.Fatalf("no day file should exist after failed save, got %v", days)
	}
}

func TestSaveNoteKeepsUnreadablePDF(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := New(dir)
	note := backend.Note{
		ID:          "pdf-note",
		Text:        "paper",
		Attachments: []backend.Attachment{{FileName: "broken.pdf", FileType: "application/pdf", Data: []byte("not a pdf")}},
		Timestamp:   time.Now(),
	}
	if err := s.SaveNote(context.Background(), note); err != nil {
		t.Fatalf("SaveNote should tolerate extraction failure: %v", err)
	}
	results, err := s.SearchNotes(context.Background(), "broken")
	if err != nil {
		t.Fatalf("SearchNotes: %v", err)
	}
	if len(results) != 1 || results[0].ID != "pdf-note" {
		t.Fatalf("expected match on attachment name, got %+v", results)
	}
}

// onePagePDF builds a minimal single-page PDF that draws text in Helvetica.
func onePagePDF(text string) []byte {
	content := fmt.Sprintf("BT /F1 18 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestSearchMatchesExtractedPDFText(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := New(dir)
	note := backend.Note{
		ID:   "pdf-note",
		Text: "board pack",
		Attachments: []backend.Attachment{{
			FileName: "q3.pdf",
			FileType: "application/pdf",
			Data:     onePagePDF("Quarterly revenue forecast"),
		}},
		Timestamp: time.Now(),
	}
	if err := s.SaveNote(context.Background(), note); err != nil {
		t.Fatalf("SaveNote: %v", err)
	}

	results, err := s.SearchNotes(context.Background(), "revenue forecast")
	if err != nil {
		t.Fatalf("SearchNotes: %v", err)
	}
	if len(results) != 1 || results[0].ID != "pdf-note" {
		t.Fatalf("expected a match inside the pdf text, got %+v", results)
	}
}

func TestSameNameAttachmentsKeepTheirOwnFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	when := time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)
	s := New(dir)
	note := backend.Note{
		ID: "dup",
		Attachments: []backend.Attachment{
			{ID: "a", FileName: "photo.png", FileType: "image/png", Data: []byte("FIRST")},
			{ID: "b", FileName: "photo.png", FileType: "image/png", Data: []byte("SECOND")},
			{ID: "c", FileName: "photo.png", FileType: "image/png", Data: []byte("THIRD")},
		},
		Timestamp: when,
	}
	if err := s.SaveNote(context.Background(), note); err != nil {
		t.Fatalf("SaveNote: %v", err)
	}

	records, err := s.load("2026-03-14")
	if err != nil || len(records) != 1 {
		t.Fatalf("load = %+v, %v", records, err)
	}
	want := map[string]string{"a": "FIRST", "b": "SECOND", "c": "THIRD"}
	seen := map[string]bool{}
	for _, att := range records[0].Attachments {
		if att.FileName != "photo.png" {
			t.Fatalf("display name should be kept, got %q", att.FileName)
		}
		if seen[att.FilePath] {
			t.Fatalf("two attachments share %s", att.FilePath)
		}
		seen[att.FilePath] = true
		data, err := os.ReadFile(filepath.Join(dir, att.FilePath))
		if err != nil || string(data) != want[att.ID] {
			t.Fatalf("attachment %s at %s = %q, %v", att.ID, att.FilePath, data, err)
		}
	}
	if !seen[filepath.Join("attachments", "2026-03-14", "dup", "photo (1).png")] {
		t.Fatalf("expected a de-collided name, got %v", seen)
	}
}

func TestFailedSaveRemovesPartialAttachments(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	when := time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)
	s := New(dir)
	note := backend.Note{
		ID: "partial",
		Attachments: []backend.Attachment{
			{ID: "ok", FileName: "kept.txt", FileType: "text/plain", Data: []byte("written first")},
			{ID: "gone", FileName: "gone.txt", FileType: "text/plain", FilePath: filepath.Join(dir, "missing.txt")},
		},
		Timestamp: when,
	}
	if err := s.SaveNote(context.Background(), note); err == nil {
		t.Fatal("expected copy error")
	}
	noteDir := filepath.Join(dir, "attachments", "2026-03-14", "partial")
	if _, err := os.Stat(noteDir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("partial attachment dir should be removed, stat err = %v", err)
	}
}

func TestUniqueName(t *testing.T) {
	taken := map[string]bool{}
	got := []string{
		uniqueName("a.txt", taken),
		uniqueName("a.txt", taken),
		uniqueName("a.txt", taken),
		uniqueName("README", taken),
		uniqueName("README", taken),
	}
	want := []string{"a.txt", "a (1).txt", "a (2).txt", "README", "README (1)"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("uniqueName #%d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSearchNotesOrderingAndLimit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := New(dir, WithSearchLimit(3))
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.Local)
	for i, day := range []int{0, 0, 1, 2} {
		note := backend.Note{
			ID:        "n" + string(rune('a'+i)),
			Text:      "Meeting notes " + string(rune('a'+i)),
			Timestamp: base.AddDate(0, 0, day).Add(time.Duration(i) * time.Minute),
		}
		if err := s.SaveNote(ctx, note); err != nil {
			t.Fatalf("SaveNote %d: %v", i, err)
		}
	}

	results, err := s.SearchNotes(ctx, "MEETING")
	if err != nil {
		t.Fatalf("SearchNotes: %v", err)
	}
	var ids []string
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	if got := strings.Join(ids, ","); got != "nd,nc,nb" {
		t.Fatalf("result order = %s, want nd,nc,nb", got)
	}
}

func TestSearchNotesEmptyQueryAndMissingDir(t *testing.T) {
	t.Parallel()

	s := New(filepath.Join(t.TempDir(), "missing"))
	results, err := s.SearchNotes(context.Background(), "anything")
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", results)
	}
	results, err = s.SearchNotes(context.Background(), "   ")
	if err != nil || len(results) != 0 {
		t.Fatalf("blank query = %v, %v", results, err)
	}
}

func TestSearchResultExcerptAndAbsolutePaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := New(dir)
	long := strings.Repeat("é", 250)
	note := backend.Note{
		ID:          "long",
		Text:        long,
		Attachments: []backend.Attachment{{FileName: "a.txt", FileType: "text/plain", Data: []byte("x")}},
		Timestamp:   time.Now(),
	}
	if err := s.SaveNote(context.Background(), note); err != nil {
		t.Fatalf("SaveNote: %v", err)
	}
	results, err := s.SearchNotes(context.Background(), "é")
	if err != nil || len(results) != 1 {
		t.Fatalf("SearchNotes = %v, %v", results, err)
	}
	got := results[0]
	if got.Text != long {
		t.Fatal("full text should be preserved")
	}
	if want := strings.Repeat("é", 200) + "..."; got.Content != want {
		t.Fatalf("excerpt length = %d runes", len([]rune(got.Content)))
	}
	if len(got.Attachments) != 1 || !filepath.IsAbs(got.Attachments[0].FilePath) {
		t.Fatalf("attachment path should be absolute: %+v", got.Attachments)
	}
	if err := got.Attachments[0].Validate(); err != nil {
		t.Fatalf("result attachment invalid: %v", err)
	}
}

func TestSearchNotesHonoursCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := New(dir)
	if err := s.SaveNote(context.Background(), backend.Note{ID: "x", Text: "hello", Timestamp: time.Now()}); err != nil {
		t.Fatalf("SaveNote: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.SearchNotes(ctx, "hello"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
