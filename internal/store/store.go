// Package store is the local note backend: one JSON array per day plus an
// attachments tree, both under the data directory.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/csheth/muninn/internal/backend"
)

const (
	dayLayout       = "2006-01-02"
	attachmentsDir  = "attachments"
	dayFileSuffix   = ".json"
	pdfMimeType     = "application/pdf"
	defaultLimit    = 50
	maxExtractRunes = 100_000
)

type storedAttachment struct {
	backend.Attachment
	Text string `json:"text,omitempty"`
}

type record struct {
	ID          string             `json:"id"`
	Text        string             `json:"text"`
	Attachments []storedAttachment `json:"attachments"`
	Timestamp   time.Time          `json:"timestamp"`
}

// Store persists notes under a base directory.
type Store struct {
	dir    string
	limit  int
	now    func() time.Time
	logger *slog.Logger

	mu sync.Mutex
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for non-fatal problems.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithSearchLimit caps the number of search results.
func WithSearchLimit(limit int) Option {
	return func(s *Store) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

// New returns a Store rooted at dir.
func New(dir string, opts ...Option) *Store {
	s := &Store{
		dir:    dir,
		limit:  defaultLimit,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the base directory.
func (s *Store) Dir() string { return s.dir }

// SaveNote writes the note's attachments to disk and appends the note to the
// file for its day.
func (s *Store) SaveNote(ctx context.Context, note backend.Note) error {
	if err := note.Validate(); err != nil {
		return fmt.Errorf("invalid note: %w", err)
	}
	when := note.Timestamp
	if when.IsZero() {
		when = s.now()
	}
	day := when.Local().Format(dayLayout)

	stored, err := s.saveAttachments(ctx, day, note)
	if err != nil {
		return fmt.Errorf("failed to save attachments: %w", err)
	}

	rec := record{
		ID:          note.ID,
		Text:        note.Text,
		Attachments: stored,
		Timestamp:   when,
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal note: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return appendEntries(s.dayPath(day), []json.RawMessage{raw})
}

func (s *Store) saveAttachments(ctx context.Context, day string, note backend.Note) ([]storedAttachment, error) {
	if len(note.Attachments) == 0 {
		return []storedAttachment{}, nil
	}
	relDir := filepath.Join(attachmentsDir, day, note.ID)
	absDir := filepath.Join(s.dir, relDir)
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", absDir, err)
	}

	stored, err := s.writeAttachments(ctx, relDir, note.Attachments)
	if err != nil {
		if rmErr := os.RemoveAll(absDir); rmErr != nil {
			s.logger.Warn("failed to remove partial attachments", "dir", absDir, "error", rmErr)
		}
		return nil, err
	}
	return stored, nil
}

func (s *Store) writeAttachments(ctx context.Context, relDir string, atts []backend.Attachment) ([]storedAttachment, error) {
	absDir := filepath.Join(s.dir, relDir)
	stored := make([]storedAttachment, 0, len(atts))
	taken := make(map[string]bool, len(atts))
	for i, att := range atts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := filepath.Base(att.FileName)
		if name == "" || name == "." || name == string(filepath.Separator) {
			name = fmt.Sprintf("attachment_%d", i)
		}
		diskName := uniqueName(name, taken)
		dest := filepath.Join(absDir, diskName)

		if att.Data != nil {
			if err := os.WriteFile(dest, att.Data, 0o644); err != nil {
				return nil, fmt.Errorf("failed to save attachment %s: %w", name, err)
			}
		} else if err := copyFile(att.FilePath, dest); err != nil {
			return nil, fmt.Errorf("failed to copy attachment %s: %w", name, err)
		}

		entry := storedAttachment{Attachment: backend.Attachment{
			ID:       att.ID,
			FileName: name,
			FileType: att.FileType,
			FilePath: filepath.Join(relDir, diskName),
		}}
		if isPDF(att.FileType, name) {
			text, err := extractPDFText(dest)
			if err != nil {
				s.logger.Warn("pdf text extraction failed", "file", name, "error", err)
			} else {
				entry.Text = text
			}
		}
		stored = append(stored, entry)
	}
	return stored, nil
}

// SearchNotes returns notes whose text, attachment names or extracted
// attachment text contain query, case-insensitively. Newer days come first and
// newer notes come first within a day.
func (s *Store) SearchNotes(ctx context.Context, query string) ([]backend.SearchResult, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	results := []backend.SearchResult{}
	if needle == "" {
		return results, nil
	}

	days, err := s.days()
	if err != nil {
		return nil, err
	}
	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := s.load(day)
		if err != nil {
			return nil, fmt.Errorf("failed to parse notes for %s: %w", day, err)
		}
		for i := len(records) - 1; i >= 0; i-- {
			rec := records[i]
			if !rec.matches(needle) {
				continue
			}
			results = append(results, s.toResult(rec))
			if len(results) >= s.limit {
				return results, nil
			}
		}
	}
	return results, nil
}

func (r record) matches(needle string) bool {
	if strings.Contains(strings.ToLower(r.Text), needle) {
		return true
	}
	for _, att := range r.Attachments {
		if strings.Contains(strings.ToLower(att.FileName), needle) {
			return true
		}
		if att.Text != "" && strings.Contains(strings.ToLower(att.Text), needle) {
			return true
		}
	}
	return false
}

func (s *Store) toResult(rec record) backend.SearchResult {
	attachments := make([]backend.Attachment, 0, len(rec.Attachments))
	for _, att := range rec.Attachments {
		out := att.Attachment
		if out.FilePath != "" && !filepath.IsAbs(out.FilePath) {
			out.FilePath = filepath.Join(s.dir, out.FilePath)
		}
		out.Data = nil
		attachments = append(attachments, out)
	}
	return backend.SearchResult{
		ID:          rec.ID,
		Content:     excerpt(rec.Text, 200),
		Text:        rec.Text,
		Timestamp:   rec.Timestamp,
		Attachments: attachments,
	}
}

// days lists day keys that have a note file, newest first.
func (s *Store) days() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var days []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, dayFileSuffix) {
			continue
		}
		day := strings.TrimSuffix(name, dayFileSuffix)
		if _, err := time.Parse(dayLayout, day); err != nil {
			continue
		}
		days = append(days, day)
	}
	// ReadDir sorts by name, and the layout sorts chronologically.
	for i, j := 0, len(days)-1; i < j; i, j = i+1, j-1 {
		days[i], days[j] = days[j], days[i]
	}
	return days, nil
}

func (s *Store) load(day string) ([]record, error) {
	entries, err := loadEntries(s.dayPath(day))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	records := make([]record, 0, len(entries))
	for _, raw := range entries {
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) dayPath(day string) string {
	return filepath.Join(s.dir, day+dayFileSuffix)
}

func appendEntries(path string, newEntries []json.RawMessage) error {
	if len(newEntries) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	entries, err := loadEntries(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to parse existing notes: %w", err)
		}
		entries = nil
	}
	entries = append(entries, newEntries...)
	return writeEntries(path, entries)
}

func writeEntries(path string, entries []json.RawMessage) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func loadEntries(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// uniqueName returns name, or "name (n).ext" when an earlier attachment of the
// same note already took it.
func uniqueName(name string, taken map[string]bool) string {
	candidate := name
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; taken[candidate]; n++ {
		candidate = fmt.Sprintf("%s (%d)%s", stem, n, ext)
	}
	taken[candidate] = true
	return candidate
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy file: %w", err)
	}
	return out.Sync()
}

func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func isPDF(mimeType, name string) bool {
	if strings.HasPrefix(mimeType, pdfMimeType) {
		return true
	}
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
