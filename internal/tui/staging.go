package tui

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/csheth/muninn/internal/backend"
)

var (
	// ErrEmptyAttachment marks an attachment with neither a path nor bytes.
	ErrEmptyAttachment = errors.New("attachment has no path and no data")
	// ErrAttachmentTooLarge marks an inline attachment over the size limit.
	ErrAttachmentTooLarge = errors.New("attachment too large")
)

// StagedAttachment is a file waiting to be sent with the next note.
type StagedAttachment struct {
	ID   string
	Name string
	Type string
	Path string
	Size int64
	Data []byte
}

// AttachmentFromPath stages the file at path by reference. Missing files and
// directories are rejected here rather than at submit time.
func AttachmentFromPath(path string) (StagedAttachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return StagedAttachment{}, fmt.Errorf("stage %s: %w", filepath.Base(path), err)
	}
	if info.IsDir() {
		return StagedAttachment{}, fmt.Errorf("stage %s: is a directory", filepath.Base(path))
	}
	return StagedAttachment{
		ID:   uuid.NewString(),
		Name: filepath.Base(path),
		Type: detectType(path),
		Path: path,
		Size: info.Size(),
	}, nil
}

// AttachmentFromBytes stages an in-memory blob such as clipboard text.
func AttachmentFromBytes(name, mimeType string, data []byte) StagedAttachment {
	if mimeType == "" {
		mimeType = mimetype.Detect(data).String()
	}
	return StagedAttachment{
		ID:   uuid.NewString(),
		Name: name,
		Type: mimeType,
		Size: int64(len(data)),
		Data: data,
	}
}

func detectType(path string) string {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
		return byExt
	}
	if sniffed, err := mimetype.DetectFile(path); err == nil {
		return sniffed.String()
	}
	return "application/octet-stream"
}

// Transport converts a to its wire form. Path-backed attachments travel by
// reference; in-memory ones carry their full bytes, up to maxBytes.
func (a StagedAttachment) Transport(ctx context.Context, maxBytes int64) (backend.Attachment, error) {
	if err := ctx.Err(); err != nil {
		return backend.Attachment{}, err
	}
	out := backend.Attachment{ID: a.ID, FileName: a.Name, FileType: a.Type}
	switch {
	case a.Path != "":
		if _, err := os.Stat(a.Path); err != nil {
			return backend.Attachment{}, fmt.Errorf("read %s: %w", a.Name, err)
		}
		out.FilePath = a.Path
	case len(a.Data) > 0:
		if maxBytes > 0 && int64(len(a.Data)) > maxBytes {
			return backend.Attachment{}, fmt.Errorf("read %s (%d bytes): %w", a.Name, len(a.Data), ErrAttachmentTooLarge)
		}
		out.Data = append([]byte(nil), a.Data...)
	default:
		return backend.Attachment{}, fmt.Errorf("read %s: %w", a.Name, ErrEmptyAttachment)
	}
	return out, nil
}

// ConvertAll transports items concurrently, preserving order. Any failure
// fails the whole batch.
func ConvertAll(ctx context.Context, items []StagedAttachment, maxBytes int64) ([]backend.Attachment, error) {
	out := make([]backend.Attachment, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		g.Go(func() error {
			converted, err := item.Transport(gctx, maxBytes)
			if err != nil {
				return err
			}
			out[i] = converted
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Staging is the ordered list of attachments for the note being composed.
type Staging struct {
	items    []StagedAttachment
	revision int
}

// Add appends items, assigning IDs where missing, and returns the new count.
// Duplicates are kept.
func (s *Staging) Add(items ...StagedAttachment) int {
	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		s.items = append(s.items, item)
	}
	if len(items) > 0 {
		s.revision++
	}
	return len(s.items)
}

// Remove drops the attachment with id. Unknown ids are ignored.
func (s *Staging) Remove(id string) bool {
	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.revision++
			return true
		}
	}
	return false
}

// RemoveLast drops the most recently staged attachment.
func (s *Staging) RemoveLast() (StagedAttachment, bool) {
	if len(s.items) == 0 {
		return StagedAttachment{}, false
	}
	last := s.items[len(s.items)-1]
	s.Remove(last.ID)
	return last, true
}

func (s *Staging) Clear() {
	if len(s.items) == 0 {
		return
	}
	s.items = nil
	s.revision++
}

// Items returns a snapshot safe to hand to a background job.
func (s *Staging) Items() []StagedAttachment {
	return append([]StagedAttachment(nil), s.items...)
}

func (s *Staging) Len() int { return len(s.items) }

func (s *Staging) Revision() int { return s.revision }
