// Package backend describes the calls the capture UI makes into the process that
// owns notes on disk, and the events that process pushes back.
package backend

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ErrAttachmentSource reports a transport attachment that carries both a file
// path and inline data, or neither.
var ErrAttachmentSource = errors.New("attachment must carry exactly one of filePath or data")

// Attachment is the wire form of a staged file.
type Attachment struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	FilePath string `json:"filePath,omitempty"`
	Data     []byte `json:"data,omitempty"`
}

// Validate enforces that exactly one of FilePath and Data is populated.
func (a Attachment) Validate() error {
	hasPath := a.FilePath != ""
	hasData := a.Data != nil
	if hasPath == hasData {
		return fmt.Errorf("%s: %w", a.FileName, ErrAttachmentSource)
	}
	return nil
}

// Note is a single capture submission.
type Note struct {
	ID          string       `json:"id"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments"`
	Timestamp   time.Time    `json:"timestamp"`
}

// Validate checks every attachment of the note.
func (n Note) Validate() error {
	if n.ID == "" {
		return errors.New("note id is required")
	}
	for _, att := range n.Attachments {
		if err := att.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SearchResult is one hit returned by SearchNotes. Content is a display excerpt,
// Text the full note body.
type SearchResult struct {
	ID          string       `json:"id"`
	Content     string       `json:"content"`
	Text        string       `json:"text"`
	Timestamp   time.Time    `json:"timestamp"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Backend is implemented by whatever owns persistence, search and the editor.
type Backend interface {
	SaveNote(ctx context.Context, note Note) error
	SearchNotes(ctx context.Context, query string) ([]SearchResult, error)
	// PrepareEditor builds the command that opens text in the external editor.
	// The caller runs it in the foreground; a non-nil exit error is a failed launch.
	// cleanup releases whatever the command needed once it has exited.
	PrepareEditor(text string) (cmd *exec.Cmd, cleanup func(), err error)
	Hide(ctx context.Context) error
}
