// Package editor hands note text to an external editor process.
package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const defaultBinary = "nvim"

// Launcher builds editor commands over a temp copy of the note text.
type Launcher struct {
	// Binary is the editor command, possibly with arguments ("nvim -R").
	// Empty falls back to $EDITOR, then nvim.
	Binary string
	// TempDir overrides os.TempDir for the scratch file.
	TempDir string
}

// Prepare writes text to a scratch markdown file and returns the command that
// opens it. cleanup removes the scratch file and must run after the command
// exits.
func (l Launcher) Prepare(text string) (cmd *exec.Cmd, cleanup func(), err error) {
	args := strings.Fields(l.binary())
	if len(args) == 0 {
		return nil, nil, errors.New("no editor configured")
	}
	path, err := exec.LookPath(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("editor %q not found: %w", args[0], err)
	}

	tmp, err := os.CreateTemp(l.TempDir, "muninn-*.md")
	if err != nil {
		return nil, nil, fmt.Errorf("create scratch file: %w", err)
	}
	if _, err := tmp.WriteString(text); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, nil, fmt.Errorf("write scratch file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, nil, fmt.Errorf("close scratch file: %w", err)
	}

	scratch := tmp.Name()
	cmd = exec.Command(path, append(args[1:], scratch)...) //nolint:gosec // launching the configured editor is the point
	return cmd, func() { _ = os.Remove(scratch) }, nil
}

func (l Launcher) binary() string {
	if strings.TrimSpace(l.Binary) != "" {
		return l.Binary
	}
	if env := os.Getenv("EDITOR"); env != "" {
		return env
	}
	return defaultBinary
}
