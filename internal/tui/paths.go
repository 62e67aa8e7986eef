package tui

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// splitPathList breaks pasted or dropped text into path candidates. Terminals
// deliver drops as shell words: quoted, backslash-escaped, or file:// URLs,
// separated by spaces or newlines.
func splitPathList(text string) []string {
	var (
		words   []string
		current strings.Builder
		quote   rune
		escaped bool
		inWord  bool
	)
	flush := func() {
		if inWord {
			words = append(words, current.String())
		}
		current.Reset()
		inWord = false
	}
	for _, r := range text {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case unicode.IsSpace(r):
			flush()
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	flush()
	return words
}

// resolvePath normalises one candidate into an absolute filesystem path.
func resolvePath(word string) string {
	word = strings.TrimSpace(word)
	if strings.HasPrefix(word, "file://") {
		if u, err := url.Parse(word); err == nil {
			word = u.Path
		}
	}
	if strings.HasPrefix(word, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			word = filepath.Join(home, word[2:])
		}
	}
	// Bare words like "notes" stay text even if such a file exists in cwd.
	if word == "" || !strings.ContainsRune(word, filepath.Separator) {
		return ""
	}
	if abs, err := filepath.Abs(word); err == nil {
		return abs
	}
	return word
}

// existingFiles returns the regular files named by text. ok is false unless
// every candidate resolves to one, so ordinary prose is never mistaken for a
// drop.
func existingFiles(text string) (paths []string, ok bool) {
	// File managers copy one unescaped path per line; try that first.
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if paths, ok := regularFiles(lines); ok {
		return paths, true
	}
	return regularFiles(splitPathList(text))
}

func regularFiles(words []string) (paths []string, ok bool) {
	if len(words) == 0 {
		return nil, false
	}
	for _, word := range words {
		path := resolvePath(word)
		if path == "" {
			return nil, false
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return nil, false
		}
		paths = append(paths, path)
	}
	return paths, true
}
