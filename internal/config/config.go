package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	homeEnvVar = "MUNINN_HOME"

	DismissEscape    = "esc"
	DismissBackspace = "backspace"

	defaultDebounce        = 150 * time.Millisecond
	defaultSearchLimit     = 50
	defaultMaxAttachment   = 64 << 20
	defaultPreviewStyle    = "dark"
	defaultEditor          = "nvim"
	defaultLogName         = "muninn.log"
	defaultWindowsDataName = "Muninn"
	defaultDataName        = ".muninn"
)

// Config holds runtime options for the capture UI and its local backend.
type Config struct {
	DataDir            string        `yaml:"data_dir"`
	LogFile            string        `yaml:"log_file"`
	Editor             string        `yaml:"editor"`
	DismissKey         string        `yaml:"dismiss_key"`
	SearchDebounce     time.Duration `yaml:"search_debounce"`
	SearchLimit        int           `yaml:"search_limit"`
	MaxAttachmentBytes int64         `yaml:"max_attachment_bytes"`
	PreviewStyle       string        `yaml:"preview_style"`
	AltScreen          bool          `yaml:"alt_screen"`
	Debug              bool          `yaml:"debug"`
	UploadURL          string        `yaml:"upload_url"`
	SendOnHide         bool          `yaml:"send_on_hide"`
}

// Default returns the built-in configuration. DataDir honours MUNINN_HOME.
func Default() *Config {
	return &Config{
		DataDir:            defaultDataDir(),
		Editor:             defaultEditor,
		DismissKey:         DismissEscape,
		SearchDebounce:     defaultDebounce,
		SearchLimit:        defaultSearchLimit,
		MaxAttachmentBytes: defaultMaxAttachment,
		PreviewStyle:       defaultPreviewStyle,
		AltScreen:          true,
	}
}

// LogPath resolves where the structured log goes.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, defaultLogName)
}

// TriggerDir is the directory watched for focus events.
func (c *Config) TriggerDir() string {
	return filepath.Join(c.DataDir, "run")
}

// Validate rejects settings the UI cannot honour.
func (c *Config) Validate() error {
	var errs []error
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is empty"))
	}
	switch c.DismissKey {
	case DismissEscape, DismissBackspace:
	default:
		errs = append(errs, fmt.Errorf("dismiss_key %q: want %q or %q", c.DismissKey, DismissEscape, DismissBackspace))
	}
	if c.SearchDebounce <= 0 {
		errs = append(errs, fmt.Errorf("search_debounce must be positive, got %s", c.SearchDebounce))
	}
	if c.SearchLimit <= 0 {
		errs = append(errs, fmt.Errorf("search_limit must be positive, got %d", c.SearchLimit))
	}
	if c.MaxAttachmentBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_attachment_bytes must be positive, got %d", c.MaxAttachmentBytes))
	}
	if c.UploadURL != "" {
		if u, err := url.Parse(c.UploadURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("upload_url %q: want an http(s) URL", c.UploadURL))
		}
	} else if c.SendOnHide {
		errs = append(errs, errors.New("send_on_hide needs upload_url"))
	}
	return errors.Join(errs...)
}

func defaultDataDir() string {
	if dir := os.Getenv(homeEnvVar); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	name := defaultDataName
	if runtime.GOOS == "windows" {
		name = defaultWindowsDataName
	}
	return filepath.Join(home, name)
}
