package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/csheth/muninn/internal/config"
	"github.com/csheth/muninn/internal/editor"
	"github.com/csheth/muninn/internal/host"
	"github.com/csheth/muninn/internal/store"
	"github.com/csheth/muninn/internal/trigger"
	"github.com/csheth/muninn/internal/tui"
)

type rootOptions struct {
	configPath  string
	dataDir     string
	debug       bool
	noAltScreen bool
	dismissKey  string
	editor      string
	start       string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "muninn",
		Short: "Quick capture and search for notes",
		Long: `muninn is a keyboard-first scratchpad. Capture a thought with its
attachments, search everything you saved, and open a note in your
editor without leaving the terminal.`,
		Example: `muninn --start capture
muninn focus search
muninn search "quarterly plan"
muninn send --day 2026-03-14`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default: <user config dir>/muninn/config.yaml)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "where notes and attachments are stored")
	flags.BoolVar(&opts.debug, "debug", false, "log at debug level")

	cmd.Flags().BoolVar(&opts.noAltScreen, "no-alt-screen", false, "draw inline instead of on the alternate screen")
	cmd.Flags().StringVar(&opts.dismissKey, "dismiss-key", "", `key that closes overlays: "esc" or "backspace"`)
	cmd.Flags().StringVar(&opts.editor, "editor", "", "editor command for opening notes")
	cmd.Flags().StringVar(&opts.start, "start", "", `overlay to open on launch: "capture" or "search"`)

	cmd.AddCommand(newFocusCmd(opts), newSearchCmd(opts), newSendCmd(opts))
	return cmd
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.LoadFrom(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}
	if opts.debug {
		cfg.Debug = true
	}
	if opts.noAltScreen {
		cfg.AltScreen = false
	}
	if opts.dismissKey != "" {
		cfg.DismissKey = opts.dismissKey
	}
	if opts.editor != "" {
		cfg.Editor = opts.editor
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openLogger writes to the configured log file; the terminal belongs to the UI.
func openLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	file, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: level}))
	return logger, file, nil
}

func runUI(cmd *cobra.Command, opts *rootOptions) error {
	start, ok := tui.ParseOverlay(opts.start)
	if !ok {
		return fmt.Errorf("--start %q: want capture or search", opts.start)
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger, closer, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	ctx := cmd.Context()
	notes := store.New(cfg.DataDir, store.WithLogger(logger), store.WithSearchLimit(cfg.SearchLimit))
	var hostOpts []host.Option
	if cfg.SendOnHide {
		uploader := newUploader(cfg)
		uploader.Logger = logger
		hostOpts = append(hostOpts, host.WithSendOnHide(uploader))
	}
	backend := host.NewLocal(notes, editor.Launcher{Binary: cfg.Editor}, logger, hostOpts...)

	watcher, err := trigger.Watch(ctx, cfg.TriggerDir(), logger)
	if err != nil {
		return err
	}
	defer watcher.Close()

	logger.Info("starting", "version", version, "data_dir", cfg.DataDir, "start", start)
	model := tui.New(tui.Config{
		Backend:            backend,
		Events:             watcher.Events(),
		Clipboard:          tui.SystemClipboard{},
		Logger:             logger,
		DismissKey:         cfg.DismissKey,
		SearchDebounce:     cfg.SearchDebounce,
		MaxAttachmentBytes: cfg.MaxAttachmentBytes,
		PreviewStyle:       cfg.PreviewStyle,
		Start:              start,
	})

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	if _, err := tea.NewProgram(model, programOpts...).Run(); err != nil {
		logger.Error("program error", "error", err)
		return fmt.Errorf("program error: %w", err)
	}
	logger.Info("exiting")
	return nil
}
