package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/csheth/muninn/internal/backend"
	"github.com/csheth/muninn/internal/trigger"
)

func newFocusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "focus <search|capture>",
		Short: "Bring a running muninn to the search or capture overlay",
		Long: `focus signals a running muninn through its trigger directory. Bind it
to a window-manager hotkey to get a global capture or search shortcut.`,
		Example:   `muninn focus capture`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"search", "capture"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := trigger.Fire(cfg.TriggerDir(), backend.Event(args[0])); err != nil {
				return fmt.Errorf("focus %s: %w", args[0], err)
			}
			return nil
		},
	}
}
