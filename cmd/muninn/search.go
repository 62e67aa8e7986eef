package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/csheth/muninn/internal/backend"
	"github.com/csheth/muninn/internal/store"
)

var (
	faint = color.New(color.Faint).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:     "search <query>",
		Short:   "Search saved notes from the shell",
		Example: `muninn search groceries --limit 5`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = cfg.SearchLimit
			}
			notes := store.New(cfg.DataDir, store.WithSearchLimit(limit))
			results, err := notes.SearchNotes(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			printResults(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of results")
	return cmd
}

func printResults(w io.Writer, results []backend.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No notes match.")
		return
	}
	for _, r := range results {
		fmt.Fprintf(w, "%s %s\n", cyan(r.ID[:min(8, len(r.ID))]), faint(r.Timestamp.Local().Format(time.DateTime)))
		fmt.Fprintf(w, "  %s\n", bold(strings.Join(strings.Fields(r.Content), " ")))
		for _, a := range r.Attachments {
			fmt.Fprintf(w, "  %s %s\n", faint("↳"), a.FileName)
		}
	}
}
