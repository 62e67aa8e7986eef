package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/csheth/muninn/internal/bundle"
	"github.com/csheth/muninn/internal/config"
)

const uploadTimeout = 2 * time.Minute

func newUploader(cfg *config.Config) *bundle.Uploader {
	return &bundle.Uploader{
		URL:     cfg.UploadURL,
		DataDir: cfg.DataDir,
		Client:  &http.Client{Timeout: uploadTimeout},
	}
}

func newSendCmd(opts *rootOptions) *cobra.Command {
	var (
		day string
		out string
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Upload a day's notes and attachments as a tar.gz bundle",
		Long: `send packs <day>.json and attachments/<day> from the data directory and
POSTs the bundle to upload_url. With --out the bundle is written to a
file instead ("-" for stdout).`,
		Example: `muninn send
muninn send --day 2026-03-14 --out march14.tar.gz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if day == "" {
				day = time.Now().Format(bundle.DayLayout)
			}
			if _, err := time.Parse(bundle.DayLayout, day); err != nil {
				return fmt.Errorf("--day %q: want YYYY-MM-DD", day)
			}

			if out != "" {
				return writeBundle(cmd, cfg.DataDir, day, out)
			}
			if err := newUploader(cfg).SendDay(cmd.Context(), day); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s sent %s\n", cyan("✓"), day)
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "day to send, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVarP(&out, "out", "o", "", `write the bundle to a file instead of uploading ("-" for stdout)`)
	return cmd
}

func writeBundle(cmd *cobra.Command, dataDir, day, out string) error {
	if out == "-" {
		return bundle.Write(cmd.OutOrStdout(), dataDir, day)
	}
	file, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create bundle: %w", err)
	}
	if err := bundle.Write(file, dataDir, day); err != nil {
		_ = file.Close()
		_ = os.Remove(out)
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", cyan("✓"), out)
	return nil
}
