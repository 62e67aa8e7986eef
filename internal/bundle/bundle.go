// Package bundle packs one day of notes and attachments into a gzipped tar
// and uploads it.
package bundle

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DayLayout names day files and attachment folders.
const DayLayout = "2006-01-02"

// ErrNothingToSend is returned when a day has neither notes nor attachments.
var ErrNothingToSend = errors.New("nothing saved for that day")

// Write streams the day file and attachments/<day> as a tar.gz to w. Entry
// names are relative to dataDir.
func Write(w io.Writer, dataDir, day string) error {
	files, err := dayFiles(dataDir, day)
	if err != nil {
		return err
	}
	return writeFiles(w, dataDir, files)
}

// dayFiles lists what belongs to day, day file first.
func dayFiles(dataDir, day string) ([]string, error) {
	dayFile := filepath.Join(dataDir, day+".json")
	attachDir := filepath.Join(dataDir, "attachments", day)

	var files []string
	if _, err := os.Stat(dayFile); err == nil {
		files = append(files, dayFile)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	err := filepath.WalkDir(attachDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == attachDir && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipDir
			}
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk attachments: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", day, ErrNothingToSend)
	}
	return files, nil
}

func writeFiles(w io.Writer, base string, files []string) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)
	for _, path := range files {
		if err := addFile(tw, base, path); err != nil {
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

func addFile(tw *tar.Writer, base, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return err
	}
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = filepath.ToSlash(rel)
	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := io.Copy(tw, file); err != nil {
		return fmt.Errorf("add %s: %w", header.Name, err)
	}
	return nil
}

// Uploader posts day bundles to URL.
type Uploader struct {
	URL     string
	DataDir string
	Client  *http.Client
	Logger  *slog.Logger
	Now     func() time.Time
}

// Send uploads today's bundle.
func (u *Uploader) Send(ctx context.Context) error {
	now := time.Now
	if u.Now != nil {
		now = u.Now
	}
	return u.SendDay(ctx, now().Local().Format(DayLayout))
}

// SendDay uploads the bundle for day (YYYY-MM-DD).
func (u *Uploader) SendDay(ctx context.Context, day string) error {
	if _, err := time.Parse(DayLayout, day); err != nil {
		return fmt.Errorf("day %q: want YYYY-MM-DD", day)
	}
	if strings.TrimSpace(u.URL) == "" {
		return errors.New("upload_url is not configured")
	}
	files, err := dayFiles(u.DataDir, day)
	if err != nil {
		return err
	}
	client := u.Client
	if client == nil {
		client = http.DefaultClient
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(writeFiles(pw, u.DataDir, files))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.URL, pr)
	if err != nil {
		pr.Close()
		return err
	}
	req.Header.Set("Content-Type", "application/gzip")

	resp, err := client.Do(req)
	if err != nil {
		pr.CloseWithError(err)
		return fmt.Errorf("upload %s: %w", day, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upload %s: %s (%s)", day, resp.Status, strings.TrimSpace(string(body)))
	}
	if u.Logger != nil {
		u.Logger.Info("bundle uploaded", "day", day, "url", u.URL)
	}
	return nil
}
