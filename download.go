package optd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

// EnsureLocalCopy downloads url to path unless a non-empty file is already
// there. A failed download leaves no file at path.
func (s *Session) EnsureLocalCopy(ctx context.Context, url, path string) error {
	s.downloadMu.Lock()
	defer s.downloadMu.Unlock()

	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		s.config.Logger.Debug("using local copy",
			slog.String("path", path),
			slog.Time("modified", info.ModTime()),
			slog.Int64("size", info.Size()))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	s.config.Logger.Info("downloading OPTD file", slog.String("url", url), slog.String("path", path))
	return downloadFile(ctx, s.config.HTTPClient, url, path)
}

// DownloadFilesIfNeeded makes sure every OPTD file has a local copy.
func (s *Session) DownloadFilesIfNeeded(ctx context.Context) error {
	for _, f := range s.DataSources() {
		if err := s.EnsureLocalCopy(ctx, f.URL, f.Path); err != nil {
			return fmt.Errorf("downloading %s: %w", f.ID, err)
		}
	}
	return nil
}

// FileSizes returns the size in bytes of the local copy of every OPTD
// file. Missing files are reported with size 0.
func (s *Session) FileSizes() (map[DataSourceID]int64, error) {
	sizes := make(map[DataSourceID]int64, len(dataSetFiles))
	for _, f := range s.DataSources() {
		info, err := os.Stat(f.Path)
		if errors.Is(err, os.ErrNotExist) {
			sizes[f.ID] = 0
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", f.Path, err)
		}
		sizes[f.ID] = info.Size()
	}
	return sizes, nil
}

// RemoveLocalCopies deletes the local copies of the OPTD files so that the
// next fetch downloads them again. Indices already built are kept.
func (s *Session) RemoveLocalCopies() error {
	s.downloadMu.Lock()
	defer s.downloadMu.Unlock()

	for _, f := range s.DataSources() {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", f.Path, err)
		}
	}
	return nil
}

// downloadFile streams url into a temporary file next to path and renames
// it into place once the body has been read in full. On failure path is
// left untouched and the temporary file is removed.
func downloadFile(ctx context.Context, client *http.Client, url, path string) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP GET %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP GET %s: status %d", url, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.part")
	if err != nil {
		return fmt.Errorf("creating temporary file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0644); err != nil {
		return fmt.Errorf("setting mode of %s: %w", tmp.Name(), err)
	}
	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s after %d bytes: %w", url, n, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("moving download to %s: %w", path, err)
	}
	return nil
}
