package binary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultTimeout bounds a whole artifact download.
	DefaultTimeout = 5 * time.Minute
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "leakguard/1.0"
	maxRedirects     = 10
)

// HTTPClient abstracts HTTP requests for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Downloader fetches a URL to a file in a single attempt.
type Downloader struct {
	client    HTTPClient
	userAgent string
	timeout   time.Duration
}

// NewDownloader creates a downloader. A nil client gets a default
// http.Client that follows up to ten redirects (GitHub release assets
// redirect to object storage). A zero timeout means DefaultTimeout.
func NewDownloader(client HTTPClient, timeout time.Duration) *Downloader {
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Downloader{
		client:    client,
		userAgent: DefaultUserAgent,
		timeout:   timeout,
	}
}

// DownloadToFile downloads url to destPath. The body is written to a
// temporary file that is renamed into place only after the copy finished,
// so a failed download never leaves a truncated file at destPath.
//
// Transport errors, non-200 responses and the timeout expiring wrap
// ErrDownload. Failing to write the file wraps ErrFilesystem.
func (d *Downloader) DownloadToFile(ctx context.Context, url, destPath string) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrDownload, err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDownload, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: unexpected status code: %d", ErrDownload, url, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("%w: create dest dir: %w", ErrFilesystem, err)
	}

	tmpPath := destPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrFilesystem, err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		// A body that stops mid-way is a transport failure; a disk that
		// fills up is not.
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return fmt.Errorf("%w: write %s: %w", ErrFilesystem, tmpPath, err)
		}
		return fmt.Errorf("%w: read body of %s: %w", ErrDownload, url, err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %w", ErrFilesystem, err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("%w: rename temp file: %w", ErrFilesystem, err)
	}

	cleanupNeeded = false
	return nil
}
