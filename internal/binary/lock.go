package binary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// StaleLockThreshold is the maximum age of a lock before it's considered stale.
	StaleLockThreshold = 10 * time.Minute
	lockPollInterval   = 100 * time.Millisecond
)

// ErrLockExists is returned when the context ends while another process
// still holds the install lock.
var ErrLockExists = errors.New("install lock exists: another install may be in progress")

// Lock is an exclusive lock file guarding one install directory.
type Lock struct {
	path string
	file *os.File
}

// lockPath returns the lock file used for an install directory. It lives
// next to the directory so removing the directory does not drop the lock.
func lockPath(installDir string) string {
	return filepath.Join(filepath.Dir(installDir), "."+filepath.Base(installDir)+".lock")
}

// AcquireLock takes the install lock for installDir, polling until it is
// free or ctx ends. A lock file older than StaleLockThreshold is assumed to
// belong to a crashed process and is removed.
func AcquireLock(ctx context.Context, installDir string) (*Lock, error) {
	path := lockPath(installDir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: create lock directory: %w", ErrFilesystem, err)
	}

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLockExists, err)
		}

		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
		if err == nil {
			return writeLock(path, file)
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("%w: create lock file: %w", ErrFilesystem, err)
		}

		if info, err := os.Stat(path); err == nil && isStale(info) {
			if err := removeStaleLock(path, info); err != nil {
				return nil, err
			}
			continue
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrLockExists, ctx.Err())
		case <-ticker.C:
		}
	}
}

// writeLock records the owner PID and time in a freshly created lock file.
func writeLock(path string, file *os.File) (*Lock, error) {
	lockData := fmt.Sprintf("pid=%d\ntimestamp=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if _, err := file.WriteString(lockData); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("%w: write lock data: %w", ErrFilesystem, err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("%w: sync lock file: %w", ErrFilesystem, err)
	}

	return &Lock{path: path, file: file}, nil
}

// Release releases the lock.
func (l *Lock) Release() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	if l.path != "" {
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: remove lock file: %w", ErrFilesystem, err)
		}
		l.path = ""
	}

	return nil
}

// isStale reports whether a lock file is older than StaleLockThreshold.
func isStale(info os.FileInfo) bool {
	return time.Since(info.ModTime()) > StaleLockThreshold
}

// removeStaleLock removes the lock file described by stale. The file at path
// is moved aside first; if it turns out to be a different file, another
// waiter already replaced the stale lock and its lock is put back.
func removeStaleLock(path string, stale os.FileInfo) error {
	aside := fmt.Sprintf("%s.stale-%d-%d", path, os.Getpid(), time.Now().UnixNano())
	if err := os.Rename(path, aside); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: move stale lock: %w", ErrFilesystem, err)
	}
	defer os.Remove(aside)

	moved, err := os.Stat(aside)
	if err != nil {
		return fmt.Errorf("%w: stat stale lock: %w", ErrFilesystem, err)
	}
	if os.SameFile(stale, moved) {
		return nil
	}

	if err := os.Link(aside, path); err != nil && !os.IsExist(err) {
		return fmt.Errorf("%w: restore lock: %w", ErrFilesystem, err)
	}
	return nil
}
