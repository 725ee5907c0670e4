package binary

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireLock(t *testing.T) {
	t.Run("creates lock file next to install dir", func(t *testing.T) {
		installDir := filepath.Join(t.TempDir(), "gitleaks")

		lock, err := AcquireLock(context.Background(), installDir)
		if err != nil {
			t.Fatalf("AcquireLock failed: %v", err)
		}
		defer lock.Release()

		if _, err := os.Stat(filepath.Join(filepath.Dir(installDir), ".gitleaks.lock")); err != nil {
			t.Errorf("lock file not created: %v", err)
		}
		if _, err := os.Stat(installDir); !os.IsNotExist(err) {
			t.Error("acquiring the lock should not create the install dir")
		}
	})

	t.Run("blocks until context ends while held", func(t *testing.T) {
		installDir := filepath.Join(t.TempDir(), "gitleaks")

		lock1, err := AcquireLock(context.Background(), installDir)
		if err != nil {
			t.Fatalf("first AcquireLock failed: %v", err)
		}
		defer lock1.Release()

		ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
		defer cancel()

		_, err = AcquireLock(ctx, installDir)
		if !errors.Is(err, ErrLockExists) {
			t.Errorf("expected ErrLockExists, got %v", err)
		}
	})

	t.Run("acquires after release", func(t *testing.T) {
		installDir := filepath.Join(t.TempDir(), "gitleaks")

		lock1, err := AcquireLock(context.Background(), installDir)
		if err != nil {
			t.Fatalf("first AcquireLock failed: %v", err)
		}

		done := make(chan error, 1)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			lock2, err := AcquireLock(ctx, installDir)
			if err == nil {
				err = lock2.Release()
			}
			done <- err
		}()

		time.Sleep(150 * time.Millisecond)
		if err := lock1.Release(); err != nil {
			t.Fatalf("Release failed: %v", err)
		}

		if err := <-done; err != nil {
			t.Errorf("second AcquireLock failed after release: %v", err)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := AcquireLock(ctx, filepath.Join(t.TempDir(), "gitleaks"))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("removes stale lock", func(t *testing.T) {
		installDir := filepath.Join(t.TempDir(), "gitleaks")
		path := lockPath(installDir)
		if err := os.WriteFile(path, []byte("pid=1\n"), 0600); err != nil {
			t.Fatal(err)
		}
		old := time.Now().Add(-2 * StaleLockThreshold)
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		lock, err := AcquireLock(ctx, installDir)
		if err != nil {
			t.Fatalf("AcquireLock with stale lock failed: %v", err)
		}
		defer lock.Release()
	})
}

func TestLockRelease_Idempotent(t *testing.T) {
	lock, err := AcquireLock(context.Background(), filepath.Join(t.TempDir(), "gitleaks"))
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("first Release failed: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Errorf("second Release failed: %v", err)
	}
}

func TestRemoveStaleLock(t *testing.T) {
	t.Run("removes the observed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".gitleaks.lock")
		if err := os.WriteFile(path, []byte("pid=1\n"), 0600); err != nil {
			t.Fatal(err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}

		if err := removeStaleLock(path, info); err != nil {
			t.Fatalf("removeStaleLock failed: %v", err)
		}
		assertOnlyEntries(t, filepath.Dir(path))
	})

	t.Run("keeps a lock that replaced the stale one", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, ".gitleaks.lock")
		if err := os.WriteFile(path, []byte("pid=1\n"), 0600); err != nil {
			t.Fatal(err)
		}
		stale, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}

		// Another waiter took the stale lock over and created its own.
		// The old file stays on disk so its inode cannot be reused.
		if err := os.Rename(path, filepath.Join(dir, "old")); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("pid=2\n"), 0600); err != nil {
			t.Fatal(err)
		}

		if err := removeStaleLock(path, stale); err != nil {
			t.Fatalf("removeStaleLock failed: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("fresh lock was removed: %v", err)
		}
		if string(data) != "pid=2\n" {
			t.Errorf("lock content = %q, want the fresh lock", data)
		}
		assertOnlyEntries(t, dir, ".gitleaks.lock", "old")
	})

	t.Run("lock already gone", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, ".gitleaks.lock")
		if err := os.WriteFile(path, nil, 0600); err != nil {
			t.Fatal(err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.Remove(path); err != nil {
			t.Fatal(err)
		}

		if err := removeStaleLock(path, info); err != nil {
			t.Errorf("removeStaleLock on missing lock = %v, want nil", err)
		}
	})
}

func assertOnlyEntries(t *testing.T, dir string, want ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	if len(got) != len(want) {
		t.Fatalf("entries of %s = %v, want %v", dir, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entries of %s = %v, want %v", dir, got, want)
			break
		}
	}
}
