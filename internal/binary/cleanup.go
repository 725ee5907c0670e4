package binary

import (
	"fmt"
	"os"
	"path/filepath"
)

// RemoveTree deletes path and everything below it. Directories are removed
// after their contents, walking with an explicit stack so the depth of the
// tree is not bounded by the goroutine stack. Symlinks are removed, never
// followed. A path that does not exist is not an error.
func RemoveTree(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: stat %s: %w", ErrFilesystem, path, err)
	}

	if !info.IsDir() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: remove %s: %w", ErrFilesystem, path, err)
		}
		return nil
	}

	// Files are unlinked as they are found; directories are collected in
	// pre-order and removed in reverse, so every directory is empty by the
	// time it is removed.
	var dirs []string
	stack := []string{path}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		dirs = append(dirs, dir)

		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("%w: read dir %s: %w", ErrFilesystem, dir, err)
		}

		for _, entry := range entries {
			child := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				stack = append(stack, child)
				continue
			}
			if err := os.Remove(child); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("%w: remove %s: %w", ErrFilesystem, child, err)
			}
		}
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		if err := os.Remove(dirs[i]); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: remove dir %s: %w", ErrFilesystem, dirs[i], err)
		}
	}

	return nil
}
