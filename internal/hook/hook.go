// Package hook manages the leakguard block inside git hook scripts.
//
// The block is delimited by marker comments so it can live next to other
// content in the same hook file and be removed again without touching it.
package hook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// Markers delimit the leakguard-managed block within a hook file.
	BeginMarker   = "# BEGIN LEAKGUARD HOOK"
	EndMarker     = "# END LEAKGUARD HOOK"
	PreCommitHook = "pre-commit"
	PrePushHook   = "pre-push"
	shebang       = "#!/bin/sh"
	fileMode      = 0755
)

var (
	ErrAlreadyInstalled = errors.New("leakguard hook is already installed")
	ErrNotInstalled     = errors.New("leakguard hook is not installed")
	ErrUnknownHook      = errors.New("unsupported hook")
)

// Status describes the current state of a hook.
type Status struct {
	Name      string
	Installed bool
	HookPath  string
	HasOther  bool // true if hook file has non-leakguard content
}

// Hooks lists the hooks leakguard can be installed into.
func Hooks() []string {
	return []string{PreCommitHook, PrePushHook}
}

// ModeFor returns the scan mode a hook runs: staged changes before a
// commit, history before a push.
func ModeFor(hookName string) (string, error) {
	switch hookName {
	case PreCommitHook:
		return "protect", nil
	case PrePushHook:
		return "detect", nil
	default:
		return "", fmt.Errorf("%w: %q (expected %s or %s)", ErrUnknownHook, hookName, PreCommitHook, PrePushHook)
	}
}

// Block returns the marker-delimited block for hookName. command is how
// the hook invokes leakguard; empty means "leakguard" from PATH. A failing
// scan aborts the git operation with the scanner's exit status.
func Block(hookName, command string) (string, error) {
	mode, err := ModeFor(hookName)
	if err != nil {
		return "", err
	}

	if command == "" {
		return fmt.Sprintf(`%s
# Installed by leakguard; do not edit this block manually
if command -v leakguard >/dev/null 2>&1; then
  leakguard run --mode %s || exit $?
else
  echo "leakguard: not found on PATH, secret scan skipped" >&2
fi
%s`, BeginMarker, mode, EndMarker), nil
	}

	return fmt.Sprintf(`%s
# Installed by leakguard; do not edit this block manually
%s run --mode %s || exit $?
%s`, BeginMarker, shellQuote(command), mode, EndMarker), nil
}

// Install creates or appends the leakguard block to the given hook file.
func Install(hooksDir, hookName, block string) error {
	if err := os.MkdirAll(hooksDir, 0750); err != nil {
		return fmt.Errorf("create hooks directory: %w", err)
	}

	hookPath := filepath.Join(hooksDir, hookName)
	existing, err := os.ReadFile(hookPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read hook file: %w", err)
	}

	content := string(existing)
	if containsBlock(content) {
		return ErrAlreadyInstalled
	}

	var newContent string
	switch {
	case content == "":
		newContent = shebang + "\n\n" + block + "\n"
	case strings.HasSuffix(content, "\n"):
		newContent = content + "\n" + block + "\n"
	default:
		newContent = content + "\n\n" + block + "\n"
	}

	if err := os.WriteFile(hookPath, []byte(newContent), fileMode); err != nil {
		return fmt.Errorf("write hook file: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(hookPath, fileMode); err != nil {
		return fmt.Errorf("make hook executable: %w", err)
	}

	return nil
}

// Uninstall removes the leakguard block from the given hook file. The file
// is deleted when nothing but the shebang remains.
func Uninstall(hooksDir, hookName string) error {
	hookPath := filepath.Join(hooksDir, hookName)
	existing, err := os.ReadFile(hookPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotInstalled
		}
		return fmt.Errorf("read hook file: %w", err)
	}

	content := string(existing)
	if !containsBlock(content) {
		return ErrNotInstalled
	}

	cleaned := removeBlock(content)
	if isShebangOnly(cleaned) {
		if err := os.Remove(hookPath); err != nil {
			return fmt.Errorf("remove hook file: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(hookPath, []byte(cleaned), fileMode); err != nil {
		return fmt.Errorf("write hook file: %w", err)
	}
	return nil
}

// Check inspects the current state of the given hook.
func Check(hooksDir, hookName string) Status {
	hookPath := filepath.Join(hooksDir, hookName)
	status := Status{Name: hookName, HookPath: hookPath}

	existing, err := os.ReadFile(hookPath)
	if err != nil {
		return status
	}

	content := string(existing)
	status.Installed = containsBlock(content)
	if status.Installed {
		content = removeBlock(content)
	}
	status.HasOther = !isShebangOnly(content)

	return status
}

func containsBlock(content string) bool {
	return strings.Contains(content, BeginMarker) && strings.Contains(content, EndMarker)
}

func removeBlock(content string) string {
	before, afterBegin, found := strings.Cut(content, BeginMarker)
	if !found {
		return content
	}

	_, afterEnd, found := strings.Cut(afterBegin, EndMarker)
	if !found {
		// BEGIN without END: drop everything from BEGIN on.
		before = strings.TrimRight(before, "\n")
		if before == "" {
			return ""
		}
		return before + "\n"
	}

	after := strings.TrimLeft(afterEnd, "\n")
	before = strings.TrimRight(before, "\n")

	if before == "" {
		return after
	}
	if after == "" {
		return before + "\n"
	}
	return before + "\n\n" + after
}

func isShebangOnly(content string) bool {
	trimmed := strings.TrimSpace(content)
	return trimmed == "" || trimmed == shebang
}

// shellQuote wraps s in single quotes for /bin/sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
