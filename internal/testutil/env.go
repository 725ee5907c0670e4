// Package testutil provides utilities for testing leakguard in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Env holds the directories SetupTestEnv created.
type Env struct {
	Home       string
	ConfigHome string
	InstallDir string
}

// SetupTestEnv points every location leakguard and go-git read from the
// environment at a fresh temp directory, so tests never see the user's
// ~/.gitconfig or reuse a real scanner install. Cleanup is handled by
// t.TempDir and t.Setenv.
func SetupTestEnv(t *testing.T) Env {
	t.Helper()

	tmpDir := t.TempDir()
	env := Env{
		Home:       filepath.Join(tmpDir, "home"),
		ConfigHome: filepath.Join(tmpDir, "xdg"),
		InstallDir: filepath.Join(tmpDir, "home", "gitleaks"),
	}

	t.Setenv("HOME", env.Home)
	t.Setenv("USERPROFILE", env.Home)
	t.Setenv("XDG_CONFIG_HOME", env.ConfigHome)
	t.Setenv("LEAKGUARD_INSTALL_DIR", env.InstallDir)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")

	for _, dir := range []string{env.Home, env.ConfigHome} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return env
}

// WriteGlobalGitConfig writes content as the isolated user-level git config.
func (e Env) WriteGlobalGitConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(e.Home, ".gitconfig")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
