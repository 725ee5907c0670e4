package testutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZebulonRouseFrantzich/leakguard/internal/testutil"
)

func TestSetupTestEnv(t *testing.T) {
	env := testutil.SetupTestEnv(t)

	if got := os.Getenv("HOME"); got != env.Home {
		t.Errorf("HOME = %q, want %q", got, env.Home)
	}
	if got := os.Getenv("XDG_CONFIG_HOME"); got != env.ConfigHome {
		t.Errorf("XDG_CONFIG_HOME = %q, want %q", got, env.ConfigHome)
	}
	if got := os.Getenv("LEAKGUARD_INSTALL_DIR"); got != env.InstallDir {
		t.Errorf("LEAKGUARD_INSTALL_DIR = %q, want %q", got, env.InstallDir)
	}

	for _, dir := range []string{env.Home, env.ConfigHome} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("directory %s not created: %v", dir, err)
		}
	}
	if _, err := os.Stat(env.InstallDir); !os.IsNotExist(err) {
		t.Error("install dir should be left for the resolver to create")
	}
}

func TestWriteGlobalGitConfig(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	env.WriteGlobalGitConfig(t, "[hooks]\n\tgitleaks = true\n")

	data, err := os.ReadFile(filepath.Join(env.Home, ".gitconfig"))
	if err != nil {
		t.Fatalf("global config not written: %v", err)
	}
	if string(data) != "[hooks]\n\tgitleaks = true\n" {
		t.Errorf("unexpected content %q", data)
	}
}
