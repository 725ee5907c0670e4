package main

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func writeRepoFile(t *testing.T, repo, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(repo, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestHookInstallStatusUninstall(t *testing.T) {
	e := newTestEnv(t)
	hooksDir := filepath.Join(e.repo, ".git", "hooks")

	out, _, err := e.execute(t, "hook", "install", "--enable")
	if err != nil {
		t.Fatalf("hook install: %v", err)
	}
	if !strings.Contains(out, "Installed pre-commit hook") || !strings.Contains(out, "Installed pre-push hook") {
		t.Errorf("install output = %q", out)
	}
	if !strings.Contains(out, "hooks.gitleaks = true") {
		t.Errorf("install --enable output = %q", out)
	}

	data, err := os.ReadFile(filepath.Join(hooksDir, "pre-push"))
	if err != nil {
		t.Fatalf("pre-push hook not written: %v", err)
	}
	if !strings.Contains(string(data), "leakguard run --mode detect") {
		t.Errorf("pre-push hook = %q", data)
	}

	exclude, err := os.ReadFile(filepath.Join(e.repo, ".git", "info", "exclude"))
	if err != nil || !strings.Contains(string(exclude), "report.json") {
		t.Errorf("report not excluded: %q, %v", exclude, err)
	}

	out, _, err = e.execute(t, "hook", "install", "pre-commit")
	if err != nil {
		t.Fatalf("second hook install: %v", err)
	}
	if !strings.Contains(out, "already installed") {
		t.Errorf("second install output = %q", out)
	}

	out, _, err = e.execute(t, "hook", "status")
	if err != nil {
		t.Fatalf("hook status: %v", err)
	}
	if strings.Count(out, ": installed") != 2 {
		t.Errorf("hook status output = %q", out)
	}

	out, _, err = e.execute(t, "hook", "uninstall", "pre-commit")
	if err != nil {
		t.Fatalf("hook uninstall: %v", err)
	}
	if !strings.Contains(out, "Removed pre-commit hook") {
		t.Errorf("uninstall output = %q", out)
	}
	if fileExists(filepath.Join(hooksDir, "pre-commit")) {
		t.Error("pre-commit hook file should be removed")
	}
	if !fileExists(filepath.Join(hooksDir, "pre-push")) {
		t.Error("pre-push hook should be kept")
	}
}

func TestHookInstall_Absolute(t *testing.T) {
	e := newTestEnv(t)
	exe := filepath.Join(t.TempDir(), "leakguard")
	e.app.executable = func() (string, error) { return exe, nil }

	if _, _, err := e.execute(t, "hook", "install", "--absolute", "pre-commit"); err != nil {
		t.Fatalf("hook install --absolute: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(e.repo, ".git", "hooks", "pre-commit"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "'"+exe+"' run --mode protect") {
		t.Errorf("hook = %q", data)
	}
}

func TestHook_UnknownName(t *testing.T) {
	e := newTestEnv(t)
	if _, _, err := e.execute(t, "hook", "install", "post-merge"); err == nil {
		t.Error("installing an unsupported hook should fail")
	}
}

func TestHookUninstall_NothingInstalled(t *testing.T) {
	e := newTestEnv(t)
	out, _, err := e.execute(t, "hook", "uninstall")
	if err != nil {
		t.Fatalf("hook uninstall: %v", err)
	}
	if !strings.Contains(out, "No leakguard hooks were installed") {
		t.Errorf("output = %q", out)
	}
}

func TestInit(t *testing.T) {
	e := newTestEnv(t)

	if _, _, err := e.execute(t, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(e.repo, ".leakguard.lua"))
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(data), "enabled = true") {
		t.Errorf("generated config = %q", data)
	}

	if _, _, err := e.execute(t, "init"); err == nil {
		t.Error("second init without --force should fail")
	}
	if _, _, err := e.execute(t, "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}

	out, _, err := e.execute(t, "status")
	if err != nil {
		t.Fatalf("status after init: %v", err)
	}
	if !regexp.MustCompile(`Enabled:\s+yes`).MatchString(out) {
		t.Errorf("status should report the generated config as enabled:\n%s", out)
	}
}
