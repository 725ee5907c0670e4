package git

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExclude(t *testing.T) {
	root := initRepo(t)
	c := openClient(t, root)
	excludePath := filepath.Join(c.GitDir(), "info", "exclude")

	if err := os.MkdirAll(filepath.Dir(excludePath), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(excludePath, []byte("# existing\n*.swp"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := c.Exclude("report.json", ".git/leakguard.log", ""); err != nil {
		t.Fatalf("Exclude() error = %v", err)
	}
	if err := c.Exclude("report.json"); err != nil {
		t.Fatalf("second Exclude() error = %v", err)
	}

	data, err := os.ReadFile(excludePath)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	want := "# existing\n*.swp\n" + excludeHeader + "\nreport.json\n.git/leakguard.log\n"
	if content != want {
		t.Errorf("exclude file =\n%q\nwant\n%q", content, want)
	}
	if strings.Count(content, "report.json") != 1 {
		t.Error("pattern added twice")
	}
}

func TestExclude_CreatesFile(t *testing.T) {
	c := openClient(t, initRepo(t))
	excludePath := filepath.Join(c.GitDir(), "info", "exclude")
	_ = os.RemoveAll(filepath.Dir(excludePath))

	if err := c.Exclude("out/report.json"); err != nil {
		t.Fatalf("Exclude() error = %v", err)
	}
	data, err := os.ReadFile(excludePath)
	if err != nil {
		t.Fatalf("exclude file not created: %v", err)
	}
	if !strings.Contains(string(data), "out/report.json\n") {
		t.Errorf("exclude file = %q", data)
	}
}
