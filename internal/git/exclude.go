package git

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const excludeHeader = "# leakguard scan output"

// Exclude adds patterns to the repository's info/exclude file so scanner
// reports and logs are never committed by accident. Patterns already
// present are skipped; the file is created when missing.
func (c *Client) Exclude(patterns ...string) error {
	if c.gitDir == "" {
		return fmt.Errorf("%w: repository has no git directory", ErrNotAGitRepo)
	}
	path := filepath.Join(c.commonDir(), "info", "exclude")

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", path, err)
	}

	present := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(existing))
	for scanner.Scan() {
		present[strings.TrimSpace(scanner.Text())] = true
	}

	var add []string
	for _, p := range patterns {
		p = strings.TrimSpace(filepath.ToSlash(p))
		if p == "" || present[p] {
			continue
		}
		present[p] = true
		add = append(add, p)
	}
	if len(add) == 0 {
		return nil
	}

	var buf bytes.Buffer
	buf.Write(existing)
	if len(existing) > 0 && !bytes.HasSuffix(existing, []byte("\n")) {
		buf.WriteByte('\n')
	}
	if !present[excludeHeader] {
		buf.WriteString(excludeHeader + "\n")
	}
	for _, p := range add {
		buf.WriteString(p + "\n")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
