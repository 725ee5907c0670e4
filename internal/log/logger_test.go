package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("resolved scanner", "path", "/tmp/gitleaks")

	output := buf.String()
	if !strings.Contains(output, "resolved scanner") {
		t.Errorf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, "path=/tmp/gitleaks") {
		t.Errorf("expected attribute in output, got: %s", output)
	}
}

func TestNewText_Levels(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		debug       bool
		wantInfo    bool
		wantDebug   bool
		wantWarning bool
	}{
		{"default", false, false, false, false, true},
		{"verbose", true, false, true, false, true},
		{"debug", false, true, true, true, true},
		{"debug wins", true, true, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewText(&buf, tt.verbose, tt.debug)
			logger.Debug("debug msg")
			logger.Info("info msg")
			logger.Warn("warn msg")

			out := buf.String()
			if got := strings.Contains(out, "debug msg"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "info msg"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", got, tt.wantInfo)
			}
			if got := strings.Contains(out, "warn msg"); got != tt.wantWarning {
				t.Errorf("warn logged = %v, want %v", got, tt.wantWarning)
			}
		})
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.NewTextHandler(&buf, nil)).With("tool", "gitleaks")

	logger.Warn("stale install")

	if !strings.Contains(buf.String(), "tool=gitleaks") {
		t.Errorf("expected With attributes in output, got: %s", buf.String())
	}
}

func TestNoop(t *testing.T) {
	logger := NewNoop()
	logger.Debug("x")
	logger.Info("x")
	logger.Warn("x")
	logger.Error("x")
	if logger.With("k", "v") == nil {
		t.Error("With() on noop logger returned nil")
	}
}

func TestDefault(t *testing.T) {
	orig := Default()
	t.Cleanup(func() { SetDefault(orig) })

	var buf bytes.Buffer
	SetDefault(New(slog.NewTextHandler(&buf, nil)))
	Default().Error("boom")
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("expected default logger output, got: %s", buf.String())
	}

	SetDefault(nil)
	if Default() == nil {
		t.Error("SetDefault(nil) should install a noop logger")
	}
}
