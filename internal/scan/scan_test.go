package scan

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"protect", Protect, false},
		{"DETECT", Detect, false},
		{" detect ", Detect, false},
		{"scan", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %q, %v; want %q, wantErr %v", tt.in, got, err, tt.want, tt.wantErr)
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownMode) {
			t.Errorf("ParseMode(%q) error = %v, want ErrUnknownMode", tt.in, err)
		}
	}
}

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "protect with defaults",
			opts: Options{Mode: Protect, ReportPath: "report.json", LogOpts: "--since=2023-05-01"},
			want: []string{"protect", "--staged", "-v", "--report-path", "report.json", "--log-opts=--since=2023-05-01"},
		},
		{
			name: "detect",
			opts: Options{Mode: Detect, ReportPath: "out.json", LogOpts: "--all"},
			want: []string{"detect", "--redact", "-v", "--report-path", "out.json", "--log-opts=--all"},
		},
		{
			name: "no report",
			opts: Options{Mode: Protect, LogOpts: "-n 5"},
			want: []string{"protect", "--staged", "-v", "--log-opts=-n 5"},
		},
		{
			name: "bare",
			opts: Options{Mode: Detect},
			want: []string{"detect", "--redact", "-v"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Args(tt.opts); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Args() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArgs_DoesNotShareModeSlice(t *testing.T) {
	a := Args(Options{Mode: Protect, ReportPath: "a.json"})
	b := Args(Options{Mode: Protect, ReportPath: "b.json"})
	if a[4] != "a.json" || b[4] != "b.json" {
		t.Errorf("argument lists interfere: %q %q", a, b)
	}
}
