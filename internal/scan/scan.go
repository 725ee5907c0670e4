// Package scan runs the secret scanner against a repository.
package scan

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects what the scanner looks at.
type Mode string

const (
	// Protect scans staged changes. Used before a commit.
	Protect Mode = "protect"
	// Detect scans the commit history selected by the log options. Used
	// before a push.
	Detect Mode = "detect"
)

// ErrUnknownMode is returned by ParseMode.
var ErrUnknownMode = errors.New("unknown scan mode")

// ParseMode converts a mode name. Matching is case-insensitive.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case Protect, Detect:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q (expected %s or %s)", ErrUnknownMode, s, Protect, Detect)
	}
}

// args returns the fixed scanner arguments of the mode.
func (m Mode) args() []string {
	if m == Detect {
		return []string{"detect", "--redact", "-v"}
	}
	return []string{"protect", "--staged", "-v"}
}

// Options are the variable parts of a scanner invocation.
type Options struct {
	Mode       Mode
	ReportPath string
	LogOpts    string
}

// Args builds the scanner argument list:
//
//	<mode args> --report-path <report> --log-opts=<logOpts>
//
// The report and log-opts parts are left out when empty.
func Args(opts Options) []string {
	args := opts.Mode.args()
	if opts.ReportPath != "" {
		args = append(args, "--report-path", opts.ReportPath)
	}
	if opts.LogOpts != "" {
		args = append(args, "--log-opts="+opts.LogOpts)
	}
	return args
}
