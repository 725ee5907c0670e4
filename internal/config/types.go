package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Scan modes.
const (
	ModeProtect = "protect"
	ModeDetect  = "detect"
)

// Install bases.
const (
	BaseHome       = "home"
	BaseExecutable = "executable"
)

// Default values used when the configuration file leaves a field out.
const (
	DefaultReportPath = "report.json"
	DefaultLogOpts    = "--since=2023-05-01"
	DefaultDirName    = "gitleaks"
	// MaxDownloadTimeout caps install.download_timeout.
	MaxDownloadTimeout = time.Hour
)

// Config is the per-repository leakguard configuration.
type Config struct {
	// Enabled is nil when the file does not set it, so the caller can tell
	// "off" apart from "unspecified".
	Enabled *bool

	// Mode selects what is scanned: staged changes (protect) or history (detect).
	Mode string

	// ReportPath is passed to --report-path. Empty omits the flag.
	ReportPath string

	// LogOpts is passed to --log-opts. Empty omits the flag.
	LogOpts string

	// LogFile receives a copy of the scanner output. Relative paths are
	// relative to the repository root. Empty disables the copy.
	LogFile string

	Install InstallConfig
}

// InstallConfig controls where and how the scanner is installed.
type InstallConfig struct {
	// Dir is the install directory. Empty derives it from Base.
	Dir string
	// Base is BaseHome or BaseExecutable.
	Base string

	ReuseExisting      bool
	CleanBeforeInstall bool
	SearchPath         bool

	// DownloadTimeout bounds the archive download. Zero uses the resolver default.
	DownloadTimeout time.Duration
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Config {
	return &Config{
		Mode:       ModeProtect,
		ReportPath: DefaultReportPath,
		LogOpts:    DefaultLogOpts,
		Install: InstallConfig{
			Base:          BaseHome,
			ReuseExisting: true,
			SearchPath:    true,
		},
	}
}

// IsEnabled reports whether the file turned the hook on.
func (c *Config) IsEnabled() bool {
	return c.Enabled != nil && *c.Enabled
}

// Validate checks values the Lua type checks cannot catch.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeProtect, ModeDetect:
	default:
		return &ValidationError{
			Field:   "mode",
			Message: fmt.Sprintf("unknown mode %q (expected %q or %q)", c.Mode, ModeProtect, ModeDetect),
		}
	}

	switch c.Install.Base {
	case BaseHome, BaseExecutable:
	default:
		return &ValidationError{
			Field:   "install.base",
			Message: fmt.Sprintf("unknown base %q (expected %q or %q)", c.Install.Base, BaseHome, BaseExecutable),
		}
	}

	if c.Install.DownloadTimeout < 0 || c.Install.DownloadTimeout > MaxDownloadTimeout {
		return &ValidationError{
			Field:   "install.download_timeout",
			Message: fmt.Sprintf("must be between 0 and %d seconds", int(MaxDownloadTimeout.Seconds())),
		}
	}

	if strings.ContainsAny(c.ReportPath, "\x00\n") {
		return &ValidationError{Field: "report_path", Message: "contains control characters"}
	}
	if strings.ContainsAny(c.LogOpts, "\x00\n") {
		return &ValidationError{Field: "log_opts", Message: "contains control characters"}
	}

	return nil
}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

var (
	userHomeDir    = os.UserHomeDir
	executablePath = os.Executable
)

// InstallDir returns the absolute install directory.
//
// An explicit Dir wins; "~/" expands to the home directory and relative
// paths are taken relative to repoRoot. Otherwise the directory is named
// gitleaks and sits in the home directory (BaseHome) or next to the running
// leakguard executable (BaseExecutable).
func (c *Config) InstallDir(repoRoot string) (string, error) {
	if dir := c.Install.Dir; dir != "" {
		if dir == "~" || strings.HasPrefix(dir, "~/") {
			home, err := userHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			dir = filepath.Join(home, strings.TrimPrefix(dir[1:], "/"))
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(repoRoot, dir)
		}
		return filepath.Abs(dir)
	}

	if c.Install.Base == BaseExecutable {
		exe, err := executablePath()
		if err != nil {
			return "", fmt.Errorf("cannot locate leakguard executable: %w", err)
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Join(filepath.Dir(exe), DefaultDirName), nil
	}

	home, err := userHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName), nil
}

// LogFilePath returns LogFile resolved against repoRoot, or "" when output
// logging is off.
func (c *Config) LogFilePath(repoRoot string) string {
	if c.LogFile == "" {
		return ""
	}
	if filepath.IsAbs(c.LogFile) {
		return c.LogFile
	}
	return filepath.Join(repoRoot, c.LogFile)
}

// applyEnv overlays environment overrides.
func (c *Config) applyEnv(getenv func(string) string) {
	if dir := getenv(EnvInstallDir); dir != "" {
		c.Install.Dir = dir
	}
}
