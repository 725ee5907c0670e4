package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZebulonRouseFrantzich/leakguard/internal/log"
)

// Runner starts the scanner as a child process.
type Runner struct {
	// Dir is the working directory, normally the repository root.
	Dir string
	// LogFile receives a copy of the combined output when set.
	LogFile string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Logger log.Logger
	now    func() time.Time
}

// NewRunner creates a runner attached to the process's standard streams.
func NewRunner(dir, logFile string, logger log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Dir:     dir,
		LogFile: logFile,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Logger:  logger,
		now:     time.Now,
	}
}

// Run invokes executable with the arguments for opts and waits for it.
//
// The scanner's exit status is returned as is; a non-zero status is not an
// error. An error is returned when the scanner could not be started, was
// killed, or the log file could not be opened.
func (r *Runner) Run(ctx context.Context, executable string, opts Options) (int, error) {
	args := Args(opts)
	logger := r.logger().With("mode", string(opts.Mode))

	cmd := exec.CommandContext(ctx, executable, args...)
	cmd.Dir = r.Dir
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if r.LogFile != "" {
		f, err := r.openLog(opts.Mode, executable, args)
		if err != nil {
			return 1, err
		}
		defer f.Close()
		cmd.Stdout = teeTo(r.Stdout, f)
		cmd.Stderr = teeTo(r.Stderr, f)
	}

	logger.Debug("running scanner", "executable", executable, "args", args, "dir", r.Dir)

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 1, fmt.Errorf("scanner interrupted: %w", ctxErr)
		}
		code := exitErr.ExitCode()
		if code < 0 {
			return 1, fmt.Errorf("scanner terminated: %w", err)
		}
		logger.Info("scanner finished", "exit_code", code)
		return code, nil
	}

	return 1, fmt.Errorf("start scanner %s: %w", executable, err)
}

func (r *Runner) logger() log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}

// openLog opens the log file for appending and writes the run header.
func (r *Runner) openLog(mode Mode, executable string, args []string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(r.LogFile), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(r.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	now := time.Now
	if r.now != nil {
		now = r.now
	}
	header := fmt.Sprintf("==== leakguard %s %s ====\n$ %s %s\n",
		mode, now().UTC().Format(time.RFC3339), executable, strings.Join(args, " "))
	if _, err := io.WriteString(f, header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write log file: %w", err)
	}
	return f, nil
}

func teeTo(w io.Writer, f io.Writer) io.Writer {
	if w == nil {
		return f
	}
	return io.MultiWriter(w, f)
}
