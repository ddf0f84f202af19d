package runner

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/bgricker/devdrive/internal/report"
)

// LaunchFailureExitCode is the sentinel reported when the child process could
// not be started at all (missing binary, permission denied). It is distinct
// from any exit code the tool itself reports.
const LaunchFailureExitCode = 127

// Options configure how the runner executes commands.
type Options struct {
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
	Env    []string
	Now    func() time.Time
}

// Runner executes a single external command at a time, blocking until the
// child process terminates.
type Runner struct {
	opts Options
}

// New creates a runner with the supplied options.
func New(opts Options) *Runner {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	if opts.Env == nil {
		opts.Env = os.Environ()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{opts: opts}
}

// Run executes command with args and returns the captured result. The exit
// code is exactly the child's, or LaunchFailureExitCode when the executable
// could not be started. Output is captured and mirrored to the configured
// writers so it stays visible to the operator.
func (r *Runner) Run(ctx context.Context, command string, args []string) report.StepResult {
	result := report.StepResult{
		Command: command,
		Args:    append([]string{}, args...),
	}

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = r.opts.Dir
	cmd.Env = r.opts.Env
	cmd.Stdin = os.Stdin

	var stdoutBuf, stderrBuf strings.Builder
	cmd.Stdout = io.MultiWriter(r.opts.Stdout, &stdoutBuf)
	cmd.Stderr = io.MultiWriter(r.opts.Stderr, &stderrBuf)

	start := r.opts.Now()
	err := cmd.Run()
	result.Duration = r.opts.Now().Sub(start)
	result.DurationMS = result.Duration.Milliseconds()
	result.Stdout = stdoutBuf.String()
	result.Stderr = stderrBuf.String()

	if err == nil {
		result.Status = report.StatusPassed
		return result
	}

	result.Status = report.StatusFailed
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		if result.ExitCode < 0 {
			// Killed by a signal (operator interrupt, context cancel).
			result.ExitCode = 1
		}
		return result
	}

	// The process never ran: missing binary, permission denied, bad dir.
	result.LaunchFailure = true
	result.ExitCode = LaunchFailureExitCode
	if result.Stderr == "" {
		result.Stderr = err.Error()
	}
	return result
}
