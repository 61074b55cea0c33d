package memcheck

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// RunResult captures everything a single external invocation produced.
// Both output streams and the exit status are fully collected before the
// call returns; no process handles outlive the invocation.
type RunResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	NotFound bool // the executable could not be launched
	TimedOut bool
	Err      error // unclassified launch/wait error
}

// Completed reports whether the process started and exited on its own,
// regardless of its exit status.
func (r RunResult) Completed() bool {
	return r.Err == nil && !r.NotFound && !r.TimedOut
}

// OK reports whether the process completed with exit status zero.
func (r RunResult) OK() bool {
	return r.Completed() && r.ExitCode == 0
}

// Runner executes external commands. The production implementation shells
// out; tests substitute a fake to avoid spawning processes.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) RunResult
}

type execRunner struct{}

// NewRunner returns a Runner backed by os/exec.
func NewRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) RunResult {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := RunResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if ctx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		return res
	}

	var exitErr *exec.ExitError
	var launchErr *exec.Error
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		// Non-zero exit is a normal completion; the caller decides what
		// the status means.
		res.ExitCode = exitErr.ExitCode()
	case errors.As(err, &launchErr):
		res.NotFound = true
	default:
		res.Err = err
	}

	return res
}
