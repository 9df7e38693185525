package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"

	"github.com/cuemby/ferry/pkg/log"
)

// Status reports the outcome of a time-bounded command run.
type Status int

const (
	// StatusFailure means the command exited with a non-zero code.
	StatusFailure Status = iota
	// StatusSuccess means the command exited with code zero.
	StatusSuccess
	// StatusTimeout means the command was killed after exceeding its bound.
	StatusTimeout
)

// String returns the status name
func (s Status) String() string {
	switch s {
	case StatusFailure:
		return "failure"
	case StatusSuccess:
		return "success"
	case StatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Cmd describes one external command invocation
type Cmd struct {
	Program string
	Args    []string
	Dir     string
}

// New builds a command for program with the given arguments
func New(program string, args ...string) Cmd {
	return Cmd{Program: program, Args: args}
}

// InDir returns a copy of the command that runs with dir as its working
// directory
func (c Cmd) InDir(dir string) Cmd {
	c.Dir = dir
	return c
}

// String renders the command as a shell-quoted line for logs and errors
func (c Cmd) String() string {
	return shellquote.Join(append([]string{c.Program}, c.Args...)...)
}

// Runner executes external commands. Status methods stream both output
// channels of the child; capturing methods capture stdout and stream only
// stderr. All methods kill the child when the context is cancelled.
type Runner struct {
	logger zerolog.Logger
	stdout io.Writer
	stderr io.Writer
}

// NewRunner creates a runner streaming child output to this process's
// stdout and stderr
func NewRunner() *Runner {
	return NewRunnerWithIO(os.Stdout, os.Stderr)
}

// NewRunnerWithIO creates a runner streaming child output to the given
// writers
func NewRunnerWithIO(stdout, stderr io.Writer) *Runner {
	return &Runner{
		logger: log.WithComponent("command"),
		stdout: stdout,
		stderr: stderr,
	}
}

// StatusOK runs the command and fails unless it exits with code zero
func (r *Runner) StatusOK(ctx context.Context, cmd Cmd) error {
	child := r.child(ctx, cmd)
	child.Stdout = r.stdout
	if err := child.Run(); err != nil {
		return wrap(cmd, err)
	}
	return nil
}

// StatusBool runs a command that answers a yes/no question through its exit
// code, the convention used by "podman network exists" and similar checks.
// Exit code 0 means yes, exit code 1 means no, anything else is an error.
func (r *Runner) StatusBool(ctx context.Context, cmd Cmd) (bool, error) {
	child := r.child(ctx, cmd)
	child.Stdout = r.stdout
	err := child.Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && ctx.Err() == nil {
		return false, nil
	}
	return false, wrap(cmd, err)
}

// StatusWithinTime runs the command under the given timeout. The child is
// killed on timeout and StatusTimeout is reported; a non-zero exit within
// the bound is StatusFailure, not an error.
func (r *Runner) StatusWithinTime(ctx context.Context, cmd Cmd, timeout time.Duration) (Status, error) {
	bounded, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	child := r.child(bounded, cmd)
	child.Stdout = r.stdout
	err := child.Run()
	switch {
	case err == nil:
		return StatusSuccess, nil
	case ctx.Err() != nil:
		return StatusFailure, wrap(cmd, ctx.Err())
	case errors.Is(bounded.Err(), context.DeadlineExceeded):
		return StatusTimeout, nil
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return StatusFailure, nil
		}
		return StatusFailure, wrap(cmd, err)
	}
}

// Output runs the command and returns its captured stdout
func (r *Runner) Output(ctx context.Context, cmd Cmd) ([]byte, error) {
	var stdout bytes.Buffer
	child := r.child(ctx, cmd)
	child.Stdout = &stdout
	if err := child.Run(); err != nil {
		return nil, wrap(cmd, err)
	}
	return stdout.Bytes(), nil
}

// OutputText runs the command and returns its captured stdout as a string
func (r *Runner) OutputText(ctx context.Context, cmd Cmd) (string, error) {
	stdout, err := r.Output(ctx, cmd)
	if err != nil {
		return "", err
	}
	return string(stdout), nil
}

// CombinedText runs the command and returns stdout and stderr interleaved
// as one string. Some tools print version banners to stderr.
func (r *Runner) CombinedText(ctx context.Context, cmd Cmd) (string, error) {
	var combined bytes.Buffer
	child := r.child(ctx, cmd)
	child.Stdout = &combined
	child.Stderr = &combined
	if err := child.Run(); err != nil {
		return "", wrap(cmd, err)
	}
	return combined.String(), nil
}

// OutputJSON runs the command and decodes its stdout as JSON into v
func (r *Runner) OutputJSON(ctx context.Context, cmd Cmd, v any) error {
	stdout, err := r.Output(ctx, cmd)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(stdout, v); err != nil {
		return fmt.Errorf("failed to decode JSON from %q: %w", cmd.String(), err)
	}
	return nil
}

func (r *Runner) child(ctx context.Context, cmd Cmd) *exec.Cmd {
	r.logger.Debug().Str("command", cmd.String()).Msg("running command")
	child := exec.CommandContext(ctx, cmd.Program, cmd.Args...)
	child.Dir = cmd.Dir
	child.Stderr = r.stderr
	return child
}

func wrap(cmd Cmd, err error) error {
	return fmt.Errorf("failed to run %q: %w", cmd.String(), err)
}
