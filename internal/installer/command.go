package installer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner runs an external program in dir and returns its standard output.
// A failed run returns a *CommandError.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// CommandError describes a program that failed to start or exited non-zero.
type CommandError struct {
	// Command is the program and its arguments joined by spaces.
	Command string
	// ExitCode is the process exit code, or -1 if it never ran to completion.
	ExitCode int
	// Stderr is the trimmed standard error output.
	Stderr string
	// Err is the underlying exec error.
	Err error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: exit code %d: %s", e.Command, e.ExitCode, detail(e.Stderr, e.Err))
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExecRunner runs programs with os/exec, capturing stdout and stderr.
type ExecRunner struct{}

// Run implements CommandRunner.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		return stdout.Bytes(), &CommandError{
			Command:  strings.Join(append([]string{name}, args...), " "),
			ExitCode: exitCode,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}

	return stdout.Bytes(), nil
}

// commandFailure extracts exit code and stderr from a runner error.
func commandFailure(err error) (int, string) {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode, cmdErr.Stderr
	}

	return -1, ""
}
