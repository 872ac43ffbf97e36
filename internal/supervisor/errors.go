package supervisor

import (
	"errors"
	"fmt"
)

// ErrNotReady is wrapped when the readiness probe fails after the settling window.
var ErrNotReady = errors.New("proxy did not become ready")

// ProcessSpawnError reports a binary that could not be started.
type ProcessSpawnError struct {
	Path string
	Err  error
}

func (e *ProcessSpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Path, e.Err)
}

func (e *ProcessSpawnError) Unwrap() error {
	return e.Err
}

// ProcessExitedEarlyError reports a proxy that exited inside the settling window.
// ExitCode is -1 when the process was terminated by a signal.
type ProcessExitedEarlyError struct {
	PID      int
	ExitCode int
	Err      error
}

func (e *ProcessExitedEarlyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("proxy (pid %d) exited right after start with code %d: %v", e.PID, e.ExitCode, e.Err)
	}

	return fmt.Sprintf("proxy (pid %d) exited right after start with code %d", e.PID, e.ExitCode)
}

func (e *ProcessExitedEarlyError) Unwrap() error {
	return e.Err
}

// SignalError reports a failure to interrupt the running proxy.
type SignalError struct {
	PID int
	Err error
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("unable to stop proxy (pid %d): %v", e.PID, e.Err)
}

func (e *SignalError) Unwrap() error {
	return e.Err
}
