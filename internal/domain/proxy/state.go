package proxy

import "time"

// Status messages returned by supervisor operations.
const (
	StatusStarted        = "Proxy is started."
	StatusAlreadyRunning = "Proxy is already running."
	StatusStopped        = "Proxy is stopped."
	StatusAlreadyStopped = "Proxy is already stopped."
	StatusRunning        = "Proxy is running."
	StatusNotRunning     = "Proxy is not running."
)

// State is a snapshot of the supervised proxy process.
type State struct {
	// Status is the message of the last operation.
	Status string
	// BinaryPath is the executable that was spawned.
	BinaryPath string
	// StartedAt is when the process was spawned; zero when not running.
	StartedAt time.Time
	// PID is the process id; zero when not running.
	PID int
	// Running reports whether the supervisor owns a live process.
	Running bool
}

// Clone returns a copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}

	cloned := *s

	return &cloned
}

// Uptime returns how long the process has been running at now.
func (s *State) Uptime(now time.Time) time.Duration {
	if !s.Running || s.StartedAt.IsZero() {
		return 0
	}

	return now.Sub(s.StartedAt)
}
