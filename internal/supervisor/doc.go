// Package supervisor starts, stops and watches a single ios_webkit_debug_proxy
// child process.
//
// Start spawns the installed binary and waits for a short settling window:
// a process that is still alive when the window closes counts as started, one
// that exits first is reported as ProcessExitedEarlyError. This is a
// heuristic; it proves the proxy did not crash immediately, not that it is
// ready. WithReadinessProbe adds a stronger check (see TCPProbe).
//
// The handle is cleared as soon as the process exits or Stop signals it, so
// IsRunning never reports a dead process. Callers are expected to serialize
// Start and Stop; the internal lock only protects against the exit watcher.
package supervisor
