package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/oshokin/webkit-proxy/internal/domain/proxy"
	"github.com/oshokin/webkit-proxy/internal/logger"
)

const (
	// DefaultSettleTimeout is how long a new proxy must survive to count as started.
	DefaultSettleTimeout = 200 * time.Millisecond
	// DefaultKillTimeout is the grace period between the interrupt and a forced kill.
	DefaultKillTimeout = 5 * time.Second
	// DefaultReadinessTimeout bounds the readiness probe.
	DefaultReadinessTimeout = 10 * time.Second

	textBusyAttempts = 5
	textBusyBackoff  = 20 * time.Millisecond
)

// Locator resolves the installed proxy binary.
// Installer implementations satisfy it.
type Locator interface {
	IsInstalled(ctx context.Context) (string, error)
}

// Option customizes a Supervisor.
type Option func(*Supervisor)

// WithSettleTimeout overrides DefaultSettleTimeout. Non-positive values are ignored.
func WithSettleTimeout(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.settleTimeout = d
		}
	}
}

// WithKillTimeout overrides DefaultKillTimeout. Non-positive values are ignored.
func WithKillTimeout(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.killTimeout = d
		}
	}
}

// WithReadinessProbe runs probe after the settling window, bounded by timeout.
func WithReadinessProbe(probe ReadinessProbe, timeout time.Duration) Option {
	return func(s *Supervisor) {
		s.probe = probe

		if timeout > 0 {
			s.readinessTimeout = timeout
		}
	}
}

// Supervisor owns at most one running proxy process.
type Supervisor struct {
	locator          Locator
	settleTimeout    time.Duration
	killTimeout      time.Duration
	readinessTimeout time.Duration
	probe            ReadinessProbe

	mu      sync.Mutex
	current *child
	// last is the most recently spawned child, kept after Stop for Wait.
	last *child
}

// child is a spawned proxy and its exit notification.
type child struct {
	cmd       *exec.Cmd
	path      string
	startedAt time.Time
	// done is closed by the exit watcher once Wait returns; waitErr is set before.
	done    chan struct{}
	waitErr error
}

func (c *child) pid() int {
	return c.cmd.Process.Pid
}

func (c *child) exited() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *child) exitedEarlyError() *ProcessExitedEarlyError {
	exitCode := -1
	if c.cmd.ProcessState != nil {
		exitCode = c.cmd.ProcessState.ExitCode()
	}

	return &ProcessExitedEarlyError{
		PID:      c.pid(),
		ExitCode: exitCode,
		Err:      c.waitErr,
	}
}

// New returns an idle Supervisor that starts the binary reported by locator.
func New(locator Locator, opts ...Option) *Supervisor {
	s := &Supervisor{
		locator:          locator,
		settleTimeout:    DefaultSettleTimeout,
		killTimeout:      DefaultKillTimeout,
		readinessTimeout: DefaultReadinessTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start launches the installed proxy unless one is already running.
// It blocks for the settling window and, when configured, the readiness probe.
func (s *Supervisor) Start(ctx context.Context) (string, error) {
	path, err := s.locator.IsInstalled(ctx)
	if err != nil {
		return "", err
	}

	if s.IsRunning() {
		logger.Debug(ctx, "Proxy is already running")

		return proxy.StatusAlreadyRunning, nil
	}

	c, err := s.spawn(path)
	if err != nil {
		return "", err
	}

	ctx = logger.WithKV(ctx, "pid", c.pid())
	logger.DebugKV(ctx, "Proxy spawned", "path", path)

	timer := time.NewTimer(s.settleTimeout)
	defer timer.Stop()

	select {
	case <-c.done:
		return "", c.exitedEarlyError()
	case <-ctx.Done():
		s.terminate(ctx, c)

		return "", ctx.Err()
	case <-timer.C:
	}

	// The watcher may have fired together with the timer.
	if c.exited() {
		return "", c.exitedEarlyError()
	}

	if s.probe != nil {
		if err = s.awaitReady(ctx, c); err != nil {
			return "", err
		}
	}

	logger.Info(ctx, "Proxy started")

	return proxy.StatusStarted, nil
}

// Stop interrupts the running proxy and forgets it without waiting for exit.
// A proxy that ignores the interrupt is killed after the kill timeout.
func (s *Supervisor) Stop(ctx context.Context) (string, error) {
	s.mu.Lock()
	c := s.current

	if c == nil || c.exited() {
		s.current = nil
		s.mu.Unlock()

		return proxy.StatusAlreadyStopped, nil
	}

	s.mu.Unlock()

	if err := interrupt(c.cmd.Process); err != nil {
		// The process vanished between the check and the signal.
		if errors.Is(err, os.ErrProcessDone) {
			s.forget(c)
		}

		return "", &SignalError{PID: c.pid(), Err: err}
	}

	s.forget(c)

	ctx = logger.WithKV(ctx, "pid", c.pid())
	logger.Info(ctx, "Proxy stopped")

	go s.escalate(context.WithoutCancel(ctx), c)

	return proxy.StatusStopped, nil
}

// IsRunning reports whether a supervised proxy is alive.
func (s *Supervisor) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current != nil && !s.current.exited()
}

// Snapshot describes the supervised proxy.
func (s *Supervisor) Snapshot() *proxy.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.current
	if c == nil || c.exited() {
		return &proxy.State{Status: proxy.StatusNotRunning}
	}

	return &proxy.State{
		Status:     proxy.StatusRunning,
		BinaryPath: c.path,
		StartedAt:  c.startedAt,
		PID:        c.pid(),
		Running:    true,
	}
}

// Wait blocks until the most recently spawned proxy has exited, including one
// already handed to Stop. It returns at once when nothing was ever spawned.
func (s *Supervisor) Wait(ctx context.Context) error {
	s.mu.Lock()
	c := s.last
	s.mu.Unlock()

	if c == nil {
		return nil
	}

	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Supervisor) spawn(path string) (*child, error) {
	cmd, err := startCommand(path)
	if err != nil {
		return nil, &ProcessSpawnError{Path: path, Err: err}
	}

	c := &child{
		cmd:       cmd,
		path:      path,
		startedAt: time.Now(),
		done:      make(chan struct{}),
	}

	s.mu.Lock()
	s.current = c
	s.last = c
	s.mu.Unlock()

	go s.watch(c)

	return c, nil
}

// startCommand starts path with no arguments. Exec fails with ETXTBSY while a
// freshly written binary is still open for writing in a forked child, so that
// error is retried a few times.
func startCommand(path string) (*exec.Cmd, error) {
	var err error

	for attempt := 0; attempt < textBusyAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(textBusyBackoff)
		}

		cmd := exec.Command(path) //nolint:gosec // The path comes from the installer layout.
		setProcGroupAttr(cmd)

		if err = cmd.Start(); err == nil {
			return cmd, nil
		}

		if !textBusy(err) {
			return nil, err
		}
	}

	return nil, err
}

// watch reaps the child and clears the handle when it exits.
func (s *Supervisor) watch(c *child) {
	c.waitErr = c.cmd.Wait()
	close(c.done)

	s.forget(c)
}

func (s *Supervisor) forget(c *child) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == c {
		s.current = nil
	}
}

// terminate kills a child that failed to start properly.
func (s *Supervisor) terminate(ctx context.Context, c *child) {
	s.forget(c)

	if err := c.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		logger.WarnKV(ctx, "Unable to kill proxy", "error", err)
	}
}

func (s *Supervisor) escalate(ctx context.Context, c *child) {
	timer := time.NewTimer(s.killTimeout)
	defer timer.Stop()

	select {
	case <-c.done:
		logger.Debug(ctx, "Proxy exited after interrupt")
	case <-timer.C:
		logger.WarnKV(ctx, "Proxy ignored interrupt, killing it", "timeout", s.killTimeout)

		if err := c.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			logger.ErrorKV(ctx, "Unable to kill proxy", "error", err)
		}
	}
}

func (s *Supervisor) awaitReady(ctx context.Context, c *child) error {
	probeCtx, cancel := context.WithTimeout(ctx, s.readinessTimeout)
	defer cancel()

	result := make(chan error, 1)

	go func() {
		result <- s.probe(probeCtx)
	}()

	select {
	case err := <-result:
		if err != nil {
			s.terminate(ctx, c)

			return fmt.Errorf("%w: %w", ErrNotReady, err)
		}

		return nil
	case <-c.done:
		return c.exitedEarlyError()
	}
}
