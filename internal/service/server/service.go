package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	domain "github.com/oshokin/webkit-proxy/internal/domain/proxy"
	"github.com/oshokin/webkit-proxy/internal/logger"
	repo "github.com/oshokin/webkit-proxy/internal/repository/state"
)

// Supervisor is the process control the daemon serializes access to.
type Supervisor interface {
	Start(ctx context.Context) (string, error)
	Stop(ctx context.Context) (string, error)
	Snapshot() *domain.State
}

// Reaper kills a proxy left running by a previous daemon and reports whether it did.
type Reaper func(pid int) (bool, error)

// service serializes supervisor operations and records every change.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// supervisor owns the proxy process.
	supervisor Supervisor
	// repo handles persistent storage of the proxy state.
	repo repo.Repository
	// mu keeps Start, Stop and Status from interleaving.
	mu sync.Mutex
}

// newService creates a service and reaps a proxy recorded as running by a
// previous daemon, since no supervisor owns it anymore.
func newService(ctx context.Context, supervisor Supervisor, repository repo.Repository, reaper Reaper) (*service, error) {
	s := &service{
		supervisor: supervisor,
		repo:       repository,
	}

	if repository == nil {
		return s, nil
	}

	state, err := repository.Load(ctx)
	switch {
	case err == nil:
		s.reapOrphan(ctx, state, reaper)
	case errors.Is(err, repo.ErrNotFound):
		// Nothing was running.
	default:
		return nil, fmt.Errorf("load state: %w", err)
	}

	return s, nil
}

func (s *service) reapOrphan(ctx context.Context, state *domain.State, reaper Reaper) {
	if state == nil || !state.Running || state.PID <= 0 || reaper == nil {
		return
	}

	ctx = logger.WithKV(ctx, "pid", state.PID)

	killed, err := reaper(state.PID)
	if err != nil {
		logger.WarnKV(ctx, "Unable to reap proxy from previous run", "error", err)
		return
	}

	if killed {
		logger.Info(ctx, "Reaped proxy left by previous run")
	}

	s.persist(ctx, &domain.State{Status: domain.StatusStopped})
}

// Start launches the proxy and records the new state.
func (s *service) Start(ctx context.Context) (*domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.supervisor.Start(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Proxy start failed", "error", err)

		return nil, err
	}

	return s.record(ctx, status), nil
}

// Stop interrupts the proxy and records the new state.
func (s *service) Stop(ctx context.Context) (*domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.supervisor.Stop(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Proxy stop failed", "error", err)

		return nil, err
	}

	return s.record(ctx, status), nil
}

// Status returns the current proxy state.
func (s *service) Status(ctx context.Context) *domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.supervisor.Snapshot()
	logger.DebugKV(ctx, "Proxy state requested", "running", state.Running, "pid", state.PID)

	return state
}

// shutdown stops a running proxy when the daemon exits.
func (s *service) shutdown(ctx context.Context) {
	if !s.Status(ctx).Running {
		return
	}

	if _, err := s.Stop(ctx); err != nil {
		logger.ErrorKV(ctx, "Unable to stop proxy on shutdown", "error", err)
	}
}

// record takes a snapshot labelled with status and persists it.
func (s *service) record(ctx context.Context, status string) *domain.State {
	state := s.supervisor.Snapshot()
	state.Status = status

	s.persist(ctx, state)

	logger.InfoKV(ctx, "Proxy state updated", "status", status, "running", state.Running, "pid", state.PID)

	return state.Clone()
}

// persist saves state; a failure is logged because the process change already happened.
func (s *service) persist(ctx context.Context, state *domain.State) {
	if s.repo == nil {
		return
	}

	if err := s.repo.Save(ctx, state); err != nil {
		logger.Errorf(ctx, "Failed to persist proxy state: %v", err)
	}
}
