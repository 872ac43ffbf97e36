package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/webkit-proxy/internal/config"
	domain "github.com/oshokin/webkit-proxy/internal/domain/proxy"
	"github.com/oshokin/webkit-proxy/internal/installer"
	"github.com/oshokin/webkit-proxy/internal/logger"
	"github.com/oshokin/webkit-proxy/internal/service/common"
	"github.com/oshokin/webkit-proxy/internal/supervisor"
)

// Action selects the daemon call made by Run.
type Action string

// Supported actions.
const (
	ActionStart  Action = "start"
	ActionStop   Action = "stop"
	ActionStatus Action = "status"
)

// Options configures a single call to webkit-proxy-server.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides the daemon address from config when specified.
	ServerAddress string
	// Action is the operation to perform.
	Action Action
	// Force makes stop kill every process running the proxy binary afterwards.
	Force bool
}

// errUnknownAction is returned for an Action Run does not know.
var errUnknownAction = errors.New("unknown action")

// Terminator kills processes by executable name and returns how many died.
type Terminator func(name string, keep ...int) (int, error)

// Run performs opts.Action against the daemon and returns the resulting state.
func Run(ctx context.Context, opts *Options) (*domain.State, error) {
	ctx = logger.WithName(ctx, "webkit-proxy")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	serverAddress := cfg.DaemonAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	clientOpts := []common.Option{common.WithCallTimeout(cfg.Timeout)}

	// The actor only feeds daemon logs, so failing to detect it is not fatal.
	if actor, actorErr := common.DetectActor(); actorErr == nil {
		clientOpts = append(clientOpts, common.WithActor(actor))
	}

	client, err := common.Dial(ctx, serverAddress, clientOpts...)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Calling proxy server", "server_address", serverAddress, "action", opts.Action)

	switch opts.Action {
	case ActionStart:
		return client.Start(ctx)
	case ActionStop:
		return stop(ctx, client, opts.Force, supervisor.TerminateByName)
	case ActionStatus:
		return client.Status(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownAction, opts.Action)
	}
}

// stopper is the part of common.Client used by stop.
type stopper interface {
	Stop(ctx context.Context) (*domain.State, error)
}

// stop asks the daemon to stop the proxy and, when forced, reaps leftovers.
// A forced stop succeeds even if the daemon cannot be reached.
func stop(ctx context.Context, client stopper, force bool, terminate Terminator) (*domain.State, error) {
	state, err := client.Stop(ctx)
	if !force {
		return state, err
	}

	if err != nil {
		logger.WarnKV(ctx, "Proxy server did not stop the proxy, reaping by name", "error", err)

		state = &domain.State{Status: domain.StatusStopped}
	}

	killed, err := terminate(installer.BinaryName)
	if err != nil {
		return nil, fmt.Errorf("terminate %s: %w", installer.BinaryName, err)
	}

	if killed > 0 {
		logger.InfoKV(ctx, "Killed stray proxy processes", "count", killed)
	}

	return state, nil
}
