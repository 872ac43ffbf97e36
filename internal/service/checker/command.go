package checker

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/webkit-proxy/internal/config"
	domain "github.com/oshokin/webkit-proxy/internal/domain/proxy"
	"github.com/oshokin/webkit-proxy/internal/logger"
	"github.com/oshokin/webkit-proxy/internal/service/common"
)

// Options controls the checker polling behavior and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerAddress provides an optional gRPC server address override.
	ServerAddress string
	// PollInterval defines the interval between status checks.
	PollInterval time.Duration
	// Restart starts the proxy whenever it is found not running.
	Restart bool
}

// DefaultPollInterval is used when Options.PollInterval is not positive.
const DefaultPollInterval = 5 * time.Second

// proxyClient is the part of common.Client the checker uses.
type proxyClient interface {
	Start(ctx context.Context) (*domain.State, error)
	Status(ctx context.Context) (*domain.State, error)
}

// Run polls the proxy state until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "webkit-proxy-watch")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	serverAddress := cfg.DaemonAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	actor, err := common.DetectActor()
	if err != nil {
		return fmt.Errorf("detect actor: %w", err)
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout), common.WithActor(actor))
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}

	defer func() {
		_ = client.Close()
	}()

	logger.InfoKV(ctx, "Watching proxy", "server_address", serverAddress, "interval", opts.PollInterval.String())

	poll(ctx, client, opts.PollInterval, opts.Restart)

	return nil
}

// poll checks immediately and then on every tick until ctx is canceled.
func poll(ctx context.Context, client proxyClient, interval time.Duration, restart bool) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := checkState(ctx, client, restart); err != nil {
			logger.ErrorKV(ctx, "Check state failed", "error", err)
		}

		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return
		case <-ticker.C:
		}
	}
}

// checkState logs the proxy state and restarts a stopped proxy when asked to.
func checkState(ctx context.Context, client proxyClient, restart bool) error {
	state, err := client.Status(ctx)
	if err != nil {
		return err
	}

	if state.Running {
		logger.DebugKV(ctx, "Proxy is running", "pid", state.PID, "uptime", state.Uptime(time.Now()).Round(time.Second))
		return nil
	}

	if !restart {
		logger.Info(ctx, "Proxy is not running")
		return nil
	}

	logger.Info(ctx, "Proxy is not running, starting it")

	state, err = client.Start(ctx)
	if err != nil {
		return fmt.Errorf("restart proxy: %w", err)
	}

	logger.InfoKV(ctx, state.Status, "pid", state.PID)

	return nil
}
