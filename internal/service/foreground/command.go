package foreground

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/webkit-proxy/internal/config"
	"github.com/oshokin/webkit-proxy/internal/installer"
	"github.com/oshokin/webkit-proxy/internal/logger"
	"github.com/oshokin/webkit-proxy/internal/supervisor"
)

// Options controls the foreground run.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Install builds the proxy first when it is not installed yet.
	Install bool

	// installerOptions are passed to installer.New; tests use them to fake the toolchain.
	installerOptions []installer.Option
}

// ErrProxyExited is returned when the proxy dies while Run is waiting.
var ErrProxyExited = errors.New("proxy exited unexpectedly")

// Run starts the proxy and blocks until ctx is canceled, then stops it and
// waits for it to exit.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "webkit-proxy-run")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	inst, err := installer.New(cfg, opts.installerOptions...)
	if err != nil {
		return fmt.Errorf("initialise installer: %w", err)
	}

	if opts.Install {
		if err = ensureInstalled(ctx, inst); err != nil {
			return err
		}
	}

	sup := supervisor.NewFromConfig(inst, cfg)

	status, err := sup.Start(ctx)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, status, "pid", sup.Snapshot().PID)

	exited := make(chan struct{})

	go func() {
		_ = sup.Wait(ctx)
		close(exited)
	}()

	select {
	case <-ctx.Done():
	case <-exited:
		if ctx.Err() == nil {
			return ErrProxyExited
		}
	}

	return shutdown(context.WithoutCancel(ctx), sup, cfg)
}

func ensureInstalled(ctx context.Context, inst installer.Installer) error {
	_, err := inst.IsInstalled(ctx)
	if !errors.Is(err, installer.ErrNotInstalled) {
		return err
	}

	logger.Info(ctx, "Proxy is not installed, installing")

	_, err = inst.Install(ctx)

	return err
}

// shutdown stops the proxy and waits up to the kill timeout plus the settling window.
func shutdown(ctx context.Context, sup *supervisor.Supervisor, cfg *config.Config) error {
	status, err := sup.Stop(ctx)
	if err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, cfg.KillTimeout+cfg.SettleTimeout)
	defer cancel()

	if err = sup.Wait(waitCtx); err != nil {
		return fmt.Errorf("wait for proxy exit: %w", err)
	}

	logger.Info(ctx, status)

	return nil
}
