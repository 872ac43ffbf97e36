package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/webkit-proxy/internal/config"
	"github.com/oshokin/webkit-proxy/internal/installer"
	"github.com/oshokin/webkit-proxy/internal/logger"
	"github.com/oshokin/webkit-proxy/internal/platform"
)

// Options selects the settings used by the installer.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// InstallDir overrides the configured install directory.
	InstallDir string
	// PackageVersion overrides the configured ios-webkit-debug-proxy release.
	PackageVersion string

	// installerOptions are passed to installer.New; tests use them to fake the toolchain.
	installerOptions []installer.Option
}

// Install builds and places the proxy binary and returns its path.
func Install(ctx context.Context, opts *Options) (string, error) {
	ctx = logger.WithName(ctx, "install")

	inst, err := newInstaller(opts)
	if err != nil {
		return "", err
	}

	path, err := inst.Install(ctx)
	if err != nil {
		logBuildHint(ctx, err)

		return "", err
	}

	return path, nil
}

// Uninstall removes the proxy binary and the install leftovers.
func Uninstall(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "uninstall")

	inst, err := newInstaller(opts)
	if err != nil {
		return err
	}

	return inst.Uninstall(ctx)
}

// Installed returns the installed binary path or installer.ErrNotInstalled.
func Installed(ctx context.Context, opts *Options) (string, error) {
	inst, err := newInstaller(opts)
	if err != nil {
		return "", err
	}

	return inst.IsInstalled(ctx)
}

//nolint:ireturn // installer.New picks the platform variant.
func newInstaller(opts *Options) (installer.Installer, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if opts.InstallDir != "" || opts.PackageVersion != "" {
		if opts.InstallDir != "" {
			cfg.InstallDir = opts.InstallDir
			cfg.StateFile = ""
		}

		// A pinned checksum belongs to the configured release only.
		if opts.PackageVersion != "" && opts.PackageVersion != cfg.PackageVersion {
			cfg.PackageVersion = opts.PackageVersion
			cfg.ArchiveChecksum = ""
		}

		if err = config.Validate(cfg); err != nil {
			return nil, err
		}
	}

	return installer.New(cfg, opts.installerOptions...)
}

// logBuildHint suggests how to get the toolchain when a build step failed.
func logBuildHint(ctx context.Context, err error) {
	var stepErr *installer.BuildStepError
	if !errors.As(err, &stepErr) {
		return
	}

	info, detectErr := platform.Detect(ctx)
	if detectErr != nil {
		return
	}

	if hint := info.InstallHint(); hint != "" {
		logger.WarnKV(ctx, "Build dependencies may be missing", "platform", info.String(), "try", hint)
	}
}
