package installer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/oshokin/webkit-proxy/internal/logger"
)

// linuxInstaller builds the proxy from source with the autotools toolchain.
// Missing build dependencies surface as a BuildStepError carrying the
// toolchain's stderr.
type linuxInstaller struct {
	*base
}

// Install runs download, extract, bootstrap, configure, compile, place and clean.
func (l *linuxInstaller) Install(ctx context.Context) (string, error) {
	ctx = logger.WithKV(ctx, "version", l.layout.Version)

	steps := []step{
		{name: StepDownload, run: l.download},
		{name: StepExtract, run: l.extract},
		{name: StepBootstrap, run: l.bootstrap},
		{name: StepConfigure, run: l.configure},
		{name: StepCompile, run: l.compile},
		{name: StepPlace, run: l.place},
		{name: StepClean, run: l.clean},
	}

	binaryPath, err := runPipeline(ctx, l.stepTimeout, l.archiveURL, steps)
	if err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Proxy installed", "path", binaryPath)

	return binaryPath, nil
}

// Uninstall removes the binary and whatever an interrupted install left behind.
// A missing binary counts as already uninstalled.
func (l *linuxInstaller) Uninstall(ctx context.Context) error {
	binaryPath := l.layout.BinaryPath()

	if err := os.Remove(binaryPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", binaryPath, err)
	}

	l.removeLeftovers(ctx)

	// Succeeds only when nothing else (config, state file) lives there.
	if err := os.Remove(l.layout.InstallDir); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.DebugKV(ctx, "Install directory kept", "path", l.layout.InstallDir, "reason", err)
	}

	logger.InfoKV(ctx, "Proxy uninstalled", "path", binaryPath)

	return nil
}
